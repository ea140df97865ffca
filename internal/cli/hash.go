package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gutoautopecas/internal/gate"
)

// NewHashPasswordCommand creates the hash-password command, which prints
// a value for ADMIN_PASSWORD_HASH.
func NewHashPasswordCommand() *cobra.Command {
	var useBcrypt bool

	cmd := &cobra.Command{
		Use:   "hash-password <secret>",
		Short: "Print the admin password digest for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := gate.SHA256Hex(args[0])
			if useBcrypt {
				var err error
				if hash, err = gate.BcryptHash(args[0]); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().BoolVar(&useBcrypt, "bcrypt", false, "emit a bcrypt hash instead of a SHA-256 digest")
	return cmd
}
