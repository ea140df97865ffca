// Command gutoautopecas runs the Guto Auto Peças site. See "gutoautopecas
// help" for the available commands.
package main

import (
	"context"
	"fmt"
	"os"

	"gutoautopecas/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
