package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSHA256Checker(t *testing.T) {
	c, err := New(SHA256Hex("oficina123"))
	require.NoError(t, err)

	assert.NoError(t, c.Check("oficina123"))
	assert.ErrorIs(t, c.Check("oficina124"), ErrInvalidPassword)
	assert.ErrorIs(t, c.Check(""), ErrInvalidPassword)
}

func TestSHA256CheckerUppercaseDigest(t *testing.T) {
	c, err := New(strings.ToUpper(SHA256Hex("segredo")))
	require.NoError(t, err)
	assert.NoError(t, c.Check("segredo"))
}

func TestBcryptChecker(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("segredo"), bcrypt.MinCost)
	require.NoError(t, err)

	c, err := New(string(h))
	require.NoError(t, err)
	assert.NoError(t, c.Check("segredo"))
	assert.ErrorIs(t, c.Check("Segredo"), ErrInvalidPassword)
}

func TestNewRejectsMalformedHash(t *testing.T) {
	for _, h := range []string{"", "abc", strings.Repeat("z", 64), "$2a$nope"} {
		_, err := New(h)
		assert.Error(t, err, "hash %q", h)
	}
}

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		SHA256Hex(""))
}
