package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	return Options{
		Endpoint:  "https://s3.example.com/",
		Region:    "us-east-1",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "gutoautopecas",
	}
}

func TestNewReportsMissingFields(t *testing.T) {
	o := validOptions()
	o.Bucket, o.SecretKey = "", ""

	_, err := New(o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
	assert.Contains(t, err.Error(), "secret key")
}

func TestURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		want      string
	}{
		{"path style", "", "https://s3.example.com/gutoautopecas/images/logo/a.png"},
		{"cdn", "https://cdn.gutoautopecas.com.br/", "https://cdn.gutoautopecas.com.br/images/logo/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			o.PublicURL = tt.publicURL
			c, err := New(o)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.URL("images/logo/a.png"))
		})
	}
}

func TestObjectKey(t *testing.T) {
	a, b := ObjectKey("product", ".jpg"), ObjectKey("product", ".jpg")
	assert.NotEqual(t, a, b, "keys should be unique")
	assert.True(t, strings.HasPrefix(a, "images/product/"), a)
	assert.True(t, strings.HasSuffix(a, ".jpg"), a)
}
