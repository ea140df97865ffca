package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/gateway/gatewaytest"
)

func TestHeroSlideStoreListActive(t *testing.T) {
	mem := gatewaytest.NewMemory()
	mem.Seed(gateway.TableHeroCarousel,
		gateway.Row{"id": "b", "image_url": "b.jpg", "order_index": 2, "active": true},
		gateway.Row{"id": "off", "image_url": "off.jpg", "order_index": 0, "active": false},
		gateway.Row{"id": "a", "image_url": "a.jpg", "order_index": 1, "active": true},
	)

	slides, err := NewHeroSlideStore(mem).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "a", slides[0].ID)
	assert.Equal(t, 1, slides[0].OrderIndex)
	assert.Equal(t, "b.jpg", slides[1].ImageURL)
}
