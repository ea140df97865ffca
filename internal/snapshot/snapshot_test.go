package snapshot

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gutoautopecas/internal/models"
)

func defaultsTree() models.ContentTree {
	return models.ContentTree{
		Logo: models.Logo{URL: ""},
		Hero: models.Hero{Badge: "Padrão", TitleLine1: "SUA PEÇA", TitleLine2: "ESTÁ AQUI."},
		About: models.About{Images: []string{"a.jpg", "b.jpg"}},
		Contact: models.Contact{
			Whatsapp: "5521970281814",
			Address1: "Rua Picuí, 869",
		},
		Brands:     []models.Brand{{ID: "ford", Name: "Ford"}},
		Products:   []models.Product{{ID: "1", Name: "Pastilha", InStock: true}},
		Categories: []models.Category{{ID: "1", Name: "Freios", Icon: models.IconDisc}},
	}
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadTree(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, ok, err := s.LoadTree(ctx, defaultsTree())
	require.NoError(t, err)
	assert.False(t, ok, "empty snapshot")

	saved := defaultsTree()
	saved.Hero.Badge = "Salvo"
	saved.Products = append(saved.Products, models.Product{ID: "2", Name: "Amortecedor"})
	require.NoError(t, s.Save(ctx, saved))

	// A second save overwrites the first.
	saved.Hero.Badge = "Salvo de novo"
	require.NoError(t, s.Save(ctx, saved))

	got, ok, err := s.LoadTree(ctx, defaultsTree())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved, got)
}

func TestClear(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, defaultsTree()))
	require.NoError(t, s.Clear(ctx))

	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		saved string
		check func(t *testing.T, got models.ContentTree)
	}{
		{
			name:  "missing hero keys keep defaults",
			saved: `{"hero":{"badge":"Antigo"}}`,
			check: func(t *testing.T, got models.ContentTree) {
				assert.Equal(t, "Antigo", got.Hero.Badge)
				assert.Equal(t, "SUA PEÇA", got.Hero.TitleLine1)
			},
		},
		{
			name:  "empty about images fall back to defaults",
			saved: `{"about":{"images":[]}}`,
			check: func(t *testing.T, got models.ContentTree) {
				assert.Equal(t, []string{"a.jpg", "b.jpg"}, got.About.Images)
			},
		},
		{
			name:  "empty collections keep defaults",
			saved: `{"products":[],"brands":[],"categories":[]}`,
			check: func(t *testing.T, got models.ContentTree) {
				assert.Equal(t, defaultsTree().Products, got.Products)
				assert.Equal(t, defaultsTree().Brands, got.Brands)
				assert.Equal(t, defaultsTree().Categories, got.Categories)
			},
		},
		{
			name:  "non-empty collections replace wholesale",
			saved: `{"brands":[{"name":"Fiat","logo":"f.png"}],"categories":[{"id":"9","name":"Outros","icon":"Rocket"}]}`,
			check: func(t *testing.T, got models.ContentTree) {
				assert.Equal(t, []models.Brand{{Name: "Fiat", Logo: "f.png"}}, got.Brands)
				require.Len(t, got.Categories, 1)
				assert.Equal(t, models.IconBox, got.Categories[0].Icon, "unknown icons resolve to the default")
			},
		},
		{
			name:  "contact partial",
			saved: `{"contact":{"whatsapp":"5521900000000"}}`,
			check: func(t *testing.T, got models.ContentTree) {
				assert.Equal(t, "5521900000000", got.Contact.Whatsapp)
				assert.Equal(t, "Rua Picuí, 869", got.Contact.Address1)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(defaultsTree(), []byte(tt.saved))
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestMergeMalformed(t *testing.T) {
	got, err := Merge(defaultsTree(), []byte(`{"hero":`))
	assert.Error(t, err)
	assert.Equal(t, defaultsTree(), got)
}

// changingTree is a Source whose tree is replaced by hand.
type changingTree struct {
	mu       sync.Mutex
	tree     models.ContentTree
	degraded bool
	changes  chan struct{}
}

func (c *changingTree) Subscribe() (<-chan struct{}, func()) {
	return c.changes, func() {}
}

func (c *changingTree) Tree() models.ContentTree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Clone()
}

func (c *changingTree) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

func (c *changingTree) set(tree models.ContentTree, degraded bool) {
	c.mu.Lock()
	c.tree = tree
	c.degraded = degraded
	c.mu.Unlock()
	c.changes <- struct{}{}
}

func TestFollowSavesOnChange(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &changingTree{tree: defaultsTree(), changes: make(chan struct{}, 1)}
	done := make(chan struct{})
	go func() {
		s.Follow(ctx, src)
		close(done)
	}()

	edited := defaultsTree()
	edited.Hero.Badge = "Promoção"
	src.set(edited, false)

	require.Eventually(t, func() bool {
		tree, ok, err := s.LoadTree(context.Background(), defaultsTree())
		return err == nil && ok && tree.Hero.Badge == "Promoção"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestFollowSkipsDegradedTree(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &changingTree{tree: defaultsTree(), changes: make(chan struct{}, 1)}
	done := make(chan struct{})
	go func() {
		s.Follow(ctx, src)
		close(done)
	}()

	good := defaultsTree()
	good.Products = []models.Product{{ID: "9", Name: "Radiador", InStock: true}}
	src.set(good, false)
	require.Eventually(t, func() bool {
		tree, ok, err := s.LoadTree(context.Background(), defaultsTree())
		return err == nil && ok && len(tree.Products) == 1 && tree.Products[0].Name == "Radiador"
	}, 2*time.Second, 10*time.Millisecond)

	// A fetch whose products read failed leaves the default products in
	// the tree. Each send blocks until the previous change was taken, so
	// after the third the first has been handled.
	partial := good.Clone()
	partial.Products = defaultsTree().Products
	for range 3 {
		src.set(partial, true)
	}

	tree, ok, err := s.LoadTree(context.Background(), defaultsTree())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Radiador", tree.Products[0].Name, "degraded tree must not replace the snapshot")

	cancel()
	<-done
}
