package content

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"gutoautopecas/internal/models"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var loadDefaults = sync.OnceValues(func() (models.ContentTree, error) {
	return ParseDefaults(defaultsYAML)
})

// ParseDefaults decodes a content tree from YAML and normalizes category
// icons.
func ParseDefaults(data []byte) (models.ContentTree, error) {
	var tree models.ContentTree
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return models.ContentTree{}, fmt.Errorf("parse defaults: %w", err)
	}
	for i := range tree.Categories {
		tree.Categories[i].Icon = tree.Categories[i].Icon.Resolve()
	}
	tree.Brands = AssignBrandIDs(tree.Brands)
	return tree, nil
}

// Defaults returns a fresh copy of the built-in content tree.
func Defaults() models.ContentTree {
	tree, err := loadDefaults()
	if err != nil {
		// The file is embedded at build time, so this only fires on a broken build.
		panic(err)
	}
	return tree.Clone()
}
