package gateway

import (
	"encoding/json"
	"fmt"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindInt
	KindTime
	KindJSON
)

// Column is one whitelisted column.
type Column struct {
	Name string
	Kind Kind
}

// Table is a whitelisted table with its primary key.
type Table struct {
	Name    string
	Key     string
	Columns []Column
}

// Column returns the named column and whether it exists.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Table names.
const (
	TableSiteContent  = "site_content"
	TableProducts     = "products"
	TableCategories   = "categories"
	TableBrands       = "brands"
	TableLeads        = "leads"
	TableHeroCarousel = "hero_carousel"
)

// schema mirrors database/migrations. Statements are only ever built from
// these names, never from caller strings.
var schema = map[string]Table{
	TableSiteContent: {Name: TableSiteContent, Key: "section", Columns: []Column{
		{"section", KindText}, {"data", KindJSON}, {"updated_at", KindTime},
	}},
	TableProducts: {Name: TableProducts, Key: "id", Columns: []Column{
		{"id", KindText}, {"name", KindText}, {"category", KindText}, {"brand", KindText},
		{"price", KindText}, {"image", KindText}, {"description", KindText},
		{"in_stock", KindBool}, {"display_order", KindInt}, {"created_at", KindTime},
	}},
	TableCategories: {Name: TableCategories, Key: "id", Columns: []Column{
		{"id", KindText}, {"name", KindText}, {"icon", KindText}, {"image", KindText},
		{"display_order", KindInt},
	}},
	TableBrands: {Name: TableBrands, Key: "id", Columns: []Column{
		{"id", KindText}, {"name", KindText}, {"logo", KindText}, {"display_order", KindInt},
	}},
	TableLeads: {Name: TableLeads, Key: "id", Columns: []Column{
		{"id", KindText}, {"name", KindText}, {"phone", KindText}, {"email", KindText},
		{"message", KindText}, {"created_at", KindTime}, {"read", KindBool},
	}},
	TableHeroCarousel: {Name: TableHeroCarousel, Key: "id", Columns: []Column{
		{"id", KindText}, {"image_url", KindText}, {"order_index", KindInt}, {"active", KindBool},
	}},
}

// LookupTable returns the whitelisted table definition.
func LookupTable(name string) (Table, error) {
	t, ok := schema[name]
	if !ok {
		return Table{}, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

// checkColumns verifies every key of m is a column of t.
func checkColumns[M ~map[string]any](t Table, m M) error {
	for name := range m {
		if name == matchAllKey {
			continue
		}
		if _, ok := t.Column(name); !ok {
			return fmt.Errorf("unknown column %q on %s", name, t.Name)
		}
	}
	return nil
}

// EncodeJSON turns a JSON column value into raw bytes. Raw messages and
// byte slices pass through unchanged.
func EncodeJSON(v any) (json.RawMessage, error) {
	switch val := v.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case json.RawMessage:
		return val, nil
	case []byte:
		return json.RawMessage(val), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return b, nil
}
