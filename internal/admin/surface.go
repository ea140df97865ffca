// Package admin implements the admin editing surface. Every admin session
// gets a Surface holding draft copies of the content sections; drafts are
// committed to the content store together by SaveAll. Products, leads and
// images are handled one item at a time against the remote store.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gutoautopecas/internal/content"
	"gutoautopecas/internal/models"
	"gutoautopecas/internal/store"
)

// SaveStatus is the outcome of the last SaveAll.
type SaveStatus string

const (
	StatusIdle   SaveStatus = "idle"
	StatusSaving SaveStatus = "saving"
	StatusSaved  SaveStatus = "saved"
	StatusError  SaveStatus = "error"
)

// savedFor is how long StatusSaved is reported before going back to idle.
const savedFor = 2 * time.Second

// ErrCategoryNotFound is returned by category draft setters for an
// unknown category ID.
var ErrCategoryNotFound = errors.New("admin: category not found")

// ParseError reports a brands draft that is not a valid JSON list of
// brands. Nothing is saved when it occurs.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("admin: invalid brands JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Drafts is the editable copy of the content tree.
type Drafts struct {
	Version    uint64            `json:"version"`
	Hero       models.Hero       `json:"hero"`
	Contact    models.Contact    `json:"contact"`
	Logo       models.Logo       `json:"logo"`
	BrandsText string            `json:"brandsText"`
	Gallery    []string          `json:"gallery"`
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
	Status     SaveStatus        `json:"status"`
}

// Surface is the editing state of one admin session. It is safe for
// concurrent use.
type Surface struct {
	site     *content.Store
	products *store.ProductStore
	leads    *store.LeadStore
	uploader Uploader
	interval time.Duration

	mu       sync.Mutex
	drafts   Drafts
	status   SaveStatus
	savedAt  time.Time
	leadList []models.Lead
	poller   *LeadsPoller
	pollGen  uint64
}

func newSurface(w *Workspace) *Surface {
	s := &Surface{
		site:     w.site,
		products: w.products,
		leads:    w.leads,
		uploader: w.uploader,
		interval: w.pollInterval,
		status:   StatusIdle,
	}
	s.loadLocked()
	return s
}

// loadLocked replaces every draft with the store's current tree.
func (s *Surface) loadLocked() {
	version := s.site.Version()
	tree := s.site.Tree()
	s.drafts = Drafts{
		Version:    version,
		Hero:       tree.Hero,
		Contact:    tree.Contact,
		Logo:       tree.Logo,
		BrandsText: FormatBrands(tree.Brands),
		Gallery:    tree.About.Images,
		Categories: tree.Categories,
		Products:   tree.Products,
	}
}

// syncLocked reloads the drafts when the store changed since they were
// taken. Uncommitted edits are lost.
func (s *Surface) syncLocked() {
	if s.site.Version() != s.drafts.Version {
		slog.Debug("admin drafts resynced", "from", s.drafts.Version)
		s.loadLocked()
	}
}

// Resync reloads the drafts if the content store changed.
func (s *Surface) Resync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
}

// Drafts returns a copy of the current drafts.
func (s *Surface) Drafts() Drafts {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	d := s.drafts
	d.Gallery = append([]string(nil), d.Gallery...)
	d.Categories = append([]models.Category(nil), d.Categories...)
	d.Products = append([]models.Product(nil), d.Products...)
	d.Status = s.statusLocked()
	return d
}

// Status reports the outcome of the last SaveAll.
func (s *Surface) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Surface) statusLocked() SaveStatus {
	if s.status == StatusSaved && time.Since(s.savedAt) > savedFor {
		return StatusIdle
	}
	return s.status
}

// edit runs fn on the synced drafts under the lock and returns its error.
func (s *Surface) edit(fn func(d *Drafts) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	return fn(&s.drafts)
}

// update is edit for changes that cannot fail.
func (s *Surface) update(fn func(d *Drafts)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	fn(&s.drafts)
}

// SetHero replaces the hero draft.
func (s *Surface) SetHero(h models.Hero) {
	s.update(func(d *Drafts) { d.Hero = h })
}

// SetContact replaces the contact draft.
func (s *Surface) SetContact(c models.Contact) {
	s.update(func(d *Drafts) { d.Contact = c })
}

// SetLogo replaces the logo draft.
func (s *Surface) SetLogo(l models.Logo) {
	s.update(func(d *Drafts) { d.Logo = l })
}

// SetBrandsText replaces the brands draft. The text is only parsed by
// SaveAll.
func (s *Surface) SetBrandsText(text string) {
	s.update(func(d *Drafts) { d.BrandsText = text })
}

// AddGalleryImage appends url to the gallery draft.
func (s *Surface) AddGalleryImage(url string) {
	s.update(func(d *Drafts) {
		d.Gallery = append(append([]string(nil), d.Gallery...), url)
	})
}

// RemoveGalleryImage drops the image at index i from the gallery draft.
func (s *Surface) RemoveGalleryImage(i int) error {
	return s.edit(func(d *Drafts) error {
		if i < 0 || i >= len(d.Gallery) {
			return fmt.Errorf("admin: gallery index %d out of range", i)
		}
		g := make([]string, 0, len(d.Gallery)-1)
		g = append(g, d.Gallery[:i]...)
		d.Gallery = append(g, d.Gallery[i+1:]...)
		return nil
	})
}

// RenameCategory changes the name of a category draft.
func (s *Surface) RenameCategory(id, name string) error {
	return s.editCategory(id, func(c *models.Category) { c.Name = name })
}

// SetCategoryImage changes the image of a category draft.
func (s *Surface) SetCategoryImage(id, url string) error {
	return s.editCategory(id, func(c *models.Category) { c.Image = url })
}

// SetCategoryIcon changes the icon of a category draft. Unknown icon
// names fall back to the default icon.
func (s *Surface) SetCategoryIcon(id, icon string) error {
	return s.editCategory(id, func(c *models.Category) { c.Icon = models.ParseIcon(icon) })
}

func (s *Surface) editCategory(id string, fn func(*models.Category)) error {
	return s.edit(func(d *Drafts) error {
		cats := append([]models.Category(nil), d.Categories...)
		for i := range cats {
			if cats[i].ID == id {
				fn(&cats[i])
				d.Categories = cats
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, id)
	})
}

// SaveAll commits every draft to the content store. A brands draft that
// does not parse aborts the save with a *ParseError before anything is
// written. Otherwise the seven sections are updated concurrently; each
// persists on its own and a failed write does not roll back the others.
// The returned error covers only the parse and the in-memory updates.
func (s *Surface) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	s.syncLocked()
	d := s.drafts
	brands, err := ParseBrands(d.BrandsText)
	if err != nil {
		s.status = StatusError
		s.mu.Unlock()
		return err
	}
	s.status = StatusSaving
	s.mu.Unlock()

	updates := map[models.Section]any{
		models.SectionHero:       d.Hero,
		models.SectionContact:    d.Contact,
		models.SectionLogo:       d.Logo,
		models.SectionBrands:     brands,
		models.SectionAbout:      models.About{Images: orEmpty(d.Gallery)},
		models.SectionProducts:   orEmpty(d.Products),
		models.SectionCategories: orEmpty(d.Categories),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sec := range models.Sections {
		value := updates[sec]
		g.Go(func() error {
			_, err := s.site.UpdateSection(gctx, sec, value)
			return err
		})
	}
	err = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusError
		return fmt.Errorf("admin: save: %w", err)
	}
	s.status = StatusSaved
	s.savedAt = time.Now()
	return nil
}

// FormatBrands renders brands as the indented JSON text edited in the
// brands draft.
func FormatBrands(brands []models.Brand) string {
	b, err := json.MarshalIndent(orEmpty(brands), "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ParseBrands parses the brands draft text. It must be a JSON array of
// brand objects with no repeated IDs.
func ParseBrands(text string) ([]models.Brand, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, &ParseError{Err: errors.New("expected a JSON array")}
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	var brands []models.Brand
	if err := dec.Decode(&brands); err != nil {
		return nil, &ParseError{Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Err: errors.New("unexpected data after the array")}
	}
	seen := make(map[string]bool, len(brands))
	for _, b := range brands {
		if b.ID == "" {
			continue
		}
		if seen[b.ID] {
			return nil, &ParseError{Err: fmt.Errorf("duplicate brand id %q", b.ID)}
		}
		seen[b.ID] = true
	}
	return orEmpty(brands), nil
}

// orEmpty returns s, or an empty slice when s is nil, so cleared
// collections are written as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
