// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content holds the in-memory content tree every page renders
// from. The tree is assembled from several remote tables, mutated through
// UpdateSection and written back one section at a time.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/models"
)

// ErrUnknownSection is returned for a section name outside models.Sections.
var ErrUnknownSection = errors.New("unknown content section")

// Status is the lifecycle of the store.
type Status int

const (
	// StatusLoading means the first FetchAll has not finished. The tree
	// holds the defaults meanwhile.
	StatusLoading Status = iota
	// StatusReady means at least one FetchAll finished, successfully or not.
	StatusReady
)

func (s Status) String() string {
	if s == StatusReady {
		return "ready"
	}
	return "loading"
}

// Snapshot is an offline copy of the tree, used when the remote store is
// unreachable.
type Snapshot interface {
	Save(ctx context.Context, tree models.ContentTree) error
	LoadTree(ctx context.Context, defaults models.ContentTree) (models.ContentTree, bool, error)
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshot enables the offline snapshot.
func WithSnapshot(snap Snapshot) Option {
	return func(s *Store) { s.snapshot = snap }
}

// WithDefaults replaces the built-in defaults.
func WithDefaults(tree models.ContentTree) Option {
	return func(s *Store) { s.defaults = tree.Clone() }
}

// Store is the process-wide content tree. It is safe for concurrent use.
type Store struct {
	gw       gateway.Gateway
	snapshot Snapshot
	defaults models.ContentTree

	mu      sync.RWMutex
	tree    models.ContentTree
	version uint64
	status  Status
	states  map[models.Section]SyncState
	pending map[models.Section]int
	// edits counts local changes per section. FetchAll compares it across
	// its reads to spot sections edited while the selects were running.
	edits    map[models.Section]uint64
	degraded bool

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}

	writes sync.WaitGroup
}

// New returns a loading store holding the defaults. Call FetchAll to load
// remote content.
func New(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{
		gw:       gw,
		defaults: Defaults(),
		states:   make(map[models.Section]SyncState),
		pending:  make(map[models.Section]int),
		edits:    make(map[models.Section]uint64),
		subs:     make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tree = s.defaults.Clone()
	return s
}

// Tree returns a deep copy of the current tree.
func (s *Store) Tree() models.ContentTree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Clone()
}

// Version increments every time the tree is replaced. Callers holding a
// copy compare versions to detect external changes.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Status reports whether the first fetch has completed.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Degraded reports whether the tree may hold defaults in place of remote
// data: the last FetchAll failed for some table, or the tree came from the
// offline snapshot. It clears on the next fully successful FetchAll.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Defaults returns a copy of the tree used for missing remote data.
func (s *Store) Defaults() models.ContentTree {
	return s.defaults.Clone()
}

// Subscribe returns a channel that receives a value after every tree
// change. Notifications coalesce: a slow reader sees one pending signal,
// not one per change. Call unsubscribe to close the channel.
func (s *Store) Subscribe() (ch <-chan struct{}, unsubscribe func()) {
	c := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs[c] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, c)
			close(c)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for c := range s.subs {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}

type readResult struct {
	rows []gateway.Row
	err  error
}

// FetchAll reads every content table in parallel and rebuilds the tree.
// Object sections are merged over the defaults so fields missing from
// older rows keep their default value. A collection replaces the default
// only when the remote table has rows. Tables that fail to load keep their
// current value. A section with a write in flight when the reads start,
// or edited while they run, keeps its local value. The store becomes ready
// even on error; the first error is returned after being logged.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.RLock()
	seen, inflight := s.editMarks()
	s.mu.RUnlock()

	var (
		g                                      errgroup.Group
		sections, products, categories, brands readResult
	)
	byOrder := []gateway.Order{{Column: "display_order"}}
	read := func(dst *readResult, table string, q gateway.Query) {
		g.Go(func() error {
			rows, err := s.gw.Select(ctx, table, q)
			if err != nil {
				slog.Error("fetch table failed", "table", table, "error", err)
				dst.err = err
				return err
			}
			dst.rows = rows
			return nil
		})
	}
	read(&sections, gateway.TableSiteContent, gateway.Query{})
	read(&products, gateway.TableProducts, gateway.Query{
		Order: []gateway.Order{{Column: "display_order"}, {Column: "created_at"}},
	})
	read(&categories, gateway.TableCategories, gateway.Query{Order: byOrder})
	read(&brands, gateway.TableBrands, gateway.Query{Order: byOrder})
	err := g.Wait()

	results := []readResult{sections, products, categories, brands}
	if allUnreachable(results) && s.snapshot != nil {
		if s.loadSnapshot(ctx) {
			return err
		}
	}

	s.mu.Lock()
	local := func(sec models.Section) bool {
		return inflight[sec] || s.states[sec] == Dirty || s.edits[sec] != seen[sec]
	}
	next := s.tree.Clone()
	if sections.err == nil {
		s.mergeSections(&next, sections.rows, local)
	}
	if products.err == nil && !local(models.SectionProducts) {
		if len(products.rows) > 0 {
			next.Products = make([]models.Product, 0, len(products.rows))
			for _, r := range products.rows {
				next.Products = append(next.Products, productFromRow(r))
			}
		} else {
			next.Products = s.defaults.Clone().Products
		}
	}
	if categories.err == nil && !local(models.SectionCategories) {
		if len(categories.rows) > 0 {
			next.Categories = make([]models.Category, 0, len(categories.rows))
			for _, r := range categories.rows {
				next.Categories = append(next.Categories, categoryFromRow(r))
			}
		} else {
			next.Categories = s.defaults.Clone().Categories
		}
	}
	if brands.err == nil && !local(models.SectionBrands) {
		if len(brands.rows) > 0 {
			next.Brands = make([]models.Brand, 0, len(brands.rows))
			for _, r := range brands.rows {
				next.Brands = append(next.Brands, brandFromRow(r))
			}
		} else {
			next.Brands = s.defaults.Clone().Brands
		}
	}
	s.tree = next
	s.version++
	s.status = StatusReady
	s.degraded = err != nil
	s.mu.Unlock()
	s.notify()

	if err != nil {
		return fmt.Errorf("fetch content: %w", err)
	}

	if s.snapshot != nil {
		if serr := s.snapshot.Save(ctx, next); serr != nil {
			slog.Warn("content snapshot save failed", "error", serr)
		}
	}
	slog.Debug("content fetched", "products", len(next.Products), "categories", len(next.Categories), "brands", len(next.Brands))
	return nil
}

// editMarks copies the edit counters and the set of sections with a write
// in flight. A read issued before such a write lands may return the old
// row even if the write has finished by merge time. Must be called with
// s.mu held.
func (s *Store) editMarks() (map[models.Section]uint64, map[models.Section]bool) {
	marks := make(map[models.Section]uint64, len(s.edits))
	for sec, n := range s.edits {
		marks[sec] = n
	}
	inflight := make(map[models.Section]bool, len(s.pending))
	for sec := range s.pending {
		inflight[sec] = true
	}
	return marks, inflight
}

// mergeSections rebuilds every object section from its default plus the
// stored row. Sections for which local reports true are left alone.
// Must be called with s.mu held.
func (s *Store) mergeSections(next *models.ContentTree, rows []gateway.Row, local func(models.Section) bool) {
	stored := make(map[models.Section]json.RawMessage, len(rows))
	for _, r := range rows {
		stored[models.Section(r.String("section"))] = r.JSON("data")
	}
	defaults := s.defaults.Clone()
	for _, sec := range models.ObjectSections {
		if local(sec) {
			continue
		}
		copyObject(next, &defaults, sec)
		data, ok := stored[sec]
		if !ok || len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, objectField(next, sec)); err != nil {
			slog.Warn("ignoring malformed section row", "section", sec, "error", err)
			copyObject(next, &defaults, sec)
		}
	}
}

func allUnreachable(results []readResult) bool {
	for _, r := range results {
		if r.err == nil || !gateway.IsConnection(r.err) {
			return false
		}
	}
	return true
}

// loadSnapshot replaces the tree with the offline copy. It reports whether
// a snapshot was found.
func (s *Store) loadSnapshot(ctx context.Context) bool {
	tree, ok, err := s.snapshot.LoadTree(ctx, s.defaults.Clone())
	if err != nil {
		slog.Error("content snapshot load failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	s.mu.Lock()
	s.tree = tree
	s.version++
	s.status = StatusReady
	s.degraded = true
	s.mu.Unlock()
	s.notify()
	slog.Warn("remote store unreachable, serving content snapshot")
	return true
}

// objectField returns a pointer to the object section inside tree.
func objectField(tree *models.ContentTree, sec models.Section) any {
	switch sec {
	case models.SectionLogo:
		return &tree.Logo
	case models.SectionHero:
		return &tree.Hero
	case models.SectionAbout:
		return &tree.About
	case models.SectionContact:
		return &tree.Contact
	}
	return nil
}

func copyObject(dst, src *models.ContentTree, sec models.Section) {
	switch sec {
	case models.SectionLogo:
		dst.Logo = src.Logo
	case models.SectionHero:
		dst.Hero = src.Hero
	case models.SectionAbout:
		dst.About.Images = append([]string(nil), src.About.Images...)
	case models.SectionContact:
		dst.Contact = src.Contact
	}
}
