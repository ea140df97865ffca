package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/models"
)

// SyncState tracks one section against the remote store.
type SyncState int

const (
	// Synced means the in-memory section matches what was last written.
	Synced SyncState = iota
	// Dirty means a write for the section is in flight.
	Dirty
	// Reconciling means a write failed and the tree is being refetched.
	Reconciling
)

func (s SyncState) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Reconciling:
		return "reconciling"
	}
	return "synced"
}

// Pending is the handle of a background section write.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) finish(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the write has finished, including any reconciling
// refetch.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Err returns the write error. Only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the write finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SectionState returns the sync state of a section.
func (s *Store) SectionState(sec models.Section) SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[sec]
}

// UpdateSection applies data to the tree at once and persists it in the
// background. Object sections are shallow-merged: only keys present in
// data overwrite. Collections are replaced. data may be a typed value, a
// map or raw JSON.
//
// Products are only updated in memory. Their rows are written by the
// admin product editor, one product at a time.
//
// A failed write is logged, the section goes to Reconciling and the whole
// tree is refetched. The returned handle reports the outcome; callers may
// ignore it.
func (s *Store) UpdateSection(ctx context.Context, sec models.Section, data any) (*Pending, error) {
	if !sec.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, sec)
	}
	patch, err := encodePatch(data)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", sec, err)
	}

	s.mu.Lock()
	next := s.tree.Clone()
	if err := apply(&next, sec, patch); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("update %s: %w", sec, err)
	}
	s.tree = next
	s.version++
	s.edits[sec]++

	p := newPending()
	if sec == models.SectionProducts {
		s.mu.Unlock()
		s.notify()
		p.finish(nil)
		return p, nil
	}

	s.pending[sec]++
	s.states[sec] = Dirty
	value := sectionValue(next, sec)
	s.mu.Unlock()
	s.notify()

	s.writes.Add(1)
	go s.persist(context.WithoutCancel(ctx), sec, value, p)
	return p, nil
}

// Drain waits for every background write to finish.
func (s *Store) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.writes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) persist(ctx context.Context, sec models.Section, value any, p *Pending) {
	defer s.writes.Done()

	err := s.write(ctx, sec, value)
	if err != nil {
		slog.Error("persist section failed, refetching", "section", sec, "error", err)
		// Released before the refetch so the failed section is read back.
		// A later write still in flight keeps it Dirty and local.
		s.mu.Lock()
		s.release(sec)
		if s.pending[sec] == 0 {
			s.states[sec] = Reconciling
		}
		s.mu.Unlock()
		if ferr := s.FetchAll(ctx); ferr != nil {
			slog.Error("reconcile fetch failed", "section", sec, "error", ferr)
		}
		s.mu.Lock()
		if s.pending[sec] == 0 {
			s.states[sec] = Synced
		}
		s.mu.Unlock()
	} else {
		s.mu.Lock()
		s.release(sec)
		s.mu.Unlock()
	}

	p.finish(err)
}

// release ends one in-flight write of sec. Must be called with s.mu held.
func (s *Store) release(sec models.Section) {
	s.pending[sec]--
	if s.pending[sec] <= 0 {
		delete(s.pending, sec)
		s.states[sec] = Synced
	}
}

func (s *Store) write(ctx context.Context, sec models.Section, value any) error {
	switch sec {
	case models.SectionCategories:
		cats := value.([]models.Category)
		rows := make([]gateway.Row, len(cats))
		for i, c := range cats {
			rows[i] = categoryRow(c, i)
		}
		return s.syncCollection(ctx, gateway.TableCategories, rows)
	case models.SectionBrands:
		brands := value.([]models.Brand)
		rows := make([]gateway.Row, len(brands))
		for i, b := range brands {
			rows[i] = brandRow(b, i)
		}
		return s.syncCollection(ctx, gateway.TableBrands, rows)
	}
	return s.gw.Upsert(ctx, gateway.TableSiteContent, "section", sectionRow(sec, value))
}

func sectionRow(sec models.Section, value any) gateway.Row {
	return gateway.Row{
		"section":    string(sec),
		"data":       value,
		"updated_at": time.Now(),
	}
}

// syncCollection makes table hold exactly rows: upsert by id first, then
// delete whatever ids are no longer present. Readers never see the
// collection empty in between.
func (s *Store) syncCollection(ctx context.Context, table string, rows []gateway.Row) error {
	if len(rows) > 0 {
		if err := s.gw.Upsert(ctx, table, "id", rows...); err != nil {
			return fmt.Errorf("upsert %s: %w", table, err)
		}
	}
	if err := s.deleteExcept(ctx, table, rows); err != nil {
		return fmt.Errorf("delete removed %s: %w", table, err)
	}
	return nil
}

func encodePatch(data any) (json.RawMessage, error) {
	switch v := data.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, errors.New("invalid JSON")
		}
		return v, nil
	case []byte:
		if !json.Valid(v) {
			return nil, errors.New("invalid JSON")
		}
		return json.RawMessage(v), nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// apply mutates tree with patch: a shallow merge for object sections, a
// replacement for collections.
func apply(tree *models.ContentTree, sec models.Section, patch json.RawMessage) error {
	trimmed := bytes.TrimSpace(patch)
	if sec.IsObject() {
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return errors.New("object section needs a JSON object")
		}
		return json.Unmarshal(trimmed, objectField(tree, sec))
	}
	if len(trimmed) == 0 || (trimmed[0] != '[' && !bytes.Equal(trimmed, []byte("null"))) {
		return errors.New("collection section needs a JSON array")
	}

	switch sec {
	case models.SectionBrands:
		var brands []models.Brand
		if err := json.Unmarshal(trimmed, &brands); err != nil {
			return err
		}
		tree.Brands = AssignBrandIDs(brands)
	case models.SectionCategories:
		var cats []models.Category
		if err := json.Unmarshal(trimmed, &cats); err != nil {
			return err
		}
		for i := range cats {
			if cats[i].ID == "" {
				cats[i].ID = uuid.NewString()
			}
			cats[i].Icon = cats[i].Icon.Resolve()
		}
		tree.Categories = cats
	case models.SectionProducts:
		var products []models.Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return err
		}
		for i := range products {
			if products[i].ID == "" {
				products[i].ID = uuid.NewString()
			}
		}
		tree.Products = products
	}
	return nil
}

// sectionValue returns the persisted form of a section.
func sectionValue(tree models.ContentTree, sec models.Section) any {
	switch sec {
	case models.SectionLogo:
		return tree.Logo
	case models.SectionHero:
		return tree.Hero
	case models.SectionAbout:
		return models.About{Images: append([]string(nil), tree.About.Images...)}
	case models.SectionContact:
		return tree.Contact
	case models.SectionBrands:
		return append([]models.Brand(nil), tree.Brands...)
	case models.SectionCategories:
		return append([]models.Category(nil), tree.Categories...)
	}
	return append([]models.Product(nil), tree.Products...)
}
