package admin

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gutoautopecas/internal/content"
	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/store"
)

// DefaultPollInterval is how often an active leads view refreshes.
const DefaultPollInterval = 30 * time.Second

// DefaultIdleTimeout drops a surface nobody has used for as long as an
// admin session lives without activity.
const DefaultIdleTimeout = 2 * time.Hour

// Uploader stores a processed image and returns its public URL.
// *storage.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithUploader sends attached images to u instead of inlining them as
// data URLs.
func WithUploader(u Uploader) Option {
	return func(w *Workspace) { w.uploader = u }
}

// WithPollInterval sets the leads refresh period.
func WithPollInterval(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithIdleTimeout sets how long a surface may go unused before Sweep
// discards it.
func WithIdleTimeout(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.idleTimeout = d
		}
	}
}

// Workspace keeps one Surface per admin session.
type Workspace struct {
	site         *content.Store
	products     *store.ProductStore
	leads        *store.LeadStore
	uploader     Uploader
	pollInterval time.Duration
	idleTimeout  time.Duration
	now          func() time.Time

	mu       sync.Mutex
	surfaces map[string]*Surface
	lastUsed map[string]time.Time
}

// NewWorkspace returns an empty registry editing site and writing
// products and leads through gw.
func NewWorkspace(site *content.Store, gw gateway.Gateway, opts ...Option) *Workspace {
	w := &Workspace{
		site:         site,
		products:     store.NewProductStore(gw),
		leads:        store.NewLeadStore(gw),
		pollInterval: DefaultPollInterval,
		idleTimeout:  DefaultIdleTimeout,
		now:          time.Now,
		surfaces:     make(map[string]*Surface),
		lastUsed:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Surface returns the surface of session id, creating it from the
// current content tree on first use. Every call counts as activity.
func (w *Workspace) Surface(id string) *Surface {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.surfaces[id]
	if !ok {
		s = newSurface(w)
		w.surfaces[id] = s
	}
	w.lastUsed[id] = w.now()
	return s
}

// Discard drops the surface of session id and stops its leads poller.
// Requests already in flight on it still complete.
func (w *Workspace) Discard(id string) {
	w.mu.Lock()
	s, ok := w.surfaces[id]
	delete(w.surfaces, id)
	delete(w.lastUsed, id)
	w.mu.Unlock()
	if ok {
		s.DeactivateLeads()
	}
}

// Close discards every surface.
func (w *Workspace) Close() {
	w.mu.Lock()
	surfaces := w.surfaces
	w.surfaces = make(map[string]*Surface)
	w.lastUsed = make(map[string]time.Time)
	w.mu.Unlock()
	for _, s := range surfaces {
		s.DeactivateLeads()
	}
}

// Sweep discards every surface unused for longer than the idle timeout
// and returns how many it dropped. Sessions that expire or tabs closed
// without logging out end up here.
func (w *Workspace) Sweep() int {
	cutoff := w.now().Add(-w.idleTimeout)
	var idle []*Surface
	w.mu.Lock()
	for id, at := range w.lastUsed {
		if at.Before(cutoff) {
			idle = append(idle, w.surfaces[id])
			delete(w.surfaces, id)
			delete(w.lastUsed, id)
		}
	}
	w.mu.Unlock()
	for _, s := range idle {
		s.DeactivateLeads()
	}
	if len(idle) > 0 {
		slog.Info("idle admin surfaces discarded", "count", len(idle))
	}
	return len(idle)
}

// Run sweeps idle surfaces every interval until ctx is done.
func (w *Workspace) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Len returns the number of live surfaces.
func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.surfaces)
}
