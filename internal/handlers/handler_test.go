package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"gutoautopecas/internal/admin"
	"gutoautopecas/internal/content"
	"gutoautopecas/internal/gate"
	"gutoautopecas/internal/gateway/gatewaytest"
	"gutoautopecas/internal/middleware"
	"gutoautopecas/internal/render"
	"gutoautopecas/internal/session"
)

const testPassword = "oficina123"

// fakeSessions hands out fixed session IDs and records destroyed ones.
type fakeSessions struct {
	mu        sync.Mutex
	created   []*session.Data
	destroyed []string
	failWith  error
}

func (f *fakeSessions) Create(_ context.Context, _ http.ResponseWriter, data *session.Data) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	f.created = append(f.created, data)
	return "sess-test", nil
}

func (f *fakeSessions) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, "sess-test")
	return "sess-test", nil
}

// memoryPages is an in-process PageCacher.
type memoryPages struct {
	mu    sync.Mutex
	pages map[string][]byte
	hits  int
}

func newMemoryPages() *memoryPages {
	return &memoryPages{pages: make(map[string][]byte)}
}

func (m *memoryPages) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[key]
	if ok {
		m.hits++
	}
	return p, ok
}

func (m *memoryPages) Set(_ context.Context, key string, html []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[key] = html
}

type testEnv struct {
	Mem       *gatewaytest.Memory
	Site      *content.Store
	Renderer  *render.Renderer
	Workspace *admin.Workspace
	Sessions  *fakeSessions
	Pages     *memoryPages
	Admin     *Admin
	Auth      *Auth
	Public    *Public
}

// newTestEnv wires every handler group against an in-memory gateway.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := gatewaytest.NewMemory()
	site := content.New(mem)
	if err := site.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	renderer, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	checker, err := gate.New(gate.SHA256Hex(testPassword))
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}

	ws := admin.NewWorkspace(site, mem, admin.WithPollInterval(time.Hour))
	sessions := &fakeSessions{}
	pages := newMemoryPages()

	t.Cleanup(func() {
		ws.Close()
		_ = site.Drain(context.Background())
	})

	return &testEnv{
		Mem:       mem,
		Site:      site,
		Renderer:  renderer,
		Workspace: ws,
		Sessions:  sessions,
		Pages:     pages,
		Admin:     NewAdmin(renderer, ws, site),
		Auth:      NewAuth(renderer, sessions, checker, ws),
		Public:    NewPublic(renderer, site, mem, pages, 0),
	}
}

// adminSession returns the session of a logged-in admin.
func adminSession(id string) *session.Data {
	return &session.Data{ID: id, Admin: true, CreatedAt: time.Now()}
}

// asAdmin attaches an admin session and chi URL parameters, given as
// key, value pairs, to r.
func asAdmin(r *http.Request, params ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithSession(ctx, adminSession("sess-1"))
	return r.WithContext(ctx)
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}
