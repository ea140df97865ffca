package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gutoautopecas/internal/session"
)

// stubSessions returns a fixed session or error.
type stubSessions struct {
	data *session.Data
	err  error
}

func (s stubSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return s.data, s.err
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// ---------- SessionFromCtx ----------

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := &session.Data{ID: "abc", Admin: true}
		got := SessionFromCtx(WithSession(context.Background(), sess))
		if got != sess {
			t.Fatalf("expected %+v, got %+v", sess, got)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

// ---------- LoadSession ----------

func TestLoadSession(t *testing.T) {
	tests := []struct {
		name    string
		store   stubSessions
		wantSes bool
	}{
		{"session found", stubSessions{data: &session.Data{ID: "s1", Admin: true}}, true},
		{"no session", stubSessions{}, false},
		{"store error is treated as anonymous", stubSessions{err: errors.New("valkey down")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *session.Data
			called := false
			handler := LoadSession(tt.store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got = SessionFromCtx(r.Context())
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))

			if !called {
				t.Fatal("next handler should have been called")
			}
			if (got != nil) != tt.wantSes {
				t.Errorf("session present = %v, want %v", got != nil, tt.wantSes)
			}
		})
	}
}

// ---------- RequireAdmin ----------

func TestRequireAdmin(t *testing.T) {
	t.Run("redirects page requests to login without session", func(t *testing.T) {
		inner, called := okHandler()
		rr := httptest.NewRecorder()
		RequireAdmin(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))

		if *called {
			t.Error("next handler should not be called")
		}
		if rr.Code != http.StatusSeeOther {
			t.Errorf("status: got %d, want %d", rr.Code, http.StatusSeeOther)
		}
		if loc := rr.Header().Get("Location"); loc != "/admin/login" {
			t.Errorf("Location: got %q, want /admin/login", loc)
		}
	})

	t.Run("rejects API calls with 401 JSON", func(t *testing.T) {
		inner, called := okHandler()
		rr := httptest.NewRecorder()
		RequireAdmin(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/api/save", nil))

		if *called {
			t.Error("next handler should not be called")
		}
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q", ct)
		}
		if !strings.Contains(rr.Body.String(), "error") {
			t.Errorf("body should carry an error, got %q", rr.Body.String())
		}
	})

	t.Run("rejects non-admin session", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/admin/api/drafts", nil)
		req = req.WithContext(WithSession(req.Context(), &session.Data{ID: "x"}))
		rr := httptest.NewRecorder()
		RequireAdmin(inner).ServeHTTP(rr, req)

		if *called || rr.Code != http.StatusUnauthorized {
			t.Errorf("called=%v status=%d, want rejection", *called, rr.Code)
		}
	})

	t.Run("passes admin session", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/admin/api/drafts", nil)
		req = req.WithContext(WithSession(req.Context(), &session.Data{ID: "x", Admin: true}))
		rr := httptest.NewRecorder()
		RequireAdmin(inner).ServeHTTP(rr, req)

		if !*called || rr.Code != http.StatusOK {
			t.Errorf("called=%v status=%d, want pass-through", *called, rr.Code)
		}
	})
}
