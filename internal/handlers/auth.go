package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gutoautopecas/internal/admin"
	"gutoautopecas/internal/gate"
	"gutoautopecas/internal/middleware"
	"gutoautopecas/internal/render"
	"gutoautopecas/internal/session"
)

// SessionManager creates and destroys admin sessions. *session.Store
// implements it.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error)
}

// Auth groups the admin gate handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  SessionManager
	gate      *gate.Checker
	workspace *admin.Workspace
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions SessionManager, checker *gate.Checker, workspace *admin.Workspace) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		gate:      checker,
		workspace: workspace,
	}
}

// LoginPage renders the password form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.Admin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{Title: "Entrar"})
}

// LoginSubmit checks the shared admin password and opens a session.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := a.gate.Check(r.FormValue("password")); err != nil {
		if !errors.Is(err, gate.ErrInvalidPassword) {
			slog.Error("admin gate check failed", "error", err)
		}
		slog.Warn("admin login rejected", "remote", r.RemoteAddr)
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "login", &render.PageData{
			Title: "Entrar",
			Data:  map[string]any{"Error": "Senha incorreta."},
		})
		return
	}

	id, err := a.sessions.Create(r.Context(), w, &session.Data{Admin: true})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Drafts start from the current content tree.
	a.workspace.Surface(id)
	slog.Info("admin logged in", "remote", r.RemoteAddr)

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout destroys the session, discards its drafts and redirects to the
// login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	id, err := a.sessions.Destroy(r.Context(), w, r)
	if err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	if id != "" {
		a.workspace.Discard(id)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
