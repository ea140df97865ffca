// Package router sets up all HTTP routes and middleware chains for the
// Guto Auto Peças site. It organizes routes into public and admin groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gutoautopecas/internal/handlers"
	"gutoautopecas/internal/middleware"
	"gutoautopecas/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The limiter guards the form submissions and
// the admin login; it may be nil.
func New(sessions middleware.SessionGetter, limiter *middleware.RateLimiter, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check and static assets: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", staticHandler())

	limited := func(h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return limiter.Middleware(h)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))
		r.Use(middleware.LoadSession(sessions))

		// Public site.
		r.Get("/", public.Home)
		r.Get("/catalogo", public.Catalog)
		r.Get("/orcamento", public.BudgetPage)
		r.Method(http.MethodPost, "/orcamento", limited(public.BudgetSubmit))
		r.Method(http.MethodPost, "/contato", limited(public.ContactSubmit))
		r.Get("/api/search", public.Search)
		r.Get("/api/content", public.Content)

		r.Route("/admin", func(r chi.Router) {
			// Gate: accessible without a session.
			r.Get("/login", auth.LoginPage)
			r.Method(http.MethodPost, "/login", limited(auth.LoginSubmit))
			r.Post("/logout", auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/", admin.Dashboard)

				r.Route("/api", func(r chi.Router) {
					r.Get("/drafts", admin.Drafts)
					r.Put("/drafts/{section}", admin.UpdateDraft)
					r.Post("/drafts/gallery", admin.AddGalleryImage)
					r.Delete("/drafts/gallery/{index}", admin.RemoveGalleryImage)
					r.Patch("/drafts/categories/{id}", admin.UpdateCategory)

					r.Post("/images/{field}", admin.UploadImage)
					r.Post("/save", admin.SaveAll)
					r.Post("/reset", admin.Reset)

					r.Route("/products", func(r chi.Router) {
						r.Get("/", admin.Products)
						r.Get("/editor", admin.ProductEditor)
						r.Put("/{id}", admin.SaveProduct)
						r.Delete("/{id}", admin.DeleteProduct)
					})

					r.Route("/leads", func(r chi.Router) {
						r.Get("/", admin.Leads)
						r.Delete("/poll", admin.StopLeads)
						r.Post("/{id}/read", admin.MarkLeadRead)
						r.Delete("/{id}", admin.DeleteLead)
					})
				})
			})
		})
	})

	return r
}

// staticHandler serves the embedded web/static tree under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("router: embedded static tree missing: " + err.Error())
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
