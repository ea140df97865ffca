// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"gutoautopecas/internal/cache"
	"gutoautopecas/internal/catalog"
	"gutoautopecas/internal/content"
	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/middleware"
	"gutoautopecas/internal/models"
	"gutoautopecas/internal/render"
	"gutoautopecas/internal/store"
)

// DefaultHeroInterval is how often the hero background advances.
const DefaultHeroInterval = 2 * time.Second

// galleryInterval rotates the about gallery.
const galleryInterval = 4 * time.Second

// csrfPlaceholder stands in for the CSRF token in cached pages and is
// replaced with the visitor's token on every response.
const csrfPlaceholder = "__csrf_token__"

// PageCacher stores rendered public pages. *cache.PageCache implements it.
type PageCacher interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
}

// Public groups handlers for the public site. Pages are rendered from the
// in-memory content tree and cached in Valkey until the tree changes.
type Public struct {
	renderer     *render.Renderer
	site         *content.Store
	slideStore   *store.HeroSlideStore
	leads        *store.LeadStore
	pageCache    PageCacher
	heroInterval time.Duration

	mu     sync.RWMutex
	slides []models.HeroSlide
}

// NewPublic creates a new Public handler group. pageCache may be nil to
// disable caching.
func NewPublic(renderer *render.Renderer, site *content.Store, gw gateway.Gateway, pageCache PageCacher, heroInterval time.Duration) *Public {
	if heroInterval <= 0 {
		heroInterval = DefaultHeroInterval
	}
	return &Public{
		renderer:     renderer,
		site:         site,
		slideStore:   store.NewHeroSlideStore(gw),
		leads:        store.NewLeadStore(gw),
		pageCache:    pageCache,
		heroInterval: heroInterval,
	}
}

// LoadSlides reads the hero carousel once. On failure the hero keeps its
// single background image.
func (p *Public) LoadSlides(ctx context.Context) {
	slides, err := p.slideStore.ListActive(ctx)
	if err != nil {
		slog.Warn("hero slides unavailable, using background image", "error", err)
		return
	}
	p.mu.Lock()
	p.slides = slides
	p.mu.Unlock()
}

func (p *Public) slideImages() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return catalog.SlideImages(p.slides, p.site.Tree().Hero.BgImage)
}

// Home renders the landing page. The hero and the other carousels rotate
// in the browser, so the cached page always starts on the first slide.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, cache.HomeKey, func() (string, *render.PageData) {
		return "home", p.homeData()
	})
}

func (p *Public) homeData() *render.PageData {
	return &render.PageData{
		Section: "home",
		Site:    p.site.Tree(),
		Data: map[string]any{
			"Slides":              p.slideImages(),
			"HeroInterval":        p.heroInterval.Milliseconds(),
			"GalleryInterval":     galleryInterval.Milliseconds(),
			"Features":            catalog.Features,
			"Testimonials":        catalog.Testimonials,
			"TestimonialInterval": catalog.TestimonialInterval.Milliseconds(),
		},
	}
}

// Catalog renders the product catalog filtered by ?categoria= and ?q=.
// Only the unfiltered full page is cached.
func (p *Public) Catalog(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("categoria"))
	if category == "" {
		category = models.AllCategories
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	build := func() (string, *render.PageData) {
		tree := p.site.Tree()
		return "catalog", &render.PageData{
			Title:   "Catálogo",
			Section: "catalogo",
			Site:    tree,
			Data: map[string]any{
				"Products":   catalog.Filter(tree.Products, category, query),
				"Categories": catalog.Categories(),
				"Category":   category,
				"Query":      query,
			},
		}
	}

	if category == models.AllCategories && query == "" && r.Header.Get("HX-Request") != "true" {
		p.cached(w, r, cache.CatalogKey, build)
		return
	}
	name, data := build()
	p.renderer.Page(w, r, name, data)
}

// BudgetPage renders the empty budget request form.
func (p *Public) BudgetPage(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, cache.BudgetKey, func() (string, *render.PageData) {
		return "budget", p.budgetData(leadForm{}, "")
	})
}

func (p *Public) budgetData(f leadForm, errMsg string) *render.PageData {
	return &render.PageData{
		Title:   "Orçamento",
		Section: "orcamento",
		Site:    p.site.Tree(),
		Data:    map[string]any{"Form": f, "Error": errMsg, "Sent": false},
	}
}

// BudgetSubmit stores a budget request as a lead.
func (p *Public) BudgetSubmit(w http.ResponseWriter, r *http.Request) {
	f := readLeadForm(r)
	if msg := validateLead(f); msg != "" {
		p.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "budget", p.budgetData(f, msg))
		return
	}
	if err := p.leads.Create(r.Context(), f.lead()); err != nil {
		slog.Error("budget lead create failed", "error", err)
		p.renderer.PageStatus(w, r, http.StatusBadGateway, "budget", p.budgetData(f, "Erro ao enviar solicitação. Tente novamente."))
		return
	}
	slog.Info("budget request received", "name", f.Name)
	data := p.budgetData(leadForm{}, "")
	data.Data["Sent"] = true
	p.renderer.Page(w, r, "budget", data)
}

// ContactSubmit stores a contact form message as a lead and renders the
// home page with the outcome.
func (p *Public) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	f := readLeadForm(r)
	f.CarInfo = ""
	data := p.homeData()

	if msg := validateLead(f); msg != "" {
		data.Flashes = []render.Flash{{Type: "error", Message: msg}}
		p.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "home", data)
		return
	}
	if err := p.leads.Create(r.Context(), f.lead()); err != nil {
		slog.Error("contact lead create failed", "error", err)
		data.Flashes = []render.Flash{{Type: "error", Message: "Erro ao enviar mensagem. Tente novamente."}}
		p.renderer.PageStatus(w, r, http.StatusBadGateway, "home", data)
		return
	}
	slog.Info("contact message received", "name", f.Name)
	data.Flashes = []render.Flash{{Type: "success", Message: "Mensagem enviada! Entraremos em contato em breve."}}
	p.renderer.Page(w, r, "home", data)
}

// searchResult is one quick search entry. NameHTML is escaped with the
// matches wrapped in <mark>.
type searchResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	NameHTML template.HTML `json:"nameHTML"`
	Category string        `json:"category"`
	Brand    string        `json:"brand"`
	Price    string        `json:"price"`
	Image    string        `json:"image"`
}

// Search answers the navbar quick search with up to five products.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	matches := catalog.QuickSearch(p.site.Tree().Products, query)
	results := make([]searchResult, 0, len(matches))
	for _, m := range matches {
		price := m.Price
		if m.IsInquiry() {
			price = models.PriceOnRequest
		}
		results = append(results, searchResult{
			ID:       m.ID,
			Name:     m.Name,
			NameHTML: catalog.HighlightHTML(m.Name, query),
			Category: m.Category,
			Brand:    m.Brand,
			Price:    price,
			Image:    m.Image,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "results": results})
}

// Content returns the whole content tree with the store status.
func (p *Public) Content(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  p.site.Status().String(),
		"version": p.site.Version(),
		"content": p.site.Tree(),
	})
}

// cached serves key from the page cache, rendering and storing it on a
// miss. Pages are cached with a placeholder CSRF token that is swapped
// for the visitor's token on the way out.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, key string, build func() (string, *render.PageData)) {
	ctx := r.Context()
	// The version is read before the tree, so a concurrent save can only
	// file a newer page under an older, already unreachable key.
	key = cache.PageKey(key, p.site.Version())
	page, ok := []byte(nil), false
	if p.pageCache != nil {
		page, ok = p.pageCache.Get(ctx, key)
	}
	if !ok {
		name, data := build()
		data.CSRFToken = csrfPlaceholder
		rendered, err := p.renderer.Bytes(name, data)
		if err != nil {
			slog.Error("render page failed", "page", name, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		page = rendered
		if p.pageCache != nil {
			p.pageCache.Set(ctx, key, page)
		}
	}

	token := middleware.CSRFTokenFromCtx(ctx)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(bytes.ReplaceAll(page, []byte(csrfPlaceholder), []byte(token)))
}
