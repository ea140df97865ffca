package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/middleware"
)

func withCSRF(r *http.Request, token string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.CSRFKey, token))
}

func formRequest(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withCSRF(r, "tok-form")
}

func validLeadForm() url.Values {
	return url.Values{
		"name":     {"Ana Souza"},
		"phone":    {"21999998888"},
		"email":    {"ana@example.com"},
		"car_info": {"Gol 2015"},
		"message":  {"Preciso de pastilhas de freio."},
	}
}

// --------------------------------------------------------------------------
// Cached pages
// --------------------------------------------------------------------------

func TestHomeCachedPerVisitorToken(t *testing.T) {
	env := newTestEnv(t)

	first := httptest.NewRecorder()
	env.Public.Home(first, withCSRF(httptest.NewRequest(http.MethodGet, "/", nil), "tok-aaa"))
	second := httptest.NewRecorder()
	env.Public.Home(second, withCSRF(httptest.NewRequest(http.MethodGet, "/", nil), "tok-bbb"))

	for _, rec := range []*httptest.ResponseRecorder{first, second} {
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200", rec.Code)
		}
		if strings.Contains(rec.Body.String(), csrfPlaceholder) {
			t.Error("placeholder token leaked to the visitor")
		}
		if !strings.Contains(rec.Body.String(), "SUA PEÇA") {
			t.Error("hero title missing")
		}
	}
	if !strings.Contains(first.Body.String(), "tok-aaa") || !strings.Contains(second.Body.String(), "tok-bbb") {
		t.Error("each visitor should get their own CSRF token")
	}
	if env.Pages.hits != 1 {
		t.Errorf("cache hits: got %d, want 1", env.Pages.hits)
	}
}

func TestHeroSlidesFromCarouselTable(t *testing.T) {
	env := newTestEnv(t)
	env.Mem.Seed(gateway.TableHeroCarousel,
		gateway.Row{"id": "s1", "image_url": "https://img.example/slide-1.jpg", "order_index": 0, "active": true},
		gateway.Row{"id": "s2", "image_url": "https://img.example/slide-off.jpg", "order_index": 1, "active": false},
	)
	env.Public.LoadSlides(context.Background())

	rec := httptest.NewRecorder()
	env.Public.Home(rec, withCSRF(httptest.NewRequest(http.MethodGet, "/", nil), "tok"))
	body := rec.Body.String()
	if !strings.Contains(body, "slide-1.jpg") {
		t.Error("active slide missing")
	}
	if strings.Contains(body, "slide-off.jpg") {
		t.Error("inactive slide should not be shown")
	}
	if n := strings.Count(body, "hero-slide active"); n != 1 {
		t.Errorf("active hero slides: got %d, want 1 (the browser rotates from the first)", n)
	}
}

func TestHeroSlidesFallBackToBackground(t *testing.T) {
	env := newTestEnv(t)
	env.Mem.Fail("select", gateway.TableHeroCarousel, 1, nil)
	env.Public.LoadSlides(context.Background())

	rec := httptest.NewRecorder()
	env.Public.Home(rec, withCSRF(httptest.NewRequest(http.MethodGet, "/", nil), "tok"))
	if !strings.Contains(rec.Body.String(), "photo-1492144534655-ae79c964c9d7") {
		t.Error("hero background image should be used when slides are unavailable")
	}
}

// --------------------------------------------------------------------------
// Catalog
// --------------------------------------------------------------------------

func TestCatalogFilters(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"all", "/catalogo", "8 produto(s) encontrado(s)"},
		{"category", "/catalogo?categoria=Motor", "3 produto(s) encontrado(s)"},
		{"category and query", "/catalogo?categoria=Freios&q=pastilha", "1 produto(s) encontrado(s)"},
		{"no match", "/catalogo?q=turbina", "Nenhum produto encontrado."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := httptest.NewRecorder()
			env.Public.Catalog(rec, withCSRF(httptest.NewRequest(http.MethodGet, tt.target, nil), "tok"))
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
		})
	}
}

func TestCatalogOnlyCachesUnfiltered(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Public.Catalog(rec, withCSRF(httptest.NewRequest(http.MethodGet, "/catalogo?categoria=Motor", nil), "tok"))
	if len(env.Pages.pages) != 0 {
		t.Error("filtered catalog should not be cached")
	}

	rec = httptest.NewRecorder()
	env.Public.Catalog(rec, withCSRF(httptest.NewRequest(http.MethodGet, "/catalogo", nil), "tok"))
	if len(env.Pages.pages) != 1 {
		t.Error("unfiltered catalog should be cached")
	}
}

func TestCatalogPartial(t *testing.T) {
	env := newTestEnv(t)
	req := withCSRF(httptest.NewRequest(http.MethodGet, "/catalogo", nil), "tok")
	req.Header.Set("HX-Request", "true")

	rec := httptest.NewRecorder()
	env.Public.Catalog(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("partial response should not include the layout")
	}
	if !strings.Contains(body, "catalog-content") {
		t.Error("partial response should include the catalog section")
	}
	if len(env.Pages.pages) != 0 {
		t.Error("partial responses should not be cached")
	}
}

// --------------------------------------------------------------------------
// Lead forms
// --------------------------------------------------------------------------

func TestBudgetSubmit(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Public.BudgetSubmit(rec, formRequest("/orcamento", validLeadForm()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Orçamento Recebido!") {
		t.Error("success state missing")
	}
	rows := env.Mem.Rows(gateway.TableLeads)
	if len(rows) != 1 {
		t.Fatalf("leads: got %d, want 1", len(rows))
	}
	if msg := rows[0].String("message"); !strings.HasPrefix(msg, "Veículo: Gol 2015\n\n") {
		t.Errorf("message: got %q", msg)
	}
	if got := rows[0].String("phone"); got != "(21) 99999-8888" {
		t.Errorf("phone: got %q", got)
	}
}

func TestBudgetSubmitRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	form := validLeadForm()
	form.Set("email", "not-an-email")

	rec := httptest.NewRecorder()
	env.Public.BudgetSubmit(rec, formRequest("/orcamento", form))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Ana Souza") {
		t.Error("form values should be kept after a validation error")
	}
	if n := env.Mem.Count("insert", gateway.TableLeads); n != 0 {
		t.Errorf("leads inserted: got %d, want 0", n)
	}
}

func TestBudgetSubmitRemoteFailure(t *testing.T) {
	env := newTestEnv(t)
	env.Mem.Fail("insert", gateway.TableLeads, 1, nil)

	rec := httptest.NewRecorder()
	env.Public.BudgetSubmit(rec, formRequest("/orcamento", validLeadForm()))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Erro ao enviar solicitação. Tente novamente.") {
		t.Error("error message missing")
	}
}

func TestContactSubmit(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Public.ContactSubmit(rec, formRequest("/contato", validLeadForm()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Mensagem enviada! Entraremos em contato em breve.") {
		t.Error("success flash missing")
	}
	rows := env.Mem.Rows(gateway.TableLeads)
	if len(rows) != 1 || strings.Contains(rows[0].String("message"), "Veículo") {
		t.Errorf("contact lead: got %v", rows)
	}
}

// --------------------------------------------------------------------------
// JSON endpoints
// --------------------------------------------------------------------------

func TestSearch(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Public.Search(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=kit", nil))

	var body struct {
		Query   string `json:"query"`
		Results []struct {
			Name     string `json:"name"`
			NameHTML string `json:"nameHTML"`
		} `json:"results"`
	}
	decodeBody(t, rec, &body)
	if body.Query != "kit" || len(body.Results) == 0 || len(body.Results) > 5 {
		t.Fatalf("search: got %+v", body)
	}
	if !strings.HasPrefix(body.Results[0].NameHTML, "<mark>Kit</mark>") {
		t.Errorf("nameHTML %q should highlight the match", body.Results[0].NameHTML)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Public.Search(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=+", nil))
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Errorf("blank query should give no results, got %s", rec.Body.String())
	}
}

func TestContent(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Public.Content(rec, httptest.NewRequest(http.MethodGet, "/api/content", nil))

	var body struct {
		Status  string         `json:"status"`
		Version uint64         `json:"version"`
		Content map[string]any `json:"content"`
	}
	decodeBody(t, rec, &body)
	if body.Status != "ready" {
		t.Errorf("status: got %q, want ready", body.Status)
	}
	if _, ok := body.Content["hero"]; !ok {
		t.Error("content tree missing hero")
	}
}
