// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Guto Auto Peças site.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gutoautopecas/internal/admin"
	"gutoautopecas/internal/content"
	"gutoautopecas/internal/imaging"
	"gutoautopecas/internal/middleware"
	"gutoautopecas/internal/models"
	"gutoautopecas/internal/render"
)

const (
	// maxUploadSize is the maximum accepted image upload (20 MB).
	maxUploadSize = 20 << 20

	// maxJSONBody caps draft and product payloads.
	maxJSONBody = 1 << 20
)

// allowedImageTypes defines the sniffed MIME types accepted for upload.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Admin groups the editing surface handlers. Every handler resolves the
// caller's surface from the session in the request context.
type Admin struct {
	renderer  *render.Renderer
	workspace *admin.Workspace
	site      *content.Store
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, workspace *admin.Workspace, site *content.Store) *Admin {
	return &Admin{
		renderer:  renderer,
		workspace: workspace,
		site:      site,
	}
}

func (a *Admin) surface(r *http.Request) *admin.Surface {
	return a.workspace.Surface(middleware.SessionFromCtx(r.Context()).ID)
}

// Dashboard renders the editing surface with the caller's drafts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	d := a.surface(r).Drafts()

	site := a.site.Tree()
	site.Hero = d.Hero
	site.Contact = d.Contact
	site.Logo = d.Logo
	site.About.Images = d.Gallery
	site.Categories = d.Categories
	site.Products = d.Products

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Painel",
		Section: "dashboard",
		Site:    site,
		Data: map[string]any{
			"Status":            statusLabel(d.Status),
			"BrandsText":        d.BrandsText,
			"Icons":             models.Icons,
			"ProductCategories": models.ProductCategories,
		},
	})
}

func statusLabel(s admin.SaveStatus) string {
	switch s {
	case admin.StatusSaving:
		return "Salvando..."
	case admin.StatusSaved:
		return "Salvo!"
	case admin.StatusError:
		return "Erro ao salvar"
	default:
		return ""
	}
}

// Drafts returns the caller's drafts as JSON.
func (a *Admin) Drafts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.surface(r).Drafts())
}

// UpdateDraft replaces one object draft. Fields missing from the body keep
// their current draft value. The brands draft takes {"text": "..."}.
func (a *Admin) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	s := a.surface(r)
	d := s.Drafts()
	section := chi.URLParam(r, "section")

	var err error
	switch models.Section(section) {
	case models.SectionHero:
		hero := d.Hero
		if err = decodeJSON(w, r, &hero); err == nil {
			s.SetHero(hero)
		}
	case models.SectionContact:
		contact := d.Contact
		if err = decodeJSON(w, r, &contact); err == nil {
			s.SetContact(contact)
		}
	case models.SectionLogo:
		logo := d.Logo
		if err = decodeJSON(w, r, &logo); err == nil {
			s.SetLogo(logo)
		}
	case models.SectionBrands:
		var body struct {
			Text string `json:"text"`
		}
		if err = decodeJSON(w, r, &body); err == nil {
			s.SetBrandsText(body.Text)
		}
	default:
		writeError(w, http.StatusNotFound, "Seção desconhecida.")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Dados inválidos.")
		return
	}
	writeJSON(w, http.StatusOK, s.Drafts())
}

// AddGalleryImage appends {"url": "..."} to the gallery draft.
func (a *Admin) AddGalleryImage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.URL == "" {
		writeError(w, http.StatusBadRequest, "URL da imagem obrigatória.")
		return
	}
	s := a.surface(r)
	s.AddGalleryImage(body.URL)
	writeJSON(w, http.StatusOK, s.Drafts())
}

// RemoveGalleryImage drops the gallery draft entry at {index}.
func (a *Admin) RemoveGalleryImage(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Índice inválido.")
		return
	}
	s := a.surface(r)
	if err := s.RemoveGalleryImage(i); err != nil {
		writeError(w, http.StatusNotFound, "Imagem não encontrada.")
		return
	}
	writeJSON(w, http.StatusOK, s.Drafts())
}

// UpdateCategory patches the name, icon or image of one category draft.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  *string `json:"name"`
		Icon  *string `json:"icon"`
		Image *string `json:"image"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Dados inválidos.")
		return
	}

	s := a.surface(r)
	id := chi.URLParam(r, "id")
	var err error
	if body.Name != nil {
		err = errors.Join(err, s.RenameCategory(id, *body.Name))
	}
	if body.Icon != nil {
		err = errors.Join(err, s.SetCategoryIcon(id, *body.Icon))
	}
	if body.Image != nil {
		err = errors.Join(err, s.SetCategoryImage(id, *body.Image))
	}
	if errors.Is(err, admin.ErrCategoryNotFound) {
		writeError(w, http.StatusNotFound, "Categoria não encontrada.")
		return
	}
	writeJSON(w, http.StatusOK, s.Drafts())
}

// UploadImage processes an uploaded image for {field} and stages it in the
// matching draft. The target query parameter names the category for
// category images.
func (a *Admin) UploadImage(w http.ResponseWriter, r *http.Request) {
	field := imaging.Field(chi.URLParam(r, "field"))

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Arquivo muito grande. Tamanho máximo: 20 MB.")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Nenhum arquivo enviado.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Erro ao processar imagem")
		return
	}
	if !allowedImageTypes[http.DetectContentType(data)] {
		writeError(w, http.StatusBadRequest, "Tipo de arquivo não permitido.")
		return
	}

	url, err := a.surface(r).AttachImage(r.Context(), field, r.URL.Query().Get("target"), data)
	switch {
	case errors.Is(err, imaging.ErrUnknownField):
		writeError(w, http.StatusNotFound, "Campo de imagem desconhecido.")
		return
	case errors.Is(err, admin.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "Categoria não encontrada.")
		return
	case err != nil:
		slog.Error("image upload failed", "field", field, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "Erro ao processar imagem")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// SaveAll commits every draft to the content store.
func (a *Admin) SaveAll(w http.ResponseWriter, r *http.Request) {
	s := a.surface(r)
	err := s.SaveAll(r.Context())
	var perr *admin.ParseError
	switch {
	case errors.As(err, &perr):
		writeError(w, http.StatusUnprocessableEntity, "JSON de marcas inválido: "+perr.Err.Error())
		return
	case err != nil:
		slog.Error("save all failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao salvar. Tente novamente.")
		return
	}
	writeJSON(w, http.StatusOK, s.Drafts())
}

// Reset restores the default content everywhere. Requires ?confirm=true.
func (a *Admin) Reset(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	if err := a.site.ResetAll(r.Context()); err != nil {
		slog.Error("reset to defaults failed", "error", err)
		writeError(w, http.StatusBadGateway, "Erro ao restaurar padrões. Tente novamente.")
		return
	}
	s := a.surface(r)
	s.Resync()
	writeJSON(w, http.StatusOK, s.Drafts())
}

// Products lists the inventory, filtered by ?q=.
func (a *Admin) Products(w http.ResponseWriter, r *http.Request) {
	products := a.surface(r).Inventory(r.URL.Query().Get("q"))
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// ProductEditor returns the product to edit, or a blank one without ?id=.
func (a *Admin) ProductEditor(w http.ResponseWriter, r *http.Request) {
	p, err := a.surface(r).OpenEditor(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Produto não encontrado.")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProduct inserts or updates the product {id}.
func (a *Admin) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Dados inválidos.")
		return
	}
	p.ID = chi.URLParam(r, "id")
	if p.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "Nome do produto obrigatório.")
		return
	}

	saved, err := a.surface(r).SaveProduct(r.Context(), p)
	if err != nil {
		slog.Error("save product failed", "id", p.ID, "error", err)
		writeError(w, http.StatusBadGateway, "Erro ao salvar produto. Tente novamente.")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteProduct removes the product {id}. Requires ?confirm=true.
func (a *Admin) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	err := a.surface(r).DeleteProduct(r.Context(), id)
	switch {
	case errors.Is(err, admin.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Produto não encontrado.")
		return
	case err != nil:
		slog.Error("delete product failed", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "Erro ao excluir produto.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// leadView is a lead as listed in the inbox. Unread leads carry the
// "NOVO" tag.
type leadView struct {
	models.Lead
	Tag string `json:"tag,omitempty"`
}

func leadsResponse(leads []models.Lead, unread int) map[string]any {
	views := make([]leadView, len(leads))
	for i, l := range leads {
		views[i] = leadView{Lead: l}
		if !l.Read {
			views[i].Tag = "NOVO"
		}
	}
	return map[string]any{"leads": views, "unread": unread}
}

// Leads opens the inbox and starts polling for the caller's session.
func (a *Admin) Leads(w http.ResponseWriter, r *http.Request) {
	s := a.surface(r)
	leads, err := s.ActivateLeads(r.Context())
	if err != nil {
		slog.Warn("fetching leads failed", "error", err)
		writeError(w, http.StatusBadGateway, "Erro ao carregar mensagens.")
		return
	}
	writeJSON(w, http.StatusOK, leadsResponse(leads, s.UnreadCount()))
}

// StopLeads stops polling when the inbox is closed.
func (a *Admin) StopLeads(w http.ResponseWriter, r *http.Request) {
	a.surface(r).DeactivateLeads()
	w.WriteHeader(http.StatusNoContent)
}

// MarkLeadRead marks the lead {id} as read.
func (a *Admin) MarkLeadRead(w http.ResponseWriter, r *http.Request) {
	s := a.surface(r)
	if err := s.MarkLeadRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLeadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leadsResponse(s.Leads(), s.UnreadCount()))
}

// DeleteLead removes the lead {id}. Requires ?confirm=true.
func (a *Admin) DeleteLead(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	s := a.surface(r)
	if err := s.DeleteLead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLeadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leadsResponse(s.Leads(), s.UnreadCount()))
}

func writeLeadError(w http.ResponseWriter, err error) {
	if errors.Is(err, admin.ErrLeadNotFound) {
		writeError(w, http.StatusNotFound, "Mensagem não encontrada.")
		return
	}
	slog.Error("lead update failed", "error", err)
	writeError(w, http.StatusBadGateway, "Erro ao atualizar mensagem.")
}

// confirmed reports whether a destructive request carries ?confirm=true,
// answering 400 when it does not.
func confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") == "true" {
		return true
	}
	writeError(w, http.StatusBadRequest, "Confirmação necessária.")
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
