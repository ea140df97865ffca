// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the admin shell. It supports full-page and partial rendering, detecting
// partial requests via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"gutoautopecas/internal/catalog"
	"gutoautopecas/internal/middleware"
	"gutoautopecas/internal/models"
	"gutoautopecas/internal/session"
	"gutoautopecas/internal/whatsapp"
)

//go:embed templates
var templatesFS embed.FS

// devDir is read instead of the embedded templates in development, so
// template edits show up on restart without a rebuild.
const devDir = "internal/render/templates"

// PageData holds all data passed to templates.
type PageData struct {
	Title     string             // Page title for <title> tag
	Section   string             // Active navigation entry (e.g., "home", "catalogo")
	Session   *session.Data      // Current admin session (nil if anonymous)
	CSRFToken string             // CSRF token for forms and fetch headers
	Site      models.ContentTree // Content tree the page renders from
	Data      map[string]any     // Page-specific data
	Flashes   []Flash            // One-time notification messages
}

// WhatsAppMessage returns the message prefilled by the floating WhatsApp
// button: Data["WhatsAppMessage"] when set, the default greeting otherwise.
func (p *PageData) WhatsAppMessage() string {
	if msg, ok := p.Data["WhatsAppMessage"].(string); ok && msg != "" {
		return msg
	}
	return whatsapp.DefaultMessage
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// layouts maps a template directory to its base layout.
var layouts = map[string]string{
	"public": "base.html",
	"admin":  "base.html",
}

// standaloneTemplates lists templates that render as full HTML pages
// without a base layout.
var standaloneTemplates = map[string]bool{
	"login": true,
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New parses every template. Page templates are paired with the base
// layout of their directory. When devMode is true and the template
// directory exists on disk, templates are read from there instead of the
// embedded copy.
func New(devMode bool) (*Renderer, error) {
	var fsys fs.FS
	if devMode {
		if st, err := os.Stat(devDir); err == nil && st.IsDir() {
			fsys = os.DirFS(devDir)
		}
	}
	if fsys == nil {
		sub, err := fs.Sub(templatesFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("open embedded templates: %w", err)
		}
		fsys = sub
	}

	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			"glyph":          func(i models.Icon) string { return i.Glyph() },
			"imgURL":         ImageURL,
			"whatsapp":       whatsapp.Link,
			"mapsLink":       catalog.MapsLink,
			"productMessage": whatsapp.ProductMessage,
			"highlight":      catalog.HighlightHTML,
			"add":            func(a, b int) int { return a + b },
			"join":           strings.Join,
		},
	}

	for dir, base := range layouts {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("read templates %s: %w", dir, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == base || !strings.HasSuffix(name, ".html") {
				continue
			}
			tmplName := strings.TrimSuffix(name, ".html")
			if _, dup := r.templates[tmplName]; dup {
				return nil, fmt.Errorf("duplicate template name %q", tmplName)
			}

			var tmpl *template.Template
			var parseErr error
			if standaloneTemplates[tmplName] {
				tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(fsys, path.Join(dir, name))
			} else {
				tmpl, parseErr = template.New(base).Funcs(r.funcMap).ParseFS(
					fsys, path.Join(dir, base), path.Join(dir, name),
				)
			}
			if parseErr != nil {
				return nil, fmt.Errorf("parse template %s/%s: %w", dir, name, parseErr)
			}
			r.templates[tmplName] = tmpl
		}
	}

	return r, nil
}

// ImageURL marks an image source safe for src attributes. html/template
// rejects data URLs, which inline images rely on, so data:image/ URLs and
// http(s) or site-relative URLs pass and anything else becomes empty.
func ImageURL(s string) template.URL {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "data:image/"),
		strings.HasPrefix(s, "https://"),
		strings.HasPrefix(s, "http://"),
		strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//"):
		return template.URL(s)
	}
	return ""
}

// Has reports whether a template with name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Render executes a full page into w. Public handlers render into a
// buffer so the output can be cached.
func (rn *Renderer) Render(w io.Writer, name string, data *PageData) error {
	tmpl, ok := rn.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	execName := tmpl.Name()
	if standaloneTemplates[name] {
		execName = name + ".html"
	}
	return tmpl.ExecuteTemplate(w, execName, data)
}

// Bytes renders a full page into memory.
func (rn *Renderer) Bytes(name string, data *PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := rn.Render(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Page renders a full page or a partial, depending on the request
// headers. For partial requests only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with a status code other than 200, used to
// re-render forms after a failed submission.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	// Inject CSRF token from context (set by CSRF middleware).
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())

	// Inject session from context.
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	// Render into a buffer so a template error can still produce a 500.
	var buf bytes.Buffer
	var err error
	if isPartial(r) && !standaloneTemplates[name] {
		err = tmpl.ExecuteTemplate(&buf, "content", data)
	} else {
		err = rn.Render(&buf, name, data)
	}
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// isPartial returns true if the request asked for the content block only.
func isPartial(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
