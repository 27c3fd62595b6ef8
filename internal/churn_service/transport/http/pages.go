package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageHome          = "home.html"
	pageVisualization = "visualization.html"
	pagePredict       = "predict.html"
)

// pageTemplates holds one template set per page, each combining the shared layout with the page body.
type pageTemplates map[string]*template.Template

func parsePages() (pageTemplates, error) {
	pages := pageTemplates{}
	for _, name := range []string{pageHome, pageVisualization, pagePredict} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// render executes the page into a buffer first so a template error never leaves a half written page.
func (p pageTemplates) render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, code int, name string, data any) {
	t, ok := p[name]
	if !ok {
		logger.ErrorContext(r.Context(), "Unknown page template", "page", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.ErrorContext(r.Context(), "Failed to render page", "page", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
