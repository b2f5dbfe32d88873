package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"docproc/internal/domain"
	"docproc/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// tabLink is one entry of the result tab strip.
type tabLink struct {
	ID    domain.Tab
	Label string
}

var resultTabs = []tabLink{
	{ID: domain.TabText, Label: "Plain Text"},
	{ID: domain.TabFields, Label: "Key Value Pair"},
	{ID: domain.TabTables, Label: "Tables"},
}

// PageData is what the templates render.
type PageData struct {
	Title         string
	Theme         domain.ThemePreference
	Error         string
	Username      string
	Workspace     service.WorkspaceSnapshot
	ExportFormats []domain.ExportFormat
	Tabs          []tabLink
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl   *template.Template
	logger domain.Logger
}

// NewRenderer parses the embedded templates. It panics on a broken template
// since they are compiled into the binary.
func NewRenderer(logger domain.Logger) *Renderer {
	funcMap := template.FuncMap{
		"upper": func(f domain.ExportFormat) string { return strings.ToUpper(string(f)) },
		"lines": func(s string) []string {
			if s == "" {
				return nil
			}
			return strings.Split(s, "\n")
		},
	}
	return &Renderer{
		tmpl:   template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")),
		logger: logger,
	}
}

// Render writes page with status.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	if data.Tabs == nil {
		data.Tabs = resultTabs
	}
	if data.ExportFormats == nil {
		data.ExportFormats = domain.ExportFormats
	}

	var buf strings.Builder
	if err := r.tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		r.logger.Error("Failed to render page", err, "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}
