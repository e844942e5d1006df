package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/monorkin/lab-roster/internal/forms"
	"github.com/monorkin/lab-roster/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"login", "index", "add_device", "404", "500"}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04")
	},
}

func parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// page is the data every template receives.
type page struct {
	Title   string
	User    *models.User
	Flashes []Flash
	Errors  forms.FieldErrors
	Form    url.Values
	Devices []models.Device
	Next    string

	token func(action string) string
}

// Token returns a CSRF token for the form posting to action.
func (p page) Token(action string) string {
	if p.token == nil {
		return ""
	}
	return p.token(action)
}

func (s *Server) newPage(r *http.Request, title string) page {
	p := page{
		Title: title,
		Form:  url.Values{},
		token: func(action string) string { return s.csrfToken(r, action) },
	}
	if principal := principalFromContext(r.Context()); principal != nil {
		p.User = &principal.User
	}
	return p
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := s.templates[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown template %q", name))
		return
	}

	p.Flashes = s.takeFlashes(w, r)

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		s.serverError(w, r, fmt.Errorf("failed to render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "404", s.newPage(r, "Page not found"))
}

// serverError logs err and renders the 500 page without touching the
// database or the flash cookie.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)

	var buf bytes.Buffer
	if t, ok := s.templates["500"]; ok {
		if execErr := t.Execute(&buf, page{Title: "Server error"}); execErr != nil {
			buf.Reset()
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if buf.Len() == 0 {
		_, _ = w.Write([]byte("Internal Server Error"))
		return
	}
	_, _ = buf.WriteTo(w)
}
