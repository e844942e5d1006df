// Package web serves the roster's HTML interface.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/monorkin/lab-roster/internal/auth"
	"github.com/monorkin/lab-roster/internal/catalog"
	"github.com/monorkin/lab-roster/internal/models"
)

type Authenticator interface {
	Login(ctx context.Context, number int, password string, remember bool, client auth.Client) (*auth.Grant, error)
	Authenticate(ctx context.Context, token string, client auth.Client) (*auth.Principal, error)
	Logout(ctx context.Context, sessionID string) error
}

type Catalog interface {
	ListDevices(ctx context.Context, filter *int) ([]models.Device, error)
	AddDevice(ctx context.Context, req catalog.NewDevice) (*models.Device, error)
	RemoveDevice(ctx context.Context, id uint) (*models.Device, error)
}

type Config struct {
	// SecretKey signs flash cookies and CSRF tokens.
	SecretKey     string
	SecureCookies bool
	// TrustProxy lets X-Real-IP/X-Forwarded-For replace the peer address.
	// Session fingerprints include that address, so leave it off unless a
	// reverse proxy overwrites those headers.
	TrustProxy bool
	Logger     *slog.Logger
	// Registry receives the server's metrics. A private registry is used
	// when nil.
	Registry *prometheus.Registry
}

type Server struct {
	cfg       Config
	auth      Authenticator
	catalog   Catalog
	logger    *slog.Logger
	secret    []byte
	templates map[string]*template.Template
	metrics   *metrics
}

func NewServer(cfg Config, authenticator Authenticator, devices Catalog) (*Server, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("web: secret key must not be empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:       cfg,
		auth:      authenticator,
		catalog:   devices,
		logger:    cfg.Logger,
		secret:    []byte(cfg.SecretKey),
		templates: templates,
		metrics:   m,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.withFlashes)
		r.Use(s.withCSRFIdentity)

		r.Get("/login", s.handleLogin)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireLogin)

			r.Get("/", s.handleIndex)
			r.Post("/", s.handleIndex)
			r.Get("/add-user", s.handleAddDevice)
			r.Post("/add-user", s.handleAddDevice)
			r.Get("/remove-user/{id}", s.handleRemoveDevice)
			r.Post("/remove-user/{id}", s.handleRemoveDevice)
			r.Get("/logout", s.handleLogout)
		})

		r.NotFound(s.handleNotFound)
	})

	return r
}

// MetricsHandler serves the Prometheus exposition. It is kept off the
// public router; mount it on a private listener.
func (s *Server) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
