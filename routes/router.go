// Package routes exposes the HTTP API.
package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"yochan/auth"
	"yochan/config"
	"yochan/encoder"
	"yochan/failures"
	"yochan/journal"
	"yochan/media"
	"yochan/metrics"
	"yochan/models"
)

// maxBatchFiles caps the files accepted by one POST /multiple request.
const maxBatchFiles = 20

// Server holds the handlers' collaborators.
type Server struct {
	cfg      *config.Config
	gate     *auth.Gate
	media    *media.Service
	journal  *journal.Store
	metrics  *metrics.Recorder
	encoders *encoder.Registry
}

// Deps lists what NewRouter needs. Journal and Metrics may be nil.
type Deps struct {
	Config   *config.Config
	Gate     *auth.Gate
	Media    *media.Service
	Journal  *journal.Store
	Metrics  *metrics.Recorder
	Encoders *encoder.Registry
}

// NewRouter builds the chi router serving the whole API.
func NewRouter(d Deps) http.Handler {
	s := &Server{
		cfg:      d.Config,
		gate:     d.Gate,
		media:    d.Media,
		journal:  d.Journal,
		metrics:  d.Metrics,
		encoders: d.Encoders,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, failures.NotFound("Not found."))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, models.Fail("Method not allowed."))
	})

	r.Get("/", s.FormHandler)
	r.Get("/uploads/*", s.FileHandler)
	r.Get("/health", s.HealthHandler)
	r.Get("/version", s.VersionHandler)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// all routes below require the API key or a bearer token
	r.Group(func(r chi.Router) {
		r.Use(s.gate.Middleware(respondError))
		r.Post("/", s.UploadHandler)
		r.Post("/multiple", s.UploadMultipleHandler)
		r.Delete("/", s.DeleteHandler)
		r.Delete("/multiple", s.DeleteNamespaceHandler)
		r.Get("/list", s.ListHandler)
		r.Get("/journal", s.JournalHandler)
		r.Post("/token", s.TokenHandler)
	})

	return r
}

// baseURL returns the origin that public artifact URLs are built on.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
