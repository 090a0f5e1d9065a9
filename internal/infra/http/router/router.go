package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/codease-contact/internal/infra/http/handlers"
	"github.com/xavierca1/codease-contact/internal/infra/http/middleware"
)

type Deps struct {
	Contact     *handlers.ContactHandler
	Health      *handlers.HealthHandler
	AdminToken  string
	CORSOrigins []string
	Logger      *zap.Logger
}

// New mounts the contact routes at /contact and, for the website's existing
// frontend, at /api/contact.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", d.Health.Root)
	r.Get("/health", d.Health.Handle)
	r.Get("/api/health", d.Health.Handle)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	contact := func(r chi.Router) {
		r.Post("/", d.Contact.Submit)
		r.With(middleware.AdminToken(d.AdminToken)).Get("/download", d.Contact.Download)
	}
	r.Route("/contact", contact)
	r.Route("/api/contact", contact)

	return r
}
