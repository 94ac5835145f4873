package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/middleware"
	"github.com/couplemap/couplemap/spec"
)

// RouterConfig holds the HTTP-level settings of NewRouter.
type RouterConfig struct {
	Logger       *slog.Logger
	CORSOrigins  []string
	MaxBodyBytes int64
	// RateLimit is the per-IP request budget per minute on /api. 0 disables it.
	RateLimit int
}

// NewRouter wires every endpoint of s behind the shared middleware stack.
// This is the handler main.go serves, and the one handler tests exercise.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = s.logger
	}

	r := chi.NewRouter()

	// Applied to every request, in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, req, domain.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{
			Error: api.ErrorBody{Code: api.CodeBadRequest, Message: "method not allowed"},
		})
	})

	r.Get("/healthz", s.GetHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.Limit(cfg.RateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, req *http.Request) {
					s.writeError(w, req, domain.ErrRateLimited)
				}),
			))
		}

		r.Post("/couple/create", s.CreateCouple)
		r.Post("/couple/join", s.JoinCouple)
		r.Get("/geocode", s.Geocode)

		// Everything below is scoped to the couple named by X-Invite-Code.
		r.Group(func(r chi.Router) {
			r.Use(s.requireCouple)

			r.Post("/couple/rotate", s.RotateCode)

			r.Get("/folders", s.ListFolders)
			r.Post("/folders", s.CreateFolder)
			r.Patch("/folders/{id}", s.UpdateFolder)
			r.Delete("/folders/{id}", s.DeleteFolder)

			r.Get("/places", s.ListPlaces)
			r.Post("/places", s.CreatePlace)
			r.Patch("/places/{id}", s.UpdatePlace)
			r.Delete("/places/{id}", s.DeletePlace)

			r.Get("/tags", s.ListTags)
			r.Get("/export", s.GetExport)
		})
	})

	return r
}
