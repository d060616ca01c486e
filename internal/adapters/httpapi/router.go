package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configure the optional layers around the core handlers.
type RouterOptions struct {
	// AuthMiddleware resolves the caller; required for the /ride routes to
	// see a user. Tests may inject a stub.
	AuthMiddleware func(http.Handler) http.Handler

	// Registry enables the /metrics endpoint and request instrumentation
	// when non-nil.
	Registry *prometheus.Registry
}

// NewRouter constructs the API HTTP router. This is a thin adapter: routes
// and middleware here, behavior in the rides service.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.Registry != nil {
		r.Use(NewMetricsMiddleware(opts.Registry))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	if opts.AuthMiddleware != nil {
		r.Use(opts.AuthMiddleware)
	}

	// Health endpoint is deliberately unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.routes(r)
	return r
}
