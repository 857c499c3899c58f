package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const requestTimeout = 15 * time.Second

// Server owns the router. Routes are added by MountHandlers and Mount.
type Server struct{ mux *chi.Mux }

// Option configures New.
type Option func(*options)

type options struct{ trustProxy bool }

// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For and X-Real-IP.
// Only use it behind a proxy that overwrites those headers.
func TrustProxyHeaders(trust bool) Option {
	return func(o *options) { o.trustProxy = trust }
}

func New(opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	m := chi.NewRouter()

	// middlewares must be registered before any route
	if o.trustProxy {
		m.Use(chimw.RealIP)
	}
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(requestTimeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported here")
	})

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
