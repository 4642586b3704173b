package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lazypower/engram/internal/diff"
	"github.com/lazypower/engram/internal/enforce"
	"github.com/lazypower/engram/internal/engine"
	"github.com/lazypower/engram/internal/logging"
	"github.com/lazypower/engram/internal/store"
)

// Server is the engram HTTP API server.
type Server struct {
	db        *store.DB
	engine    *engine.Engine
	evaluator *enforce.Evaluator
	metrics   *enforce.Metrics
	condenser diff.Condenser
	registry  *prometheus.Registry
	origins   []string
	log       *zap.Logger
	router    chi.Router
	version   string
	started   time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithEngine enables POST /api/lifecycle/prune.
func WithEngine(e *engine.Engine) Option { return func(s *Server) { s.engine = e } }

// WithEvaluator enables POST /api/check.
func WithEvaluator(e *enforce.Evaluator) Option { return func(s *Server) { s.evaluator = e } }

// WithMetrics records /api/check results.
func WithMetrics(m *enforce.Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithRegistry exposes reg on /metrics.
func WithRegistry(reg *prometheus.Registry) Option { return func(s *Server) { s.registry = reg } }

// WithCORS allows browser requests from origins.
func WithCORS(origins []string) Option { return func(s *Server) { s.origins = origins } }

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

// New creates a new Server with the given database and version string.
func New(db *store.DB, version string, opts ...Option) *Server {
	s := &Server{
		db:        db,
		version:   version,
		started:   time.Now(),
		condenser: diff.DefaultCondenser(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrNop(s.log).Named("http")
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))

	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/memories", s.handleListMemories)
		r.Post("/memories", s.handleAddMemory)
		r.Get("/memories/{id}", s.handleGetMemory)
		r.Put("/memories/{id}", s.handleUpdateMemory)
		r.Delete("/memories/{id}", s.handleDeleteMemory)

		r.Get("/edges", s.handleListEdges)
		r.Post("/edges", s.handleAddEdge)
		r.Delete("/edges/{id}", s.handleDeleteEdge)

		r.Get("/bundle", s.handleBundle)
		r.Post("/lifecycle/prune", s.handlePrune)
		r.Post("/check", s.handleCheck)
	})

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Get("/*", spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	body := map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	}
	if stats, err := s.db.Stats(); err == nil {
		body["memories"] = stats.Memories
		body["enforced"] = stats.Enforced
		body["edges"] = stats.Edges
	}
	writeJSON(w, http.StatusOK, body)
}

// requestLogger logs one line per request at debug level.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
