package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/cors"

	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/records"
	"fintrack/internal/services"
)

// Options wires the server to its collaborators.
type Options struct {
	Addr   string
	Store  records.Store
	Logger *log.Logger

	// Assistant answers chat calls. Nil disables chat.
	Assistant services.Assistant
	// Ready checks the store for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error

	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

type Server struct {
	http.Server
	store   records.Store
	finance *services.FinanceService
	ready   func(ctx context.Context) error
	logger  *log.Logger

	assistantConfigured bool

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	ipExtractor     *security.ClientIPExtractor
	appMetrics      appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	started        time.Time
	recordsWritten atomic.Int64
	chatRequests   atomic.Int64
	chatFailures   atomic.Int64
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	ready := opts.Ready
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}

	var assistantConfigured bool
	if c, ok := opts.Assistant.(interface{ Configured() bool }); ok {
		assistantConfigured = c.Configured()
	} else {
		assistantConfigured = opts.Assistant != nil
	}

	ipExtractor := security.NewClientIPExtractor()
	s := &Server{
		store:               opts.Store,
		finance:             services.NewFinanceService(opts.Store, opts.Assistant),
		ready:               ready,
		logger:              logger,
		assistantConfigured: assistantConfigured,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Methods:           []string{http.MethodPost},
		}),
		traceMiddleware: trace.NewMiddleware(ipExtractor.ClientIP),
		ipExtractor:     ipExtractor,
	}
	s.appMetrics.started = time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/transactions", s.withUID(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withUID(s.handleListTransactions))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withUID(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withUID(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/summary", s.withUID(s.handleSummary))
	mux.HandleFunc("GET /api/summary/categories", s.withUID(s.handleCategorySummary))

	mux.HandleFunc("GET /api/goals", s.withUID(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withUID(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals/with-progress", s.withUID(s.handleGoalsWithProgress))

	mux.HandleFunc("GET /api/ai/insights", s.withUID(s.handleInsights))
	mux.HandleFunc("POST /api/ai/chat", s.withUID(s.handleChat))

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.middleware(mux, opts.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Chat waits on the model.
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// middleware wraps h, outermost first: request logger, tracing, security
// headers, CORS, then the POST rate limit.
func (s *Server) middleware(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h = s.rateLimiter.Middleware(s.ipExtractor.ClientIP, s.onRateLimited)(h)
	h = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID, "Retry-After"},
		MaxAge:         600,
	}).Handler(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	return log.Middleware(s.logger)(h)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.ipExtractor.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
