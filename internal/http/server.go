package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/cache"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

const (
	dashboardCacheSize = 32
	cacheCleanInterval = time.Minute
)

// ReadyFunc reports whether the backing store can serve requests.
type ReadyFunc func(ctx context.Context) error

type Options struct {
	Addr               string
	Logger             *applog.Logger
	RateLimitPerMinute int
	// CacheTTL bounds how stale a dashboard may be when another process
	// writes the same store. Zero disables the cache.
	CacheTTL time.Duration
	Ready    ReadyFunc
}

// Server exposes the ledger as a JSON API.
type Server struct {
	*http.Server
	ledger    *services.Ledger
	ready     ReadyFunc
	logger    *applog.Logger
	dashboard *cache.LRUCache[aggregate.Dashboard]
	// cacheGen advances on every invalidation; a dashboard computed under an
	// older generation is never stored.
	cacheMu   sync.Mutex
	cacheGen  uint64
	caches    *cache.Manager
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	trace     *trace.Middleware
	startTime time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. The chain runs tracing first so
// every response, rejected ones included, is logged with its request id.
func NewServer(ledger *services.Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		ledger:    ledger,
		ready:     opts.Ready,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		dashboard: cache.NewLRUCache[aggregate.Dashboard](dashboardCacheSize, opts.CacheTTL),
		caches:    cache.NewManager(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:  security.NewDetector(),
		startTime: time.Now(),
	}
	s.trace = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.caches.Register(s.dashboard)
	s.caches.StartCleanup(cacheCleanInterval)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingOnly, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.trace.Middleware(handler)

	s.Server = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleEditTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/convert", s.handleConvert)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)

	mux.HandleFunc("GET /api/budget", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budget", s.handlePutBudget)
	mux.HandleFunc("DELETE /api/budget", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export.json", s.handleExportJSON)
	mux.HandleFunc("POST /api/import", s.handleImport)
}

// invalidate drops cached dashboards after any committed mutation.
func (s *Server) invalidate() {
	s.cacheMu.Lock()
	s.cacheGen++
	s.dashboard.Purge()
	s.cacheMu.Unlock()
}

func (s *Server) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cacheGen
}

// storeDashboard caches d unless a mutation committed since gen was read.
func (s *Server) storeDashboard(gen uint64, key string, d aggregate.Dashboard) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if gen == s.cacheGen {
		s.dashboard.Set(key, d)
	}
}

// fail logs unexpected errors and writes the mapped response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := errorFor(err)
	if resp.statusCode >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldOperation, op,
			applog.FieldError, err)
	} else {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
			applog.FieldOperation, op,
			applog.FieldError, err)
	}
	resp.Write(w)
}

// Shutdown stops background work then drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		s.limiter.Stop()
		s.caches.Stop()
		err = s.Server.Shutdown(ctx)
		if err != nil {
			slog.Error("HTTP server shutdown error", applog.FieldComponent, applog.ComponentHTTP, applog.FieldError, err)
		}
	})
	return err
}
