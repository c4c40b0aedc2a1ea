package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Accounts  *services.AccountService
	Periods   *services.PeriodService
	Spends    *services.SpendService
	Insights  *services.InsightsService
	Recurring *services.RecurringService
}

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	// ReadyChecks run on /readyz, keyed by dependency name.
	ReadyChecks map[string]ReadyCheck
	Now         func() time.Time
}

type Server struct {
	http.Server
	svc      Services
	checks   map[string]ReadyCheck
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector
	now      func() time.Time
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		svc:      svc,
		checks:   opts.ReadyChecks,
		limiter:  ratelimit.NewLimiter(rlConfig),
		detector: security.NewDetector(),
		now:      opts.Now,
		started:  opts.Now(),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited,
		http.MethodPost, http.MethodPatch, http.MethodDelete)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PATCH /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("GET /api/accounts/{id}/subscription", s.handleGetSubscription)

	mux.HandleFunc("GET /api/accounts/{id}/periods", s.handleListPeriods)
	mux.HandleFunc("POST /api/accounts/{id}/periods", s.handleCreatePeriod)
	mux.HandleFunc("GET /api/periods/{id}", s.handleGetPeriod)
	mux.HandleFunc("DELETE /api/periods/{id}", s.handleDeletePeriod)
	mux.HandleFunc("GET /api/periods/{id}/insights", s.handlePeriodInsights)

	mux.HandleFunc("POST /api/accounts/{id}/spends", s.handleCreateSpend)
	mux.HandleFunc("GET /api/spends/{id}", s.handleGetSpend)
	mux.HandleFunc("PATCH /api/spends/{id}", s.handleUpdateSpend)
	mux.HandleFunc("DELETE /api/spends/{id}", s.handleDeleteSpend)

	mux.HandleFunc("GET /api/accounts/{id}/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/accounts/{id}/recurring", s.handleCreateRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)
}

// Shutdown stops background work and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		m := s.tracer.GetMetrics()
		slog.InfoContext(ctx, "HTTP server stopped",
			"requests", m.TotalRequests,
			"errors", m.TotalErrors,
			"avg_response_us", m.AverageResponseTime)
	})
	return err
}
