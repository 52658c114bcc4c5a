package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/fibseq/internal/config"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/service"
)

// janitorInterval is how often expired sessions are swept.
const janitorInterval = time.Minute

// Server is the HTTP front end of the sequence service. It wraps the
// standard http.Server and adds the middleware chain and graceful shutdown.
type Server struct {
	factory        sequence.Factory
	service        service.Service
	cfg            config.AppConfig
	limits         service.Limits
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer creates a Server over the given factory. Unless WithService is
// given, a service.SequenceService is built from the factory and the limits
// in cfg.
//
// Parameters:
//   - factory: The registry sequences are created from.
//   - cfg: The application configuration (port, limits, rate limit).
//   - opts: Optional functional options (e.g., WithLogger).
func NewServer(factory sequence.Factory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
		limits: service.Limits{
			MaxCount:    cfg.MaxCount,
			MaxSkip:     cfg.MaxSkip,
			MaxSessions: cfg.MaxSessions,
			SessionTTL:  cfg.SessionTTL,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewSequenceService(s.factory, s.limits,
			service.WithLogger(s.logger),
			service.WithObservers(orchestration.NewMetricsObserver()))
	}

	if s.rateLimiter == nil {
		rlCfg := DefaultRateLimiterConfig()
		if cfg.RateLimit > 0 {
			rlCfg.RequestsPerMinute = cfg.RateLimit
		}
		s.rateLimiter = NewRateLimiter(rlCfg)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.wrapWithMiddleware(s.handleHealth))
	mux.HandleFunc("/kinds", s.wrapWithMiddleware(s.handleKinds))
	mux.HandleFunc("/sequence", s.wrapWithMiddleware(s.handleSequence))
	mux.HandleFunc("/sessions", s.wrapWithMiddleware(s.handleSessions))
	mux.HandleFunc("/sessions/next", s.wrapWithMiddleware(s.handleSessionNext))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware(s.handleMetrics))

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// wrapWithMiddleware applies Security -> RateLimit -> Logging -> Metrics.
func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Handler returns the fully wrapped request multiplexer.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured port and blocks until SIGINT or SIGTERM,
// then shuts down gracefully within Timeouts.ShutdownTimeout. While running
// it sweeps expired sessions in the background.
func (s *Server) Start() error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	bg, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if j, ok := s.service.(interface {
		RunJanitor(context.Context, time.Duration)
	}); ok {
		go j.RunJanitor(bg, janitorInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", logging.String("addr", s.httpServer.Addr))
		s.logger.Info("limits",
			logging.Uint64("max_count", s.limits.MaxCount),
			logging.Uint64("max_skip", s.limits.MaxSkip),
			logging.Int("max_sessions", s.limits.MaxSessions))
		s.logger.Printf("Available endpoints:")
		s.logger.Printf("  GET    /sequence?kind=<kind>&count=<n>&reset_at=<calls>&skip=<n>")
		s.logger.Printf("  POST   /sessions?kind=<kind>")
		s.logger.Printf("  GET    /sessions/next?id=<id>&reset=<bool>")
		s.logger.Printf("  DELETE /sessions?id=<id>")
		s.logger.Printf("  GET    /kinds, /health, /metrics")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, draining connections")
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
