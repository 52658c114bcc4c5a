package server

import (
	"log"
	"time"

	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/service"
)

// Option defines a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStdLogger sets a standard library log.Logger for the server.
func WithStdLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logging.NewStdLoggerAdapter(logger)
		}
	}
}

// WithService replaces the service built from the factory, typically with
// a fake in tests. A nil service keeps the default.
func WithService(svc service.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.service = svc
		}
	}
}

// WithTimeouts sets custom timeout configuration for the server.
func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) {
		s.timeouts = timeouts
	}
}

// WithMaxCount caps the count a single /sequence request may ask for.
func WithMaxCount(maxCount uint64) Option {
	return func(s *Server) {
		s.limits.MaxCount = maxCount
	}
}

// WithMaxSkip caps the skip a single /sequence request may ask for.
func WithMaxSkip(maxSkip uint64) Option {
	return func(s *Server) {
		s.limits.MaxSkip = maxSkip
	}
}

// Timeouts holds timeout configuration for the HTTP server.
type Timeouts struct {
	// RequestTimeout bounds a single /sequence window.
	RequestTimeout time.Duration
	// ShutdownTimeout is the maximum duration allowed for graceful shutdown.
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}
