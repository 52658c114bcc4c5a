// Package service holds the transport-independent logic behind the HTTP
// API: stateless windows over a sequence and a store of stateful sessions.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/fibseq/internal/iterator"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/pkg/models"
)

var (
	// ErrMaxCountExceeded is returned when a window asks for more terms than
	// Limits.MaxCount.
	ErrMaxCountExceeded = errors.New("maximum count exceeded")
	// ErrMaxSkipExceeded is returned when a window skips more than
	// Limits.MaxSkip terms.
	ErrMaxSkipExceeded = errors.New("maximum skip exceeded")
	// ErrUnknownSession is returned for ids that were never opened, were
	// closed, or expired.
	ErrUnknownSession = errors.New("unknown session")
	// ErrTooManySessions is returned by Open when the store is full.
	ErrTooManySessions = errors.New("too many open sessions")
)

// Service is the API consumed by the HTTP handlers.
type Service interface {
	// Kinds lists the registered sequence kinds.
	Kinds() []models.KindInfo

	// Window drives a fresh instance of kind with plan and returns the
	// terms. Nothing is retained between calls.
	Window(ctx context.Context, kind string, plan orchestration.Plan) ([]models.Term, error)

	// Open creates a session over a fresh instance of kind.
	Open(kind string) (models.SessionResponse, error)
	// Next advances a session once. A true reset is the control value for
	// that call, so it shows from the following call on.
	Next(id string, reset bool) (models.SessionResponse, error)
	// Close discards a session.
	Close(id string) error
	// Sessions returns the number of open sessions.
	Sessions() int
}

// Limits bounds the work a single client can request.
type Limits struct {
	MaxCount    uint64
	MaxSkip     uint64
	MaxSessions int
	SessionTTL  time.Duration
}

// DefaultLimits returns the limits used by the server when none are given.
func DefaultLimits() Limits {
	return Limits{
		MaxCount:    10_000,
		MaxSkip:     10_000_000,
		MaxSessions: 1_024,
		SessionTTL:  15 * time.Minute,
	}
}

// session owns one sequence instance. mu serializes calls on it; the core
// sequence is not safe for concurrent use.
type session struct {
	mu       sync.Mutex
	id       string
	kind     string
	src      sequence.Source
	calls    uint64
	lastUsed time.Time
}

// SequenceService implements Service on top of a sequence.Factory.
type SequenceService struct {
	factory   sequence.Factory
	limits    Limits
	logger    logging.Logger
	observers []orchestration.Observer
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

var _ Service = (*SequenceService)(nil)

// Option configures a SequenceService.
type Option func(*SequenceService)

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(l logging.Logger) Option {
	return func(s *SequenceService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObservers attaches observers to every Window and Next call.
func WithObservers(observers ...orchestration.Observer) Option {
	return func(s *SequenceService) {
		s.observers = append(s.observers, observers...)
	}
}

// WithClock replaces time.Now, for tests of session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *SequenceService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSequenceService creates a service. Zero fields of limits fall back to
// DefaultLimits.
func NewSequenceService(factory sequence.Factory, limits Limits, opts ...Option) *SequenceService {
	def := DefaultLimits()
	if limits.MaxCount == 0 {
		limits.MaxCount = def.MaxCount
	}
	if limits.MaxSkip == 0 {
		limits.MaxSkip = def.MaxSkip
	}
	if limits.MaxSessions <= 0 {
		limits.MaxSessions = def.MaxSessions
	}
	if limits.SessionTTL <= 0 {
		limits.SessionTTL = def.SessionTTL
	}
	s := &SequenceService{
		factory:  factory,
		limits:   limits,
		logger:   logging.NewNopLogger(),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the effective limits.
func (s *SequenceService) Limits() Limits { return s.limits }

func (s *SequenceService) Kinds() []models.KindInfo {
	names := s.factory.List()
	kinds := make([]models.KindInfo, len(names))
	for i, name := range names {
		kinds[i] = models.KindInfo{Name: name, Description: s.factory.Describe(name)}
	}
	return kinds
}

func (s *SequenceService) Window(ctx context.Context, kind string, plan orchestration.Plan) ([]models.Term, error) {
	if plan.Count == 0 || plan.Count > s.limits.MaxCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrMaxCountExceeded, s.limits.MaxCount)
	}
	if plan.Skip > s.limits.MaxSkip {
		return nil, fmt.Errorf("%w: skip must not exceed %d", ErrMaxSkipExceeded, s.limits.MaxSkip)
	}
	src, err := s.factory.Create(kind)
	if err != nil {
		return nil, err
	}

	terms := make([]models.Term, 0, plan.Count)
	res := orchestration.Drive(ctx, kind, src, plan, func(t orchestration.Term) error {
		terms = append(terms, models.NewTerm(t.Call, t.Index, t.Value, t.Reset))
		return nil
	}, s.observers...)
	if res.Err != nil {
		return nil, res.Err
	}
	return terms, nil
}

func (s *SequenceService) Open(kind string) (models.SessionResponse, error) {
	src, err := s.factory.Create(kind)
	if err != nil {
		return models.SessionResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	if len(s.sessions) >= s.limits.MaxSessions {
		return models.SessionResponse{}, ErrTooManySessions
	}

	sess := &session{id: uuid.NewString(), kind: kind, src: src, lastUsed: s.now()}
	s.sessions[sess.id] = sess
	s.logger.Debug("session opened", logging.String("session", sess.id), logging.String("kind", kind))
	return models.SessionResponse{ID: sess.id, Kind: kind}, nil
}

func (s *SequenceService) Next(id string, reset bool) (models.SessionResponse, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return models.SessionResponse{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	index := sess.src.Index()
	v, _ := iterator.Unpack(sess.src.Resume(reset))
	term := orchestration.Term{Call: sess.calls, Index: index, Value: v, Reset: reset}
	sess.calls++
	for _, o := range s.observers {
		o.Observe(orchestration.Event{Name: sess.kind, Term: term})
	}

	wire := models.NewTerm(term.Call, term.Index, term.Value, term.Reset)
	return models.SessionResponse{ID: sess.id, Kind: sess.kind, Index: sess.src.Index(), Term: &wire}, nil
}

func (s *SequenceService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrUnknownSession
	}
	delete(s.sessions, id)
	s.logger.Debug("session closed", logging.String("session", id))
	return nil
}

func (s *SequenceService) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	return len(s.sessions)
}

// lookup finds a live session and refreshes its idle timer.
func (s *SequenceService) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	sess.lastUsed = s.now()
	return sess, nil
}

// Evict drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *SequenceService) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

func (s *SequenceService) evictLocked() int {
	cutoff := s.now().Add(-s.limits.SessionTTL)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("expired sessions evicted", logging.Int("count", evicted))
	}
	return evicted
}

// RunJanitor calls Evict every interval until ctx is done.
func (s *SequenceService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Evict()
		case <-ctx.Done():
			return
		}
	}
}
