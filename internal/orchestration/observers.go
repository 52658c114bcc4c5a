package orchestration

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agbru/fibseq/internal/logging"
)

// Event is published to observers after every call Drive makes.
type Event struct {
	// Name is the kind being driven.
	Name string
	// Slot identifies the run when several kinds are driven at once.
	Slot int
	// Term is the emitted term.
	Term Term
	// Total is the planned number of calls, 0 when unbounded.
	Total uint64
}

// Observer receives Drive events. Implementations must be safe for
// concurrent use because DriveAll shares them across goroutines.
type Observer interface {
	Observe(ev Event)
}

// Subject fans events out to a set of observers.
type Subject struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewSubject returns a Subject notifying the given observers in order.
// Nil observers are dropped.
func NewSubject(observers ...Observer) *Subject {
	s := &Subject{}
	for _, o := range observers {
		s.Register(o)
	}
	return s
}

// Register adds an observer. Nil is ignored.
func (s *Subject) Register(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Len returns the number of registered observers.
func (s *Subject) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Notify delivers ev to every observer.
func (s *Subject) Notify(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.Observe(ev)
	}
}

// ProgressUpdate reports how far one run has progressed.
type ProgressUpdate struct {
	Slot  int
	Value float64 // 0.0 to 1.0
}

// ChannelObserver forwards progress to a channel for the CLI spinner.
// Sends never block; updates are dropped when the channel is full.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer writing to ch. A nil channel
// discards everything.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

func (o *ChannelObserver) Observe(ev Event) {
	if o.channel == nil || ev.Total == 0 {
		return
	}
	progress := float64(ev.Term.Call+1) / float64(ev.Total)
	if progress > 1.0 {
		progress = 1.0
	}
	select {
	case o.channel <- ProgressUpdate{Slot: ev.Slot, Value: progress}:
	default:
	}
}

// LoggingObserver logs resets at info level and every n-th term at debug
// level.
type LoggingObserver struct {
	logger logging.Logger
	every  uint64
}

// NewLoggingObserver creates a LoggingObserver. With every == 0 only resets
// are logged.
func NewLoggingObserver(logger logging.Logger, every uint64) *LoggingObserver {
	return &LoggingObserver{logger: logger, every: every}
}

func (o *LoggingObserver) Observe(ev Event) {
	fields := []logging.Field{
		logging.String("kind", ev.Name),
		logging.Uint64("call", ev.Term.Call),
		logging.Uint64("index", ev.Term.Index),
		logging.Big("value", ev.Term.Value),
	}
	if ev.Term.Reset {
		o.logger.Info("reset signal sent", fields...)
		return
	}
	if o.every > 0 && ev.Term.Call%o.every == 0 {
		o.logger.Debug("term produced", fields...)
	}
}

var (
	termsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fibseq_terms_total",
			Help: "Number of terms emitted, by sequence kind.",
		},
		[]string{"kind"},
	)
	resetsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fibseq_resets_total",
			Help: "Number of reset signals delivered, by sequence kind.",
		},
		[]string{"kind"},
	)
	termBitsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fibseq_last_term_bits",
			Help: "Bit length of the most recently emitted term, by sequence kind.",
		},
		[]string{"kind"},
	)
)

// MetricsObserver exports term and reset counts to Prometheus.
type MetricsObserver struct {
	terms  *prometheus.CounterVec
	resets *prometheus.CounterVec
	bits   *prometheus.GaugeVec
}

// NewMetricsObserver returns an observer bound to the process-wide
// fibseq_* collectors.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{terms: termsCounter, resets: resetsCounter, bits: termBitsGauge}
}

func (o *MetricsObserver) Observe(ev Event) {
	o.terms.WithLabelValues(ev.Name).Inc()
	if ev.Term.Reset {
		o.resets.WithLabelValues(ev.Name).Inc()
	}
	if ev.Term.Value != nil {
		o.bits.WithLabelValues(ev.Name).Set(float64(ev.Term.Value.BitLen()))
	}
}

// NoOpObserver discards events.
type NoOpObserver struct{}

func (NoOpObserver) Observe(Event) {}

var (
	_ Observer = (*ChannelObserver)(nil)
	_ Observer = (*LoggingObserver)(nil)
	_ Observer = (*MetricsObserver)(nil)
	_ Observer = NoOpObserver{}
)
