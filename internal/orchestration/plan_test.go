package orchestration

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/fibseq/internal/logging"
)

// metricValue reads one labelled sample from the default registry.
func metricValue(t *testing.T, name, kind string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() != "kind" || lp.GetValue() != kind {
					continue
				}
				if c := m.GetCounter(); c != nil {
					return c.GetValue()
				}
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func TestParseCalls(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    []uint64
		wantErr bool
	}{
		{"", nil, false},
		{"7", []uint64{7}, false},
		{"21, 7,20,7", []uint64{7, 20, 21}, false},
		{" , 3 ,", []uint64{3}, false},
		{"-1", nil, true},
		{"x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCalls(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCalls(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !equal(got, tt.want) {
				t.Errorf("ParseCalls(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if !tt.wantErr && FormatCalls(got) != FormatCalls(tt.want) {
				t.Errorf("FormatCalls round trip = %q", FormatCalls(got))
			}
		})
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	p := Plan{Count: 10, ResetAt: []uint64{0, 7, 12}, Skip: 3}
	if !p.Signal(7) || p.Signal(8) {
		t.Error("Signal does not follow ResetAt")
	}
	if p.Resets() != 2 {
		t.Errorf("Resets() = %d, want 2 (call 12 is past Count)", p.Resets())
	}
	if p.String() != "count=10 reset_at=0,7,12 skip=3" {
		t.Errorf("String() = %q", p.String())
	}
	if (Plan{ResetAt: []uint64{99}}).Resets() != 1 {
		t.Error("an unbounded plan counts every reset")
	}
}

func TestChannelObserver(t *testing.T) {
	t.Parallel()

	ch := make(chan ProgressUpdate, 1)
	o := NewChannelObserver(ch)
	o.Observe(Event{Slot: 2, Term: Term{Call: 4}, Total: 10})
	// Channel full: must not block.
	o.Observe(Event{Slot: 2, Term: Term{Call: 9}, Total: 10})
	// Unbounded runs report nothing.
	NewChannelObserver(nil).Observe(Event{Total: 10})

	select {
	case u := <-ch:
		if u.Slot != 2 || u.Value != 0.5 {
			t.Errorf("update = %+v, want slot 2 at 0.5", u)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestMetricsObserver(t *testing.T) {
	t.Parallel()

	// The collectors are process-wide; use a kind name no other test uses.
	o := NewMetricsObserver()
	o.Observe(Event{Name: "metrics-test", Term: Term{Value: big.NewInt(255)}})
	o.Observe(Event{Name: "metrics-test", Term: Term{Value: big.NewInt(1), Reset: true}})

	if got := metricValue(t, "fibseq_terms_total", "metrics-test"); got != 2 {
		t.Errorf("terms = %v, want 2", got)
	}
	if got := metricValue(t, "fibseq_resets_total", "metrics-test"); got != 1 {
		t.Errorf("resets = %v, want 1", got)
	}
	if got := metricValue(t, "fibseq_last_term_bits", "metrics-test"); got != 1 {
		t.Errorf("last term bits = %v, want 1", got)
	}
}

func TestLoggingObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	o := NewLoggingObserver(logging.NewLogger(&buf, "driver"), 0)
	o.Observe(Event{Name: "fibonacci", Term: Term{Call: 3, Value: big.NewInt(2)}})
	if buf.Len() != 0 {
		t.Errorf("plain term logged with every=0: %q", buf.String())
	}
	o.Observe(Event{Name: "fibonacci", Term: Term{Call: 7, Index: 7, Value: big.NewInt(13), Reset: true}})
	if buf.Len() == 0 {
		t.Error("reset was not logged")
	}
}
