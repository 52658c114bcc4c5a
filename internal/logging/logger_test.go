package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"math/big"
	"strings"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return event
}

func TestZerologAdapter_Fields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewLogger(&buf, "driver")
	log.Info("term produced",
		String("kind", "fibonacci"),
		Int("call", 3),
		Uint64("index", 7),
		Float64("ratio", 1.5),
		Bool("reset", true),
		Big("value", big.NewInt(13)),
	)

	event := decode(t, &buf)
	want := map[string]any{
		"level":     "info",
		"message":   "term produced",
		"component": "driver",
		"kind":      "fibonacci",
		"call":      float64(3),
		"index":     float64(7),
		"ratio":     1.5,
		"reset":     true,
		"value":     "13",
	}
	for k, v := range want {
		if event[k] != v {
			t.Errorf("field %q = %v, want %v", k, event[k], v)
		}
	}
	if _, ok := event["time"]; !ok {
		t.Error("event has no timestamp")
	}
}

func TestZerologAdapter_Error(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewLogger(&buf, "server").Error("request failed", errors.New("boom"), String("path", "/sequence"))

	event := decode(t, &buf)
	if event["level"] != "error" || event["error"] != "boom" || event["path"] != "/sequence" {
		t.Errorf("unexpected event: %v", event)
	}
}

func TestBig_Abbreviated(t *testing.T) {
	t.Parallel()

	huge := new(big.Int).Exp(big.NewInt(10), big.NewInt(200), nil)
	var buf bytes.Buffer
	NewLogger(&buf, "driver").Warn("large term", Big("value", huge))

	value, _ := decode(t, &buf)["value"].(string)
	if len(value) != maxBigDigits+3 || !strings.Contains(value, "...") {
		t.Errorf("abbreviated value = %q", value)
	}
}

func TestConsoleLogger_Levels(t *testing.T) {
	t.Parallel()

	var quiet, verbose bytes.Buffer
	NewConsoleLogger(&quiet, "repl", false).Debug("hidden")
	NewConsoleLogger(&verbose, "repl", true).Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("debug event written without verbose: %q", quiet.String())
	}
	if !strings.Contains(verbose.String(), "shown") {
		t.Errorf("debug event missing with verbose: %q", verbose.String())
	}
}

func TestWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewLogger(&buf, "sessions").With(String("session", "abc")).Printf("opened %d", 1)

	event := decode(t, &buf)
	if event["session"] != "abc" || event["message"] != "opened 1" {
		t.Errorf("unexpected event: %v", event)
	}
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	var log Logger = NewNopLogger()
	log.Info("ignored")
	log.Error("ignored", errors.New("x"))
}

func TestStdLoggerAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewStdLoggerAdapter(stdlog.New(&buf, "", 0))
	log.Info("session opened", String("kind", "lucas"))
	log.Error("skip failed", errors.New("canceled"), Uint64("n", 10))

	want := "[INFO] session opened kind=lucas\n[ERROR] skip failed error=canceled n=10\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
