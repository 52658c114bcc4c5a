package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibseq/internal/config"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/iterator"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/testutil"
	"github.com/agbru/fibseq/pkg/models"
)

func newTestApp(cfg config.AppConfig) *Application {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	cfg.NoColor = true
	return &Application{
		Config:    cfg,
		Factory:   sequence.NewDefaultFactory(),
		ErrWriter: io.Discard,
	}
}

func run(t *testing.T, a *Application) (string, int) {
	t.Helper()
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)
	return testutil.StripAnsiCodes(out.String()), code
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid args", func(t *testing.T) {
		t.Parallel()
		a, err := New([]string{"fibseq", "-kind", "lucas", "-count", "5", "-reset-at", "2"}, io.Discard)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if a.Config.Kind != "lucas" || a.Config.Count != 5 || len(a.Config.ResetAt) != 1 {
			t.Errorf("Config = %+v", a.Config)
		}
		if a.Factory == nil {
			t.Error("Factory is nil")
		}
	})

	t.Run("invalid flag", func(t *testing.T) {
		t.Parallel()
		if a, err := New([]string{"fibseq", "-bogus"}, io.Discard); err == nil || a != nil {
			t.Errorf("New() = %v, %v; want an error", a, err)
		}
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		_, err := New([]string{"fibseq", "-h"}, io.Discard)
		if !IsHelpError(err) {
			t.Errorf("err = %v, want flag.ErrHelp", err)
		}
	})
}

func TestRun_ResetScenario(t *testing.T) {
	t.Parallel()

	out, code := run(t, newTestApp(config.AppConfig{
		Kind: "fibonacci", Count: 11, ResetAt: []uint64{7}, Quiet: true,
	}))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if want := "0\n1\n1\n2\n3\n5\n8\n13\n0\n1\n1\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRun_Streaming(t *testing.T) {
	t.Parallel()

	out, code := run(t, newTestApp(config.AppConfig{Kind: "lucas", Count: 4, ResetAt: []uint64{1}}))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out)
	}
	for _, want := range []string{
		"Pulling 4 terms of lucas",
		"#1    S(1) = 1  <- reset",
		"#2    S(0) = 2",
		"Terms produced : 4",
		"Reset signals  : 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_Items(t *testing.T) {
	t.Parallel()

	out, code := run(t, newTestApp(config.AppConfig{
		Kind:  config.DefaultKind,
		Count: 10,
		Items: []*big.Int{big.NewInt(4), big.NewInt(5), big.NewInt(6)},
		Quiet: true,
	}))
	if code != apperrors.ExitSuccess || out != "4\n5\n6\n" {
		t.Errorf("code = %d, output = %q", code, out)
	}
}

func TestRun_Seed(t *testing.T) {
	t.Parallel()

	out, code := run(t, newTestApp(config.AppConfig{
		Kind: "fibonacci", Count: 6, ResetAt: []uint64{3}, First: "5", Second: "8", Quiet: true,
	}))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if want := "5\n8\n13\n21\n5\n8\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRun_JSON(t *testing.T) {
	t.Parallel()

	out, code := run(t, newTestApp(config.AppConfig{Kind: config.KindAll, Count: 3, JSONOutput: true}))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	var got []models.SequenceResponse
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got) != 3 || got[0].Kind != "counter" || got[1].Kind != "fibonacci" || got[2].Kind != "lucas" {
		t.Fatalf("responses = %+v", got)
	}
	if got[2].Terms[2].Value != "3" {
		t.Errorf("lucas terms = %+v", got[2].Terms)
	}
}

func TestRun_AllKinds(t *testing.T) {
	t.Parallel()

	out, code := run(t, newTestApp(config.AppConfig{Kind: config.KindAll, Count: 5, ResetAt: []uint64{2}}))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out)
	}
	for _, want := range []string{"--- counter ---", "--- lucas ---", "Global Status: Success. 3 sequences completed."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_Verify(t *testing.T) {
	t.Parallel()

	out, code := run(t, newTestApp(config.AppConfig{
		Kind: config.KindAll, Count: 50, ResetAt: []uint64{10, 30}, Skip: 7, Verify: true,
	}))
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out)
	}
	if strings.Count(out, "replay matches") != 3 {
		t.Errorf("output:\n%s", out)
	}
}

func TestRun_Timeout(t *testing.T) {
	t.Parallel()

	a := newTestApp(config.AppConfig{Kind: "fibonacci", Quiet: true, Timeout: 20 * time.Millisecond})
	if code := a.Run(context.Background(), io.Discard); code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
}

func TestRun_Completion(t *testing.T) {
	t.Parallel()

	out, code := run(t, newTestApp(config.AppConfig{Completion: "bash"}))
	if code != apperrors.ExitSuccess || !strings.Contains(out, "_fibseq_completions") {
		t.Errorf("code = %d, output:\n%s", code, out)
	}

	var errBuf bytes.Buffer
	a := newTestApp(config.AppConfig{Completion: "tcsh"})
	a.ErrWriter = &errBuf
	if code := a.Run(context.Background(), io.Discard); code != apperrors.ExitErrorConfig {
		t.Errorf("unsupported shell exit code = %d", code)
	}
	if !strings.Contains(errBuf.String(), "unsupported shell") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestRun_REPL(t *testing.T) {
	t.Parallel()

	a := newTestApp(config.AppConfig{Interactive: true, Kind: "lucas"})
	a.In = strings.NewReader("next\nnext reset\nnext\nexit\n")
	out, code := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"S(0) = 2", "S(1) = 1  <- reset", "#2    S(0) = 2", "Goodbye!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFactory_Seeded(t *testing.T) {
	t.Parallel()

	a := newTestApp(config.AppConfig{Kind: "fibonacci", First: "2", Second: "7"})
	f := a.factory()
	src, err := f.Create("fibonacci")
	if err != nil {
		t.Fatal(err)
	}
	got := iterator.Take[*big.Int](src, 3)
	if got[0].Int64() != 2 || got[1].Int64() != 7 || got[2].Int64() != 9 {
		t.Errorf("seeded terms = %v", got)
	}
	if _, err := f.Create("lucas"); err != nil {
		t.Errorf("other kinds lost: %v", err)
	}
	if newTestApp(config.AppConfig{}).factory() == nil {
		t.Error("unseeded factory is nil")
	}
}

func TestMain_Entry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"version", []string{"fibseq", "-server", "--version"}, apperrors.ExitSuccess, "fibseq " + Version},
		{"help", []string{"fibseq", "-h"}, apperrors.ExitSuccess, ""},
		{"config error", []string{"fibseq", "-kind", "nope"}, apperrors.ExitErrorConfig, ""},
		{"run", []string{"fibseq", "-count", "3", "-q", "-hex", "-no-color", "-kind", "lucas"}, apperrors.ExitSuccess, "0x2\n0x1\n0x3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if code := Main(context.Background(), tt.args, &out, io.Discard); code != tt.code {
				t.Errorf("Main() = %d, want %d", code, tt.code)
			}
			if got := testutil.StripAnsiCodes(out.String()); !strings.Contains(got, tt.want) {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetupLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := SetupLifecycle(context.Background(), 10*time.Millisecond)
	defer cancel.Cleanup()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by timeout")
	}
	(&CancelFuncs{}).Cleanup()
}
