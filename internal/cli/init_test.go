package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartspend/internal/config"
	"smartspend/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SMARTSPEND_TEST_KEY=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SMARTSPEND_TEST_KEY", "")
	os.Unsetenv("SMARTSPEND_TEST_KEY")

	LoadEnvFile(path)
	if got := os.Getenv("SMARTSPEND_TEST_KEY"); got != "from-file" {
		t.Fatalf("env = %q, want from-file", got)
	}

	// missing files are ignored
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, log.ComponentWorker, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, `"component":"worker"`) {
		t.Fatalf("component missing from %q", out)
	}
}

func TestRunCleanup(t *testing.T) {
	if err := RunCleanup(time.Second, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunCleanup error = %v", err)
	}

	boom := errors.New("boom")
	if err := RunCleanup(time.Second, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("RunCleanup error = %v, want boom", err)
	}

	err := RunCleanup(10*time.Millisecond, func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "did not finish") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestSignalContextCancel(t *testing.T) {
	ctx, cancel := SignalContext(context.Background(), log.Nop())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled")
	}
}

func TestBuildAssistantWithoutKey(t *testing.T) {
	a := BuildAssistant(context.Background(), &config.Config{}, log.Nop())
	defer a.Close()

	if a.Advisor != nil {
		t.Fatal("advisor should stay nil without GEMINI_API_KEY")
	}
	got := a.Categorizer.SuggestCategory(context.Background(), "Pharmacy run")
	if got == nil || *got != "Health" {
		t.Fatalf("keyword categorizer suggestion = %v, want Health", got)
	}
}
