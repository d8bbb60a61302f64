package observability

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLoggerForwardsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := SlogLogger{L: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	log.Debug("debug line", "k", "v")
	log.Info("issue created", "id", "ISSUE-1")
	log.Warn("warn line")
	log.Error("error line", "err", "boom")

	out := buf.String()
	for _, want := range []string{"issue created", "id=ISSUE-1", "debug line", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	var log Logger = NopLogger{}
	log.Debug("x")
	log.Info("x")
	log.Warn("x")
	log.Error("x")
}
