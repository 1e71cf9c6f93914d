package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/styrkr/styrkr/internal/logging"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo)

	ctx := logging.WithAttrs(context.Background(), slog.String("trace_id", "abc"))
	child := logging.WithAttrs(ctx, slog.Int("user_id", 7))

	logger.LogAttrs(child, slog.LevelInfo, "generated program")
	logger.LogAttrs(ctx, slog.LevelDebug, "filtered out")

	out := buf.String()
	for _, want := range []string{"trace_id=abc", "user_id=7", "generated program"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
	if strings.Contains(out, "filtered out") {
		t.Errorf("debug record logged at info level: %q", out)
	}
	if got := len(logging.Attrs(ctx)); got != 1 {
		t.Errorf("parent context attrs = %d, want 1", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":  slog.LevelDebug,
		"WARN":   slog.LevelWarn,
		"error":  slog.LevelError,
		"":       slog.LevelInfo,
		"chatty": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
