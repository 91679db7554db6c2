package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFormats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "info", "json")
	log.Info("hello", "k", "v")
	if out := buf.String(); !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("json output = %q", out)
	}

	buf.Reset()
	log = New(&buf, "info", "text")
	log.Info("hello", "k", "v")
	if out := buf.String(); !strings.Contains(out, "msg=hello") || !strings.Contains(out, "k=v") {
		t.Fatalf("text output = %q", out)
	}
}

func TestNewLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
		{"bogus", false, true}, // unknown level falls back to info
	}
	for _, tc := range tests {
		log := New(&bytes.Buffer{}, tc.level, "text")
		ctx := context.Background()
		if got := log.Enabled(ctx, slog.LevelDebug); got != tc.wantDebug {
			t.Errorf("level %q: debug enabled = %v, want %v", tc.level, got, tc.wantDebug)
		}
		if got := log.Enabled(ctx, slog.LevelWarn); got != tc.wantWarn {
			t.Errorf("level %q: warn enabled = %v, want %v", tc.level, got, tc.wantWarn)
		}
	}
}
