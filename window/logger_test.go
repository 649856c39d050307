package window

import (
	"context"
	"log/slog"
	"testing"
)

func TestHeadlessDefaultLoggerSilent(t *testing.T) {
	h := NewHeadless(1, 1)
	if _, ok := h.logger.Handler().(nopHandler); !ok {
		t.Errorf("default handler = %T, want nopHandler", h.logger.Handler())
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelWarn, slog.LevelError} {
		if h.logger.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}

	h = NewHeadless(1, 1, WithLogger(nil))
	if _, ok := h.logger.Handler().(nopHandler); !ok {
		t.Errorf("WithLogger(nil) handler = %T, want nopHandler", h.logger.Handler())
	}
}
