package software

import (
	"context"
	"log/slog"
	"testing"
)

func TestDeviceLoggerDefaultSilent(t *testing.T) {
	d := New()
	if _, ok := d.log().Handler().(nopHandler); !ok {
		t.Errorf("default handler = %T, want nopHandler", d.log().Handler())
	}

	d.SetLogger(slog.Default())
	d.SetLogger(nil)
	if d.log().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) left logging enabled")
	}
}
