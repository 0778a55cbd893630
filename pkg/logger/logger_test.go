package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-init must be safe.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	logger := Get()
	logger.Info(ctx, "test message", String("k", "v"), Int("n", 1), Float64("f", 0.5))
	logger.Debug(ctx, "debug message")
	logger.Warn(ctx, "warn message", Any("v", []int{1, 2}))
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	namedLogger.Info(context.Background(), "test message")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		if err := SetLevelString(in); err != nil {
			t.Fatalf("SetLevelString(%q): %v", in, err)
		}
		if got := levelVar.Level(); got != want {
			t.Errorf("SetLevelString(%q) = %v, want %v", in, got, want)
		}
	}

	if err := SetLevelString("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}
