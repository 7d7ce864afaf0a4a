package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_Envs(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		l, err := NewLogger(env, "")
		if err != nil {
			t.Fatalf("env %s: unexpected error: %v", env, err)
		}
		if l == nil {
			t.Fatalf("env %s: nil logger", env)
		}
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging", ""); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestFromContext(t *testing.T) {
	fallback := zap.NewExample()
	if FromContext(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger")
	}
	if FromContext(context.Background(), nil) == nil {
		t.Error("expected no-op logger")
	}

	reqLogger := zap.NewExample().With(zap.String("request_id", "r1"))
	ctx := ContextWithLogger(context.Background(), reqLogger)
	if FromContext(ctx, fallback) != reqLogger {
		t.Error("expected request-scoped logger")
	}
}
