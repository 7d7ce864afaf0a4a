package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result    EmbeddingResult
	err       error
	got       string
	healthErr error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func (s *stubEmbedder) HealthCheck(_ context.Context) error { return s.healthErr }

type plainEmbedder struct{}

func (plainEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	return EmbeddingResult{}, nil
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "query: ")

	result, err := emb.Embed(context.Background(), "budget phone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "query: budget phone" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	emb := NewInstructionEmbedder(&stubEmbedder{err: innerErr}, "query: ")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestInstructionEmbedder_HealthCheck(t *testing.T) {
	healthErr := errors.New("unreachable")
	emb := NewInstructionEmbedder(&stubEmbedder{healthErr: healthErr}, "q: ")
	if err := emb.HealthCheck(context.Background()); !errors.Is(err, healthErr) {
		t.Errorf("expected health error, got %v", err)
	}

	plain := NewInstructionEmbedder(plainEmbedder{}, "q: ")
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected nil for embedder without health check, got %v", err)
	}
}

func TestEmbeddingUsage_NilSafe(t *testing.T) {
	var u *EmbeddingUsage
	u.AddTokens(10)

	ctx, usage := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(7)
	if usage.TotalTokens != 7 || !usage.Used {
		t.Errorf("unexpected usage: %+v", usage)
	}
	if UsageFromContext(context.Background()) != nil {
		t.Error("expected nil usage for bare context")
	}
}
