package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigurationError_ListsEveryMissingName(t *testing.T) {
	err := NewMissingCredentials("VECTOR_STORE_TOKEN", "OPENAI_API_KEY")

	if !errors.Is(err, ErrConfiguration) {
		t.Fatal("expected ErrConfiguration")
	}
	msg := err.Error()
	for _, name := range []string{"OPENAI_API_KEY", "VECTOR_STORE_TOKEN"} {
		if !strings.Contains(msg, name) {
			t.Errorf("message %q does not mention %s", msg, name)
		}
	}
	if err.Missing[0] != "OPENAI_API_KEY" {
		t.Errorf("expected sorted names, got %v", err.Missing)
	}
}

func TestConfigurationError_Problems(t *testing.T) {
	err := NewInvalidConfiguration("k must be positive", "fetch_k must be >= k")
	want := "configuration error: k must be positive; fetch_k must be >= k"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestUpstreamError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewUpstream("FT.SEARCH", cause)

	if !errors.Is(err, ErrUpstream) {
		t.Error("expected ErrUpstream")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Op != "FT.SEARCH" {
		t.Errorf("expected UpstreamError with op, got %v", err)
	}
	if NewUpstream("noop", nil) != nil {
		t.Error("expected nil for nil cause")
	}
}
