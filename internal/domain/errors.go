package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrConfiguration signals missing credentials or an invalid search configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream signals a failure of the vector-search service or one of its collaborators.
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidQuery signals an empty or oversized query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrGatewayFailed signals a gateway that failed to connect and can no longer serve.
	ErrGatewayFailed = errors.New("retrieval gateway failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a chat-completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// ConfigurationError lists every missing credential and configuration problem at once.
type ConfigurationError struct {
	Missing  []string
	Problems []string
}

// NewMissingCredentials creates a ConfigurationError for the given credential names.
func NewMissingCredentials(names ...string) *ConfigurationError {
	missing := append([]string(nil), names...)
	sort.Strings(missing)
	return &ConfigurationError{Missing: missing}
}

// NewInvalidConfiguration creates a ConfigurationError describing invalid settings.
func NewInvalidConfiguration(problems ...string) *ConfigurationError {
	return &ConfigurationError{Problems: append([]string(nil), problems...)}
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required credentials: "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Problems...)
	if len(parts) == 0 {
		return ErrConfiguration.Error()
	}
	return ErrConfiguration.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// UpstreamError wraps a failed call to an external collaborator with the operation name.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return ErrUpstream.Error() + ": " + e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both ErrUpstream and the underlying cause to errors.Is/As.
func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

// NewUpstream wraps err as an UpstreamError. A nil err stays nil.
func NewUpstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}
