package retrieval

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/options"
	"github.com/kailas-cloud/prodassist/internal/domain/search/request"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
	"github.com/kailas-cloud/prodassist/internal/domain/search/strategy"
)

// mockConnection implements Connection for tests.
type mockConnection struct {
	mu       sync.Mutex
	searchFn func(ctx context.Context, req request.Request) ([]result.Document, error)
	pingErr  error
	requests []request.Request
	closed   bool
}

func (m *mockConnection) Search(ctx context.Context, req request.Request) ([]result.Document, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return nil, nil
}

func (m *mockConnection) Ping(_ context.Context) error { return m.pingErr }

func (m *mockConnection) Close() { m.closed = true }

func (m *mockConnection) searches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// countingConnector hands out conn and counts Connect calls.
type countingConnector struct {
	conn  Connection
	err   error
	calls atomic.Int32
	creds domain.Credentials
}

func (c *countingConnector) Connect(_ context.Context, creds domain.Credentials) (Connection, error) {
	c.calls.Add(1)
	c.creds = creds
	if c.err != nil {
		return nil, c.err
	}
	return c.conn, nil
}

// mockPostProcessor implements PostProcessor for tests.
type mockPostProcessor struct {
	processFn func(ctx context.Context, query string, docs []result.Document) ([]result.Document, error)
	calls     int
}

func (m *mockPostProcessor) Process(
	ctx context.Context, query string, docs []result.Document,
) ([]result.Document, error) {
	m.calls++
	return m.processFn(ctx, query, docs)
}

func validCredentials() domain.Credentials {
	return domain.Credentials{
		EmbeddingAPIKey:      "sk-test",
		VectorStoreEndpoint:  "localhost:6379",
		VectorStoreToken:     "token",
		VectorStoreNamespace: "shop",
	}
}

func similarityConfig(t *testing.T, k int) options.SearchConfiguration {
	t.Helper()
	cfg, err := options.New(options.Params{Strategy: strategy.Similarity, K: k})
	if err != nil {
		t.Fatalf("options.New: %v", err)
	}
	return cfg
}

func mmrConfig(t *testing.T, k, fetchK int, lambda, threshold float64) options.SearchConfiguration {
	t.Helper()
	cfg, err := options.New(options.Params{
		Strategy:       strategy.MMR,
		K:              k,
		FetchK:         fetchK,
		LambdaMult:     &lambda,
		ScoreThreshold: threshold,
	})
	if err != nil {
		t.Fatalf("options.New: %v", err)
	}
	return cfg
}

func newTestGateway(
	t *testing.T, cfg options.SearchConfiguration, opts ...Option,
) (*Gateway, *mockConnection, *countingConnector) {
	t.Helper()
	conn := &mockConnection{}
	connector := &countingConnector{conn: conn}
	g, err := New(cfg, validCredentials(), connector, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g, conn, connector
}

func docs(contents ...string) []result.Document {
	out := make([]result.Document, len(contents))
	for i, c := range contents {
		out[i] = result.New(c, 0.9, c, map[string]any{"rank": float64(i)})
	}
	return out
}
