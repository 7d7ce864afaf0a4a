package search

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/kailas-cloud/prodassist/internal/db"
	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/options"
	"github.com/kailas-cloud/prodassist/internal/domain/search/request"
	"github.com/kailas-cloud/prodassist/internal/domain/search/strategy"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	calls       int
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.calls++
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	return m.result, m.err
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, *mockEmbedder) {
	t.Helper()
	ms := &mockStore{}
	me := &mockEmbedder{result: domain.EmbeddingResult{Embedding: testVector(), TotalTokens: 7}}
	repo := New(ms, me, db.NewKeyspace("shop", "reviews"))
	return repo, ms, me
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

func testVectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func similarityRequest(t *testing.T, query string, k int) request.Request {
	t.Helper()
	cfg, err := options.New(options.Params{Strategy: strategy.Similarity, K: k})
	if err != nil {
		t.Fatalf("options.New: %v", err)
	}
	req, err := request.New(query, cfg)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func mmrRequest(t *testing.T, query string, k, fetchK int, lambda, threshold float64) request.Request {
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
	req, err := request.New(query, cfg)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}
