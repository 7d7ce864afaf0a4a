package evaluation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/prodassist/internal/domain"
	domeval "github.com/kailas-cloud/prodassist/internal/domain/evaluation"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
)

// mockCompleter routes prompts by a substring of the user message.
type mockCompleter struct {
	completeFn func(system, user string) (string, error)
	calls      int
}

func (m *mockCompleter) Complete(_ context.Context, system, user string) (string, error) {
	m.calls++
	return m.completeFn(system, user)
}

// mapEmbedder returns a fixed vector per text, or a default one.
type mapEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mapEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: v}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{0, 0, 1}}, nil
}

type mockRetriever struct {
	contents []string
	err      error
	queries  []string
}

func (m *mockRetriever) Retrieve(_ context.Context, query string) (result.Set, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return result.Set{}, m.err
	}
	docs := make([]result.Document, len(m.contents))
	for i, c := range m.contents {
		docs[i] = result.New(c, 0.9, c, nil)
	}
	return result.NewSet(docs), nil
}

type mockScorer struct {
	scoreFn func(s domeval.Sample) (domeval.Scores, error)
	samples []domeval.Sample
}

func (m *mockScorer) Score(_ context.Context, s domeval.Sample) (domeval.Scores, error) {
	m.samples = append(m.samples, s)
	if m.scoreFn != nil {
		return m.scoreFn(s)
	}
	return domeval.Scores{ContextPrecision: 1, ResponseRelevancy: 1}, nil
}

type mockRepository struct {
	saved   []domeval.Record
	saveErr error
}

func (m *mockRepository) Save(_ context.Context, rec domeval.Record) (domeval.Record, error) {
	if m.saveErr != nil {
		return domeval.Record{}, m.saveErr
	}
	rec.ID = "rec-" + strings.Repeat("x", len(m.saved)+1)
	m.saved = append(m.saved, rec)
	return rec, nil
}

func (m *mockRepository) Get(_ context.Context, id string) (domeval.Record, error) {
	for _, rec := range m.saved {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domeval.Record{}, fmt.Errorf("evaluation %s: %w", id, domain.ErrNotFound)
}

func (m *mockRepository) List(_ context.Context, limit int) ([]domeval.Record, error) {
	out := make([]domeval.Record, 0, len(m.saved))
	for i := len(m.saved) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.saved[i])
	}
	return out, nil
}
