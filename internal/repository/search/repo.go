package search

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/prodassist/internal/db"
	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/request"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
	"github.com/kailas-cloud/prodassist/internal/domain/search/strategy"
)

const (
	fieldContent  = "__content"
	fieldVector   = "__vector"
	internalField = "__"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs retrieval requests against one collection's FT index.
type Repo struct {
	store    store
	embedder domain.Embedder
	keyspace db.Keyspace
}

// New creates a search repository.
func New(s store, e domain.Embedder, ks db.Keyspace) *Repo {
	return &Repo{store: s, embedder: e, keyspace: ks}
}

// Search embeds the query and dispatches a single KNN search.
// Similarity returns the service ranking as is. MMR fetches FetchK candidates,
// drops those below ScoreThreshold and reranks the rest down to K.
func (r *Repo) Search(ctx context.Context, req request.Request) ([]result.Document, error) {
	emb, err := r.embedder.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	if req.Strategy() == strategy.MMR {
		return r.searchMMR(ctx, req, emb.Embedding)
	}
	return r.searchSimilarity(ctx, req, emb.Embedding)
}

func (r *Repo) searchSimilarity(ctx context.Context, req request.Request, vec []float32) ([]result.Document, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.keyspace.IndexName(),
		Vector:    vec,
		K:         req.K(),
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.keyspace.IndexName(), err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	docs := make([]result.Document, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		docs = append(docs, r.toDocument(entry))
	}
	return docs, nil
}

func (r *Repo) searchMMR(ctx context.Context, req request.Request, vec []float32) ([]result.Document, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:     r.keyspace.IndexName(),
		Vector:        vec,
		K:             req.FetchK(),
		IncludeVector: true,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.keyspace.IndexName(), err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	candidates := make([]candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Score < req.ScoreThreshold() {
			continue
		}
		candidates = append(candidates, candidate{
			doc:    r.toDocument(entry),
			vector: bytesToVector(entry.Fields[fieldVector]),
		})
	}

	picked := newMMRReranker(req.LambdaMult()).rerank(candidates, req.K())
	if len(picked) == 0 {
		return nil, nil
	}
	docs := make([]result.Document, len(picked))
	for i, c := range picked {
		docs[i] = c.doc
	}
	return docs, nil
}

// toDocument maps hash fields to a document. Canonical finite numbers become float64,
// "true"/"false" become bool, and internal "__" fields other than content are dropped.
func (r *Repo) toDocument(entry db.SearchEntry) result.Document {
	var content string
	metadata := make(map[string]any, len(entry.Fields))

	for k, v := range entry.Fields {
		switch {
		case k == fieldContent:
			content = v
		case strings.HasPrefix(k, internalField):
			// vector, score and other reserved fields
		default:
			metadata[k] = scalar(v)
		}
	}

	return result.New(r.keyspace.DocumentID(entry.Key), entry.Score, content, metadata)
}

// scalar converts v only when the conversion round-trips to the same text,
// so "000123", "1e3" and "NaN" stay strings.
func scalar(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil &&
		!math.IsInf(f, 0) && !math.IsNaN(f) &&
		strconv.FormatFloat(f, 'f', -1, 64) == v {
		return f
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// bytesToVector deserializes a little-endian FLOAT32 blob. Malformed input yields nil.
func bytesToVector(s string) []float32 {
	if s == "" || len(s)%4 != 0 {
		return nil
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
