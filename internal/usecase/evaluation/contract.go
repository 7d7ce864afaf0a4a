package evaluation

import (
	"context"

	"github.com/kailas-cloud/prodassist/internal/domain"
	domeval "github.com/kailas-cloud/prodassist/internal/domain/evaluation"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
)

// Retriever fetches contexts for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (result.Set, error)
}

// Completer sends a single chat exchange to a language model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Scorer computes quality metrics for a sample whose contexts are known.
type Scorer interface {
	Score(ctx context.Context, s domeval.Sample) (domeval.Scores, error)
}

// Repository persists evaluation records.
type Repository interface {
	Save(ctx context.Context, rec domeval.Record) (domeval.Record, error)
	Get(ctx context.Context, id string) (domeval.Record, error)
	List(ctx context.Context, limit int) ([]domeval.Record, error)
}
