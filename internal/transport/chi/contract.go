package chi

import (
	"context"

	domeval "github.com/kailas-cloud/prodassist/internal/domain/evaluation"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/prodassist/internal/usecase/health"
	"github.com/kailas-cloud/prodassist/internal/usecase/retrieval"
)

// Retriever runs retrievals and reports the gateway lifecycle.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (result.Set, error)
	State() retrieval.State
}

// Evaluator scores samples and lists the evaluation log.
type Evaluator interface {
	Evaluate(ctx context.Context, sample domeval.Sample) (domeval.Record, error)
	Get(ctx context.Context, id string) (domeval.Record, error)
	Recent(ctx context.Context, limit int) ([]domeval.Record, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
