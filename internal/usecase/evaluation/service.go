package evaluation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domeval "github.com/kailas-cloud/prodassist/internal/domain/evaluation"
	"github.com/kailas-cloud/prodassist/internal/logger"
)

// Service scores answers against the contexts the gateway retrieves and logs the results.
type Service struct {
	retriever Retriever
	scorer    Scorer
	repo      Repository
	strategy  string
	logger    *zap.Logger
}

// New creates an evaluation service. strategy labels stored records.
func New(retriever Retriever, scorer Scorer, repo Repository, strategy string, l *zap.Logger) *Service {
	return &Service{retriever: retriever, scorer: scorer, repo: repo, strategy: strategy, logger: l}
}

// Evaluate scores one sample. Missing contexts are retrieved for the sample's query.
func (s *Service) Evaluate(ctx context.Context, sample domeval.Sample) (domeval.Record, error) {
	if err := sample.Validate(); err != nil {
		return domeval.Record{}, err
	}

	if sample.Contexts == nil {
		set, err := s.retriever.Retrieve(ctx, sample.Query)
		if err != nil {
			return domeval.Record{}, fmt.Errorf("retrieve contexts: %w", err)
		}
		sample.Contexts = set.Contents()
	}

	scores, err := s.scorer.Score(ctx, sample)
	if err != nil {
		return domeval.Record{}, fmt.Errorf("score sample: %w", err)
	}

	rec, err := s.repo.Save(ctx, domeval.Record{
		Sample:   sample,
		Strategy: s.strategy,
		Scores:   scores,
	})
	if err != nil {
		return domeval.Record{}, fmt.Errorf("save evaluation: %w", err)
	}

	logger.FromContext(ctx, s.logger).Info("Evaluation recorded",
		zap.String("id", rec.ID),
		zap.Int("contexts", len(sample.Contexts)),
		zap.Float64("context_precision", scores.ContextPrecision),
		zap.Float64("response_relevancy", scores.ResponseRelevancy))
	return rec, nil
}

// Get returns one stored evaluation. Unknown IDs yield domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (domeval.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domeval.Record{}, fmt.Errorf("get evaluation: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit stored evaluations, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]domeval.Record, error) {
	recs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return recs, nil
}
