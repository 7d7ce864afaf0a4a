package evalstore

import (
	"time"

	"github.com/kailas-cloud/prodassist/internal/domain/evaluation"
)

// recordDTO is the JSON layout of a stored evaluation.
type recordDTO struct {
	ID                string   `json:"id"`
	Query             string   `json:"query"`
	Response          string   `json:"response"`
	Contexts          []string `json:"contexts"`
	Strategy          string   `json:"strategy"`
	ContextPrecision  float64  `json:"context_precision"`
	ResponseRelevancy float64  `json:"response_relevancy"`
	CreatedAt         int64    `json:"created_at"` // unix millis
}

func toDTO(r evaluation.Record) recordDTO {
	return recordDTO{
		ID:                r.ID,
		Query:             r.Sample.Query,
		Response:          r.Sample.Response,
		Contexts:          r.Sample.Contexts,
		Strategy:          r.Strategy,
		ContextPrecision:  r.Scores.ContextPrecision,
		ResponseRelevancy: r.Scores.ResponseRelevancy,
		CreatedAt:         r.CreatedAt.UnixMilli(),
	}
}

func (d recordDTO) toDomain() evaluation.Record {
	return evaluation.Record{
		ID: d.ID,
		Sample: evaluation.Sample{
			Query:    d.Query,
			Response: d.Response,
			Contexts: d.Contexts,
		},
		Strategy: d.Strategy,
		Scores: evaluation.Scores{
			ContextPrecision:  d.ContextPrecision,
			ResponseRelevancy: d.ResponseRelevancy,
		},
		CreatedAt: time.UnixMilli(d.CreatedAt),
	}
}
