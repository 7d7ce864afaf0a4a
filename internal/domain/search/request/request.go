package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/options"
	"github.com/kailas-cloud/prodassist/internal/domain/search/strategy"
)

// MaxQueryLength is the maximum allowed query length in bytes.
const MaxQueryLength = 4096

// Request is a validated retrieval query bound to the startup search configuration.
type Request struct {
	query string
	cfg   options.SearchConfiguration
}

// New validates the query text. Empty, whitespace-only and oversized queries
// are rejected with domain.ErrInvalidQuery.
func New(query string, cfg options.SearchConfiguration) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("query is required: %w", domain.ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d bytes): %w", MaxQueryLength, domain.ErrInvalidQuery)
	}
	if cfg.IsZero() {
		return Request{}, domain.NewInvalidConfiguration("search configuration is not initialized")
	}
	return Request{query: query, cfg: cfg}, nil
}

// Query returns the query text as given.
func (r Request) Query() string { return r.query }

// Strategy returns the retrieval strategy.
func (r Request) Strategy() strategy.Strategy { return r.cfg.Strategy() }

// K returns the number of documents requested.
func (r Request) K() int { return r.cfg.K() }

// FetchK returns the MMR candidate pool size.
func (r Request) FetchK() int { return r.cfg.FetchK() }

// LambdaMult returns the MMR relevance/diversity trade-off.
func (r Request) LambdaMult() float64 { return r.cfg.LambdaMult() }

// ScoreThreshold returns the MMR minimum relevance.
func (r Request) ScoreThreshold() float64 { return r.cfg.ScoreThreshold() }
