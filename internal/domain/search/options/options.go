package options

import (
	"fmt"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/strategy"
)

// Search parameter defaults.
const (
	DefaultK          = 5
	DefaultFetchK     = 20
	DefaultLambdaMult = 0.5
)

// Params is the raw, unvalidated input for a SearchConfiguration.
// Zero FetchK and nil LambdaMult pick the defaults; K must be set explicitly.
type Params struct {
	Strategy       strategy.Strategy
	K              int
	FetchK         int
	LambdaMult     *float64
	ScoreThreshold float64
}

// SearchConfiguration is the immutable retrieval configuration selected at startup.
type SearchConfiguration struct {
	strategy       strategy.Strategy
	k              int
	fetchK         int
	lambdaMult     float64
	scoreThreshold float64
}

// New validates p and returns a SearchConfiguration.
// Every violation is reported in a single *domain.ConfigurationError.
func New(p Params) (SearchConfiguration, error) {
	var problems []string

	s := p.Strategy
	if s == "" {
		s = strategy.Similarity
	}
	if !s.IsValid() {
		problems = append(problems, fmt.Sprintf("unsupported search strategy %q", s))
	}
	if p.K <= 0 {
		problems = append(problems, fmt.Sprintf("k must be positive, got %d", p.K))
	}

	cfg := SearchConfiguration{strategy: s, k: p.K}

	if s == strategy.MMR {
		fetchK := p.FetchK
		if fetchK == 0 {
			fetchK = max(DefaultFetchK, p.K)
		}
		if fetchK < p.K {
			problems = append(problems, fmt.Sprintf("fetch_k (%d) must be >= k (%d)", fetchK, p.K))
		}

		lambda := DefaultLambdaMult
		if p.LambdaMult != nil {
			lambda = *p.LambdaMult
		}
		if lambda < 0 || lambda > 1 {
			problems = append(problems, fmt.Sprintf("lambda_mult must be between 0 and 1, got %g", lambda))
		}
		if p.ScoreThreshold < 0 || p.ScoreThreshold > 1 {
			problems = append(problems,
				fmt.Sprintf("score_threshold must be between 0 and 1, got %g", p.ScoreThreshold))
		}

		cfg.fetchK = fetchK
		cfg.lambdaMult = lambda
		cfg.scoreThreshold = p.ScoreThreshold
	}

	if len(problems) > 0 {
		return SearchConfiguration{}, domain.NewInvalidConfiguration(problems...)
	}
	return cfg, nil
}

// Strategy returns the retrieval strategy.
func (c SearchConfiguration) Strategy() strategy.Strategy { return c.strategy }

// K returns the number of documents to return.
func (c SearchConfiguration) K() int { return c.k }

// FetchK returns the MMR candidate pool size (0 for similarity).
func (c SearchConfiguration) FetchK() int { return c.fetchK }

// LambdaMult returns the MMR relevance/diversity trade-off (0 for similarity).
func (c SearchConfiguration) LambdaMult() float64 { return c.lambdaMult }

// ScoreThreshold returns the MMR minimum relevance (0 for similarity).
func (c SearchConfiguration) ScoreThreshold() float64 { return c.scoreThreshold }

// IsZero reports whether c was never built through New.
func (c SearchConfiguration) IsZero() bool { return c.k == 0 }
