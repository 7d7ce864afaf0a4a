package evaluation

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/prodassist/internal/domain"
)

// Sample is one question/answer pair to score. Contexts are the retrieved
// document texts in ranking order; nil means "retrieve them".
type Sample struct {
	Query    string   `yaml:"query"`
	Response string   `yaml:"response"`
	Contexts []string `yaml:"contexts,omitempty"`
}

// Validate checks that the sample can be scored.
func (s Sample) Validate() error {
	if strings.TrimSpace(s.Query) == "" {
		return fmt.Errorf("query is required: %w", domain.ErrInvalidQuery)
	}
	if strings.TrimSpace(s.Response) == "" {
		return fmt.Errorf("response is required: %w", domain.ErrInvalidQuery)
	}
	return nil
}

// Scores are LLM-judged quality metrics in [0,1].
type Scores struct {
	ContextPrecision  float64
	ResponseRelevancy float64
}

// Record is a stored evaluation.
type Record struct {
	ID        string
	Sample    Sample
	Strategy  string
	Scores    Scores
	CreatedAt time.Time
}
