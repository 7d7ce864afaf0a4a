package compression

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
	"github.com/kailas-cloud/prodassist/internal/logger"
)

const filterSystemPrompt = "You judge whether a retrieved document helps answer a shopper's question " +
	"about products. Answer with a single word: YES or NO."

// LLMFilter drops documents a language model judges irrelevant to the query.
// Kept documents retain their original order.
type LLMFilter struct {
	llm    Completer
	logger *zap.Logger
}

// NewLLMFilter creates a contextual-compression filter.
func NewLLMFilter(llm Completer, l *zap.Logger) *LLMFilter {
	return &LLMFilter{llm: llm, logger: l}
}

// Process asks the model about each document in turn. Any model failure aborts the stage.
func (f *LLMFilter) Process(ctx context.Context, query string, docs []result.Document) ([]result.Document, error) {
	kept := make([]result.Document, 0, len(docs))
	for i, d := range docs {
		answer, err := f.llm.Complete(ctx, filterSystemPrompt, filterPrompt(query, d.Content()))
		if err != nil {
			return nil, fmt.Errorf("judge document %d: %w", i, err)
		}
		if domain.IsAffirmative(answer) {
			kept = append(kept, d)
		}
	}

	logger.FromContext(ctx, f.logger).Debug("Compressed documents",
		zap.Int("retrieved", len(docs)), zap.Int("kept", len(kept)))
	return kept, nil
}

func filterPrompt(query, content string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nDocument:\n")
	b.WriteString(content)
	b.WriteString("\n\nIs the document relevant to the question? Answer YES or NO.")
	return b.String()
}

