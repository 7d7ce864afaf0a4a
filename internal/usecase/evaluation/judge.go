package evaluation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/prodassist/internal/domain"
	domeval "github.com/kailas-cloud/prodassist/internal/domain/evaluation"
	"github.com/kailas-cloud/prodassist/internal/domain/vector"
)

const (
	precisionSystemPrompt = "You verify whether a retrieved context was useful in arriving at a given answer. " +
		"Answer with a single word: YES or NO."
	questionSystemPrompt = "Given an answer from a shopping assistant, write the questions it answers, " +
		"one per line, without numbering. If the answer is evasive or non-committal, reply with NONCOMMITTAL."

	// generatedQuestions is the number of questions requested per answer.
	generatedQuestions = 3
)

// Judge scores samples with a language model and an embedding model.
type Judge struct {
	llm      Completer
	embedder Embedder
}

// NewJudge creates an LLM-backed scorer.
func NewJudge(llm Completer, embedder Embedder) *Judge {
	return &Judge{llm: llm, embedder: embedder}
}

// Score computes context precision and response relevancy.
func (j *Judge) Score(ctx context.Context, s domeval.Sample) (domeval.Scores, error) {
	precision, err := j.contextPrecision(ctx, s)
	if err != nil {
		return domeval.Scores{}, fmt.Errorf("context precision: %w", err)
	}
	relevancy, err := j.responseRelevancy(ctx, s)
	if err != nil {
		return domeval.Scores{}, fmt.Errorf("response relevancy: %w", err)
	}
	return domeval.Scores{ContextPrecision: precision, ResponseRelevancy: relevancy}, nil
}

// contextPrecision is the mean of precision@k over the ranks k holding a useful context.
// It rewards rankings that put useful contexts first. No useful context gives 0.
func (j *Judge) contextPrecision(ctx context.Context, s domeval.Sample) (float64, error) {
	verdicts := make([]bool, len(s.Contexts))
	for i, c := range s.Contexts {
		answer, err := j.llm.Complete(ctx, precisionSystemPrompt, precisionPrompt(s, c))
		if err != nil {
			return 0, fmt.Errorf("judge context %d: %w", i, err)
		}
		verdicts[i] = domain.IsAffirmative(answer)
	}
	return averagePrecision(verdicts), nil
}

func averagePrecision(verdicts []bool) float64 {
	var useful int
	var sum float64
	for k, v := range verdicts {
		if !v {
			continue
		}
		useful++
		sum += float64(useful) / float64(k+1)
	}
	if useful == 0 {
		return 0
	}
	return sum / float64(useful)
}

// responseRelevancy asks the model which questions the response answers and
// compares them to the original query in embedding space. Non-committal answers score 0.
func (j *Judge) responseRelevancy(ctx context.Context, s domeval.Sample) (float64, error) {
	reply, err := j.llm.Complete(ctx, questionSystemPrompt, questionPrompt(s.Response))
	if err != nil {
		return 0, fmt.Errorf("generate questions: %w", err)
	}
	questions := parseQuestions(reply)
	if len(questions) == 0 {
		return 0, nil
	}

	q, err := j.embedder.Embed(ctx, s.Query)
	if err != nil {
		return 0, fmt.Errorf("embed query: %w", err)
	}

	var sum float64
	for _, gq := range questions {
		e, err := j.embedder.Embed(ctx, gq)
		if err != nil {
			return 0, fmt.Errorf("embed generated question: %w", err)
		}
		sum += max(0, vector.CosineSimilarity(q.Embedding, e.Embedding))
	}
	return sum / float64(len(questions)), nil
}

func precisionPrompt(s domeval.Sample, retrieved string) string {
	return "Question: " + s.Query + "\n\nAnswer: " + s.Response + "\n\nContext:\n" + retrieved +
		"\n\nWas the context useful in arriving at the answer? Answer YES or NO."
}

func questionPrompt(response string) string {
	return fmt.Sprintf("Answer:\n%s\n\nWrite up to %d questions this answer responds to.", response, generatedQuestions)
}

func parseQuestions(reply string) []string {
	if strings.Contains(strings.ToUpper(reply), "NONCOMMITTAL") {
		return nil
	}
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789.) "))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == generatedQuestions {
			break
		}
	}
	return out
}
