package search

import (
	"math"

	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
	"github.com/kailas-cloud/prodassist/internal/domain/vector"
)

// candidate is a KNN hit with its stored embedding.
type candidate struct {
	doc    result.Document
	vector []float32
}

// mmrReranker implements Maximal Marginal Relevance selection.
type mmrReranker struct {
	lambda float64
}

func newMMRReranker(lambda float64) *mmrReranker {
	return &mmrReranker{lambda: lambda}
}

// rerank greedily selects up to k candidates.
// MMR(c) = λ * relevance(c) - (1-λ) * max_similarity(c, selected)
// Relevance is the service-reported cosine similarity to the query.
// Ties keep the earlier (better ranked) candidate.
func (r *mmrReranker) rerank(candidates []candidate, k int) []candidate {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	k = min(k, len(candidates))

	selected := make([]candidate, 0, k)
	remaining := append([]candidate(nil), candidates...)

	for len(selected) < k {
		bestIdx := 0
		bestMMR := math.Inf(-1)

		for i, c := range remaining {
			// no redundancy before the first pick; afterwards a negative cosine is kept
			maxSim := 0.0
			if len(selected) > 0 {
				maxSim = math.Inf(-1)
			}
			for _, s := range selected {
				if sim := vector.CosineSimilarity(c.vector, s.vector); sim > maxSim {
					maxSim = sim
				}
			}

			mmr := r.lambda*c.doc.Score() - (1-r.lambda)*maxSim
			if mmr > bestMMR {
				bestMMR = mmr
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}
