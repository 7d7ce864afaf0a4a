package strategy

import "fmt"

// Strategy is the retrieval strategy fixed at gateway construction.
type Strategy string

// Supported strategies.
const (
	// Similarity ranks purely by embedding distance.
	Similarity Strategy = "similarity"
	// MMR re-ranks a larger candidate pool to balance relevance against diversity.
	MMR Strategy = "max-marginal-relevance"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Similarity || s == MMR
}

// Parse converts a configuration value into a Strategy.
// Empty means Similarity; "mmr" is accepted as shorthand.
func Parse(v string) (Strategy, error) {
	switch v {
	case "", string(Similarity):
		return Similarity, nil
	case "mmr", string(MMR):
		return MMR, nil
	default:
		return "", fmt.Errorf("unsupported search strategy %q (want %q or %q)", v, Similarity, MMR)
	}
}
