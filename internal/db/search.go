package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName     string
	Vector        []float32
	K             int
	ReturnFields  []string
	IncludeVector bool // keep the raw __vector field in the entry (needed for MMR)
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64 // cosine similarity in [0,1]
	Fields map[string]string
}
