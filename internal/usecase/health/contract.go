package health

import "context"

// VectorStorePinger checks the vector store through the retrieval gateway.
type VectorStorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
