package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the embedding provider is failing while the store responds.
	Degraded Status = "degraded"
	// Unhealthy indicates the vector store is unreachable; no retrieval is possible.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentVectorStore = "vector_store"
	ComponentEmbedding   = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     VectorStorePinger
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(store VectorStorePinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)

	checks[ComponentVectorStore] = result(s.store.Ping(ctx))
	if s.embedding != nil {
		checks[ComponentEmbedding] = result(s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	switch {
	case checks[ComponentVectorStore] == CheckError:
		status = Unhealthy
	case checks[ComponentEmbedding] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
