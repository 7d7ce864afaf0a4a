package chi

// ErrorCode is a machine-readable error identifier returned in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeInvalidQuery           ErrorCode = "invalid_query"
	ErrorCodeConfigurationError     ErrorCode = "configuration_error"
	ErrorCodeGatewayFailed          ErrorCode = "gateway_failed"
	ErrorCodeUpstreamError          ErrorCode = "upstream_error"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeLLMProviderError       ErrorCode = "llm_provider_error"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeNotImplemented         ErrorCode = "not_implemented"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RetrieveRequest is the body of POST /v1/retrieve.
type RetrieveRequest struct {
	Query string `json:"query"`
}

// DocumentResponse is one retrieved document.
type DocumentResponse struct {
	ID       string         `json:"id,omitempty"`
	Score    float64        `json:"score"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// RetrieveResponse lists documents in ranking order. Contexts repeats their contents.
type RetrieveResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Contexts  []string           `json:"contexts"`
	Count     int                `json:"count"`
}

// EvaluateRequest is the body of POST /v1/evaluate. Omitted contexts are retrieved.
type EvaluateRequest struct {
	Query    string   `json:"query"`
	Response string   `json:"response"`
	Contexts []string `json:"contexts,omitempty"`
}

// EvaluationResponse is a stored evaluation record.
type EvaluationResponse struct {
	ID                string   `json:"id"`
	Query             string   `json:"query"`
	Response          string   `json:"response"`
	Contexts          []string `json:"contexts"`
	Strategy          string   `json:"strategy"`
	ContextPrecision  float64  `json:"context_precision"`
	ResponseRelevancy float64  `json:"response_relevancy"`
	CreatedAt         string   `json:"created_at"`
}

// EvaluationListResponse is the body of GET /v1/evaluations.
type EvaluationListResponse struct {
	Items []EvaluationResponse `json:"items"`
	Count int                  `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Gateway string            `json:"gateway"`
	Checks  map[string]string `json:"checks"`
}
