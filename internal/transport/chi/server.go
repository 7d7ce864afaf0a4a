package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodassist/internal/domain"
	domeval "github.com/kailas-cloud/prodassist/internal/domain/evaluation"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/prodassist/internal/usecase/health"
	"github.com/kailas-cloud/prodassist/internal/usecase/retrieval"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the retrieval and evaluation API.
type Server struct {
	gateway       Retriever
	evaluations   Evaluator
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. evaluations can be nil when the
// evaluation log is not configured.
func NewServer(gateway Retriever, evaluations Evaluator, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		gateway:     gateway,
		evaluations: evaluations,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
		sentinelHandler(domain.ErrGatewayFailed, http.StatusServiceUnavailable, ErrorCodeGatewayFailed),
		configurationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, ErrorCodeLLMProviderError),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, ErrorCodeUpstreamError),
	}
	return s
}

// Retrieve handles POST /v1/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	set, err := s.gateway.Retrieve(ctx, req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, retrieveResponse(set))
}

// Evaluate handles POST /v1/evaluate.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	if s.evaluations == nil {
		writeError(w, http.StatusNotImplemented, ErrorCodeNotImplemented, "evaluation is not configured")
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rec, err := s.evaluations.Evaluate(ctx, domeval.Sample{
		Query:    req.Query,
		Response: req.Response,
		Contexts: req.Contexts,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, evaluationToResponse(rec))
}

// ListEvaluations handles GET /v1/evaluations.
func (s *Server) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	if s.evaluations == nil {
		writeError(w, http.StatusNotImplemented, ErrorCodeNotImplemented, "evaluation is not configured")
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
				"limit must be an integer between 1 and "+strconv.Itoa(maxListLimit))
			return
		}
		limit = n
	}

	recs, err := s.evaluations.Recent(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]EvaluationResponse, len(recs))
	for i, rec := range recs {
		items[i] = evaluationToResponse(rec)
	}
	writeJSON(w, http.StatusOK, EvaluationListResponse{Items: items, Count: len(items)})
}

// GetEvaluation handles GET /v1/evaluations/{id}.
func (s *Server) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	if s.evaluations == nil {
		writeError(w, http.StatusNotImplemented, ErrorCodeNotImplemented, "evaluation is not configured")
		return
	}

	rec, err := s.evaluations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluationToResponse(rec))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Gateway: s.gateway.State().String(),
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func retrieveResponse(set result.Set) RetrieveResponse {
	docs := set.Documents()
	items := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = DocumentResponse{
			ID:       d.ID(),
			Score:    d.Score(),
			Content:  d.Content(),
			Metadata: d.Metadata(),
		}
	}
	contexts := set.Contents()
	if contexts == nil {
		contexts = []string{}
	}
	return RetrieveResponse{Documents: items, Contexts: contexts, Count: len(items)}
}

func evaluationToResponse(rec domeval.Record) EvaluationResponse {
	contexts := rec.Sample.Contexts
	if contexts == nil {
		contexts = []string{}
	}
	return EvaluationResponse{
		ID:                rec.ID,
		Query:             rec.Sample.Query,
		Response:          rec.Sample.Response,
		Contexts:          contexts,
		Strategy:          rec.Strategy,
		ContextPrecision:  rec.Scores.ContextPrecision,
		ResponseRelevancy: rec.Scores.ResponseRelevancy,
		CreatedAt:         rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

// writeJSON encodes v before committing the status, so an unencodable body becomes a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{
			Code:    ErrorCodeInternalError,
			Message: "failed to encode response",
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrGatewayFailed,
		domain.ErrNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMProviderError,
		domain.ErrUpstream,
		domain.ErrConfiguration,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// configurationHandler reports configuration errors with the names of missing credentials.
// Credential values are never part of the error.
func configurationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrConfiguration) {
		return false
	}
	var ce *domain.ConfigurationError
	if errors.As(err, &ce) && len(ce.Missing) > 0 {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"code":    ErrorCodeConfigurationError,
			"message": msg + ": missing " + strings.Join(ce.Missing, ", "),
			"missing": ce.Missing,
		})
		return true
	}
	writeError(w, http.StatusInternalServerError, ErrorCodeConfigurationError, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

var _ Retriever = (*retrieval.Gateway)(nil)
