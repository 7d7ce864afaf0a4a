package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/options"
	"github.com/kailas-cloud/prodassist/internal/domain/search/request"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
	"github.com/kailas-cloud/prodassist/internal/logger"
	"github.com/kailas-cloud/prodassist/internal/metrics"
)

// Retrieval outcome labels for metrics.
const (
	statusSuccess  = "success"
	statusEmpty    = "empty"
	statusInvalid  = "invalid"
	statusUpstream = "upstream_error"
	statusFailed   = "failed"
)

// ErrClosed is returned by every call on a gateway after Close.
var ErrClosed = errors.New("retrieval gateway is closed")

// Gateway turns a natural-language query into an ordered set of documents
// from the vector store. It dispatches exactly one search per query and never retries.
type Gateway struct {
	cfg       options.SearchConfiguration
	creds     domain.Credentials
	connector Connector
	post      PostProcessor
	logger    *zap.Logger

	initMu  sync.Mutex // serializes connection attempts
	state   atomic.Int32
	conn    Connection // written once under initMu before state becomes Ready
	failure error      // written once under initMu before state becomes Failed
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPostProcessor installs an optional stage run on every non-empty result.
func WithPostProcessor(p PostProcessor) Option {
	return func(g *Gateway) { g.post = p }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New validates credentials and configuration and returns an uninitialized gateway.
// Every missing credential is reported at once in a *domain.ConfigurationError.
func New(cfg options.SearchConfiguration, creds domain.Credentials, connector Connector, opts ...Option) (*Gateway, error) {
	var problems []string
	if cfg.IsZero() {
		problems = append(problems, "search configuration is required")
	}
	if connector == nil {
		problems = append(problems, "vector store connector is required")
	}
	if missing := creds.Missing(); len(missing) > 0 || len(problems) > 0 {
		cfgErr := domain.NewMissingCredentials(missing...)
		cfgErr.Problems = problems
		return nil, cfgErr
	}

	g := &Gateway{
		cfg:       cfg,
		creds:     creds,
		connector: connector,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// State returns the current lifecycle state.
func (g *Gateway) State() State {
	return State(g.state.Load())
}

// Configuration returns the search configuration fixed at startup.
func (g *Gateway) Configuration() options.SearchConfiguration {
	return g.cfg
}

// Initialize connects to the vector store. Calling it on a ready gateway is a no-op.
// A failed attempt is terminal: this and every later call return the same failure.
// An attempt abandoned because ctx ended is not a failure; the gateway stays uninitialized.
func (g *Gateway) Initialize(ctx context.Context) error {
	_, err := g.connection(ctx)
	return err
}

func (g *Gateway) connection(ctx context.Context) (Connection, error) {
	switch g.State() {
	case Ready:
		return g.conn, nil
	case Failed:
		return nil, g.failedErr()
	case Closed:
		return nil, closedErr()
	}

	g.initMu.Lock()
	defer g.initMu.Unlock()

	switch g.State() {
	case Ready:
		return g.conn, nil
	case Failed:
		return nil, g.failedErr()
	case Closed:
		return nil, closedErr()
	}

	log := logger.FromContext(ctx, g.logger)
	g.state.Store(int32(Connecting))
	start := time.Now()

	conn, err := g.connector.Connect(ctx, g.creds)
	if err != nil && ctx.Err() != nil {
		g.state.Store(int32(Uninitialized))
		log.Warn("Retrieval gateway connect abandoned",
			zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, domain.NewUpstream("connect vector store", err)
	}
	if err != nil {
		g.failure = domain.NewUpstream("connect vector store", err)
		g.state.Store(int32(Failed))
		log.Error("Retrieval gateway failed to connect",
			zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, g.failedErr()
	}

	g.conn = conn
	g.state.Store(int32(Ready))
	log.Info("Retrieval gateway ready",
		zap.String("strategy", string(g.cfg.Strategy())),
		zap.Int("k", g.cfg.K()),
		zap.Duration("duration", time.Since(start)))
	return conn, nil
}

func (g *Gateway) failedErr() error {
	return fmt.Errorf("%w: %w", domain.ErrGatewayFailed, g.failure)
}

func closedErr() error {
	return fmt.Errorf("%w: %w", domain.ErrGatewayFailed, ErrClosed)
}

// Retrieve returns the documents relevant to query, in service order.
// It initializes the gateway on first use. Zero matches yield an empty set and nil error.
// Service failures are returned as *domain.UpstreamError.
func (g *Gateway) Retrieve(ctx context.Context, query string) (result.Set, error) {
	start := time.Now()
	strategy := string(g.cfg.Strategy())
	log := logger.FromContext(ctx, g.logger)

	req, err := request.New(query, g.cfg)
	if err != nil {
		g.observe(strategy, statusInvalid, start, 0)
		return result.Set{}, err
	}

	conn, err := g.connection(ctx)
	if err != nil {
		g.observe(strategy, statusFailed, start, 0)
		return result.Set{}, err
	}

	docs, err := conn.Search(ctx, req)
	if err != nil {
		g.observe(strategy, statusUpstream, start, 0)
		log.Warn("Vector search failed", zap.String("strategy", strategy), zap.Error(err))
		return result.Set{}, asUpstream("vector search", err)
	}

	if g.post != nil && len(docs) > 0 {
		before := len(docs)
		docs, err = g.post.Process(ctx, query, docs)
		if err != nil {
			g.observe(strategy, statusUpstream, start, 0)
			log.Warn("Post-processing failed", zap.Error(err))
			return result.Set{}, asUpstream("post-process", err)
		}
		log.Debug("Post-processed documents", zap.Int("before", before), zap.Int("after", len(docs)))
	}

	status := statusSuccess
	if len(docs) == 0 {
		status = statusEmpty
	}
	g.observe(strategy, status, start, len(docs))
	log.Debug("Retrieved documents",
		zap.String("strategy", strategy),
		zap.Int("count", len(docs)),
		zap.Duration("duration", time.Since(start)))

	return result.NewSet(docs), nil
}

// Ping checks the vector store through the established connection.
func (g *Gateway) Ping(ctx context.Context) error {
	switch g.State() {
	case Ready:
		if err := g.conn.Ping(ctx); err != nil {
			return asUpstream("ping vector store", err)
		}
		return nil
	case Failed:
		return g.failedErr()
	case Closed:
		return closedErr()
	default:
		return fmt.Errorf("retrieval gateway is %s", g.State())
	}
}

// Close releases the connection of a ready gateway and moves it to Closed.
// Later calls return ErrClosed. Closing twice is a no-op.
func (g *Gateway) Close() {
	g.initMu.Lock()
	defer g.initMu.Unlock()
	if g.State() == Ready {
		g.conn.Close()
	}
	g.state.Store(int32(Closed))
}

func (g *Gateway) observe(strategy, status string, start time.Time, count int) {
	metrics.RetrievalRequestsTotal.WithLabelValues(strategy, status).Inc()
	if status == statusSuccess || status == statusEmpty {
		metrics.RetrievalDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
		metrics.RetrievalDocuments.WithLabelValues(strategy).Observe(float64(count))
	}
}

// asUpstream wraps err as an UpstreamError unless it already is one.
func asUpstream(op string, err error) error {
	var up *domain.UpstreamError
	if errors.As(err, &up) {
		return err
	}
	return domain.NewUpstream(op, err)
}
