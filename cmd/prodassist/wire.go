package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodassist/internal/config"
	"github.com/kailas-cloud/prodassist/internal/db"
	dbRedis "github.com/kailas-cloud/prodassist/internal/db/redis"
	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/strategy"
	"github.com/kailas-cloud/prodassist/internal/metrics"
	"github.com/kailas-cloud/prodassist/internal/repository/embcache"
	"github.com/kailas-cloud/prodassist/internal/repository/evalstore"
	searchrepo "github.com/kailas-cloud/prodassist/internal/repository/search"
	openaiTransport "github.com/kailas-cloud/prodassist/internal/transport/openai"
	"github.com/kailas-cloud/prodassist/internal/usecase/compression"
	evaluationuc "github.com/kailas-cloud/prodassist/internal/usecase/evaluation"
	"github.com/kailas-cloud/prodassist/internal/usecase/retrieval"
)

const (
	clientName       = "prodassist"
	embeddingCacheNS = "emb_cache"
)

// app holds the collaborators every command shares.
type app struct {
	gateway  *retrieval.Gateway
	embedder *openaiTransport.Embedder // uncached, used by health checks and the evaluation judge
	chat     *openaiTransport.Chat
}

// buildApp assembles the gateway. No network call happens before Initialize.
func buildApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	searchCfg, err := cfg.SearchConfiguration()
	if err != nil {
		return nil, err
	}
	warnIgnoredMMRParams(cfg, searchCfg.Strategy(), logger)

	creds := cfg.GatewayCredentials()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     creds.EmbeddingAPIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	chat := openaiTransport.NewChat(&openaiTransport.ChatConfig{
		APIKey:      creds.EmbeddingAPIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Logger:      logger,
	})

	opts := []retrieval.Option{retrieval.WithLogger(logger)}
	if cfg.CompressionEnabled() {
		opts = append(opts, retrieval.WithPostProcessor(compression.NewLLMFilter(chat, logger)))
	}

	gateway, err := retrieval.New(searchCfg, creds, newConnector(cfg, embedder, logger), opts...)
	if err != nil {
		return nil, err
	}

	logger.Info("Retrieval gateway configured",
		zap.String("strategy", string(searchCfg.Strategy())),
		zap.Int("k", searchCfg.K()),
		zap.Int("fetch_k", searchCfg.FetchK()),
		zap.Float64("lambda_mult", searchCfg.LambdaMult()),
		zap.Float64("score_threshold", searchCfg.ScoreThreshold()),
		zap.Bool("compression", cfg.CompressionEnabled()),
		zap.String("collection", cfg.App.CollectionName),
	)

	return &app{gateway: gateway, embedder: embedder, chat: chat}, nil
}

// openEvaluation opens the evaluation log and builds the evaluation service.
// The caller closes the returned store.
func (a *app) openEvaluation(cfg config.Config, logger *zap.Logger) (*evaluationuc.Service, *evalstore.Store, error) {
	store, err := evalstore.Open(cfg.Evaluation.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open evaluation log: %w", err)
	}
	judge := evaluationuc.NewJudge(a.chat, a.embedder)
	strat := string(a.gateway.Configuration().Strategy())
	return evaluationuc.New(a.gateway, judge, store, strat, logger), store, nil
}

func warnIgnoredMMRParams(cfg config.Config, s strategy.Strategy, logger *zap.Logger) {
	r := cfg.Retriever
	if s != strategy.Similarity || r == nil {
		return
	}
	if r.FetchK != 0 || r.LambdaMult != nil || r.ScoreThreshold != 0 {
		logger.Warn("MMR parameters are ignored by the similarity strategy",
			zap.Int("fetch_k", r.FetchK),
			zap.Float64("score_threshold", r.ScoreThreshold),
		)
	}
}

// newConnector dials the vector store and builds the query embedder chain on first use.
func newConnector(cfg config.Config, base domain.Embedder, logger *zap.Logger) retrieval.Connector {
	return retrieval.ConnectorFunc(func(ctx context.Context, creds domain.Credentials) (retrieval.Connection, error) {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Endpoint:   creds.VectorStoreEndpoint,
			Token:      creds.VectorStoreToken,
			ClientName: clientName,
			Valkey:     cfg.Database.Driver == "valkey",
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}

		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s store not ready: %w", cfg.Database.Driver, err)
		}

		ks := db.NewKeyspace(creds.VectorStoreNamespace, cfg.App.CollectionName)
		logger.Info("Connected to vector store",
			zap.String("driver", cfg.Database.Driver),
			zap.String("index", ks.IndexName()),
		)

		embedder := buildQueryEmbedder(cfg, base, store, ks, logger)
		return &storeConnection{Repo: searchrepo.New(store, embedder, ks), store: store}, nil
	})
}

// buildQueryEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
func buildQueryEmbedder(
	cfg config.Config,
	base domain.Embedder,
	store *dbRedis.Store,
	ks db.Keyspace,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base

	if cfg.Embedding.CacheTTLSec > 0 {
		prefix := ks.Key(embeddingCacheNS, cfg.Embedding.Model) + ":"
		ttl := time.Duration(cfg.Embedding.CacheTTLSec) * time.Second
		embedder = embcache.New(base, store, prefix, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	// Instruction prefix is outermost so the cache key includes it.
	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	return embedder
}

// storeConnection binds the search repository to the store it reads from.
type storeConnection struct {
	*searchrepo.Repo
	store *dbRedis.Store
}

func (c *storeConnection) Ping(ctx context.Context) error { return c.store.Ping(ctx) }

func (c *storeConnection) Close() { c.store.Close() }
