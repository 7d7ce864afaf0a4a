package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/prodassist/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Redis or Valkey store.
type Config struct {
	// Endpoint is "host:port" or a redis://, rediss:// or unix:// URL.
	Endpoint string
	// Token authenticates the connection (AUTH password). Overrides a password in the URL.
	Token string
	// ClientName is reported via CLIENT SETNAME.
	ClientName string
	// Valkey selects valkey-search query dialect quirks.
	Valkey bool
}

// Store implements db.Store via rueidis for Redis 8+ and valkey-search.
type Store struct {
	client rueidis.Client
	valkey bool
}

// NewStore creates a store via rueidis. The client connects eagerly.
func NewStore(cfg Config) (*Store, error) {
	opt, err := clientOption(cfg)
	if err != nil {
		return nil, err
	}

	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, valkey: cfg.Valkey}, nil
}

func clientOption(cfg Config) (rueidis.ClientOption, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return rueidis.ClientOption{}, fmt.Errorf("endpoint is required")
	}

	var opt rueidis.ClientOption
	if strings.Contains(endpoint, "://") {
		parsed, err := rueidis.ParseURL(endpoint)
		if err != nil {
			return rueidis.ClientOption{}, fmt.Errorf("parse endpoint: %w", err)
		}
		opt = parsed
	} else {
		opt.InitAddress = []string{endpoint}
	}

	if cfg.Token != "" {
		opt.Password = cfg.Token
	}
	opt.ClientName = cfg.ClientName
	opt.DisableCache = true
	opt.AlwaysRESP2 = true // both dialects share the RESP2 array parser for FT.SEARCH
	return opt, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
