package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/prodassist/internal/db"
	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/options"
	"github.com/kailas-cloud/prodassist/internal/domain/search/strategy"
)

// Config holds the prodassist configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	App         AppConfig         `yaml:"app"`
	Retriever   *RetrieverConfig  `yaml:"retriever"` // nil when the section is absent
	LLM         LLMConfig         `yaml:"llm"`
	Evaluation  EvaluationConfig  `yaml:"evaluation"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store client settings. Address and auth live in credentials.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // redis, valkey (default: redis)
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CredentialsConfig holds the secrets the gateway requires. Usually filled via ${VAR}.
type CredentialsConfig struct {
	EmbeddingAPIKey  string `yaml:"embedding_api_key"`
	VectorStoreURL   string `yaml:"vector_store_endpoint"`
	VectorStoreToken string `yaml:"vector_store_token"`
	VectorStoreNS    string `yaml:"vector_store_namespace"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"` // 0 disables the query-embedding cache
}

// AppConfig holds application-level settings.
type AppConfig struct {
	CollectionName string `yaml:"collection_name"`
}

// RetrieverConfig holds the search strategy. Pointer fields distinguish absent from zero.
type RetrieverConfig struct {
	TopK           *int     `yaml:"top_k"`
	SearchType     string   `yaml:"search_type"` // similarity | mmr | max-marginal-relevance
	FetchK         int      `yaml:"fetch_k"`
	LambdaMult     *float64 `yaml:"lambda_mult"`
	ScoreThreshold float64  `yaml:"score_threshold"`
	Compression    bool     `yaml:"compression"` // LLM contextual compression stage
}

// LLMConfig holds chat-completion settings used by compression and evaluation.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// EvaluationConfig holds evaluation log settings.
type EvaluationConfig struct {
	DBPath string `yaml:"db_path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
// The retriever section is left nil when absent; SearchConfiguration handles that case.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.Evaluation.DBPath == "" {
		c.Evaluation.DBPath = "data/evaluations.db"
	}
}

// Validate checks the non-secret configuration for correctness.
// Credentials are validated by the retrieval gateway so all missing names surface together.
func (c *Config) Validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "valkey":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.App.CollectionName) == "" {
		return fmt.Errorf("app.collection_name is required")
	}
	if !db.IsValidIdentifier(c.App.CollectionName) {
		return fmt.Errorf("app.collection_name must match [a-zA-Z0-9_:-]+, got %q", c.App.CollectionName)
	}
	if c.Embedding.CacheTTLSec < 0 {
		return fmt.Errorf("embedding.cache_ttl_sec must not be negative, got %d", c.Embedding.CacheTTLSec)
	}
	if _, err := c.SearchConfiguration(); err != nil {
		return err
	}
	return nil
}

// SearchConfiguration builds the immutable search configuration.
// An absent retriever section (or absent top_k) defaults k to 5; an explicit
// non-positive top_k is a configuration error.
func (c *Config) SearchConfiguration() (options.SearchConfiguration, error) {
	r := c.Retriever
	if r == nil {
		r = &RetrieverConfig{}
	}

	k := options.DefaultK
	if r.TopK != nil {
		k = *r.TopK
	}

	s, err := strategy.Parse(r.SearchType)
	if err != nil {
		return options.SearchConfiguration{}, fmt.Errorf("retriever.search_type: %w",
			domain.NewInvalidConfiguration(err.Error()))
	}

	cfg, err := options.New(options.Params{
		Strategy:       s,
		K:              k,
		FetchK:         r.FetchK,
		LambdaMult:     r.LambdaMult,
		ScoreThreshold: r.ScoreThreshold,
	})
	if err != nil {
		return options.SearchConfiguration{}, fmt.Errorf("retriever: %w", err)
	}
	return cfg, nil
}

// GatewayCredentials builds the explicit credentials record passed to the retrieval gateway.
func (c *Config) GatewayCredentials() domain.Credentials {
	return domain.Credentials{
		EmbeddingAPIKey:      c.Credentials.EmbeddingAPIKey,
		VectorStoreEndpoint:  c.Credentials.VectorStoreURL,
		VectorStoreToken:     c.Credentials.VectorStoreToken,
		VectorStoreNamespace: c.Credentials.VectorStoreNS,
	}
}

// CompressionEnabled reports whether the contextual-compression stage is configured.
func (c *Config) CompressionEnabled() bool {
	return c.Retriever != nil && c.Retriever.Compression
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
