package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/strategy"
)

func intPtr(v int) *int { return &v }

func validConfig() Config {
	cfg := Config{App: AppConfig{CollectionName: "product_reviews"}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingCollectionName(t *testing.T) {
	cfg := validConfig()
	cfg.App.CollectionName = " "

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing collection name")
	}
	if err.Error() != "app.collection_name is required" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_InvalidCollectionName(t *testing.T) {
	cfg := validConfig()
	cfg.App.CollectionName = "product reviews"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for a collection name with spaces")
	}
	if !strings.Contains(err.Error(), "app.collection_name must match") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "astra"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_DoesNotRequireCredentials(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("credentials are checked by the gateway, got %v", err)
	}
}

func TestSearchConfiguration_AbsentSectionDefaultsToFive(t *testing.T) {
	cfg := validConfig()

	sc, err := cfg.SearchConfiguration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.K() != 5 {
		t.Errorf("expected k=5, got %d", sc.K())
	}
	if sc.Strategy() != strategy.Similarity {
		t.Errorf("expected similarity, got %q", sc.Strategy())
	}
}

func TestSearchConfiguration_AbsentTopKDefaultsToFive(t *testing.T) {
	cfg := validConfig()
	cfg.Retriever = &RetrieverConfig{SearchType: "similarity"}

	sc, err := cfg.SearchConfiguration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.K() != 5 {
		t.Errorf("expected k=5, got %d", sc.K())
	}
}

func TestSearchConfiguration_NonPositiveTopK(t *testing.T) {
	for _, k := range []int{0, -1} {
		cfg := validConfig()
		cfg.Retriever = &RetrieverConfig{TopK: intPtr(k)}

		_, err := cfg.SearchConfiguration()
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("top_k=%d: expected ErrConfiguration, got %v", k, err)
		}
		if err := cfg.Validate(); err == nil {
			t.Errorf("top_k=%d: Validate must fail", k)
		}
	}
}

func TestSearchConfiguration_UnknownSearchType(t *testing.T) {
	cfg := validConfig()
	cfg.Retriever = &RetrieverConfig{SearchType: "similarity_score_threshold"}

	_, err := cfg.SearchConfiguration()
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestParse_YAML(t *testing.T) {
	t.Setenv("TEST_VS_TOKEN", "tok")
	t.Setenv("TEST_OPENAI_KEY", "")

	data := []byte(`
app:
  collection_name: reviews
credentials:
  embedding_api_key: ${TEST_OPENAI_KEY}
  vector_store_endpoint: ${TEST_VS_ENDPOINT:-redis://localhost:6379}
  vector_store_token: ${TEST_VS_TOKEN}
  vector_store_namespace: shop
retriever:
  top_k: 5
  search_type: mmr
  fetch_k: 20
  lambda_mult: 0.7
  score_threshold: 0.6
  compression: true
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sc, err := cfg.SearchConfiguration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Strategy() != strategy.MMR || sc.K() != 5 || sc.FetchK() != 20 {
		t.Errorf("unexpected search configuration: %+v", sc)
	}
	if sc.LambdaMult() != 0.7 || sc.ScoreThreshold() != 0.6 {
		t.Errorf("unexpected MMR parameters: %+v", sc)
	}
	if !cfg.CompressionEnabled() {
		t.Error("expected compression enabled")
	}

	creds := cfg.GatewayCredentials()
	if creds.VectorStoreEndpoint != "redis://localhost:6379" {
		t.Errorf("expected default endpoint, got %q", creds.VectorStoreEndpoint)
	}
	if creds.VectorStoreToken != "tok" {
		t.Errorf("expected expanded token, got %q", creds.VectorStoreToken)
	}
	missing := creds.Missing()
	if len(missing) != 1 || missing[0] != domain.CredEmbeddingAPIKey {
		t.Errorf("expected only %s missing, got %v", domain.CredEmbeddingAPIKey, missing)
	}
}

func TestParse_MMRFetchKBelowK(t *testing.T) {
	data := []byte(`
app:
  collection_name: reviews
retriever:
  top_k: 10
  search_type: max-marginal-relevance
  fetch_k: 5
`)
	_, err := Parse(data)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Model == "" || cfg.LLM.Model == "" {
		t.Error("expected default models")
	}
	if cfg.Retriever != nil {
		t.Error("absent retriever section must stay nil")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: "valkey", ReadinessTimeout: 15},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("unexpected http config: %+v", cfg.HTTP)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PA_SET", "value")
	got := string(expandEnvVars([]byte("a=${PA_SET} b=${PA_UNSET:-fallback} c=${PA_UNSET}")))
	want := "a=value b=fallback c="
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
