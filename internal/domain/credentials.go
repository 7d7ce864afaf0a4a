package domain

import "strings"

// Credential names as operators know them (the environment variables they usually come from).
const (
	CredEmbeddingAPIKey      = "OPENAI_API_KEY"
	CredVectorStoreEndpoint  = "VECTOR_STORE_ENDPOINT"
	CredVectorStoreToken     = "VECTOR_STORE_TOKEN"
	CredVectorStoreNamespace = "VECTOR_STORE_NAMESPACE"
)

// Credentials are the secrets required to reach the embedding provider and the vector store.
type Credentials struct {
	EmbeddingAPIKey      string
	VectorStoreEndpoint  string
	VectorStoreToken     string
	VectorStoreNamespace string
}

// Missing returns the names of every blank credential, in declaration order.
func (c Credentials) Missing() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check(CredEmbeddingAPIKey, c.EmbeddingAPIKey)
	check(CredVectorStoreEndpoint, c.VectorStoreEndpoint)
	check(CredVectorStoreToken, c.VectorStoreToken)
	check(CredVectorStoreNamespace, c.VectorStoreNamespace)
	return missing
}

