package retrieval

import (
	"context"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/search/request"
	"github.com/kailas-cloud/prodassist/internal/domain/search/result"
)

// Searcher runs a single search against the vector-search service.
// Documents come back in service order; an empty slice means no match.
type Searcher interface {
	Search(ctx context.Context, req request.Request) ([]result.Document, error)
}

// Connection is an established vector-search session shared by all retrievals.
type Connection interface {
	Searcher
	Ping(ctx context.Context) error
	Close()
}

// Connector opens a Connection from explicit credentials.
type Connector interface {
	Connect(ctx context.Context, creds domain.Credentials) (Connection, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, creds domain.Credentials) (Connection, error)

// Connect calls f.
func (f ConnectorFunc) Connect(ctx context.Context, creds domain.Credentials) (Connection, error) {
	return f(ctx, creds)
}

// PostProcessor refines retrieved documents for a query, e.g. contextual compression.
// It may drop documents but must keep the relative order of the rest.
type PostProcessor interface {
	Process(ctx context.Context, query string, docs []result.Document) ([]result.Document, error)
}
