package result

import "maps"

// Document is a single retrieved document. Its content and metadata are immutable.
type Document struct {
	id       string
	score    float64
	content  string
	metadata map[string]any
}

// New creates a retrieved document. Metadata values are scalars: string, float64 or bool.
func New(id string, score float64, content string, metadata map[string]any) Document {
	return Document{
		id:       id,
		score:    score,
		content:  content,
		metadata: maps.Clone(metadata),
	}
}

// ID returns the document key within the collection.
func (d Document) ID() string { return d.id }

// Score returns the relevance reported by the vector-search service.
func (d Document) Score() float64 { return d.score }

// Content returns the document text.
func (d Document) Content() string { return d.content }

// Metadata returns a copy of the document metadata.
func (d Document) Metadata() map[string]any { return maps.Clone(d.metadata) }

// Set is an ordered, possibly empty sequence of documents. Order is the service ranking.
type Set struct {
	docs []Document
}

// NewSet wraps docs in service order.
func NewSet(docs []Document) Set {
	return Set{docs: append([]Document(nil), docs...)}
}

// Len returns the number of documents.
func (s Set) Len() int { return len(s.docs) }

// IsEmpty reports whether no documents matched.
func (s Set) IsEmpty() bool { return len(s.docs) == 0 }

// Documents returns the documents in ranking order.
func (s Set) Documents() []Document { return append([]Document(nil), s.docs...) }

// Contents returns the document texts in ranking order, as consumed by evaluation.
func (s Set) Contents() []string {
	out := make([]string, len(s.docs))
	for i, d := range s.docs {
		out[i] = d.content
	}
	return out
}
