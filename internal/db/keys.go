package db

import "strings"

// Keyspace derives key and index names for one collection inside a namespace.
// Layout: "<namespace>:<collection>:<id>" for documents, "<namespace>:<collection>:idx" for the index.
type Keyspace struct {
	namespace  string
	collection string
}

// NewKeyspace creates a Keyspace. Trailing colons on namespace are ignored.
func NewKeyspace(namespace, collection string) Keyspace {
	return Keyspace{namespace: strings.TrimRight(namespace, ":"), collection: collection}
}

// Prefix returns the document key prefix.
func (k Keyspace) Prefix() string {
	return k.namespace + ":" + k.collection + ":"
}

// IndexName returns the FT index name.
func (k Keyspace) IndexName() string {
	return k.Prefix() + "idx"
}

// DocumentID strips the key prefix from a document key.
func (k Keyspace) DocumentID(key string) string {
	return strings.TrimPrefix(key, k.Prefix())
}

// Key builds a namespaced key for auxiliary data such as caches.
func (k Keyspace) Key(parts ...string) string {
	return k.namespace + ":" + strings.Join(parts, ":")
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
