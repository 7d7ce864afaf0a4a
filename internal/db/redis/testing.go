package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

// NewValkeyStoreForTest creates a valkey-flavored Store with the provided client (test-only).
func NewValkeyStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c, valkey: true}
}
