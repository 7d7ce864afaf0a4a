package evalstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/prodassist/internal/domain"
	"github.com/kailas-cloud/prodassist/internal/domain/evaluation"
)

var bucketEvaluations = []byte("evaluations")

// Store is an append-only evaluation log in a bbolt file.
// Keys are UUIDv7 strings, so byte order is creation order.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the evaluation log at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create evaluation db dir: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEvaluations); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketEvaluations, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close evaluation db: %w", err)
	}
	return nil
}

// Save persists rec, assigning an ID and creation time when absent.
func (s *Store) Save(_ context.Context, rec evaluation.Record) (evaluation.Record, error) {
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return evaluation.Record{}, fmt.Errorf("generate id: %w", err)
		}
		rec.ID = id.String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	data, err := json.Marshal(toDTO(rec))
	if err != nil {
		return evaluation.Record{}, fmt.Errorf("marshal evaluation: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvaluations).Put([]byte(rec.ID), data)
	})
	if err != nil {
		return evaluation.Record{}, fmt.Errorf("save evaluation %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get returns one record by ID.
func (s *Store) Get(_ context.Context, id string) (evaluation.Record, error) {
	var rec evaluation.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEvaluations).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("evaluation %s: %w", id, domain.ErrNotFound)
		}
		var dto recordDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return fmt.Errorf("unmarshal evaluation %s: %w", id, err)
		}
		rec = dto.toDomain()
		return nil
	})
	return rec, err
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(_ context.Context, limit int) ([]evaluation.Record, error) {
	var out []evaluation.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvaluations).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var dto recordDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return fmt.Errorf("unmarshal evaluation %s: %w", k, err)
			}
			out = append(out, dto.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
