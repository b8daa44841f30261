// Package store provides the local key-value store backing persistence.
// Values are written whole: a save either replaces the previous complete
// value or leaves it untouched.
package store

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/config"
)

// ProjectsKey is the well-known key holding the serialized project collection.
const ProjectsKey = "LumiFlowProjects"

const bucketName = "lumiflow"

// ErrCapacityExceeded is returned when a value would push the store past its
// configured capacity. The previous value is left intact.
var ErrCapacityExceeded = errors.New("store capacity exceeded")

// Store defines the interface for local key-value operations.
type Store interface {
	// Load retrieves the value under key. The second return is false when
	// the key has never been written.
	Load(key string) ([]byte, bool, error)

	// Save replaces the value under key atomically.
	Save(key string, value []byte) error

	// Close closes the underlying store file.
	Close() error
}

// BoltStore implements Store using a single bbolt file.
type BoltStore struct {
	db       *bolt.DB
	capacity int
	logger   *zap.Logger
}

// NewBoltStore opens (creating if needed) the store file from config.
func NewBoltStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	db, err := bolt.Open(cfg.StorePath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create store bucket: %w", err)
	}

	logger.Info("Opened local store", zap.String("path", cfg.StorePath))

	return &BoltStore{
		db:       db,
		capacity: cfg.StoreCapacity,
		logger:   logger,
	}, nil
}

// Load retrieves the value under key.
func (s *BoltStore) Load(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if raw != nil {
			// bbolt buffers are only valid inside the transaction.
			value = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to load from store", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("failed to load %q: %w", key, err)
	}
	return value, value != nil, nil
}

// Save replaces the value under key. Values beyond the configured capacity
// are refused and the previous value kept.
func (s *BoltStore) Save(key string, value []byte) error {
	if s.capacity > 0 && len(value) > s.capacity {
		s.logger.Warn("Refusing oversized store write",
			zap.String("key", key),
			zap.Int("size", len(value)),
			zap.Int("capacity", s.capacity),
		)
		return fmt.Errorf("value of %d bytes for %q: %w", len(value), key, ErrCapacityExceeded)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), value)
	})
	if err != nil {
		s.logger.Error("Failed to save to store", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}

// Close closes the store file.
func (s *BoltStore) Close() error {
	s.logger.Info("Closed local store")
	return s.db.Close()
}
