// Package cache stores rendered artifacts in Redis, keyed by a digest of the
// source definition and its configuration. The serve adapter consults it so
// repeated conversions of the same input skip the full pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when no artifact is cached for the key.
var ErrMiss = fmt.Errorf("artifact not cached")

// Store is a Redis-backed artifact cache.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for cached artifacts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached artifacts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis cache with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "crossflow:artifact:",
		ttl:    24 * time.Hour,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Key derives the cache key for a source definition and its effective
// configuration. Config entries are digested in sorted order so equal
// mappings always hash the same.
func Key(definition []byte, config map[string]string) string {
	h := sha256.New()
	h.Write(definition)

	names := make([]string, 0, len(config))
	for name := range config {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(h, "\x00%s=%s", name, config[name])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached artifact. Returns ErrMiss when absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Put stores an artifact under the key with the configured TTL.
func (s *Store) Put(ctx context.Context, key string, artifact []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, artifact, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
