// Package cache - postgres.go provides an optional durable Store backed by
// PostgreSQL, for deployments where extraction results should survive
// restarts and be shared across processes.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a pgx connection pool.
//
// Expected schema:
//
//	CREATE TABLE extraction_cache (
//	    id         UUID PRIMARY KEY,
//	    url        TEXT NOT NULL UNIQUE,
//	    content    BYTEA NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Get returns the entry for key if it has not expired.
func (s *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	var entry Entry
	err := s.pool.QueryRow(ctx,
		`SELECT url, content, created_at, expires_at
		 FROM extraction_cache
		 WHERE url = $1 AND expires_at > NOW()`,
		key,
	).Scan(&entry.URL, &entry.Content, &entry.CreatedAt, &entry.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return &entry, nil
}

// Set upserts content under key with the given ttl.
func (s *PostgresStore) Set(ctx context.Context, key string, content []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO extraction_cache (id, url, content, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (url) DO UPDATE SET
		     content = $3,
		     created_at = NOW(),
		     expires_at = $4`,
		uuid.New(), key, content, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for key.
func (s *PostgresStore) Invalidate(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM extraction_cache WHERE url = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}
