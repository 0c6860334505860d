package objectstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Postgres implements Store on a single objects table. Logical buckets are
// a column, not separate tables, so one connection pool serves the raw
// audit, processed, and catalog stores.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres creates a Postgres-backed object store
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close closes the database connection
func (s *Postgres) Close() error {
	return s.db.Close()
}

// Put writes or overwrites an object
func (s *Postgres) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	query := `
		INSERT INTO objects (bucket, key, body, content_type, encrypted)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (bucket, key)
		DO UPDATE SET body = $3, content_type = $4, encrypted = $5, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, bucket, key, body, opts.ContentType, opts.Encrypted); err != nil {
		return fmt.Errorf("failed to put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Get retrieves an object's body, or ErrNotFound
func (s *Postgres) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var body []byte
	err := s.db.GetContext(ctx, &body,
		"SELECT body FROM objects WHERE bucket = $1 AND key = $2", bucket, key)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Delete removes an object; deleting an absent object is not an error
func (s *Postgres) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM objects WHERE bucket = $1 AND key = $2", bucket, key)
	return err
}

// Head reports whether an object exists
func (s *Postgres) Head(ctx context.Context, bucket, key string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM objects WHERE bucket = $1 AND key = $2)", bucket, key)
	return exists, err
}

// List returns the keys under a prefix in lexical order
func (s *Postgres) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		"SELECT key FROM objects WHERE bucket = $1 AND key LIKE $2 || '%' ORDER BY key", bucket, prefix)
	return keys, err
}
