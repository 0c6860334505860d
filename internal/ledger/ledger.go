package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"webhook-ingestion/internal/models"

	"github.com/go-redis/redis/v8"
)

// Ledger is the digest-keyed idempotency ledger. Records expire through
// Redis TTLs after the retention horizon.
type Ledger struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a Ledger connected to Redis
func New(addr, password string, db int, ttl time.Duration) (*Ledger, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Ledger{rdb: rdb, ttl: ttl}, nil
}

// NewWithClient wraps an existing Redis client
func NewWithClient(rdb *redis.Client, ttl time.Duration) *Ledger {
	return &Ledger{rdb: rdb, ttl: ttl}
}

// Close closes the Redis connection
func (l *Ledger) Close() error {
	return l.rdb.Close()
}

func recordKey(digest string) string {
	return fmt.Sprintf("event:%s", digest)
}

// Lookup returns the record registered for a digest, or nil when the event
// has not been seen
func (l *Ledger) Lookup(ctx context.Context, digest string) (*models.EventRecord, error) {
	raw, err := l.rdb.Get(ctx, recordKey(digest)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger lookup failed: %w", err)
	}

	var record models.EventRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode event record: %w", err)
	}
	return &record, nil
}

// Register conditionally inserts the record under its digest with the
// retention TTL. A concurrent registration of the same digest leaves the
// first record in place, which is the record the audit trail wants.
func (l *Ledger) Register(ctx context.Context, record *models.EventRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode event record: %w", err)
	}

	if err := l.rdb.SetNX(ctx, recordKey(record.PayloadHash), raw, l.ttl).Err(); err != nil {
		return fmt.Errorf("ledger register failed: %w", err)
	}
	return nil
}
