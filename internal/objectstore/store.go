package objectstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists under the key
var ErrNotFound = errors.New("object not found")

// PutOptions carries per-object write attributes
type PutOptions struct {
	ContentType string
	Encrypted   bool
}

// Store is the durable object storage the pipeline writes artifacts and
// catalog records to. Implementations must be strongly consistent: a Get
// or Head after a successful Put observes the written object.
type Store interface {
	Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	Head(ctx context.Context, bucket, key string) (bool, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}
