package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	err := s.Put(ctx, "raw", "a/b.json", []byte(`{"x":1}`), PutOptions{ContentType: "application/json"})
	require.NoError(t, err)

	body, err := s.Get(ctx, "raw", "a/b.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"x":1}`), body)

	exists, err := s.Head(ctx, "raw", "a/b.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryGetMissing(t *testing.T) {
	s := NewMemory()

	_, err := s.Get(context.Background(), "raw", "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteIsIdempotent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "raw", "k", []byte("v"), PutOptions{}))
	require.NoError(t, s.Delete(ctx, "raw", "k"))
	require.NoError(t, s.Delete(ctx, "raw", "k"))

	exists, err := s.Head(ctx, "raw", "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryListByPrefix(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "catalog", "stores/s1/products/p1.json", []byte("a"), PutOptions{}))
	require.NoError(t, s.Put(ctx, "catalog", "stores/s1/products/p2.json", []byte("b"), PutOptions{}))
	require.NoError(t, s.Put(ctx, "catalog", "stores/s2/products/p3.json", []byte("c"), PutOptions{}))

	keys, err := s.List(ctx, "catalog", "stores/s1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"stores/s1/products/p1.json", "stores/s1/products/p2.json"}, keys)
}

func TestMemoryBucketIsolation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "raw", "k", []byte("raw"), PutOptions{}))
	require.NoError(t, s.Put(ctx, "processed", "k", []byte("processed"), PutOptions{}))

	body, err := s.Get(ctx, "raw", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), body)
}
