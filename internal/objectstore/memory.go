package objectstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store used by tests and local development
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory creates an empty in-memory object store
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

// Put writes or overwrites an object
func (s *Memory) Put(_ context.Context, bucket, key string, body []byte, _ PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(body))
	copy(buf, body)
	s.objects[objectKey(bucket, key)] = buf
	return nil
}

// Get retrieves an object's body, or ErrNotFound
func (s *Memory) Get(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.objects[objectKey(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
	}
	buf := make([]byte, len(body))
	copy(buf, body)
	return buf, nil
}

// Delete removes an object; deleting an absent object is not an error
func (s *Memory) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, objectKey(bucket, key))
	return nil
}

// Head reports whether an object exists
func (s *Memory) Head(_ context.Context, bucket, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[objectKey(bucket, key)]
	return ok, nil
}

// List returns the keys under a prefix in lexical order
func (s *Memory) List(_ context.Context, bucket, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	full := objectKey(bucket, prefix)
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, full) {
			keys = append(keys, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	sort.Strings(keys)
	return keys, nil
}
