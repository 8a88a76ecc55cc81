package storage

import (
	"context"
	"fmt"
	"sync"
)

var _ ObjectStore = (*MemoryStore)(nil)

// MemoryStore keeps objects in process memory. It backs local development
// when no storage credentials are configured, and tests.
type MemoryStore struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

func objectKey(bucket, path string) string {
	return bucket + "/" + path
}

func (m *MemoryStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[objectKey(bucket, path)] = buf
	return PublicURL(m.PublicURLPrefix(bucket), path), nil
}

func (m *MemoryStore) Delete(ctx context.Context, bucket, path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := objectKey(bucket, path)
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("object %s not found", key)
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) PublicURLPrefix(bucket string) string {
	return publicURLPrefix(m.BaseURL, bucket)
}

// Has reports whether an object is stored.
func (m *MemoryStore) Has(bucket, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[objectKey(bucket, path)]
	return ok
}
