package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Ensure MemoryStore implements ObjectStore
var _ ObjectStore = (*MemoryStore)(nil)

// MemoryStore keeps objects in process memory. Used in development and tests.
type MemoryStore struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]memoryObject),
	}
}

// Put stores a copy of data under key
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: buf, contentType: contentType}
	return nil
}

// Get returns a copy of the object stored under key
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, nil
}

// ContentType returns the content type recorded for key
func (m *MemoryStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key].contentType
}

// PublicURL returns BaseURL joined with key
func (m *MemoryStore) PublicURL(key string) string {
	return strings.TrimSuffix(m.BaseURL, "/") + "/" + key
}
