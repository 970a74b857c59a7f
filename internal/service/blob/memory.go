package blob

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// MemoryStore keeps uploaded objects in process memory. It backs local
// development and tests where no object storage is reachable.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore creates an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("object key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
	}
	return nil
}

func (s *MemoryStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("object %s not found", key)
	}

	expires := time.Now().UTC().Add(ttl).Unix()
	return fmt.Sprintf("https://storage.invalid/%s?expires=%d", key, expires), nil
}

// Object returns the stored bytes and content type, for tests.
func (s *MemoryStore) Object(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

var _ domain.BlobStore = (*MemoryStore)(nil)
