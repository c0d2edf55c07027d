package preview

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore holds previews in process. When full, the least recently stored preview
// is dropped.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, []byte]
}

func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, []byte](maxSize, nil, ttl)}
}

func (m *MemoryStore) Put(_ context.Context, pdf []byte) (string, error) {
	id := newID()
	m.cache.Add(id, pdf)
	return id, nil
}

func (m *MemoryStore) Take(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pdf, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	m.cache.Remove(id)
	return pdf, nil
}

func (m *MemoryStore) Close() error {
	m.cache.Purge()
	return nil
}
