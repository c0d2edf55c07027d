// Package preview keeps finished documents addressable for a single fetch.
//
// A preview is stored under a random id, served once through Take and then released.
// Previews that are never opened expire after the store's TTL.
package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL       = 5 * time.Minute
	defaultMaxMemory = 64
)

var ErrNotFound = errors.New("preview not found or already opened")

type Store interface {
	// Put stores a document and returns its id.
	Put(ctx context.Context, pdf []byte) (string, error)
	// Take returns the document and releases it.
	Take(ctx context.Context, id string) ([]byte, error)
	Close() error
}

func NewStore(storeType, address string, ttl time.Duration) (Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	switch storeType {
	case "", "memory":
		return NewMemoryStore(defaultMaxMemory, ttl), nil
	case "redis":
		store, err := NewRedisStore(context.Background(), address, ttl)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported preview store: %s", storeType)
	}
}

func newID() string {
	return uuid.NewString()
}
