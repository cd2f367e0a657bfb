// Package memory implements an in-memory key-value store. It is the
// default backend for local development and the test double for the
// Redis store.
package memory

import (
	"context"
	"sync"

	"github.com/ecokids/ecokids-hub/internal/domain/player"
)

// KV is a thread-safe in-memory implementation of player.KeyValue.
type KV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewKV creates an empty in-memory store.
func NewKV() *KV {
	return &KV{data: make(map[string]string)}
}

// Get returns the value for a key or player.ErrKeyNotFound.
func (k *KV) Get(ctx context.Context, key string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	val, ok := k.data[key]
	if !ok {
		return "", player.ErrKeyNotFound
	}
	return val, nil
}

// Set stores a value under a key.
func (k *KV) Set(ctx context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = value
	return nil
}

// Len returns the number of stored keys.
func (k *KV) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.data)
}
