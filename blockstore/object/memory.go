package object

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/blockcache/blockstore"
)

// MemoryClient is an in-memory Client.
type MemoryClient struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryClient creates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{objects: make(map[string][]byte)}
}

// Get implements Client.
func (c *MemoryClient) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.objects[key]
	if !ok {
		return nil, blockstore.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Put implements Client.
func (c *MemoryClient) Put(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[key] = append([]byte(nil), data...)
	return nil
}

// List implements Client.
func (c *MemoryClient) List(_ context.Context, prefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []string
	for k := range c.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
