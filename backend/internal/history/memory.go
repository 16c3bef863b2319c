package history

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryCacheSize bounds the number of tracked conversations, not turns;
// least-recently-touched conversations are evicted first.
const memoryCacheSize = 1024

// memoryCacheTTL expires conversations that have been idle for a day.
const memoryCacheTTL = 24 * time.Hour

// MemoryCache keeps conversation turn buffers in an in-process expirable
// LRU
type MemoryCache struct {
	cache *lru.LRU[string, []Turn]
	limit int
}

// NewMemoryCache creates an in-memory history cache retaining the last
// limit turns per conversation
func NewMemoryCache(limit int) *MemoryCache {
	if limit < 1 {
		limit = 10
	}
	return &MemoryCache{
		cache: lru.NewLRU[string, []Turn](memoryCacheSize, nil, memoryCacheTTL),
		limit: limit,
	}
}

// Recent returns the retained turns for a conversation, oldest first
func (m *MemoryCache) Recent(ctx context.Context, conversationID string) ([]Turn, error) {
	turns, ok := m.cache.Get(conversationID)
	if !ok {
		return nil, nil
	}
	// Copy so callers cannot mutate the buffer
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Append adds a turn, dropping the oldest once the buffer exceeds the limit
func (m *MemoryCache) Append(ctx context.Context, conversationID string, turn Turn) error {
	turns, _ := m.cache.Get(conversationID)
	turns = append(turns, turn)
	if len(turns) > m.limit {
		turns = turns[len(turns)-m.limit:]
	}
	m.cache.Add(conversationID, turns)
	return nil
}

// Close purges the cache
func (m *MemoryCache) Close() error {
	m.cache.Purge()
	return nil
}
