package history

import (
	"context"
	"fmt"

	"lifegraph/backend/pkg/config"
)

// Turn is one conversation exchange: what the user said and what the
// assistant answered.
type Turn struct {
	UserText      string `json:"user_text"`
	AssistantText string `json:"assistant_text"`
}

// Cache is a bounded per-conversation turn buffer. Only the last N turns
// are retained. Append is read-modify-write without locking across
// backends; a conversation is assumed to have a single writer at a time.
type Cache interface {
	Recent(ctx context.Context, conversationID string) ([]Turn, error)
	Append(ctx context.Context, conversationID string, turn Turn) error
	Close() error
}

// NewCache builds the history backend selected by configuration.
func NewCache(cfg *config.Config) (Cache, error) {
	switch cfg.HistoryBackend {
	case "memory":
		return NewMemoryCache(cfg.HistoryLimit), nil
	case "redis":
		return NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.HistoryLimit)
	default:
		return nil, fmt.Errorf("unknown history backend: %s", cfg.HistoryBackend)
	}
}
