package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache keeps conversation turn buffers in Redis lists, one list per
// conversation, trimmed to the configured turn limit on every append
type RedisCache struct {
	client *redis.Client
	limit  int
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(host string, port, limit int) (*RedisCache, error) {
	if limit < 1 {
		limit = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, limit: limit}, nil
}

func historyKey(conversationID string) string {
	return "lifegraph:history:" + conversationID
}

// Recent returns the retained turns for a conversation, oldest first
func (r *RedisCache) Recent(ctx context.Context, conversationID string) ([]Turn, error) {
	raw, err := r.client.LRange(ctx, historyKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Append adds a turn and trims the list to the last limit entries
func (r *RedisCache) Append(ctx context.Context, conversationID string, turn Turn) error {
	encoded, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to encode turn: %w", err)
	}

	key := historyKey(conversationID)
	if err := r.client.RPush(ctx, key, string(encoded)).Err(); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	if err := r.client.LTrim(ctx, key, int64(-r.limit), -1).Err(); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (r *RedisCache) Close() error {
	return r.client.Close()
}
