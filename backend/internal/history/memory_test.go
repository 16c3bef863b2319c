package history

import (
	"context"
	"fmt"
	"testing"
)

func TestMemoryCache_BoundedBuffer(t *testing.T) {
	cache := NewMemoryCache(3)
	defer cache.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		turn := Turn{
			UserText:      fmt.Sprintf("question %d", i),
			AssistantText: fmt.Sprintf("answer %d", i),
		}
		if err := cache.Append(ctx, "conv-1", turn); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	turns, err := cache.Recent(ctx, "conv-1")
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("retained %d turns, want 3", len(turns))
	}
	// Oldest turns are dropped first
	if turns[0].UserText != "question 2" || turns[2].UserText != "question 4" {
		t.Errorf("unexpected window: %+v", turns)
	}
}

func TestMemoryCache_ConversationsIsolated(t *testing.T) {
	cache := NewMemoryCache(5)
	defer cache.Close()
	ctx := context.Background()

	cache.Append(ctx, "conv-a", Turn{UserText: "hello a"})
	cache.Append(ctx, "conv-b", Turn{UserText: "hello b"})

	a, _ := cache.Recent(ctx, "conv-a")
	b, _ := cache.Recent(ctx, "conv-b")
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected one turn each, got %d and %d", len(a), len(b))
	}
	if a[0].UserText != "hello a" || b[0].UserText != "hello b" {
		t.Errorf("turns crossed conversations: %+v %+v", a, b)
	}
}

func TestMemoryCache_UnknownConversation(t *testing.T) {
	cache := NewMemoryCache(5)
	defer cache.Close()

	turns, err := cache.Recent(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected no turns, got %d", len(turns))
	}
}

func TestMemoryCache_RecentReturnsCopy(t *testing.T) {
	cache := NewMemoryCache(5)
	defer cache.Close()
	ctx := context.Background()

	cache.Append(ctx, "conv-1", Turn{UserText: "original"})
	turns, _ := cache.Recent(ctx, "conv-1")
	turns[0].UserText = "mutated"

	again, _ := cache.Recent(ctx, "conv-1")
	if again[0].UserText != "original" {
		t.Error("callers must not be able to mutate the cached buffer")
	}
}
