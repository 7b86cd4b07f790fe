package dedup

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

// newTestGuard creates a Guard connected to a local Redis instance and
// removes test keys on cleanup. Tests that call this helper require a
// running Redis on localhost:6379; they skip otherwise.
func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	cleanup := func() {
		iter := client.Scan(ctx, 0, KeyPrefix+"-9*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		client.Close()
	})
	return NewGuard(client)
}

func TestFirstSeen(t *testing.T) {
	guard := newTestGuard(t)
	ctx := context.Background()

	first, err := guard.FirstSeen(ctx, -9001, 42)
	if err != nil {
		t.Fatalf("FirstSeen() error: %v", err)
	}
	if !first {
		t.Error("first sighting must report true")
	}

	first, err = guard.FirstSeen(ctx, -9001, 42)
	if err != nil {
		t.Fatalf("FirstSeen() error: %v", err)
	}
	if first {
		t.Error("second sighting must report false")
	}
}

func TestFirstSeen_DistinctMessages(t *testing.T) {
	guard := newTestGuard(t)
	ctx := context.Background()

	guard.FirstSeen(ctx, -9001, 42)

	// Same message id in another chat is a distinct key.
	first, err := guard.FirstSeen(ctx, -9002, 42)
	if err != nil {
		t.Fatalf("FirstSeen() error: %v", err)
	}
	if !first {
		t.Error("same message id in a different chat must be first-seen")
	}

	first, _ = guard.FirstSeen(ctx, -9001, 43)
	if !first {
		t.Error("a new message id in the same chat must be first-seen")
	}
}
