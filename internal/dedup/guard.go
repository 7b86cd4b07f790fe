// Package dedup provides a Redis-backed guard against reprocessing the same
// platform update. Processed message ids are stored as keys with a TTL:
//
//	Key: processed:<chat_id>:<message_id>
//	TTL: 24h
//
// A redelivered update (bot restart mid-batch, platform retry) would
// otherwise re-increment the warning counter and could double-escalate.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix is the Redis key prefix for processed-message records.
	KeyPrefix = "processed:"

	// RecordTTL is how long a processed-message record lives. The platform
	// never redelivers updates older than this.
	RecordTTL = 24 * time.Hour
)

// Guard tracks processed message ids in Redis.
type Guard struct {
	client *redis.Client
}

// NewGuard creates a guard using the provided Redis client.
func NewGuard(client *redis.Client) *Guard {
	return &Guard{client: client}
}

// FirstSeen atomically records (chatID, messageID) and reports whether this
// is the first time it was seen. A false result means the update was already
// processed and must be skipped. Redis errors are returned so the caller can
// apply its policy (the bot fails open and processes the update).
func (g *Guard) FirstSeen(ctx context.Context, chatID, messageID int64) (bool, error) {
	key := fmt.Sprintf("%s%d:%d", KeyPrefix, chatID, messageID)

	first, err := g.client.SetNX(ctx, key, 1, RecordTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: setnx: %w", err)
	}
	return first, nil
}
