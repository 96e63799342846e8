package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	usernameKeyPrefix = "username:%s"

	// UsernameTTL bounds how stale a resolved author name can get.
	UsernameTTL = 5 * time.Minute
)

// UsernameKey returns the cache key for a user's username, keyed by user ID hex.
func UsernameKey(userID string) string {
	return fmt.Sprintf(usernameKeyPrefix, userID)
}

// GetUsername looks up a cached username. The second return value is false
// on a miss or when the client is nil or unavailable.
func GetUsername(ctx context.Context, rdb *redis.Client, userID string) (string, bool) {
	if rdb == nil {
		return "", false
	}
	name, err := rdb.Get(ctx, UsernameKey(userID)).Result()
	if err != nil {
		return "", false
	}
	return name, true
}

// SetUsername caches a resolved username. Failures are ignored; the cache
// is best-effort.
func SetUsername(ctx context.Context, rdb *redis.Client, userID, username string) {
	if rdb == nil {
		return
	}
	rdb.Set(ctx, UsernameKey(userID), username, UsernameTTL)
}
