package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voxfolio/core/clips"
	"voxfolio/db"
)

// clipTTL bounds how stale a cached clip list can get if an invalidation is
// ever missed.
const clipTTL = 24 * time.Hour

// ClipsKey builds the Redis key for a demo's normalized clip list.
func ClipsKey(demoID int64) string {
	return fmt.Sprintf("clips:%d", demoID)
}

// GetDemoClips returns the cached normalized clips for a demo, or
// (nil, false) on a miss. Cache errors degrade to a miss.
func GetDemoClips(ctx context.Context, demoID int64) ([]clips.Clip, bool) {
	if db.RedisClient == nil {
		return nil, false
	}

	data, err := db.RedisClient.Get(ctx, ClipsKey(demoID)).Bytes()
	if err != nil {
		return nil, false
	}

	var out []clips.Clip
	if err := json.Unmarshal(data, &out); err != nil {
		// A corrupt entry is worse than a miss; drop it.
		db.RedisClient.Del(ctx, ClipsKey(demoID))
		return nil, false
	}
	return out, true
}

// SetDemoClips caches a demo's normalized clip list.
func SetDemoClips(ctx context.Context, demoID int64, clipList []clips.Clip) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(clipList)
	if err != nil {
		return fmt.Errorf("failed to marshal clip list: %w", err)
	}
	if err := db.RedisClient.Set(ctx, ClipsKey(demoID), data, clipTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache clip list: %w", err)
	}
	return nil
}

// InvalidateDemoClips drops the cached clip list after a segment save.
func InvalidateDemoClips(ctx context.Context, demoID int64) error {
	if db.RedisClient == nil {
		return nil
	}
	if err := db.RedisClient.Del(ctx, ClipsKey(demoID)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to invalidate clip cache: %w", err)
	}
	return nil
}
