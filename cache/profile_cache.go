package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"voxfolio/db"
)

// profileTTL keeps public profile payloads warm between edits; admin writes
// invalidate explicitly.
const profileTTL = 10 * time.Minute

// ProfileKey builds the Redis key for a rendered public profile payload.
func ProfileKey(username string) string {
	return fmt.Sprintf("profile:%s", username)
}

// GetProfile returns the cached public profile JSON for an artist, or
// (nil, false) on a miss.
func GetProfile(ctx context.Context, username string) (json.RawMessage, bool) {
	if db.RedisClient == nil {
		return nil, false
	}
	data, err := db.RedisClient.Get(ctx, ProfileKey(username)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetProfile caches a rendered public profile payload.
func SetProfile(ctx context.Context, username string, payload []byte) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if err := db.RedisClient.Set(ctx, ProfileKey(username), payload, profileTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

// InvalidateProfile drops a cached profile after any admin edit.
func InvalidateProfile(ctx context.Context, username string) {
	if db.RedisClient == nil {
		return
	}
	db.RedisClient.Del(ctx, ProfileKey(username))
}
