package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the generic key/value cache the repositories depend on. Values
// are JSON-marshaled structs or pointers to them.
type Cache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string, target any) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

func FileMetadataKey(fileID uint64) string {
	return fmt.Sprintf("file:metadata:%d", fileID)
}

func StorageUsageKey(ownerID uint64) string {
	return fmt.Sprintf("storage:usage:%d", ownerID)
}
