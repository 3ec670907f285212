package redis

import (
	"context"
	"time"
)

// AcquireLock takes a best-effort distributed lock. It returns true when
// the lock was acquired; the lock expires on its own after ttl so a
// crashed holder cannot wedge other processes.
func AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return SetNX(ctx, "lock:"+name, 1, ttl)
}

// ReleaseLock releases a lock taken with AcquireLock
func ReleaseLock(ctx context.Context, name string) error {
	return Del(ctx, "lock:"+name)
}
