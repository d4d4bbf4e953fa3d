package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises access to a session across replicas sharing
// one session store.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx is done. The lock expires on its
	// own after ttl, so a crashed holder cannot block a session forever.
	// Callers must call the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
