package planner

import (
	"context"
	"time"
)

// DefaultLockTTL bounds how long one correction may hold a user's lock.
const DefaultLockTTL = 5 * time.Minute

// SubjectLocker grants exclusive access per key. TryLock never waits: when
// the key is held it returns ErrCorrectionInProgress.
type SubjectLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

type noopLocker struct{}

func (noopLocker) TryLock(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}
