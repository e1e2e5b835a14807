package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/ietxaniz/delock"
	"golang.org/x/sync/semaphore"
)

// locker is the lock behind a State. lock returns a release function that
// must be called exactly once.
type locker interface {
	lock(ctx context.Context) (release func(), err error)
}

// semLocker is a mutex built on a weighted semaphore of size one, so the
// wait can be abandoned when the context ends.
type semLocker struct {
	sem *semaphore.Weighted
}

func newSemLocker() *semLocker {
	return &semLocker{sem: semaphore.NewWeighted(1)}
}

func (l *semLocker) lock(ctx context.Context) (func(), error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { l.sem.Release(1) }, nil
}

// deadlockLocker uses delock, which fails after a fixed timeout and
// includes the holder's stack in its error. The context is only checked
// before waiting.
type deadlockLocker struct {
	mu *delock.RWMutex
}

func newDeadlockLocker(timeout time.Duration) *deadlockLocker {
	mu := &delock.RWMutex{}
	mu.SetTimeout(timeout)
	return &deadlockLocker{mu: mu}
}

func (l *deadlockLocker) lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := l.mu.Lock()
	if err != nil {
		return nil, fmt.Errorf("delock: %w", err)
	}
	return func() { l.mu.Unlock(id) }, nil
}
