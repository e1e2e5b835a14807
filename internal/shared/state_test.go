package shared

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_MutatesValue(t *testing.T) {
	s := New(10)

	err := s.Update(context.Background(), func(v *int) error {
		*v += 5
		return nil
	})
	require.NoError(t, err)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, got)
}

func TestUpdate_ReturnsFunctionError(t *testing.T) {
	s := New("a")
	boom := errors.New("boom")

	err := s.Update(context.Background(), func(v *string) error {
		*v = "b"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrLockTimeout)

	// Mutations made before the failure are kept.
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestUpdate_ReleasesLockAfterError(t *testing.T) {
	s := New(0)

	err := s.Update(context.Background(), func(*int) error {
		return errors.New("failed")
	})
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Store(ctx, 1))
}

func TestUpdate_ReleasesLockAfterPanic(t *testing.T) {
	s := New(0)

	assert.Panics(t, func() {
		_ = s.Update(context.Background(), func(*int) error {
			panic("inside critical section")
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Store(ctx, 2))
}

func TestUpdate_LockTimeout(t *testing.T) {
	s := New(0, WithName("blink_period"))

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Update(context.Background(), func(*int) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := s.Update(ctx, func(*int) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "blink_period")
	assert.False(t, called)
	assert.Equal(t, uint64(1), s.Timeouts())

	close(release)
	<-done
}

func TestUpdate_CancelledContext(t *testing.T) {
	s := New(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Store(ctx, 1)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdate_ConcurrentIncrements(t *testing.T) {
	s := New(0)
	const workers, perWorker = 8, 250

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				_ = s.Update(context.Background(), func(v *int) error {
					*v++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, got)
}

func TestWith_ReturnsResult(t *testing.T) {
	s := New([]string{"x", "y"})

	n, err := With(context.Background(), s, func(v *[]string) (int, error) {
		*v = append(*v, "z")
		return len(*v), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDeadlockTimeoutMode(t *testing.T) {
	s := New(0, WithDeadlockTimeout(50*time.Millisecond))

	require.NoError(t, s.Store(context.Background(), 7))
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Store(ctx, 1), ErrLockTimeout)
}
