// Package shared provides a single mutable value guarded by a lock.
//
// State is the building block every pipeline task uses for data reachable
// from more than one goroutine: the blink period adjusted by the console
// task, the latest reading behind a handoff.Signal, and so on. The value is
// never exposed directly. Callers pass a function that runs while the lock
// is held:
//
//	period := shared.New[int32](500)
//	err := period.Update(ctx, func(v *int32) error {
//	    *v = shared.Clamp(*v+100, 0, 2000)
//	    return nil
//	})
//
// # Timeouts
//
// The context deadline is the lock timeout. A context without a deadline
// waits forever. Failing to acquire the lock returns an error that matches
// ErrLockTimeout; it is never swallowed.
//
// # Critical sections
//
// Functions passed to Update must be short and must not block: no channel
// operations, no sleeps, no device I/O. The lock is released on every exit
// path, including a panic inside the function.
package shared
