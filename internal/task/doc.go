// Package task runs the pipeline's long-lived loops.
//
// Each loop is described by a Spec and added to a Set. Set.Run starts every
// task in priority order (lower number first, as on an RTOS), recovers
// panics and restarts a task whose loop returned an error after its
// RestartDelay. A task loop that returns nil is considered finished and is
// not restarted. Run returns once its context ends and every task has
// returned.
//
// Go does not expose goroutine priorities, so Priority only fixes start
// order and is reported in status snapshots and logs.
//
// Every is the helper for periodic loops. It sleeps before each call, so a
// loop body that fails immediately still runs at most once per period.
package task
