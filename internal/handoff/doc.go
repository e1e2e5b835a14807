// Package handoff passes the most recent value from one task to another.
//
// A Signal pairs a binary semaphore with a shared.State. Publish overwrites
// the value and raises the semaphore; WaitAndTake lowers it and reads the
// value. Publishing twice before the consumer wakes keeps only the second
// value and a single pending wake-up. A publish that lands between a
// consumer's wake-up and its read makes that read return the newer value,
// and the next wake-up returns it again.
package handoff
