// Package msgq is a fixed-capacity FIFO for handing values between tasks.
//
// A Queue never holds more than its capacity. Producers use TryPut and are
// expected to drop the item (and log) on ErrFull; consumers either poll with
// TryGet until ErrEmpty or block in Get with a context deadline. Items are
// copied in and out, so callers must not share mutable state through them.
//
// Len is advisory: another task may change the queue between Len and the
// next operation. Draining consumers should loop on TryGet rather than on
// Len.
package msgq
