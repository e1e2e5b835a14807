// Package debounce coalesces bursts of interrupts into one deferred unit of
// work.
//
// A Scheduler has one deadline. Every Notify moves the deadline to
// now+window, so the work runs once, window after the last interrupt of a
// burst. Notify is safe to call from an interrupt callback: it does not
// block, take a lock or allocate. The work itself runs on the goroutine
// executing Run, never inside Notify.
//
// Example:
//
//	s, err := debounce.New(50*time.Millisecond, readButton)
//	if err != nil {
//	    return err
//	}
//	button.OnInterrupt(s.Notify)
//	go s.Run(ctx)
//
// With interrupts at 0, 10 and 20 ms and a 50 ms window the work runs once,
// at 70 ms.
package debounce
