package peripheral

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// SimButton is a push button on a SimPin that raises an interrupt on every
// edge to the active level. Bounce adds that many extra spurious edges per
// press, BounceGap apart.
type SimButton struct {
	pin       *SimPin
	clock     clock.Clock
	bounce    int
	bounceGap time.Duration

	mu        sync.Mutex
	callbacks []func()
}

// NewSimButton creates a button on pin.
func NewSimButton(pin *SimPin, clk clock.Clock, bounce int, bounceGap time.Duration) *SimButton {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &SimButton{
		pin:       pin,
		clock:     clk,
		bounce:    bounce,
		bounceGap: bounceGap,
	}
}

// OnInterrupt implements InterruptSource.
func (b *SimButton) OnInterrupt(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callbacks = append(b.callbacks, fn)
}

// Pin returns the level pin behind the button.
func (b *SimButton) Pin() *SimPin {
	return b.pin
}

// Press drives the pin active and raises 1+bounce interrupts. It returns
// early if ctx ends during the bounce.
func (b *SimButton) Press(ctx context.Context) error {
	if err := b.pin.Set(ctx, 1); err != nil {
		return err
	}
	b.fire()

	for range b.bounce {
		select {
		case <-ctx.Done():
			return nil
		case <-b.clock.After(b.bounceGap):
		}
		b.fire()
	}
	return nil
}

// Release drives the pin inactive. No interrupt is raised.
func (b *SimButton) Release(ctx context.Context) error {
	return b.pin.Set(ctx, 0)
}

// AutoPress presses and releases the button every interval until ctx ends.
// The pin stays active for hold.
func (b *SimButton) AutoPress(ctx context.Context, interval, hold time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.clock.After(interval):
		}

		if err := b.Press(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-b.clock.After(hold):
		}
		if err := b.Release(ctx); err != nil {
			return err
		}
	}
}

func (b *SimButton) fire() {
	b.mu.Lock()
	callbacks := append([]func(){}, b.callbacks...)
	b.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
