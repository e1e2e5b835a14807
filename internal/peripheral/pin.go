package peripheral

import (
	"context"
	"sync"
)

// SimPin is a simulated digital pin. It implements both Actuator and
// InputPin so the same type serves as LED and as button level.
type SimPin struct {
	name string

	mu      sync.Mutex
	level   int
	writes  int
	failErr error
}

// NewSimPin creates a pin at level 0.
func NewSimPin(name string) *SimPin {
	return &SimPin{name: name}
}

// Set drives the pin. Any non-zero value is stored as 1.
func (p *SimPin) Set(ctx context.Context, value int) error {
	if err := ctx.Err(); err != nil {
		return deviceError(p.name, "set", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failErr != nil {
		return deviceError(p.name, "set", p.failErr)
	}
	if value != 0 {
		value = 1
	}
	p.level = value
	p.writes++
	return nil
}

// Get reads the pin level.
func (p *SimPin) Get(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, deviceError(p.name, "get", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failErr != nil {
		return 0, deviceError(p.name, "get", p.failErr)
	}
	return p.level, nil
}

// Fail makes every following Set and Get fail with err. A nil err clears
// the fault.
func (p *SimPin) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failErr = err
}

// Level returns the current level without going through the device path.
func (p *SimPin) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Writes returns how many successful Set calls were made.
func (p *SimPin) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}
