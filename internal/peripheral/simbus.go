package peripheral

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// ErrBusFault is the error SimBus returns for injected failures.
var ErrBusFault = errors.New("simulated bus fault")

// SimBus is an in-memory register bus holding an MCP9808 ambient
// temperature that drifts by up to ±Drift °C per read.
type SimBus struct {
	mu        sync.Mutex
	celsius   float64
	drift     float64
	failEvery int
	reads     int
	registers map[uint8]uint8
	rand      *rand.Rand
}

// NewSimBus creates a bus starting at celsius. failEvery > 0 makes every
// failEvery-th temperature read fail.
func NewSimBus(celsius, drift float64, failEvery int) *SimBus {
	return &SimBus{
		celsius:   celsius,
		drift:     drift,
		failEvery: failEvery,
		registers: make(map[uint8]uint8),
		rand:      rand.New(rand.NewPCG(uint64(celsius*1000), 0x9808)),
	}
}

// ReadRegister implements RegisterBus.
func (b *SimBus) ReadRegister(ctx context.Context, reg uint8) (uint16, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if reg != MCP9808RegTempAmb {
		return uint16(b.registers[reg]), nil
	}

	b.reads++
	if b.failEvery > 0 && b.reads%b.failEvery == 0 {
		return 0, fmt.Errorf("read register 0x%02x: %w", reg, ErrBusFault)
	}

	if b.drift > 0 {
		b.celsius += (b.rand.Float64()*2 - 1) * b.drift
	}
	return EncodeMCP9808Temperature(b.celsius), nil
}

// WriteRegister implements RegisterBus.
func (b *SimBus) WriteRegister(ctx context.Context, reg uint8, value uint8) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.registers[reg] = value
	return nil
}
