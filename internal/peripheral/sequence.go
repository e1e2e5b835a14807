package peripheral

import (
	"context"
	"sync"
)

// SequenceSensor returns a fixed list of readings, one per Read, then fails
// with ErrSequenceDone. Failures can be injected at given read indexes.
type SequenceSensor struct {
	name string

	mu       sync.Mutex
	values   []SensorValue
	next     int
	reads    int
	failures map[int]error
}

// NewSequenceSensor creates a sensor replaying values in order.
func NewSequenceSensor(name string, values ...float64) *SequenceSensor {
	seq := make([]SensorValue, len(values))
	for i, v := range values {
		seq[i] = FromFloat64(v)
	}
	return &SequenceSensor{
		name:     name,
		values:   seq,
		failures: make(map[int]error),
	}
}

// FailAt makes the n-th call to Read (zero based) fail with err. The value
// that would have been returned is kept for the next call.
func (s *SequenceSensor) FailAt(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[n] = err
}

// Name returns the sensor name.
func (s *SequenceSensor) Name() string {
	return s.name
}

// Read returns the next value in the sequence.
func (s *SequenceSensor) Read(ctx context.Context) (SensorValue, error) {
	if err := ctx.Err(); err != nil {
		return SensorValue{}, deviceError(s.name, "read", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.reads
	s.reads++
	if err, ok := s.failures[call]; ok {
		return SensorValue{}, deviceError(s.name, "read", err)
	}
	if s.next >= len(s.values) {
		return SensorValue{}, deviceError(s.name, "read", ErrSequenceDone)
	}

	v := s.values[s.next]
	s.next++
	return v, nil
}

// Remaining returns how many values have not been read yet.
func (s *SequenceSensor) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.next
}
