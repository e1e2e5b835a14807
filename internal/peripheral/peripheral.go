package peripheral

import (
	"context"
	"fmt"
	"math"
)

// Sensor produces readings.
type Sensor interface {
	Name() string
	Read(ctx context.Context) (SensorValue, error)
}

// Actuator drives an output such as an LED.
type Actuator interface {
	Set(ctx context.Context, value int) error
}

// InputPin reads a digital input level.
type InputPin interface {
	Get(ctx context.Context) (int, error)
}

// InterruptSource calls registered callbacks when an edge is detected.
// Callbacks run in interrupt context: they must not block.
type InterruptSource interface {
	OnInterrupt(fn func())
}

// LineSource yields control lines. ReadLine returns io.EOF when the source
// is closed.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
}

// SensorValue is a fixed-point reading: an integer part plus millionths,
// both carrying the sign of the value.
type SensorValue struct {
	Val1 int32 `json:"val1" msgpack:"val1"`
	Val2 int32 `json:"val2" msgpack:"val2"`
}

// FromFloat64 converts f, rounding to the nearest millionth.
func FromFloat64(f float64) SensorValue {
	micros := int64(math.Round(f * 1e6))
	return SensorValue{
		Val1: int32(micros / 1_000_000),
		Val2: int32(micros % 1_000_000),
	}
}

// Float64 returns the value as a float.
func (v SensorValue) Float64() float64 {
	return float64(v.Val1) + float64(v.Val2)/1e6
}

func (v SensorValue) String() string {
	return fmt.Sprintf("%.6f", v.Float64())
}
