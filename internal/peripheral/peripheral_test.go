package peripheral

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorValue_Conversion(t *testing.T) {
	tests := []struct {
		in   float64
		want SensorValue
	}{
		{21.5, SensorValue{21, 500000}},
		{21.6, SensorValue{21, 600000}},
		{0, SensorValue{0, 0}},
		{-0.5, SensorValue{0, -500000}},
		{-10.25, SensorValue{-10, -250000}},
	}

	for _, tt := range tests {
		got := FromFloat64(tt.in)
		assert.Equal(t, tt.want, got, "FromFloat64(%v)", tt.in)
		assert.InDelta(t, tt.in, got.Float64(), 1e-9)
	}
	assert.Equal(t, "21.500000", FromFloat64(21.5).String())
}

func TestDecodeMCP9808Temperature(t *testing.T) {
	tests := []struct {
		name string
		raw  uint16
		want SensorValue
	}{
		{"zero", 0x0000, SensorValue{0, 0}},
		{"21.5", 0x0158, SensorValue{21, 500000}},
		{"smallest step", 0x0001, SensorValue{0, 62500}},
		{"minus one step", 0x1FFF, SensorValue{0, -62500}},
		{"minus 25", 0x1E70, SensorValue{-25, 0}},
		{"alert flags ignored", 0xE158, SensorValue{21, 500000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeMCP9808Temperature(tt.raw))
		})
	}
}

func TestEncodeMCP9808Temperature_RoundTrip(t *testing.T) {
	for _, c := range []float64{21.5, 0.0625, -0.0625, -25, 100.75} {
		got := DecodeMCP9808Temperature(EncodeMCP9808Temperature(c))
		assert.InDelta(t, c, got.Float64(), 1e-9, "celsius %v", c)
	}
}

func TestMCP9808_ReadsThroughBus(t *testing.T) {
	ctx := context.Background()
	bus := NewSimBus(21.5, 0, 3)

	sensor, err := NewMCP9808(ctx, "mcp9808", bus, 3)
	require.NoError(t, err)
	assert.Equal(t, "mcp9808", sensor.Name())

	v, err := bus.ReadRegister(ctx, MCP9808RegResolution)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), v)

	for range 2 {
		got, err := sensor.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, SensorValue{21, 500000}, got)
	}

	// Third read hits the injected fault.
	_, err = sensor.Read(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDevice)
	assert.ErrorIs(t, err, ErrBusFault)

	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, "mcp9808", devErr.Device)
	assert.Equal(t, "read temperature", devErr.Op)
}

func TestNewMCP9808_Validation(t *testing.T) {
	_, err := NewMCP9808(context.Background(), "mcp9808", nil, 3)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = NewMCP9808(context.Background(), "mcp9808", NewSimBus(20, 0, 0), 4)
	assert.Error(t, err)
}

func TestSimBus_DriftStaysNear(t *testing.T) {
	bus := NewSimBus(20, 0.1, 0)
	sensor, err := NewMCP9808(context.Background(), "mcp9808", bus, 3)
	require.NoError(t, err)

	for range 10 {
		v, err := sensor.Read(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 20, v.Float64(), 1.1)
	}
}

func TestSequenceSensor(t *testing.T) {
	ctx := context.Background()
	s := NewSequenceSensor("seq", 21.5, 21.6)
	s.FailAt(1, errors.New("nack"))

	v, err := s.Read(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 21.5, v.Float64(), 1e-9)

	_, err = s.Read(ctx)
	assert.ErrorIs(t, err, ErrDevice)
	assert.Equal(t, 1, s.Remaining())

	v, err = s.Read(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 21.6, v.Float64(), 1e-9)

	_, err = s.Read(ctx)
	assert.ErrorIs(t, err, ErrSequenceDone)
	assert.ErrorIs(t, err, ErrDevice)
}

func TestSimPin(t *testing.T) {
	ctx := context.Background()
	pin := NewSimPin("led0")

	require.NoError(t, pin.Set(ctx, 5))
	level, err := pin.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.Equal(t, 1, pin.Writes())

	pin.Fail(errors.New("gpio busy"))
	assert.ErrorIs(t, pin.Set(ctx, 0), ErrDevice)
	_, err = pin.Get(ctx)
	assert.ErrorIs(t, err, ErrDevice)
	assert.Equal(t, 1, pin.Level())

	pin.Fail(nil)
	require.NoError(t, pin.Set(ctx, 0))
	assert.Equal(t, 0, pin.Level())
}

func TestSimButton_PressBounces(t *testing.T) {
	pin := NewSimPin("button0")
	button := NewSimButton(pin, nil, 2, time.Millisecond)

	var interrupts atomic.Int32
	button.OnInterrupt(func() { interrupts.Add(1) })

	require.NoError(t, button.Press(context.Background()))
	assert.Equal(t, int32(3), interrupts.Load())
	assert.Equal(t, 1, pin.Level())

	require.NoError(t, button.Release(context.Background()))
	assert.Equal(t, 0, pin.Level())
	assert.Equal(t, int32(3), interrupts.Load())
}

func TestConsoleLines(t *testing.T) {
	ctx := context.Background()
	c := NewConsoleLines(strings.NewReader("+\r\n-\nhello\n"))

	for _, want := range []string{"+", "-", "hello"} {
		line, err := c.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}

	_, err := c.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsoleLines_ContextEnds(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	c := NewConsoleLines(r)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.ReadLine(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConsoleLines_CloseReleasesScanner(t *testing.T) {
	c := NewConsoleLines(strings.NewReader("+\n-\n+\n"))

	// Nobody reads, so the scanner is parked on the first line.
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("scanner goroutine still running after Close")
	}

	_, err := c.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineFeed(t *testing.T) {
	f := NewLineFeed(1)
	assert.True(t, f.Push("+"))
	assert.False(t, f.Push("-"))

	line, err := f.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+", line)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
