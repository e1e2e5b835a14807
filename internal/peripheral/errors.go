package peripheral

import (
	"errors"
	"fmt"
)

// Domain errors for device access.
var (
	// ErrDevice matches every device failure.
	ErrDevice = errors.New("peripheral: device error")

	// ErrNotReady is returned when a device was not initialised.
	ErrNotReady = errors.New("peripheral: device not ready")

	// ErrSequenceDone is returned by SequenceSensor once every value was
	// read.
	ErrSequenceDone = errors.New("peripheral: sequence exhausted")
)

// DeviceError describes a failed device operation.
type DeviceError struct {
	Device string
	Op     string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Device, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Is reports every DeviceError as ErrDevice.
func (e *DeviceError) Is(target error) bool {
	return target == ErrDevice
}

func deviceError(device, op string, err error) error {
	return &DeviceError{Device: device, Op: op, Err: err}
}
