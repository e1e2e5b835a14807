package peripheral

import (
	"context"
	"fmt"
)

// MCP9808 register map.
const (
	MCP9808RegConfig     uint8 = 0x01
	MCP9808RegTempAmb    uint8 = 0x05
	MCP9808RegResolution uint8 = 0x08
)

// Ambient temperature register layout.
const (
	mcp9808TempScaleCel = 16
	mcp9808TempSignBit  = 1 << 12
	mcp9808TempAbsMask  = 0x0FFF
)

// RegisterBus reads and writes device registers, typically over I2C.
// Register values are returned in host order.
type RegisterBus interface {
	ReadRegister(ctx context.Context, reg uint8) (uint16, error)
	WriteRegister(ctx context.Context, reg uint8, value uint8) error
}

// MCP9808 is an ambient temperature sensor.
type MCP9808 struct {
	name string
	bus  RegisterBus
}

// NewMCP9808 initialises the sensor by writing its resolution register.
// resolution is the register index 0-3 (0.5 to 0.0625 °C).
func NewMCP9808(ctx context.Context, name string, bus RegisterBus, resolution uint8) (*MCP9808, error) {
	if bus == nil {
		return nil, deviceError(name, "init", ErrNotReady)
	}
	if resolution > 3 {
		return nil, fmt.Errorf("mcp9808: invalid resolution index %d", resolution)
	}
	if err := bus.WriteRegister(ctx, MCP9808RegResolution, resolution); err != nil {
		return nil, deviceError(name, "set resolution", err)
	}
	return &MCP9808{name: name, bus: bus}, nil
}

// Name returns the sensor name.
func (m *MCP9808) Name() string {
	return m.name
}

// Read fetches and decodes the ambient temperature.
func (m *MCP9808) Read(ctx context.Context) (SensorValue, error) {
	raw, err := m.bus.ReadRegister(ctx, MCP9808RegTempAmb)
	if err != nil {
		return SensorValue{}, deviceError(m.name, "read temperature", err)
	}
	return DecodeMCP9808Temperature(raw), nil
}

// DecodeMCP9808Temperature converts the 13-bit ambient temperature field
// (12-bit magnitude in 1/16 °C plus sign) to a SensorValue. Alert flag bits
// above the sign bit are ignored.
func DecodeMCP9808Temperature(raw uint16) SensorValue {
	temp := int32(raw & mcp9808TempAbsMask)
	if raw&mcp9808TempSignBit != 0 {
		temp -= mcp9808TempAbsMask + 1
	}

	val1 := temp / mcp9808TempScaleCel
	rem := temp - val1*mcp9808TempScaleCel
	return SensorValue{
		Val1: val1,
		Val2: rem * 1_000_000 / mcp9808TempScaleCel,
	}
}

// EncodeMCP9808Temperature is the inverse of DecodeMCP9808Temperature,
// truncating to 1/16 °C.
func EncodeMCP9808Temperature(celsius float64) uint16 {
	sixteenths := int32(celsius * mcp9808TempScaleCel)
	if sixteenths < 0 {
		return uint16(sixteenths+mcp9808TempAbsMask+1) | mcp9808TempSignBit
	}
	return uint16(sixteenths) & mcp9808TempAbsMask
}
