// Package peripheral defines the device interfaces the pipeline talks to,
// plus simulated devices for running without hardware.
//
// Every fallible device call returns an error matching ErrDevice, usually
// a *DeviceError naming the device and operation. Callers log the failure
// and try again next period; nothing in this package retries.
//
// Simulations:
//   - MCP9808 reads an ambient temperature register through a RegisterBus
//     and decodes it the way the Microchip part encodes it. SimBus is a
//     drifting in-memory bus for it.
//   - SequenceSensor replays a fixed list of readings.
//   - SimPin is a digital pin usable as LED or button level.
//   - SimButton raises interrupts with optional contact bounce.
//   - ConsoleLines and LineFeed provide control lines.
package peripheral
