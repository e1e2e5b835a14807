package mqtt

import "fmt"

// Topic prefixes for sensorpipe MQTT topics.
//
// Every topic is scoped to one device:
//
//	sensorpipe/{category}/{device_id}[/{name}]
const (
	// TopicPrefix is the base for all sensorpipe topics.
	TopicPrefix = "sensorpipe"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sensorpipe/system"
)

// Topics provides builders for one device's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.NewTopics("node-001")
//	stateTopic := topics.ReadingState("mcp9808")
//	// Returns: "sensorpipe/state/node-001/mcp9808"
type Topics struct {
	device string
}

// NewTopics returns topic builders for deviceID.
func NewTopics(deviceID string) Topics {
	return Topics{device: deviceID}
}

// Device returns the device the topics are scoped to.
func (t Topics) Device() string {
	return t.device
}

// ReadingState returns the topic carrying each consumed reading of a sensor.
//
// Example: sensorpipe/state/node-001/mcp9808
func (t Topics) ReadingState(sensor string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, t.device, sensor)
}

// ButtonEvent returns the topic for debounced button presses.
//
// Example: sensorpipe/event/node-001/button
func (t Topics) ButtonEvent() string {
	return fmt.Sprintf("%s/event/%s/button", TopicPrefix, t.device)
}

// Health returns the retained heartbeat topic.
//
// Example: sensorpipe/health/node-001
func (t Topics) Health() string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, t.device)
}

// BlinkCommand returns the topic accepting "+"/"-" blink control lines.
//
// Example: sensorpipe/command/node-001/blink
func (t Topics) BlinkCommand() string {
	return fmt.Sprintf("%s/command/%s/blink", TopicPrefix, t.device)
}

// SystemStatus returns the retained online/offline status topic, also used
// for the Last Will.
//
// Example: sensorpipe/system/node-001/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixSystem, t.device)
}

// AllReadings returns a pattern matching every sensor of every device.
//
// Pattern: sensorpipe/state/+/+
func (Topics) AllReadings() string {
	return TopicPrefix + "/state/+/+"
}

// AllTopics returns a pattern matching all sensorpipe topics.
//
// Pattern: sensorpipe/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
