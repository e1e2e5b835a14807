package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/yushengtzou/sensorpipe/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls// Node status values published on the system status topic.
const (
	statusOnline  = "online"
	statusOffline = "offline"

	reasonUnexpected = "unexpected_disconnect"
	reasonShutdown   = "graceful_shutdown"
)

// clientIDFor returns the configured client ID, or one derived from the
// device ID so that several nodes can share a broker without colliding.
func clientIDFor(cfg config.MQTTConfig, deviceID string) string {
	if cfg.Broker.ClientID != "" {
		return cfg.Broker.ClientID
	}
	return "sensorpipe-" + deviceID
}

// buildClientOptions creates paho MQTT options for a sensorpipe node.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID, defaulting to sensorpipe-<device>
//   - Authentication credentials (if provided)
//   - Auto-reconnect with exponential backoff
//   - Unordered delivery, so a slow command handler never stalls acks
//   - TLS configuration (if enabled)
func buildClientOptions(cfg config.MQTTConfig, deviceID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(clientIDFor(cfg, deviceID))

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Command subscriptions are restored by the client itself on reconnect.
	opts.SetCleanSession(true)
	opts.SetResumeSubs(false)
	opts.SetOrderMatters(false)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}

// nodeStatus is the retained payload on sensorpipe/system/<device>/status.
// It is always JSON so dashboards can read it whatever the payload format.
type nodeStatus struct {
	Status    string `json:"status"`
	Device    string `json:"device"`
	ClientID  string `json:"client_id"`
	Format    string `json:"payload_format"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// statusPayload encodes a node status message.
func statusPayload(status, reason, device, clientID, format string) []byte {
	//nolint:errcheck // nodeStatus holds only strings
	data, _ := json.Marshal(nodeStatus{
		Status:    status,
		Device:    device,
		ClientID:  clientID,
		Format:    format,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return data
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// The broker publishes the will, retained, if the node disconnects without
// calling Close.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics, format string) {
	payload := statusPayload(statusOffline, reasonUnexpected, topics.Device(), opts.ClientID, format)
	opts.SetBinaryWill(topics.SystemStatus(), payload, 1, true)
}
