// Package mqtt provides MQTT client connectivity for sensorpipe.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing readings, button events and heartbeats with QoS guarantees
//   - Subscription to remote blink commands
//   - Last Will and Testament (LWT) for offline detection
//   - Payload encoding (JSON or MessagePack)
//
// # Topics
//
// Every topic is scoped to the node's device ID:
//
//	sensorpipe/state/{device}/{sensor}    readings (not retained)
//	sensorpipe/event/{device}/button      debounced presses
//	sensorpipe/health/{device}            heartbeat (retained)
//	sensorpipe/command/{device}/blink     "+" or "-" control lines
//	sensorpipe/system/{device}/status     online/offline (retained, LWT)
//
// # Security Considerations
//
//   - TLS should be enabled outside the bench (cfg.Broker.TLS=true)
//   - Credentials should come from SENSORPIPE_MQTT_USERNAME/PASSWORD
//   - Command payloads are untrusted input; only the first character is used
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.PublishEncoded(client.Topics().Health(), heartbeat, true)
package mqtt
