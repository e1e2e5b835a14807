// Package influxdb persists sensor readings to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, non-blocking batched writes and health monitoring.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // persistence switched off in config.yaml
//	}
//	defer client.Close()
//
//	client.WriteReading(influxdb.Reading{
//	    DeviceID: "node-001",
//	    Sensor:   "mcp9808",
//	    Value:    21.5,
//	    Seq:      1,
//	    TakenAt:  time.Now(),
//	})
//
// # Error Handling
//
// Writes never block the caller. Failures surface through the callback set
// with SetOnError. Connection and health check errors are returned directly.
package influxdb
