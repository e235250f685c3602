// Package influxdb is the optional operational metrics sink.
//
// It wraps the official influxdb-client-go v2 library and records two
// aggregate counters:
//   - booking_ops, tagged op and outcome, one point per booking or return attempt
//   - enrichment_lookups, tagged source, one point per resolved device
//
// No person names or device ids are written.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	switch {
//	case errors.Is(err, influxdb.ErrDisabled):
//	    // metrics off
//	case err != nil:
//	    return err
//	default:
//	    defer client.Close()
//	    registry.SetRecorder(client)
//	}
//
// # Error Handling
//
// Writes are non-blocking; batch failures are delivered to the SetOnError
// callback. Connection and health check errors are returned directly.
package influxdb
