package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the service.
const (
	MeasurementBookingOps        = "booking_ops"
	MeasurementEnrichmentLookups = "enrichment_lookups"
)

// WriteBookingOp counts one booking or return attempt.
//
// The write is non-blocking; points are batched and sent asynchronously.
//
// Example:
//
//	client.WriteBookingOp("book_by_id", "ok")
//	client.WriteBookingOp("return_by_name", "rejected")
func (c *Client) WriteBookingOp(op, outcome string) {
	c.WritePoint(
		MeasurementBookingOps,
		map[string]string{
			"op":      op,
			"outcome": outcome,
		},
		map[string]interface{}{
			"count": 1,
		},
	)
}

// WriteEnrichmentLookup counts which tier served one enrichment:
// remote, dataset or unavailable.
func (c *Client) WriteEnrichmentLookup(source string) {
	c.WritePoint(
		MeasurementEnrichmentLookups,
		map[string]string{
			"source": source,
		},
		map[string]interface{}{
			"count": 1,
		},
	)
}

// RecordBookingOp implements device.Recorder.
func (c *Client) RecordBookingOp(op, outcome string) {
	c.WriteBookingOp(op, outcome)
}

// RecordEnrichmentLookup implements gsm.Recorder.
func (c *Client) RecordEnrichmentLookup(source string) {
	c.WriteEnrichmentLookup(source)
}

// WritePoint writes a point stamped with the current time.
// Tags should stay low cardinality.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a point with an explicit timestamp.
// It does nothing on a nil or closed client.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if c == nil || !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
