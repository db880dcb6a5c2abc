package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteUsagePoint records an assignment or release of a device.
//
// One point is written per transition, tagged by device and user so the
// history can be queried per tool or per person. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - identifier: Device identifier (e.g., "drill-01")
//   - login: Login of the user taking or returning the device
//   - inUse: true when the device is assigned, false when released
//
// Example:
//
//	client.WriteUsagePoint("drill-01", "asmith", true)
func (c *Client) WriteUsagePoint(identifier string, login string, inUse bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_usage",
		map[string]string{
			"device": identifier,
			"user":   login,
		},
		map[string]interface{}{
			"in_use": inUse,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
