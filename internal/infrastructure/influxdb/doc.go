// Package influxdb provides time-series recording of device usage.
//
// Every assignment and release writes one point to the device_usage
// measurement, tagged by device identifier and user login. The history
// answers questions the registry's current-state document cannot, such
// as how often a tool is taken out or who used it last month.
//
// Writes are batched and non-blocking; a write failure never fails the
// registry operation that triggered it.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteUsagePoint("drill-01", "asmith", true)
package influxdb
