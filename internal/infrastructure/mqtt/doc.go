// Package mqtt provides MQTT client connectivity for the gearbook service.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Event publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The registry publishes announcements on the event topics whenever the
// catalogue changes (devices created, updated, deleted, assigned or
// released, users created). Other services subscribe to react without
// polling the HTTP API. The client is publish-only; the registry never
// consumes messages.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.PublishEvent("device_assigned", payload)
package mqtt
