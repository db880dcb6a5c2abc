package mqtt

import "fmt"

// Topic prefixes for gearbook MQTT traffic.
//
// All topics use the flat scheme: gearbook/{category}/{name}
const (
	// TopicPrefix is the base for all gearbook topics.
	TopicPrefix = "gearbook"

	// TopicPrefixEvent is the base for registry event topics.
	TopicPrefixEvent = "gearbook/event"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "gearbook/system"
)

// Topics provides builders for gearbook MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.Event("device_assigned")
//	// Returns: "gearbook/event/device_assigned"
type Topics struct{}

// Event returns the topic for registry events.
//
// Example: gearbook/event/device_created
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvent, eventType)
}

// SystemStatus returns the service status topic.
//
// Example: gearbook/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEvents returns a pattern matching all registry events.
//
// Pattern: gearbook/event/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/+", TopicPrefixEvent)
}

// AllTopics returns a pattern matching all gearbook topics.
//
// Pattern: gearbook/#
func (Topics) AllTopics() string {
	return "gearbook/#"
}
