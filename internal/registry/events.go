package registry

// Events receives announcements after registry mutations commit.
// Implementations must not block registry operations; delivery is
// fire-and-forget and failures must not surface to callers.
type Events interface {
	DeviceCreated(identifier string)
	DeviceUpdated(identifier string)
	DeviceDeleted(identifier string)
	DeviceAssigned(identifier, login string)
	DeviceUnassigned(identifier, login string)
	UserCreated(login string)
}

// UsageRecorder receives one record per assignment transition.
// inUse is true on assign, false on release.
type UsageRecorder interface {
	RecordUsage(identifier, login string, inUse bool)
}

// NoopEvents discards all announcements.
type NoopEvents struct{}

func (NoopEvents) DeviceCreated(string)            {}
func (NoopEvents) DeviceUpdated(string)            {}
func (NoopEvents) DeviceDeleted(string)            {}
func (NoopEvents) DeviceAssigned(string, string)   {}
func (NoopEvents) DeviceUnassigned(string, string) {}
func (NoopEvents) UserCreated(string)              {}

// NoopUsageRecorder discards all usage records.
type NoopUsageRecorder struct{}

func (NoopUsageRecorder) RecordUsage(string, string, bool) {}
