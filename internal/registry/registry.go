package registry

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store abstracts the durable home of the Document. Implementations
// must overwrite the full artifact on every Save so a reader never
// observes a partially written document.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// Registry owns the Document and every operation on it: device CRUD,
// user creation, and the assignment relation.
//
// The cached Document is the working copy. Every mutation clones it,
// applies the change to the clone, saves the clone, and only then swaps
// the cache. A failed save therefore discards the mutation, and because
// the whole cycle runs under one lock, two concurrent assignments of
// the same device serialize: exactly one wins.
//
// All public methods are thread-safe.
type Registry struct {
	store Store

	doc *Document
	mu  sync.RWMutex

	logger Logger
	events Events
	usage  UsageRecorder
}

// New creates a Registry backed by the given store. Call Load before
// serving requests.
func New(store Store) *Registry {
	return &Registry{
		store:  store,
		doc:    emptyDocument(),
		logger: noopLogger{},
		events: NoopEvents{},
		usage:  NoopUsageRecorder{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetEvents sets the announcement sink for registry changes.
func (r *Registry) SetEvents(events Events) {
	r.events = events
}

// SetUsageRecorder sets the sink for assignment history points.
func (r *Registry) SetUsageRecorder(rec UsageRecorder) {
	r.usage = rec
}

// Load reads the Document from the store into the cache.
// This should be called once on application startup.
func (r *Registry) Load(ctx context.Context) error {
	doc, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}
	doc.Normalize()

	r.mu.Lock()
	r.doc = doc
	r.mu.Unlock()

	r.logger.Info("document loaded", "devices", len(doc.Devices), "users", len(doc.Users))
	return nil
}

// mutate runs fn against a clone of the cached Document and persists
// the result. The clone is normalized before save and becomes the new
// cache only if the save succeeds. If fn or the save fails, the cache
// is untouched.
func (r *Registry) mutate(ctx context.Context, fn func(doc *Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.doc.Clone()
	if err := fn(doc); err != nil {
		return err
	}

	doc.Normalize()
	if err := r.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	r.doc = doc
	return nil
}

// findDevice returns a pointer into the given document's device slice,
// or nil if the identifier does not exist.
func findDevice(doc *Document, identifier string) *Device {
	for i := range doc.Devices {
		if doc.Devices[i].Identifier == identifier {
			return &doc.Devices[i]
		}
	}
	return nil
}

// findUser returns a pointer into the given document's user slice,
// or nil if the login does not exist.
func findUser(doc *Document, login string) *User {
	for i := range doc.Users {
		if doc.Users[i].Login == login {
			return &doc.Users[i]
		}
	}
	return nil
}

// CreateDevice adds a new device to the catalogue.
// Returns ErrDeviceExists if the identifier is already taken.
// New devices start free with no holder.
func (r *Registry) CreateDevice(ctx context.Context, dev Device) (*Device, error) {
	if err := validateNewDevice(&dev); err != nil {
		return nil, err
	}

	dev.Usage = UsageFree
	dev.User = ""

	err := r.mutate(ctx, func(doc *Document) error {
		if findDevice(doc, dev.Identifier) != nil {
			return ErrDeviceExists
		}
		doc.Devices = append(doc.Devices, dev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("device created", "identifier", dev.Identifier, "name", dev.Name)
	r.events.DeviceCreated(dev.Identifier)

	created := dev
	return &created, nil
}

// Device retrieves a device by identifier.
// Returns ErrDeviceNotFound if the identifier does not exist.
// The returned device is a copy; callers can safely modify it.
func (r *Registry) Device(ctx context.Context, identifier string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev := findDevice(r.doc, identifier)
	if dev == nil {
		return nil, ErrDeviceNotFound
	}

	cpy := *dev
	return &cpy, nil
}

// ListDevices returns the public projection of every device, in
// insertion order. Assignment state and photo keys are not included.
func (r *Registry) ListDevices(ctx context.Context) []DeviceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]DeviceInfo, 0, len(r.doc.Devices))
	for i := range r.doc.Devices {
		infos = append(infos, r.doc.Devices[i].Info())
	}
	return infos
}

// AllDevices returns full device records, in insertion order.
// The returned devices are copies; callers can safely modify them.
func (r *Registry) AllDevices(ctx context.Context) []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, len(r.doc.Devices))
	copy(devices, r.doc.Devices)
	return devices
}

// DeviceUpdate carries a partial update of a device's mutable
// attributes. Nil fields are left unchanged; there is no implicit
// clearing.
type DeviceUpdate struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	SerialNumber *string `json:"serial_number"`
	Manufacturer *string `json:"manufacturer"`
}

// UpdateDevice applies a partial update to a device's attributes.
// Identifier, filename, and assignment state are not updatable here.
// Returns ErrDeviceNotFound if the identifier does not exist.
func (r *Registry) UpdateDevice(ctx context.Context, identifier string, upd DeviceUpdate) (*Device, error) {
	for _, f := range []*string{upd.Name, upd.Description, upd.SerialNumber, upd.Manufacturer} {
		if f != nil && len(*f) > maxFieldLength {
			return nil, fmt.Errorf("%w: field exceeds %d characters", ErrInvalidDevice, maxFieldLength)
		}
	}

	var updated Device
	err := r.mutate(ctx, func(doc *Document) error {
		dev := findDevice(doc, identifier)
		if dev == nil {
			return ErrDeviceNotFound
		}
		if upd.Name != nil {
			dev.Name = *upd.Name
		}
		if upd.Description != nil {
			dev.Description = *upd.Description
		}
		if upd.SerialNumber != nil {
			dev.SerialNumber = *upd.SerialNumber
		}
		if upd.Manufacturer != nil {
			dev.Manufacturer = *upd.Manufacturer
		}
		updated = *dev
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("device updated", "identifier", identifier)
	r.events.DeviceUpdated(identifier)
	return &updated, nil
}

// DeleteDevice removes a device from the catalogue. If the device is
// currently assigned, the holder's device list loses the entry in the
// same save, so the mirror never outlives the device.
//
// Returns the stored photo filename so the caller can release the blob,
// or ErrDeviceNotFound.
func (r *Registry) DeleteDevice(ctx context.Context, identifier string) (string, error) {
	var filename string
	err := r.mutate(ctx, func(doc *Document) error {
		for i := range doc.Devices {
			if doc.Devices[i].Identifier == identifier {
				filename = doc.Devices[i].Filename
				doc.Devices = append(doc.Devices[:i], doc.Devices[i+1:]...)
				return nil
			}
		}
		return ErrDeviceNotFound
	})
	if err != nil {
		return "", err
	}

	r.logger.Info("device deleted", "identifier", identifier)
	r.events.DeviceDeleted(identifier)
	return filename, nil
}

// PhotoFilename resolves a device identifier to its stored photo key
// and recorded content type.
// Returns ErrDeviceNotFound if the identifier does not exist.
func (r *Registry) PhotoFilename(ctx context.Context, identifier string) (filename, contentType string, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev := findDevice(r.doc, identifier)
	if dev == nil {
		return "", "", ErrDeviceNotFound
	}
	return dev.Filename, dev.ContentType, nil
}

// DeviceCount returns the number of devices in the catalogue.
func (r *Registry) DeviceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.doc.Devices)
}
