package registry

// Usage describes whether a device is currently checked out.
type Usage string

// Valid usage states. A device is either on the shelf or with a user;
// there are no other states.
const (
	UsageFree  Usage = "free"
	UsageInUse Usage = "in_use"
)

// Document is the single persisted aggregate: every device and user
// record, saved and loaded as one unit.
//
// Insertion order is preserved for listings but carries no meaning.
type Document struct {
	Devices []Device `json:"devices"`
	Users   []User   `json:"users"`
}

// Device represents one physical device in the catalogue.
type Device struct {
	// Identifier is the caller-supplied unique key, immutable after creation.
	Identifier string `json:"identifier"`

	// Free-text attributes, mutable via update.
	Name         string `json:"name"`
	Description  string `json:"description"`
	SerialNumber string `json:"serial_number"`
	Manufacturer string `json:"manufacturer"`

	// Filename is the stored key of the reference photo blob,
	// set once at creation.
	Filename string `json:"filename"`

	// ContentType is the media type recorded when the photo was uploaded.
	ContentType string `json:"content_type,omitempty"`

	// Usage and User track the assignment state. User holds the login of
	// the holder and is the authoritative side of the relation; Usage is
	// kept consistent with it during normalization.
	Usage Usage  `json:"usage"`
	User  string `json:"user,omitempty"`
}

// User represents one person who can check devices out.
type User struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Login    string `json:"login"`
	Password string `json:"password"`

	// Devices mirrors the devices currently held by this user. It is
	// derived from the device collection during normalization and never
	// written directly.
	Devices []DeviceRef `json:"devices"`
}

// DeviceRef is the {identifier, usage} pair listed under a user.
type DeviceRef struct {
	Identifier string `json:"identifier"`
	Usage      Usage  `json:"usage"`
}

// DeviceInfo is the public projection of a device returned by listing
// and detail endpoints. Assignment state and the photo key are internal.
type DeviceInfo struct {
	Identifier   string `json:"identifier"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SerialNumber string `json:"serial_number"`
	Manufacturer string `json:"manufacturer"`
}

// Info returns the public projection of the device.
func (d *Device) Info() DeviceInfo {
	return DeviceInfo{
		Identifier:   d.Identifier,
		Name:         d.Name,
		Description:  d.Description,
		SerialNumber: d.SerialNumber,
		Manufacturer: d.Manufacturer,
	}
}

// Clone creates a complete independent copy of the Document.
// All slices are cloned so modifications to the copy do not affect the
// original. This is essential for cache isolation.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	cpy := &Document{
		Devices: make([]Device, len(d.Devices)),
		Users:   make([]User, len(d.Users)),
	}
	copy(cpy.Devices, d.Devices)
	for i := range d.Users {
		cpy.Users[i] = *d.Users[i].Clone()
	}
	return cpy
}

// Clone creates an independent copy of the User.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	cpy := *u
	if u.Devices != nil {
		cpy.Devices = make([]DeviceRef, len(u.Devices))
		copy(cpy.Devices, u.Devices)
	}
	return &cpy
}

// Normalize derives every secondary view from the authoritative relation.
//
// Device.User is the only stored side of an assignment. Normalize sets
// each device's Usage from it and rebuilds every user's Devices list by
// scanning the device collection, in device insertion order. It runs
// after load and before save, so the persisted form is stable: saving a
// freshly loaded document writes the same bytes back.
func (d *Document) Normalize() {
	held := make(map[string][]DeviceRef)
	for i := range d.Devices {
		dev := &d.Devices[i]
		if dev.User != "" {
			dev.Usage = UsageInUse
			held[dev.User] = append(held[dev.User], DeviceRef{
				Identifier: dev.Identifier,
				Usage:      UsageInUse,
			})
		} else {
			dev.Usage = UsageFree
		}
	}

	for i := range d.Users {
		refs := held[d.Users[i].Login]
		if refs == nil {
			refs = []DeviceRef{}
		}
		d.Users[i].Devices = refs
	}
}

// emptyDocument returns a Document with no devices or users.
func emptyDocument() *Document {
	return &Document{
		Devices: []Device{},
		Users:   []User{},
	}
}
