package registry

import "context"

// Assign checks a device out to a user.
//
// The device moves free -> in_use; no other transition exists. Setting
// Device.User is the whole mutation: the user's device list is derived
// from it during normalization, so both sides of the relation change in
// one save or not at all.
//
// Returns ErrDeviceNotFound or ErrUserNotFound if either party does not
// exist, and ErrDeviceInUse if the device is already checked out.
func (r *Registry) Assign(ctx context.Context, identifier, login string) error {
	err := r.mutate(ctx, func(doc *Document) error {
		dev := findDevice(doc, identifier)
		if dev == nil {
			return ErrDeviceNotFound
		}
		if findUser(doc, login) == nil {
			return ErrUserNotFound
		}
		if dev.Usage == UsageInUse {
			return ErrDeviceInUse
		}

		dev.Usage = UsageInUse
		dev.User = login
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("device assigned", "identifier", identifier, "login", login)
	r.events.DeviceAssigned(identifier, login)
	r.usage.RecordUsage(identifier, login, true)
	return nil
}

// Unassign returns a device held by the named user.
//
// The check is scoped to that user's holding: releasing a device the
// user is not holding fails with ErrNotAssigned even if someone else
// holds it.
//
// Returns ErrUserNotFound if the login does not exist.
func (r *Registry) Unassign(ctx context.Context, identifier, login string) error {
	err := r.mutate(ctx, func(doc *Document) error {
		if findUser(doc, login) == nil {
			return ErrUserNotFound
		}

		dev := findDevice(doc, identifier)
		if dev == nil || dev.User != login {
			return ErrNotAssigned
		}

		dev.Usage = UsageFree
		dev.User = ""
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("device released", "identifier", identifier, "login", login)
	r.events.DeviceUnassigned(identifier, login)
	r.usage.RecordUsage(identifier, login, false)
	return nil
}
