package registry

import "errors"

// Domain errors for the registry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, registry.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device identifier does not exist.
	ErrDeviceNotFound = errors.New("registry: device not found")

	// ErrDeviceExists is returned when creating a device with an
	// identifier that already exists.
	ErrDeviceExists = errors.New("registry: device already exists")

	// ErrUserNotFound is returned when a user login does not exist.
	ErrUserNotFound = errors.New("registry: user not found")

	// ErrUserExists is returned when creating a user with a login that
	// already exists.
	ErrUserExists = errors.New("registry: user already exists")

	// ErrDeviceInUse is returned when assigning a device that is already
	// checked out.
	ErrDeviceInUse = errors.New("registry: device already in use")

	// ErrNotAssigned is returned when releasing a device the named user
	// is not holding.
	ErrNotAssigned = errors.New("registry: device not assigned to user")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("registry: invalid device")

	// ErrInvalidUser is returned when user validation fails.
	ErrInvalidUser = errors.New("registry: invalid user")
)
