package registry

import (
	"fmt"
	"strings"
)

// Validation constants.
const (
	maxIdentifierLength = 100
	maxFieldLength      = 500
	maxLoginLength      = 100
)

// ValidateIdentifier checks that a device identifier is usable as a key.
// Identifiers end up in URLs and in stored photo key prefixes, so path
// separators are rejected.
func ValidateIdentifier(identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("%w: identifier cannot be empty", ErrInvalidDevice)
	}
	if len(identifier) > maxIdentifierLength {
		return fmt.Errorf("%w: identifier exceeds %d characters", ErrInvalidDevice, maxIdentifierLength)
	}
	if strings.ContainsAny(identifier, "/\\") {
		return fmt.Errorf("%w: identifier must not contain path separators", ErrInvalidDevice)
	}
	return nil
}

// ValidateLogin checks that a user login is usable as a key.
func ValidateLogin(login string) error {
	if strings.TrimSpace(login) == "" {
		return fmt.Errorf("%w: login cannot be empty", ErrInvalidUser)
	}
	if len(login) > maxLoginLength {
		return fmt.Errorf("%w: login exceeds %d characters", ErrInvalidUser, maxLoginLength)
	}
	return nil
}

// validateNewDevice validates a device at creation time.
func validateNewDevice(d *Device) error {
	if d == nil {
		return ErrInvalidDevice
	}
	if err := ValidateIdentifier(d.Identifier); err != nil {
		return err
	}
	if d.Filename == "" {
		return fmt.Errorf("%w: filename is required", ErrInvalidDevice)
	}
	if strings.ContainsAny(d.Filename, "/\\") {
		return fmt.Errorf("%w: filename must not contain path separators", ErrInvalidDevice)
	}
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", d.Name},
		{"description", d.Description},
		{"serial_number", d.SerialNumber},
		{"manufacturer", d.Manufacturer},
	} {
		if len(f.value) > maxFieldLength {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidDevice, f.name, maxFieldLength)
		}
	}
	return nil
}

// validateNewUser validates a user at creation time.
func validateNewUser(u *User) error {
	if u == nil {
		return ErrInvalidUser
	}
	if err := ValidateLogin(u.Login); err != nil {
		return err
	}
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", u.Name},
		{"surname", u.Surname},
		{"password", u.Password},
	} {
		if len(f.value) > maxFieldLength {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidUser, f.name, maxFieldLength)
		}
	}
	return nil
}
