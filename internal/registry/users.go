package registry

import "context"

// CreateUser registers a new user.
// Returns ErrUserExists if the login is already taken. Uniqueness is
// checked on login only; names are display attributes and may repeat.
// New users start with an empty device list.
func (r *Registry) CreateUser(ctx context.Context, user User) (*User, error) {
	if err := validateNewUser(&user); err != nil {
		return nil, err
	}

	user.Devices = []DeviceRef{}

	err := r.mutate(ctx, func(doc *Document) error {
		if findUser(doc, user.Login) != nil {
			return ErrUserExists
		}
		doc.Users = append(doc.Users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("user created", "login", user.Login)
	r.events.UserCreated(user.Login)

	created := user
	return &created, nil
}

// ListUsers returns full user records, in insertion order.
// The returned users are copies; callers can safely modify them.
func (r *Registry) ListUsers(ctx context.Context) []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.doc.Users))
	for i := range r.doc.Users {
		users = append(users, *r.doc.Users[i].Clone())
	}
	return users
}

// UserDevices returns the {identifier, usage} pairs of the devices the
// named user currently holds.
// Returns ErrUserNotFound if the login does not exist.
func (r *Registry) UserDevices(ctx context.Context, login string) ([]DeviceRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user := findUser(r.doc, login)
	if user == nil {
		return nil, ErrUserNotFound
	}

	refs := make([]DeviceRef, len(user.Devices))
	copy(refs, user.Devices)
	return refs, nil
}

// UserCount returns the number of registered users.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.doc.Users)
}
