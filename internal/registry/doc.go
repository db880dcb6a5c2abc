// Package registry is the core of the gearbook service: the catalogue
// of physical devices, the set of users who can check them out, and the
// assignment relation linking them.
//
// # Data Model
//
// Everything lives in a single Document aggregate holding the device
// and user collections. The Document is persisted as one unit through a
// Store; each save overwrites the full artifact.
//
// A device is held by at most one user at a time. Device.User (a login)
// is the only stored side of that relation; each device's Usage and
// each user's Devices list are derived from it during normalization,
// which runs after every load and before every save. There is no dual
// write to keep consistent, so the mirror can never disagree with its
// source.
//
// # Key Types
//
//   - Document: the persisted aggregate of all devices and users
//   - Device: one catalogue entry with its reference photo key
//   - User: one person, keyed by login
//   - Registry: thread-safe operations over the Document
//
// # Usage
//
//	reg := registry.New(store)
//	reg.SetLogger(log)
//
//	if err := reg.Load(ctx); err != nil {
//	    return err
//	}
//
//	dev, err := reg.CreateDevice(ctx, registry.Device{
//	    Identifier: "drill-01",
//	    Name:       "Cordless Drill",
//	    Filename:   "drill-01-5f3a.jpg",
//	})
//
//	err = reg.Assign(ctx, "drill-01", "asmith")
//
// # Thread Safety
//
// The Registry is safe for concurrent use. Every mutation clones the
// cached Document, saves the clone, and swaps the cache under a write
// lock, so a failed save discards the mutation and concurrent
// operations observe each load-mutate-save cycle as atomic.
package registry
