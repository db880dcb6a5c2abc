package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestAssign(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := reg.CreateDevice(ctx, testDevice("drill-01")); err != nil {
		t.Fatalf("create device failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Alice", Login: "alice"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if err := reg.Assign(ctx, "drill-01", "alice"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	dev, err := reg.Device(ctx, "drill-01")
	if err != nil {
		t.Fatalf("Device failed: %v", err)
	}
	if dev.Usage != UsageInUse {
		t.Errorf("usage = %q, want %q", dev.Usage, UsageInUse)
	}
	if dev.User != "alice" {
		t.Errorf("user = %q, want alice", dev.User)
	}

	refs, err := reg.UserDevices(ctx, "alice")
	if err != nil {
		t.Fatalf("UserDevices failed: %v", err)
	}
	if len(refs) != 1 || refs[0].Identifier != "drill-01" || refs[0].Usage != UsageInUse {
		t.Errorf("refs = %v, want [{drill-01 in_use}]", refs)
	}
}

func TestAssignErrors(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := reg.CreateDevice(ctx, testDevice("drill-01")); err != nil {
		t.Fatalf("create device failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Alice", Login: "alice"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Bob", Login: "bob"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if err := reg.Assign(ctx, "missing", "alice"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("missing device error = %v, want ErrDeviceNotFound", err)
	}
	if err := reg.Assign(ctx, "drill-01", "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user error = %v, want ErrUserNotFound", err)
	}

	if err := reg.Assign(ctx, "drill-01", "alice"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	// Second assignment before release conflicts, whoever asks.
	if err := reg.Assign(ctx, "drill-01", "bob"); !errors.Is(err, ErrDeviceInUse) {
		t.Errorf("double assign error = %v, want ErrDeviceInUse", err)
	}
}

func TestUnassign(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := reg.CreateDevice(ctx, testDevice("drill-01")); err != nil {
		t.Fatalf("create device failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Alice", Login: "alice"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := reg.Assign(ctx, "drill-01", "alice"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if err := reg.Unassign(ctx, "drill-01", "alice"); err != nil {
		t.Fatalf("Unassign failed: %v", err)
	}

	dev, err := reg.Device(ctx, "drill-01")
	if err != nil {
		t.Fatalf("Device failed: %v", err)
	}
	if dev.Usage != UsageFree {
		t.Errorf("usage = %q, want %q", dev.Usage, UsageFree)
	}
	if dev.User != "" {
		t.Errorf("user = %q, want empty", dev.User)
	}

	refs, err := reg.UserDevices(ctx, "alice")
	if err != nil {
		t.Fatalf("UserDevices failed: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("refs = %v, want empty", refs)
	}
}

func TestUnassignErrors(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()

	if _, err := reg.CreateDevice(ctx, testDevice("drill-01")); err != nil {
		t.Fatalf("create device failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Alice", Login: "alice"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Bob", Login: "bob"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := reg.Assign(ctx, "drill-01", "alice"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	savesBefore := store.Saves()

	if err := reg.Unassign(ctx, "drill-01", "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user error = %v, want ErrUserNotFound", err)
	}
	// The release check is scoped to the named user's holding.
	if err := reg.Unassign(ctx, "drill-01", "bob"); !errors.Is(err, ErrNotAssigned) {
		t.Errorf("wrong holder error = %v, want ErrNotAssigned", err)
	}
	if err := reg.Unassign(ctx, "missing", "alice"); !errors.Is(err, ErrNotAssigned) {
		t.Errorf("unknown device error = %v, want ErrNotAssigned", err)
	}

	// Failed releases must leave both sides untouched and unsaved.
	if store.Saves() != savesBefore {
		t.Errorf("failed unassign persisted a save")
	}
	dev, _ := reg.Device(ctx, "drill-01")
	if dev.User != "alice" || dev.Usage != UsageInUse {
		t.Errorf("device state changed by failed unassign: %+v", dev)
	}
}

func TestAssignmentScenario(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := reg.CreateDevice(ctx, testDevice("D1")); err != nil {
		t.Fatalf("create device failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Alice", Login: "alice"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if err := reg.Assign(ctx, "D1", "alice"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	refs, _ := reg.UserDevices(ctx, "alice")
	if len(refs) != 1 || refs[0].Identifier != "D1" || refs[0].Usage != UsageInUse {
		t.Fatalf("after assign, refs = %v", refs)
	}

	if err := reg.Unassign(ctx, "D1", "alice"); err != nil {
		t.Fatalf("unassign failed: %v", err)
	}

	refs, _ = reg.UserDevices(ctx, "alice")
	if len(refs) != 0 {
		t.Fatalf("after unassign, refs = %v", refs)
	}
	dev, _ := reg.Device(ctx, "D1")
	if dev.Usage != UsageFree {
		t.Fatalf("after unassign, usage = %q", dev.Usage)
	}
}

func TestConcurrentAssignExactlyOneWins(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := reg.CreateDevice(ctx, testDevice("drill-01")); err != nil {
		t.Fatalf("create device failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Alice", Login: "alice"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := reg.CreateUser(ctx, User{Name: "Bob", Login: "bob"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, login := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(i int, login string) {
			defer wg.Done()
			results[i] = reg.Assign(ctx, "drill-01", login)
		}(i, login)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDeviceInUse):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("wins = %d, conflicts = %d, want exactly one of each", wins, conflicts)
	}

	// The document reflects exactly one assignment.
	dev, _ := reg.Device(ctx, "drill-01")
	if dev.Usage != UsageInUse || dev.User == "" {
		t.Fatalf("device state after race: %+v", dev)
	}
	aliceRefs, _ := reg.UserDevices(ctx, "alice")
	bobRefs, _ := reg.UserDevices(ctx, "bob")
	if len(aliceRefs)+len(bobRefs) != 1 {
		t.Fatalf("holder lists after race: alice=%v bob=%v", aliceRefs, bobRefs)
	}
}
