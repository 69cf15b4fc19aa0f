package effect

import (
	"errors"
	"testing"

	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/settings"
)

// stubEffect exercises the Base lifecycle helpers the way real effects do.
type stubEffect struct {
	Base
	initErr  error
	disposes int
}

func newStub(id uint64) *stubEffect {
	return &stubEffect{Base: NewBase("stub", id)}
}

func (e *stubEffect) Schema() settings.Schema { return nil }

func (e *stubEffect) Initialize(ctx *Context) error {
	if e.initErr != nil {
		return e.initErr
	}
	e.MarkInitialized()
	return nil
}

func (e *stubEffect) Configure(cfg settings.Config)       {}
func (e *stubEffect) Update(dt float32, cur cursor.State) {}

func (e *stubEffect) Render(ctx *Context) error {
	return e.Guard()
}

func (e *stubEffect) OnViewportChanged(width, height int) {}
func (e *stubEffect) RequiresContinuousCapture() bool     { return false }

func (e *stubEffect) Dispose() {
	if !e.BeginDispose() {
		return
	}
	e.disposes++
}

func TestRenderBeforeInitializeFails(t *testing.T) {
	e := newStub(0)
	if err := e.Render(nil); err == nil {
		t.Fatal("Render before Initialize must return an error")
	}
	if err := e.Initialize(nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := e.Render(nil); err != nil {
		t.Fatalf("Render after Initialize: %v", err)
	}
}

func TestRenderAfterDisposeFails(t *testing.T) {
	e := newStub(0)
	if err := e.Initialize(nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	e.Dispose()
	if err := e.Render(nil); err == nil {
		t.Fatal("Render after Dispose must return an error")
	}
}

func TestDoubleDisposeReleasesOnce(t *testing.T) {
	e := newStub(0)
	_ = e.Initialize(nil)
	e.Dispose()
	e.Dispose()
	e.Dispose()
	if e.disposes != 1 {
		t.Fatalf("resources released %d times, want 1", e.disposes)
	}
}

func TestDisposeWithoutInitializeIsSafe(t *testing.T) {
	e := newStub(0)
	e.initErr = errors.New("no gpu")
	if err := e.Initialize(nil); err == nil {
		t.Fatal("expected initialization failure")
	}
	e.Dispose()
	if e.disposes != 1 {
		t.Fatal("Dispose after failed Initialize should still release once")
	}
}

func TestRegistryAssignsUniqueInstanceIDs(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("stub", func(id uint64) Effect { return newStub(id) }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	seen := make(map[uint64]bool)
	for i := 0; i < 5; i++ {
		e, err := r.Create("stub")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if e.TypeID() != "stub" {
			t.Fatalf("TypeID = %q, want stub", e.TypeID())
		}
		if seen[e.InstanceID()] {
			t.Fatalf("instance id %d reused", e.InstanceID())
		}
		seen[e.InstanceID()] = true
	}
}

func TestRegistryRejectsDuplicatesAndUnknownTypes(t *testing.T) {
	r := NewRegistry()
	factory := func(id uint64) Effect { return newStub(id) }
	if err := r.Register("stub", factory); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("stub", factory); err == nil {
		t.Fatal("duplicate registration must fail")
	}
	if _, err := r.Create("missing"); err == nil {
		t.Fatal("creating an unregistered type must fail")
	}
}

func TestRegistryTypesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"trail", "sparkle", "lens"} {
		if err := r.Register(name, func(id uint64) Effect { return newStub(id) }); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}
	types := r.Types()
	want := []string{"lens", "sparkle", "trail"}
	for i, name := range want {
		if types[i] != name {
			t.Fatalf("Types() = %v, want %v", types, want)
		}
	}
}
