package effect

import "fmt"

// Base carries the lifecycle bookkeeping shared by all effect implementations.
// Embed it and call MarkInitialized from Initialize, Guard from Render, and
// BeginDispose from Dispose.
type Base struct {
	typeID      string
	instanceID  uint64
	initialized bool
	disposed    bool
}

// NewBase creates the lifecycle state for an effect instance.
//
// Parameters:
//   - typeID: the effect type identifier
//   - instanceID: the registry-assigned instance identifier
//
// Returns:
//   - Base: the lifecycle state, ready to embed
func NewBase(typeID string, instanceID uint64) Base {
	return Base{typeID: typeID, instanceID: instanceID}
}

// TypeID returns the effect type identifier.
func (b *Base) TypeID() string {
	return b.typeID
}

// InstanceID returns the unique instance identifier.
func (b *Base) InstanceID() uint64 {
	return b.instanceID
}

// Initialized reports whether MarkInitialized has been called.
func (b *Base) Initialized() bool {
	return b.initialized
}

// Disposed reports whether BeginDispose has been called.
func (b *Base) Disposed() bool {
	return b.disposed
}

// MarkInitialized records a successful Initialize.
func (b *Base) MarkInitialized() {
	b.initialized = true
}

// BeginDispose flips the disposed flag and reports whether resources still
// need releasing. The second and later calls return false, which is what makes
// Dispose idempotent for embedders:
//
//	func (e *myEffect) Dispose() {
//		if !e.BeginDispose() {
//			return
//		}
//		e.provider.Release()
//	}
//
// Returns:
//   - bool: true on the first call, false on repeats
func (b *Base) BeginDispose() bool {
	if b.disposed {
		return false
	}
	b.disposed = true
	return true
}

// Guard validates that the effect is in a renderable state. Returns an error
// when Render is called before a successful Initialize or after Dispose.
//
// Returns:
//   - error: the lifecycle violation, or nil
func (b *Base) Guard() error {
	if !b.initialized {
		return fmt.Errorf("effect %s#%d rendered before initialization", b.typeID, b.instanceID)
	}
	if b.disposed {
		return fmt.Errorf("effect %s#%d rendered after dispose", b.typeID, b.instanceID)
	}
	return nil
}
