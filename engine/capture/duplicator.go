package capture

import (
	"errors"
	"time"
)

// ErrTimeout is returned by OutputDuplicator.AcquireFrame when no new frame
// arrived within the requested timeout. The screen content is unchanged.
var ErrTimeout = errors.New("capture: no new frame within timeout")

// ErrAccessLost is returned by OutputDuplicator.AcquireFrame when the OS
// invalidated the duplication session (display mode change, desktop switch,
// exclusive fullscreen). The provider must reinitialize the duplicator.
var ErrAccessLost = errors.New("capture: duplication access lost")

// Output describes one display output available for duplication.
type Output struct {
	// Index is the zero-based output index in the OS enumeration order.
	Index int
	// Width and Height are the output dimensions in physical pixels.
	Width, Height uint32
	// SharedAdapter reports whether frames from this output are produced on the
	// same GPU adapter the renderer's device lives on. When false, frames must
	// take the staged path through CPU-visible memory.
	SharedAdapter bool
}

// Frame is one acquired screen frame. Pixels are tightly packed RGBA, one byte
// per channel, rows top to bottom. The backing memory is only valid until
// Release is called; the provider copies out of it before releasing.
type Frame interface {
	// Pixels returns the RGBA pixel data for the frame.
	//
	// Returns:
	//   - []byte: tightly packed RGBA bytes, Width*Height*4 in length
	Pixels() []byte

	// Width returns the frame width in pixels.
	//
	// Returns:
	//   - uint32: the width
	Width() uint32

	// Height returns the frame height in pixels.
	//
	// Returns:
	//   - uint32: the height
	Height() uint32

	// DirtyCount returns the number of regions that changed since the previous
	// acquired frame. Zero means the OS delivered metadata only (e.g. a cursor
	// move) and the pixel content is identical to the last frame.
	//
	// Returns:
	//   - int: the dirty region count
	DirtyCount() int

	// Release returns the frame to the duplicator. Must be called exactly once;
	// the OS will not deliver the next frame while one is held.
	Release()
}

// OutputDuplicator is the OS screen-duplication boundary. Platform packages
// implement it over the native duplication API; tests implement it with
// synthetic frames. All methods are called from the engine frame goroutine.
type OutputDuplicator interface {
	// Output returns the descriptor for the duplicated display output.
	//
	// Returns:
	//   - Output: the output descriptor
	Output() Output

	// AcquireFrame blocks up to timeout waiting for the next frame. A zero
	// timeout polls and returns immediately.
	//
	// Parameters:
	//   - timeout: the maximum time to wait for a new frame
	//
	// Returns:
	//   - Frame: the acquired frame, nil on error
	//   - error: ErrTimeout if no frame arrived, ErrAccessLost if the session
	//     died, or another error for unrecoverable failures
	AcquireFrame(timeout time.Duration) (Frame, error)

	// Reset tears down and recreates the duplication session after
	// ErrAccessLost or an output resolution change.
	//
	// Returns:
	//   - error: an error if the session could not be recreated
	Reset() error

	// Close releases the duplication session. The duplicator is unusable afterwards.
	Close()
}
