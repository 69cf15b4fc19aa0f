package cursor

import (
	"sync"

	"golang.org/x/image/math/f32"
)

// Buttons is a bitmask of mouse buttons.
type Buttons uint8

const (
	// ButtonLeft is the primary mouse button.
	ButtonLeft Buttons = 1 << iota
	// ButtonRight is the secondary mouse button.
	ButtonRight
	// ButtonMiddle is the middle mouse button or wheel click.
	ButtonMiddle
)

// State is an immutable per-frame snapshot of the cursor. All effects in a
// frame observe the same State, so effects that react to the same click or
// movement stay in sync regardless of their update order.
type State struct {
	// Position is the cursor position in surface pixels.
	Position f32.Vec2
	// Delta is the movement since the previous snapshot, in pixels.
	Delta f32.Vec2
	// Buttons holds the buttons currently held down.
	Buttons Buttons
	// Pressed holds the buttons that went down since the previous snapshot.
	Pressed Buttons
	// Released holds the buttons that went up since the previous snapshot.
	Released Buttons
}

// Moved reports whether the cursor moved since the previous snapshot.
func (s State) Moved() bool {
	return s.Delta[0] != 0 || s.Delta[1] != 0
}

// Held reports whether all buttons in b are currently down.
func (s State) Held(b Buttons) bool {
	return s.Buttons&b == b
}

// Clicked reports whether any button in b went down this frame.
func (s State) Clicked(b Buttons) bool {
	return s.Pressed&b != 0
}

// Tracker accumulates cursor events from window callbacks and produces
// per-frame State snapshots. Callbacks arrive on the window event goroutine
// while Snapshot is called from the frame goroutine, so all access is locked.
type Tracker struct {
	mu sync.Mutex

	pos     f32.Vec2
	buttons Buttons

	// Edge accumulators, drained by Snapshot. A press and release between two
	// snapshots still show up as both a Pressed and a Released edge.
	pressed  Buttons
	released Buttons

	lastPos f32.Vec2
	hasLast bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// SetPosition records the current cursor position. Called from the window's
// cursor position callback.
func (t *Tracker) SetPosition(x, y float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = f32.Vec2{x, y}
}

// SetButton records a button transition. Called from the window's mouse
// button callback.
func (t *Tracker) SetButton(b Buttons, down bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if down {
		if t.buttons&b == 0 {
			t.pressed |= b
		}
		t.buttons |= b
	} else {
		if t.buttons&b != 0 {
			t.released |= b
		}
		t.buttons &^= b
	}
}

// Snapshot produces the State for the current frame and drains the edge
// accumulators. The first snapshot reports a zero Delta.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := State{
		Position: t.pos,
		Buttons:  t.buttons,
		Pressed:  t.pressed,
		Released: t.released,
	}
	if t.hasLast {
		s.Delta = f32.Vec2{t.pos[0] - t.lastPos[0], t.pos[1] - t.lastPos[1]}
	}
	t.lastPos = t.pos
	t.hasLast = true
	t.pressed = 0
	t.released = 0
	return s
}
