package simulation

import (
	"github.com/cursorfx/cursorfx/common"
	"golang.org/x/image/math/f32"
)

// TrailPoint is one emitted point along the cursor's path.
type TrailPoint struct {
	// Position is the point's screen-space position in pixels.
	Position f32.Vec2

	// Age is the time in seconds since the point was emitted.
	Age float32

	// MaxAge is the point's lifetime in seconds.
	MaxAge float32

	// Width is the trail stroke width in pixels at this point.
	Width float32

	// Color is the point's RGBA tint.
	Color f32.Vec4
}

// Alive reports whether the point should still be drawn.
func (t *TrailPoint) Alive() bool {
	return t.MaxAge > 0 && t.Age < t.MaxAge
}

// Fade returns the point's opacity multiplier, a pure function of the age ratio.
func (t *TrailPoint) Fade() float32 {
	if !t.Alive() {
		return 0
	}
	return 1 - common.SmoothStep(0, 1, t.Age/t.MaxAge)
}

// TrailBuffer is a fixed-capacity circular buffer of trail points indexed by a
// monotonically advancing head; once full, each append overwrites the oldest
// point. Emission is distance based: a point is appended for every full spacing
// interval the cursor covers, with the leftover sub-spacing distance carried to
// the next advance. The carry makes point density independent of frame rate —
// a single large jump and many small steps covering the same path emit the
// same number of points.
type TrailBuffer struct {
	points []TrailPoint

	// head is the total number of points ever appended. head % cap is the next
	// write slot; min(head, cap) is the number of retrievable points.
	head int

	spacing float32

	last    f32.Vec2
	hasLast bool

	// remainder is the sub-spacing distance already travelled toward the next
	// emission, carried across Advance calls. Never discarded.
	remainder float32
}

// NewTrailBuffer creates a circular trail buffer.
//
// Parameters:
//   - capacity: maximum retained point count, must be > 0
//   - spacing: minimum cursor travel distance in pixels between emitted points
//
// Returns:
//   - *TrailBuffer: the new buffer
func NewTrailBuffer(capacity int, spacing float32) *TrailBuffer {
	if capacity <= 0 {
		panic("simulation: trail capacity must be positive")
	}
	if spacing <= 0 {
		spacing = 1
	}
	return &TrailBuffer{
		points:  make([]TrailPoint, capacity),
		spacing: spacing,
	}
}

// Capacity returns the fixed point capacity.
func (b *TrailBuffer) Capacity() int {
	return len(b.points)
}

// Len returns the number of retrievable points, at most Capacity.
func (b *TrailBuffer) Len() int {
	return min(b.head, len(b.points))
}

// SetSpacing changes the emission spacing for subsequent advances.
// Values <= 0 are clamped to 1 pixel.
func (b *TrailBuffer) SetSpacing(spacing float32) {
	if spacing <= 0 {
		spacing = 1
	}
	b.spacing = spacing
}

// Advance feeds the buffer the cursor's new position, emitting one point per
// full spacing interval covered since the last emission. Points for large
// jumps are placed along the segment at exact spacing multiples, not bunched
// at the endpoint.
//
// Parameters:
//   - pos: current cursor position in pixels
//   - proto: template for emitted points; Position and Age are overwritten
//
// Returns:
//   - int: number of points emitted
func (b *TrailBuffer) Advance(pos f32.Vec2, proto TrailPoint) int {
	if !b.hasLast {
		b.last = pos
		b.hasLast = true
		return 0
	}

	seg := common.Sub2(b.last, pos)
	seg = common.Scale2(seg, -1)
	dist := common.Length2(seg)
	if dist == 0 {
		return 0
	}

	total := b.remainder + dist
	emitted := 0
	dir := common.Scale2(seg, 1/dist)
	for total >= b.spacing {
		total -= b.spacing
		// Distance from the current position back along the segment to this
		// emission point.
		back := total
		at := common.Sub2(pos, common.Scale2(dir, back))
		pt := proto
		pt.Position = at
		pt.Age = 0
		b.append(pt)
		emitted++
	}
	b.remainder = total
	b.last = pos
	return emitted
}

// append writes a point at the head slot, overwriting the oldest when full.
func (b *TrailBuffer) append(pt TrailPoint) {
	b.points[b.head%len(b.points)] = pt
	b.head++
}

// Update advances the age of every retained point.
//
// Parameters:
//   - dt: elapsed frame time in seconds
//   - fadeSpeed: aging multiplier (1 = real time)
func (b *TrailBuffer) Update(dt, fadeSpeed float32) {
	if dt <= 0 {
		return
	}
	aged := dt * fadeSpeed
	for i := 0; i < b.Len(); i++ {
		b.points[i].Age += aged
	}
}

// Points appends the retained points to dst in chronological order, oldest
// first, and returns the extended slice. Passing a reused backing slice avoids
// per-frame allocation.
//
// Parameters:
//   - dst: destination slice, may be nil
//
// Returns:
//   - []TrailPoint: dst extended with Len() points
func (b *TrailBuffer) Points(dst []TrailPoint) []TrailPoint {
	n := b.Len()
	if n == 0 {
		return dst
	}
	start := b.head - n
	for i := 0; i < n; i++ {
		dst = append(dst, b.points[(start+i)%len(b.points)])
	}
	return dst
}

// Reset forgets all points and the carried remainder, e.g. when the effect is
// reconfigured with a different capacity elsewhere.
func (b *TrailBuffer) Reset() {
	b.head = 0
	b.hasLast = false
	b.remainder = 0
}
