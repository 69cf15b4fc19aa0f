// package simulation holds the CPU-side state engine shared by all effects:
// bounded pools of timed entities, circular trail accumulation, and the cursor
// attraction physics step. Nothing in this package touches the GPU — effects
// serialize pool state into their own instance buffers during render.
package simulation

import (
	"github.com/cursorfx/cursorfx/common"
	"golang.org/x/image/math/f32"
)

// Particle is one simulated entity slot: a particle, tile, or shockwave ring.
// Slots are preallocated and reused; a dead slot keeps its stale payload until
// the next spawn overwrites it, so consumers must check Alive before reading.
type Particle struct {
	// Position is the entity's screen-space position in pixels.
	Position f32.Vec2

	// Velocity is the entity's velocity in pixels per second.
	Velocity f32.Vec2

	// Age is the time in seconds the entity has been alive.
	Age float32

	// MaxAge is the entity's lifetime in seconds. Zero or negative marks the
	// slot permanently inactive until respawned.
	MaxAge float32

	// Size is the entity's visual size in pixels (diameter for points, ring
	// radius growth base for shockwaves).
	Size float32

	// Phase is a per-entity random offset in radians for shader-side wobble
	// and sparkle animation.
	Phase float32

	// Color is the entity's RGBA tint with components in [0, 1].
	Color f32.Vec4
}

// Alive reports whether the slot currently holds a live entity.
//
// Returns:
//   - bool: true while 0 <= Age < MaxAge with a positive MaxAge
func (p *Particle) Alive() bool {
	return p.MaxAge > 0 && p.Age < p.MaxAge
}

// LifeRatio returns Age/MaxAge saturated into [0, 1]. Dead and inactive slots
// report 1.
func (p *Particle) LifeRatio() float32 {
	if p.MaxAge <= 0 {
		return 1
	}
	return common.Saturate(p.Age / p.MaxAge)
}

// Fade returns the entity's fade envelope, a pure function of the age ratio:
// a quick ramp-in over the first 10% of life and a smooth ramp-out over the
// final 40%. Dead slots report 0.
//
// Returns:
//   - float32: opacity multiplier in [0, 1]
func (p *Particle) Fade() float32 {
	if !p.Alive() {
		return 0
	}
	r := p.LifeRatio()
	in := common.SmoothStep(0, 0.1, r)
	out := 1 - common.SmoothStep(0.6, 1, r)
	return in * out
}
