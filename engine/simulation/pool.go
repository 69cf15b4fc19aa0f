package simulation

import (
	"math/rand"
)

// SpawnFunc initializes a freshly claimed slot. Implementations must set MaxAge
// to a positive value for the spawn to take effect; everything else in the slot
// is stale data from the previous occupant.
type SpawnFunc func(p *Particle, rng *rand.Rand)

// spawnCarryEpsilon absorbs float32 dt quantization when flooring the spawn
// accumulator. Summing many float32 frame times lands a hair under the exact
// product (300 steps of float32(0.01) total 2.9999999, not 3), which would
// drop a spawn that coarser partitions of the same span emit.
const spawnCarryEpsilon = 1e-6

// Pool is a bounded, preallocated collection of particle slots with spawn, age
// and expire semantics. The slot array never grows: its capacity matches the
// GPU instance buffer an effect uploads each frame, so the number of live
// entities can never exceed what the draw call can express.
//
// Pool is not safe for concurrent use; the frame loop drives each effect's pool
// from a single goroutine. UpdateChunked is the one exception — it fans aging
// out over a worker pool but joins before returning.
type Pool struct {
	slots []Particle
	rng   *rand.Rand

	// cursor is the next slot index tried when claiming a dead slot. Advancing
	// it round-robin keeps claim cost amortized O(1) under steady spawn/expire
	// churn instead of rescanning from zero.
	cursor int

	// carry accumulates fractional spawns so that rate spawning emits
	// floor(rate·t) entities over any update cadence. float64 so that many
	// small-dt additions don't drift off the exact count.
	carry float64
}

// NewPool creates a pool with the given fixed capacity. All slots start
// inactive (MaxAge zero).
//
// Parameters:
//   - capacity: number of entity slots, must be > 0
//   - seed: seed for the pool's private random source
//
// Returns:
//   - *Pool: the new pool
func NewPool(capacity int, seed int64) *Pool {
	if capacity <= 0 {
		panic("simulation: pool capacity must be positive")
	}
	return &Pool{
		slots: make([]Particle, capacity),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Capacity returns the fixed slot count.
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// Alive counts the currently live entities. Never exceeds Capacity.
func (p *Pool) Alive() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].Alive() {
			n++
		}
	}
	return n
}

// Slots exposes the raw slot array for serialization into GPU instance data.
// Callers must skip slots whose Alive() is false — dead slots hold stale
// payloads, not zeroes.
//
// Returns:
//   - []Particle: the backing array, aliased not copied
func (p *Pool) Slots() []Particle {
	return p.slots
}

// Rand returns the pool's random source for effect-specific spawn draws.
func (p *Pool) Rand() *rand.Rand {
	return p.rng
}

// Update advances every live entity's age by dt scaled by fadeSpeed and moves
// it by its velocity. Entities whose age crosses MaxAge become dead and their
// slots eligible for reuse; the slot contents are left untouched.
//
// Parameters:
//   - dt: elapsed frame time in seconds
//   - fadeSpeed: aging multiplier (1 = real time)
func (p *Pool) Update(dt, fadeSpeed float32) {
	ageStep(p.slots, dt, fadeSpeed)
}

// SpawnRate spawns entities at the configured rate per second while the caller's
// trigger condition holds, carrying fractional spawns across frames. Over any
// span of updates totalling t seconds, exactly floor(rate·t) entities spawn
// regardless of how the span is partitioned into frames.
//
// Spawning stops silently once no dead slot is available: the pool is at
// capacity and the oldest entities must expire first.
//
// Parameters:
//   - rate: spawns per second
//   - dt: elapsed frame time in seconds
//   - spawn: slot initializer
//
// Returns:
//   - int: number of entities actually spawned this call
func (p *Pool) SpawnRate(rate, dt float32, spawn SpawnFunc) int {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	p.carry += float64(rate) * float64(dt)
	n := int(p.carry + spawnCarryEpsilon)
	if n <= 0 {
		return 0
	}
	p.carry -= float64(n)
	return p.SpawnBurst(n, spawn)
}

// ResetRateCarry drops any accumulated fractional spawn debt. Called when the
// trigger condition ends so a later trigger does not inherit stale accumulation.
func (p *Pool) ResetRateCarry() {
	p.carry = 0
}

// SpawnBurst atomically spawns up to n entities, e.g. on a mouse click. Spawns
// beyond the available dead slots are dropped.
//
// Parameters:
//   - n: requested entity count
//   - spawn: slot initializer
//
// Returns:
//   - int: number of entities actually spawned
func (p *Pool) SpawnBurst(n int, spawn SpawnFunc) int {
	spawned := 0
	for i := 0; i < n; i++ {
		slot := p.claim()
		if slot == nil {
			break
		}
		slot.Age = 0
		slot.MaxAge = 0
		spawn(slot, p.rng)
		if slot.MaxAge <= 0 {
			// Initializer declined the spawn; slot stays dead.
			continue
		}
		spawned++
	}
	return spawned
}

// claim finds the next dead slot starting from the round-robin cursor.
// Returns nil when every slot is live.
func (p *Pool) claim() *Particle {
	for i := 0; i < len(p.slots); i++ {
		idx := (p.cursor + i) % len(p.slots)
		if !p.slots[idx].Alive() {
			p.cursor = (idx + 1) % len(p.slots)
			return &p.slots[idx]
		}
	}
	return nil
}

// ageStep is the shared serial aging kernel used by both Update and the
// chunked parallel path.
func ageStep(slots []Particle, dt, fadeSpeed float32) {
	if dt <= 0 {
		return
	}
	aged := dt * fadeSpeed
	for i := range slots {
		s := &slots[i]
		if !s.Alive() {
			continue
		}
		s.Age += aged
		if s.Age >= s.MaxAge {
			continue
		}
		s.Position[0] += s.Velocity[0] * dt
		s.Position[1] += s.Velocity[1] * dt
	}
}
