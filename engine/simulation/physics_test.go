package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cursorfx/cursorfx/common"
	"golang.org/x/image/math/f32"
)

func TestAttractorPullsTowardTarget(t *testing.T) {
	p := Particle{Position: f32.Vec2{0, 0}, MaxAge: 10}
	a := Attractor{Strength: 100}
	target := f32.Vec2{100, 0}

	for i := 0; i < 10; i++ {
		before := common.Length2(common.Sub2(target, p.Position))
		a.Step(&p, target, 0.05)
		after := common.Length2(common.Sub2(target, p.Position))
		if after >= before {
			t.Fatalf("step %d: distance grew from %g to %g", i, before, after)
		}
	}
}

func TestAttractorSemiImplicitEuler(t *testing.T) {
	// One step from rest: v' = a·dt, then x' = x + v'·dt. The position must
	// move on the very first step (velocity updated before position), which
	// distinguishes semi-implicit from explicit Euler.
	p := Particle{Position: f32.Vec2{0, 0}, MaxAge: 10}
	a := Attractor{Strength: 50}
	a.Step(&p, f32.Vec2{10, 0}, 0.1)

	wantV := float32(50 * 0.1)
	wantX := wantV * 0.1
	if math.Abs(float64(p.Velocity[0]-wantV)) > 1e-5 {
		t.Errorf("v = %g, want %g", p.Velocity[0], wantV)
	}
	if math.Abs(float64(p.Position[0]-wantX)) > 1e-5 {
		t.Errorf("x = %g, want %g", p.Position[0], wantX)
	}
}

func TestAttractorIsFrameRateDependentByDesign(t *testing.T) {
	// The integrator intentionally has no fixed-timestep accumulator: the same
	// wall-clock second integrated at different frame rates lands on different
	// states. Guard that nobody "fixes" this — existing effect configurations
	// are tuned against it.
	run := func(steps int) f32.Vec2 {
		p := Particle{Position: f32.Vec2{0, 0}, MaxAge: 10}
		a := Attractor{Strength: 200, Damping: 1}
		dt := float32(1) / float32(steps)
		for i := 0; i < steps; i++ {
			a.Step(&p, f32.Vec2{100, 100}, dt)
		}
		return p.Position
	}

	coarse := run(10)
	fine := run(1000)
	if common.Length2(common.Sub2(coarse, fine)) < 0.1 {
		t.Error("integration became frame-rate independent; sub-stepping must not be introduced")
	}
}

func TestAttractorDampingDecaysVelocity(t *testing.T) {
	p := Particle{Velocity: f32.Vec2{100, 0}, MaxAge: 10}
	a := Attractor{Damping: 4}
	prev := common.Length2(p.Velocity)
	for i := 0; i < 20; i++ {
		a.Step(&p, p.Position, 0.05) // target at own position: pure damping
		speed := common.Length2(p.Velocity)
		if speed > prev {
			t.Fatalf("speed grew from %g to %g under damping", prev, speed)
		}
		prev = speed
	}
	if prev > 50 {
		t.Errorf("speed after 1s of damping = %g, want significant decay", prev)
	}
}

func TestTangentialProducesOrbit(t *testing.T) {
	// With a tangential component the entity keeps a roughly stable radius
	// while sweeping angle around the target.
	p := Particle{Position: f32.Vec2{50, 0}, MaxAge: 60}
	a := Attractor{Strength: 80, Tangential: 60, Damping: 0.5}
	target := f32.Vec2{0, 0}

	startAngle := math.Atan2(float64(p.Position[1]), float64(p.Position[0]))
	var swept float64
	prevAngle := startAngle
	for i := 0; i < 400; i++ {
		a.Step(&p, target, 1.0/120)
		angle := math.Atan2(float64(p.Position[1]), float64(p.Position[0]))
		d := angle - prevAngle
		// unwrap
		if d > math.Pi {
			d -= 2 * math.Pi
		} else if d < -math.Pi {
			d += 2 * math.Pi
		}
		swept += d
		prevAngle = angle
	}

	if math.Abs(swept) < math.Pi/2 {
		t.Errorf("swept only %g rad, want orbital motion", swept)
	}
	if r := common.Length2(p.Position); r < 1 {
		t.Errorf("entity collapsed onto target (r = %g)", r)
	}
}

func TestStepAllSkipsDeadSlots(t *testing.T) {
	pool := NewPool(2, 1)
	pool.SpawnBurst(1, func(p *Particle, rng *rand.Rand) {
		p.MaxAge = 10
		p.Position = f32.Vec2{10, 0}
	})
	// Second slot stays dead with a stale position.
	dead := &pool.Slots()[1]
	dead.Position = f32.Vec2{99, 99}

	a := Attractor{Strength: 100}
	a.StepAll(pool, f32.Vec2{0, 0}, 0.1)

	if pool.Slots()[0].Position == (f32.Vec2{10, 0}) {
		t.Error("live slot did not move")
	}
	if dead.Position != (f32.Vec2{99, 99}) {
		t.Error("dead slot was integrated")
	}
}

func TestAgeOnlyLeavesPositionsAlone(t *testing.T) {
	pool := NewPool(1, 1)
	pool.SpawnBurst(1, func(p *Particle, rng *rand.Rand) {
		p.MaxAge = 2
		p.Velocity = f32.Vec2{100, 100}
		p.Position = f32.Vec2{5, 5}
	})
	AgeOnly(pool, 0.5, 1)

	s := &pool.Slots()[0]
	if s.Age != 0.5 {
		t.Errorf("age = %g, want 0.5", s.Age)
	}
	if s.Position != (f32.Vec2{5, 5}) {
		t.Errorf("position moved to %v", s.Position)
	}
}
