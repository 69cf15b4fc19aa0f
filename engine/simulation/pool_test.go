package simulation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"golang.org/x/image/math/f32"
)

func spawnShortLived(p *Particle, rng *rand.Rand) {
	p.Position = f32.Vec2{0, 0}
	p.Velocity = f32.Vec2{10, 0}
	p.MaxAge = 2
	p.Size = 4
	p.Color = f32.Vec4{1, 1, 1, 1}
}

func TestAliveNeverExceedsCapacity(t *testing.T) {
	const capacity = 16
	pool := NewPool(capacity, 1)

	for step := 0; step < 200; step++ {
		pool.SpawnBurst(5, spawnShortLived)
		pool.Update(0.05, 1)
		if alive := pool.Alive(); alive > capacity {
			t.Fatalf("step %d: alive = %d exceeds capacity %d", step, alive, capacity)
		}
	}
}

func TestAgeNonDecreasingUntilRespawn(t *testing.T) {
	pool := NewPool(1, 1)
	pool.SpawnBurst(1, func(p *Particle, rng *rand.Rand) {
		p.MaxAge = 1
	})

	slot := &pool.Slots()[0]
	prev := slot.Age
	for i := 0; i < 12; i++ {
		pool.Update(0.1, 1)
		if slot.Age < prev {
			t.Fatalf("age decreased from %g to %g without respawn", prev, slot.Age)
		}
		prev = slot.Age
	}

	// 1.2s elapsed against a 1s MaxAge; respawn must reset age to 0 with a
	// fresh MaxAge.
	if slot.Alive() {
		t.Fatal("entity should have expired")
	}
	n := pool.SpawnBurst(1, func(p *Particle, rng *rand.Rand) {
		p.MaxAge = 5
	})
	if n != 1 {
		t.Fatalf("respawn into dead slot failed, spawned %d", n)
	}
	if slot.Age != 0 || slot.MaxAge != 5 {
		t.Errorf("respawned slot = age %g maxAge %g, want 0 and 5", slot.Age, slot.MaxAge)
	}
}

func TestDeadSlotsAreSkippedNotZeroed(t *testing.T) {
	pool := NewPool(4, 1)
	pool.SpawnBurst(4, spawnShortLived)
	pool.Update(3, 1) // everything expires

	for i := range pool.Slots() {
		s := &pool.Slots()[i]
		if s.Alive() {
			t.Fatalf("slot %d still alive after expiry", i)
		}
		// Stale payload is retained, only Alive flips.
		if s.Size != 4 {
			t.Errorf("slot %d payload zeroed: size = %g", i, s.Size)
		}
		if s.Fade() != 0 {
			t.Errorf("dead slot %d has nonzero fade %g", i, s.Fade())
		}
	}
}

func TestBurstSpawnSaturatesAtCapacity(t *testing.T) {
	pool := NewPool(8, 1)
	if n := pool.SpawnBurst(20, spawnShortLived); n != 8 {
		t.Errorf("burst spawned %d, want 8", n)
	}
	if n := pool.SpawnBurst(1, spawnShortLived); n != 0 {
		t.Errorf("burst into full pool spawned %d, want 0", n)
	}
}

func TestRateSpawnIsFrameRateIndependent(t *testing.T) {
	// floor(rate·t) spawns over any partition of the same time span.
	for _, tc := range []struct {
		name  string
		steps int
		dt    float32
	}{
		{"many small steps", 300, 0.01},
		{"few large steps", 3, 1.0},
		{"uneven steps", 30, 0.1},
		{"sub-millisecond steps", 3000, 0.001},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pool := NewPool(1024, 1)
			total := 0
			for i := 0; i < tc.steps; i++ {
				total += pool.SpawnRate(7, tc.dt, spawnShortLived)
			}
			// 7 spawns/sec over 3 seconds.
			if total != 21 {
				t.Errorf("spawned %d, want 21", total)
			}
		})
	}
}

func TestSteadyStateOccupancy(t *testing.T) {
	// 10 entities/sec with maxAge 2s at fixed 0.1s steps for 3s: 30 total
	// spawns, and occupancy stabilizes near rate·maxAge = 20 once the oldest
	// cohort starts expiring.
	pool := NewPool(64, 1)
	spawn := func(p *Particle, rng *rand.Rand) {
		p.MaxAge = 2
	}

	totalSpawned := 0
	var aliveAtEnd int
	for i := 0; i < 30; i++ {
		totalSpawned += pool.SpawnRate(10, 0.1, spawn)
		pool.Update(0.1, 1)
		aliveAtEnd = pool.Alive()
	}

	if totalSpawned != 30 {
		t.Errorf("total spawns = %d, want 30", totalSpawned)
	}
	if aliveAtEnd < 18 || aliveAtEnd > 21 {
		t.Errorf("steady-state alive = %d, want ~20", aliveAtEnd)
	}
}

func TestFadeSpeedScalesAgingOnly(t *testing.T) {
	pool := NewPool(1, 1)
	pool.SpawnBurst(1, func(p *Particle, rng *rand.Rand) {
		p.MaxAge = 10
		p.Velocity = f32.Vec2{100, 0}
	})
	pool.Update(0.5, 2)

	s := &pool.Slots()[0]
	if s.Age != 1 {
		t.Errorf("age = %g, want 1 (dt·fadeSpeed)", s.Age)
	}
	// Movement uses the raw dt, not the scaled one.
	if s.Position[0] != 50 {
		t.Errorf("x = %g, want 50 (velocity·dt)", s.Position[0])
	}
}

func TestUpdateChunkedMatchesSerial(t *testing.T) {
	// nil worker pool forces the serial fallback; the chunked path shares the
	// same aging kernel, so equivalence of the fallback covers the kernel.
	a := NewPool(128, 3)
	b := NewPool(128, 3)
	a.SpawnBurst(100, spawnShortLived)
	b.SpawnBurst(100, spawnShortLived)

	a.Update(0.25, 1)
	b.UpdateChunked(nil, 0.25, 1)

	for i := range a.Slots() {
		if a.Slots()[i] != b.Slots()[i] {
			t.Fatalf("slot %d diverged: %+v vs %+v", i, a.Slots()[i], b.Slots()[i])
		}
	}
}

func TestUpdateChunkedFansOutOverWorkers(t *testing.T) {
	// Capacity above the serial-fallback threshold so the update actually
	// crosses the worker pool, then compare against a serial twin. Slots are
	// independent, so fan-out must be bit-for-bit identical to serial aging.
	const capacity = 8192
	a := NewPool(capacity, 9)
	b := NewPool(capacity, 9)
	a.SpawnBurst(capacity, spawnShortLived)
	b.SpawnBurst(capacity, spawnShortLived)

	wp := worker.NewDynamicWorkerPool(4, 256, 100*time.Millisecond)
	for step := 0; step < 3; step++ {
		a.Update(0.05, 1)
		b.UpdateChunked(wp, 0.05, 1)
	}

	for i := range a.Slots() {
		if a.Slots()[i] != b.Slots()[i] {
			t.Fatalf("slot %d diverged: %+v vs %+v", i, a.Slots()[i], b.Slots()[i])
		}
	}
}

func TestSpawnInitializerCanDecline(t *testing.T) {
	pool := NewPool(4, 1)
	n := pool.SpawnBurst(4, func(p *Particle, rng *rand.Rand) {
		// MaxAge left at zero: the slot stays dead.
	})
	if n != 0 {
		t.Errorf("declined spawns counted: %d", n)
	}
	if pool.Alive() != 0 {
		t.Errorf("alive = %d, want 0", pool.Alive())
	}
}
