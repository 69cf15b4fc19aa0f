package effects

import (
	"testing"

	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/effect"
	"github.com/cursorfx/cursorfx/engine/settings"
	"golang.org/x/image/math/f32"
)

func movingState(x, y, dx, dy float32) cursor.State {
	return cursor.State{
		Position: f32.Vec2{x, y},
		Delta:    f32.Vec2{dx, dy},
	}
}

func clickState(x, y float32) cursor.State {
	return cursor.State{
		Position: f32.Vec2{x, y},
		Buttons:  cursor.ButtonLeft,
		Pressed:  cursor.ButtonLeft,
	}
}

func TestSparkleSpawnRateWhileMoving(t *testing.T) {
	e := NewSparkle(1).(*sparkleEffect)
	e.MarkInitialized()
	e.Configure(settings.Config{
		"spawn_rate":   settings.Float(100),
		"lifetime_min": settings.Float(5),
		"lifetime_max": settings.Float(5),
	})

	// 10 updates of 0.1s with the cursor moving: 100/s over 1s = 100 spawns,
	// all still alive under the 5s lifetime.
	for i := 0; i < 10; i++ {
		e.Update(0.1, movingState(float32(i)*10, 0, 10, 0))
	}
	if got := e.pool.Alive(); got != 100 {
		t.Fatalf("alive = %d, want 100", got)
	}
}

func TestSparkleStationaryCursorSpawnsNothing(t *testing.T) {
	e := NewSparkle(1).(*sparkleEffect)
	e.MarkInitialized()

	for i := 0; i < 20; i++ {
		e.Update(0.1, movingState(100, 100, 0, 0))
	}
	if got := e.pool.Alive(); got != 0 {
		t.Fatalf("alive = %d, want 0 while stationary", got)
	}
}

func TestSparkleStationaryResetsSpawnCarry(t *testing.T) {
	e := NewSparkle(1).(*sparkleEffect)
	e.MarkInitialized()
	e.Configure(settings.Config{
		"spawn_rate":   settings.Float(5),
		"lifetime_min": settings.Float(10),
		"lifetime_max": settings.Float(10),
	})

	// Each moving update accrues 0.5 spawn credit; the stationary update in
	// between must drop it so the two movements never sum to a spawn.
	e.Update(0.1, movingState(0, 0, 5, 0))
	e.Update(0.1, movingState(0, 0, 0, 0))
	e.Update(0.1, movingState(10, 0, 5, 0))
	if got := e.pool.Alive(); got != 0 {
		t.Fatalf("alive = %d, want 0 after carry reset", got)
	}
}

func TestSparkleClickBurst(t *testing.T) {
	e := NewSparkle(1).(*sparkleEffect)
	e.MarkInitialized()
	e.Configure(settings.Config{
		"burst_count":  settings.Int(30),
		"lifetime_min": settings.Float(5),
		"lifetime_max": settings.Float(5),
	})

	e.Update(0.016, clickState(50, 50))
	if got := e.pool.Alive(); got != 30 {
		t.Fatalf("alive = %d, want 30 after click burst", got)
	}
}

func TestSparkleParticlesExpire(t *testing.T) {
	e := NewSparkle(1).(*sparkleEffect)
	e.MarkInitialized()
	e.Configure(settings.Config{
		"burst_count":  settings.Int(10),
		"lifetime_min": settings.Float(0.2),
		"lifetime_max": settings.Float(0.2),
	})

	e.Update(0.016, clickState(0, 0))
	if e.pool.Alive() == 0 {
		t.Fatal("expected live particles after burst")
	}
	for i := 0; i < 30; i++ {
		e.Update(0.1, movingState(0, 0, 0, 0))
	}
	if got := e.pool.Alive(); got != 0 {
		t.Fatalf("alive = %d, want 0 after lifetimes elapsed", got)
	}
}

func TestSparkleConfigureClamps(t *testing.T) {
	e := NewSparkle(1).(*sparkleEffect)
	e.Configure(settings.Config{
		"spawn_rate":  settings.Float(1e9),
		"burst_count": settings.Int(-5),
	})
	if e.spawnRate != 600 {
		t.Errorf("spawnRate = %v, want clamped to 600", e.spawnRate)
	}
	if e.burstCount != 0 {
		t.Errorf("burstCount = %d, want clamped to 0", e.burstCount)
	}
}

func TestTrailEmissionIsDistanceBased(t *testing.T) {
	e := NewTrail(1).(*trailEffect)
	e.MarkInitialized()
	e.Configure(settings.Config{
		"spacing":  settings.Float(4),
		"lifetime": settings.Float(5),
	})

	// First update anchors the path; the second covers 40px at spacing 4.
	e.Update(0.016, movingState(0, 0, 1, 0))
	e.Update(0.016, movingState(40, 0, 40, 0))
	if got := e.trail.Len(); got != 10 {
		t.Fatalf("trail length = %d, want 10 for 40px at spacing 4", got)
	}
}

func TestTrailPointsExpire(t *testing.T) {
	e := NewTrail(1).(*trailEffect)
	e.MarkInitialized()
	e.Configure(settings.Config{
		"lifetime": settings.Float(0.2),
	})

	e.Update(0.016, movingState(0, 0, 1, 0))
	e.Update(0.016, movingState(40, 0, 40, 0))
	e.Update(1, movingState(40, 0, 0, 0))

	pts := e.trail.Points(nil)
	for i := range pts {
		if pts[i].Alive() {
			t.Fatalf("point %d still alive after lifetime elapsed", i)
		}
	}
}

func TestOrbitMaintainsPopulation(t *testing.T) {
	e := NewOrbit(1).(*orbitEffect)
	e.MarkInitialized()
	e.Configure(settings.Config{
		"count":        settings.Int(40),
		"lifetime_min": settings.Float(2),
		"lifetime_max": settings.Float(2),
	})

	cur := movingState(400, 300, 0, 0)
	for i := 0; i < 300; i++ {
		e.Update(0.016, cur)
	}
	alive := e.pool.Alive()
	if alive == 0 {
		t.Fatal("orbit swarm died out")
	}
	if alive > orbitCapacity {
		t.Fatalf("alive = %d exceeds capacity %d", alive, orbitCapacity)
	}
}

func TestShockwaveRingsPerClick(t *testing.T) {
	e := NewShockwave(1).(*shockwaveEffect)
	e.MarkInitialized()
	e.Configure(settings.Config{
		"ring_count": settings.Int(4),
		"lifetime":   settings.Float(1),
	})

	e.Update(0.016, clickState(100, 100))
	if got := e.pool.Alive(); got != 4 {
		t.Fatalf("alive = %d, want 4 rings after click", got)
	}

	// Rings expand with age but never move.
	slots := e.pool.Slots()
	for i := range slots {
		if !slots[i].Alive() {
			continue
		}
		if slots[i].Position != (f32.Vec2{100, 100}) {
			t.Fatalf("ring %d moved to %v", i, slots[i].Position)
		}
		if slots[i].Velocity[0] <= 0 {
			t.Fatalf("ring %d has no expansion speed", i)
		}
	}

	for i := 0; i < 20; i++ {
		e.Update(0.1, movingState(100, 100, 0, 0))
	}
	if got := e.pool.Alive(); got != 0 {
		t.Fatalf("alive = %d, want 0 after ring lifetimes elapsed", got)
	}
}

func TestContinuousCaptureDeclarations(t *testing.T) {
	tests := []struct {
		name   string
		effect effect.Effect
		want   bool
	}{
		{"sparkle", NewSparkle(1), false},
		{"trail", NewTrail(2), false},
		{"orbit", NewOrbit(3), false},
		{"shockwave", NewShockwave(4), false},
		{"lens", NewLens(5), true},
		{"colorfilter", NewColorFilter(6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.effect.RequiresContinuousCapture(); got != tt.want {
				t.Errorf("RequiresContinuousCapture() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScreenEffectsRequireCapture(t *testing.T) {
	ctx := &effect.Context{ViewportWidth: 800, ViewportHeight: 600}
	if err := NewLens(1).Initialize(ctx); err == nil {
		t.Error("lens initialized without capture provider")
	}
	if err := NewColorFilter(2).Initialize(ctx); err == nil {
		t.Error("colorfilter initialized without capture provider")
	}
}

func TestSchemasHaveDefaultsForEveryKey(t *testing.T) {
	all := []effect.Effect{
		NewSparkle(1), NewTrail(2), NewOrbit(3),
		NewShockwave(4), NewLens(5), NewColorFilter(6),
	}
	for _, e := range all {
		schema := e.Schema()
		defaults := schema.Defaults()
		for _, entry := range schema {
			if _, ok := defaults[entry.Key]; !ok {
				t.Errorf("%s: key %q missing from defaults", e.TypeID(), entry.Key)
			}
		}
		// Applying defaults must be a no-op safe operation.
		e.Configure(defaults)
	}
}

func TestRegisterAll(t *testing.T) {
	reg := effect.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	want := []string{"colorfilter", "lens", "orbit", "shockwave", "sparkle", "trail"}
	got := reg.Types()
	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Types() = %v, want %v", got, want)
		}
	}
	if err := RegisterAll(reg); err == nil {
		t.Error("second RegisterAll() should fail on duplicate types")
	}
}

func TestUpdateBeforeInitializeIsIgnored(t *testing.T) {
	e := NewSparkle(1).(*sparkleEffect)
	for i := 0; i < 5; i++ {
		e.Update(0.1, movingState(float32(i), 0, 1, 0))
	}
	if got := e.pool.Alive(); got != 0 {
		t.Fatalf("alive = %d, want 0 before initialization", got)
	}
}
