package simulation

import (
	"math"
	"testing"

	"golang.org/x/image/math/f32"
)

func TestTrailSpacingFrameRateIndependent(t *testing.T) {
	// A path of total length L with spacing S emits floor(L/S) points whether
	// walked in many small steps or covered in one jump.
	const spacing = 8.0
	const length = 100.0 // floor(100/8) = 12

	walk := func(steps int) int {
		b := NewTrailBuffer(256, spacing)
		b.Advance(f32.Vec2{0, 0}, TrailPoint{MaxAge: 1})
		emitted := 0
		for i := 1; i <= steps; i++ {
			x := float32(length) * float32(i) / float32(steps)
			emitted += b.Advance(f32.Vec2{x, 0}, TrailPoint{MaxAge: 1})
		}
		return emitted
	}

	single := walk(1)
	many := walk(500)
	if single != 12 {
		t.Errorf("single jump emitted %d, want 12", single)
	}
	if many != single {
		t.Errorf("many steps emitted %d, single jump %d — emission is frame-rate dependent", many, single)
	}
}

func TestTrailRemainderCarriesAcrossUpdates(t *testing.T) {
	// Two advances of 0.6·S each: neither alone covers a full spacing, but the
	// carried remainder makes the second emit.
	b := NewTrailBuffer(16, 10)
	b.Advance(f32.Vec2{0, 0}, TrailPoint{MaxAge: 1})

	if n := b.Advance(f32.Vec2{6, 0}, TrailPoint{MaxAge: 1}); n != 0 {
		t.Errorf("first sub-spacing advance emitted %d, want 0", n)
	}
	if n := b.Advance(f32.Vec2{12, 0}, TrailPoint{MaxAge: 1}); n != 1 {
		t.Errorf("second advance emitted %d, want 1 (remainder lost?)", n)
	}
}

func TestTrailPointsPlacedAtSpacingMultiples(t *testing.T) {
	b := NewTrailBuffer(16, 10)
	b.Advance(f32.Vec2{0, 0}, TrailPoint{MaxAge: 1})
	b.Advance(f32.Vec2{35, 0}, TrailPoint{MaxAge: 1})

	pts := b.Points(nil)
	if len(pts) != 3 {
		t.Fatalf("got %d points, want 3", len(pts))
	}
	for i, wantX := range []float32{10, 20, 30} {
		if math.Abs(float64(pts[i].Position[0]-wantX)) > 1e-4 {
			t.Errorf("point %d at x=%g, want %g", i, pts[i].Position[0], wantX)
		}
	}
}

func TestTrailCircularOverwrite(t *testing.T) {
	// After N appends into a capacity-C buffer (N > C), exactly the last C
	// points remain, in chronological order.
	const capacity = 5
	b := NewTrailBuffer(capacity, 1)
	b.Advance(f32.Vec2{0, 0}, TrailPoint{MaxAge: 1})
	// Walk 12 px in 1 px spacing: 12 points through a 5-slot ring.
	b.Advance(f32.Vec2{12, 0}, TrailPoint{MaxAge: 1})

	if got := b.Len(); got != capacity {
		t.Fatalf("Len = %d, want %d", got, capacity)
	}
	pts := b.Points(nil)
	// Last 5 of the 12 emissions: x = 8, 9, 10, 11, 12.
	for i, wantX := range []float32{8, 9, 10, 11, 12} {
		if math.Abs(float64(pts[i].Position[0]-wantX)) > 1e-4 {
			t.Errorf("point %d at x=%g, want %g", i, pts[i].Position[0], wantX)
		}
	}
}

func TestTrailZeroMovementEmitsNothing(t *testing.T) {
	b := NewTrailBuffer(8, 4)
	b.Advance(f32.Vec2{5, 5}, TrailPoint{MaxAge: 1})
	for i := 0; i < 10; i++ {
		if n := b.Advance(f32.Vec2{5, 5}, TrailPoint{MaxAge: 1}); n != 0 {
			t.Fatalf("stationary cursor emitted %d points", n)
		}
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestTrailAgingAndFade(t *testing.T) {
	b := NewTrailBuffer(8, 1)
	b.Advance(f32.Vec2{0, 0}, TrailPoint{MaxAge: 1})
	b.Advance(f32.Vec2{3, 0}, TrailPoint{MaxAge: 1})
	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}

	b.Update(0.5, 1)
	pts := b.Points(nil)
	for i := range pts {
		if pts[i].Age != 0.5 {
			t.Errorf("point %d age = %g, want 0.5", i, pts[i].Age)
		}
		if !pts[i].Alive() {
			t.Errorf("point %d dead at half life", i)
		}
	}

	b.Update(0.6, 1)
	pts = b.Points(nil)
	for i := range pts {
		if pts[i].Alive() {
			t.Errorf("point %d alive past MaxAge", i)
		}
		if pts[i].Fade() != 0 {
			t.Errorf("dead point %d fade = %g, want 0", i, pts[i].Fade())
		}
	}
}

func TestTrailReset(t *testing.T) {
	b := NewTrailBuffer(8, 2)
	b.Advance(f32.Vec2{0, 0}, TrailPoint{MaxAge: 1})
	b.Advance(f32.Vec2{9, 0}, TrailPoint{MaxAge: 1})
	b.Reset()

	if b.Len() != 0 {
		t.Errorf("Len after reset = %d, want 0", b.Len())
	}
	// The first advance after a reset only re-anchors; no emission from the
	// stale last position.
	if n := b.Advance(f32.Vec2{100, 100}, TrailPoint{MaxAge: 1}); n != 0 {
		t.Errorf("first advance after reset emitted %d", n)
	}
}
