package cursor

import "testing"

func TestFirstSnapshotHasZeroDelta(t *testing.T) {
	tr := NewTracker()
	tr.SetPosition(100, 200)
	s := tr.Snapshot()
	if s.Position != [2]float32{100, 200} {
		t.Fatalf("Position = %v, want {100 200}", s.Position)
	}
	if s.Moved() {
		t.Fatal("first snapshot must report zero delta")
	}
}

func TestDeltaBetweenSnapshots(t *testing.T) {
	tr := NewTracker()
	tr.SetPosition(10, 10)
	tr.Snapshot()
	tr.SetPosition(15, 7)
	s := tr.Snapshot()
	if s.Delta != [2]float32{5, -3} {
		t.Fatalf("Delta = %v, want {5 -3}", s.Delta)
	}
	// No movement since: delta returns to zero.
	s = tr.Snapshot()
	if s.Moved() {
		t.Fatal("delta must reset when the cursor is stationary")
	}
}

func TestButtonEdgesDrainPerSnapshot(t *testing.T) {
	tr := NewTracker()
	tr.SetButton(ButtonLeft, true)
	s := tr.Snapshot()
	if !s.Clicked(ButtonLeft) {
		t.Fatal("press edge should be visible in the next snapshot")
	}
	if !s.Held(ButtonLeft) {
		t.Fatal("button should read as held while down")
	}

	s = tr.Snapshot()
	if s.Clicked(ButtonLeft) {
		t.Fatal("press edge must not repeat on the following snapshot")
	}
	if !s.Held(ButtonLeft) {
		t.Fatal("held state persists until release")
	}

	tr.SetButton(ButtonLeft, false)
	s = tr.Snapshot()
	if s.Released&ButtonLeft == 0 {
		t.Fatal("release edge should be visible")
	}
	if s.Held(ButtonLeft) {
		t.Fatal("button should not read as held after release")
	}
}

func TestClickBetweenSnapshotsKeepsBothEdges(t *testing.T) {
	tr := NewTracker()
	tr.SetButton(ButtonLeft, true)
	tr.SetButton(ButtonLeft, false)
	s := tr.Snapshot()
	if !s.Clicked(ButtonLeft) {
		t.Fatal("fast click must still report a press edge")
	}
	if s.Released&ButtonLeft == 0 {
		t.Fatal("fast click must still report a release edge")
	}
	if s.Held(ButtonLeft) {
		t.Fatal("fast click should not leave the button held")
	}
}

func TestRepeatedPressDoesNotReEdge(t *testing.T) {
	tr := NewTracker()
	tr.SetButton(ButtonLeft, true)
	tr.Snapshot()
	// OS-level repeat of an already-down button.
	tr.SetButton(ButtonLeft, true)
	s := tr.Snapshot()
	if s.Clicked(ButtonLeft) {
		t.Fatal("repeated down event must not produce a new press edge")
	}
}
