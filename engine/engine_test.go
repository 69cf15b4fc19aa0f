package engine

import (
	"errors"
	"sort"
	"testing"

	"github.com/cursorfx/cursorfx/engine/capture"
	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/effect"
	"github.com/cursorfx/cursorfx/engine/renderer"
	"github.com/cursorfx/cursorfx/engine/settings"
)

// fakeRenderer embeds the interface and overrides only the frame lifecycle;
// calling anything else is a test bug and panics on the nil embed.
type fakeRenderer struct {
	renderer.Renderer
	begins, ends, presents int
	beginErr               error
}

func (f *fakeRenderer) BeginFrame() error {
	f.begins++
	return f.beginErr
}

func (f *fakeRenderer) EndFrame() { f.ends++ }

func (f *fakeRenderer) Present() { f.presents++ }

func (f *fakeRenderer) Resize(width, height int) {}

type fakeCapture struct {
	capture.Provider
	modes    []capture.AcquireMode
	disposed bool
}

func (f *fakeCapture) CaptureFrame(mode capture.AcquireMode) bool {
	f.modes = append(f.modes, mode)
	return true
}

func (f *fakeCapture) Dispose() { f.disposed = true }

// scriptEffect records lifecycle calls into a shared journal so tests can
// assert cross-instance ordering.
type scriptEffect struct {
	effect.Base
	journal    *[]string
	name       string
	initErr    error
	renderErr  error
	continuous bool
	disposes   int

	sawWorkers           bool
	viewportW, viewportH int
}

var _ effect.Effect = &scriptEffect{}

func newScriptEffect(name string, id uint64, journal *[]string) *scriptEffect {
	return &scriptEffect{
		Base:    effect.NewBase(name, id),
		journal: journal,
		name:    name,
	}
}

func (s *scriptEffect) Schema() settings.Schema { return nil }

func (s *scriptEffect) Configure(cfg settings.Config) {}

func (s *scriptEffect) Initialize(ctx *effect.Context) error {
	if s.initErr != nil {
		return s.initErr
	}
	s.sawWorkers = ctx.Workers != nil
	s.MarkInitialized()
	return nil
}

func (s *scriptEffect) Update(dt float32, cur cursor.State) {
	*s.journal = append(*s.journal, "update:"+s.name)
}

func (s *scriptEffect) Render(ctx *effect.Context) error {
	*s.journal = append(*s.journal, "render:"+s.name)
	return s.renderErr
}

func (s *scriptEffect) OnViewportChanged(width, height int) {
	*s.journal = append(*s.journal, "viewport:"+s.name)
	s.viewportW, s.viewportH = width, height
}

func (s *scriptEffect) RequiresContinuousCapture() bool { return s.continuous }

func (s *scriptEffect) Dispose() {
	if !s.BeginDispose() {
		return
	}
	s.disposes++
}

// addScripted injects a pre-built effect entry, bypassing the registry.
func addScripted(e *engine, order int, eff effect.Effect) {
	e.mu.Lock()
	e.entries = append(e.entries, &effectEntry{
		order:   order,
		seq:     e.nextSeq,
		eff:     eff,
		enabled: true,
	})
	e.nextSeq++
	sort.SliceStable(e.entries, func(i, j int) bool {
		if e.entries[i].order != e.entries[j].order {
			return e.entries[i].order < e.entries[j].order
		}
		return e.entries[i].seq < e.entries[j].seq
	})
	e.mu.Unlock()
}

func newTestEngine(r renderer.Renderer, c capture.Provider) *engine {
	opts := []EngineBuilderOption{WithRenderer(r)}
	if c != nil {
		opts = append(opts, WithCapture(c))
	}
	return NewEngine(opts...).(*engine)
}

func TestFrameOrderIsStableByOrderThenInsertion(t *testing.T) {
	var journal []string
	r := &fakeRenderer{}
	e := newTestEngine(r, nil)

	addScripted(e, 2, newScriptEffect("late", 1, &journal))
	addScripted(e, 1, newScriptEffect("first", 2, &journal))
	addScripted(e, 1, newScriptEffect("second", 3, &journal))

	e.frame(0.016)

	want := []string{
		"update:first", "update:second", "update:late",
		"render:first", "render:second", "render:late",
	}
	if len(journal) != len(want) {
		t.Fatalf("journal = %v, want %v", journal, want)
	}
	for i := range want {
		if journal[i] != want[i] {
			t.Fatalf("journal = %v, want %v", journal, want)
		}
	}
	if r.begins != 1 || r.ends != 1 || r.presents != 1 {
		t.Errorf("frame lifecycle: begins=%d ends=%d presents=%d, want 1 each", r.begins, r.ends, r.presents)
	}
}

func TestFailedInitializeDisablesInstanceOnly(t *testing.T) {
	var journal []string
	e := newTestEngine(&fakeRenderer{}, nil)

	bad := newScriptEffect("bad", 1, &journal)
	bad.initErr = errors.New("no gpu memory")
	good := newScriptEffect("good", 2, &journal)

	addScripted(e, 1, bad)
	addScripted(e, 2, good)

	e.frame(0.016)
	e.frame(0.016)

	for _, entry := range journal {
		if entry == "update:bad" || entry == "render:bad" {
			t.Fatalf("disabled effect was driven: %v", journal)
		}
	}
	count := 0
	for _, entry := range journal {
		if entry == "render:good" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("good effect rendered %d times, want 2", count)
	}
}

func TestCaptureModeFollowsEffectRequirements(t *testing.T) {
	var journal []string
	c := &fakeCapture{}
	e := newTestEngine(&fakeRenderer{}, c)

	plain := newScriptEffect("plain", 1, &journal)
	addScripted(e, 1, plain)
	e.frame(0.016)

	screen := newScriptEffect("screen", 2, &journal)
	screen.continuous = true
	addScripted(e, 2, screen)
	e.frame(0.016)

	if len(c.modes) != 2 {
		t.Fatalf("capture called %d times, want 2", len(c.modes))
	}
	if c.modes[0] != capture.AcquireBestEffort {
		t.Errorf("frame 1 mode = %v, want best-effort", c.modes[0])
	}
	if c.modes[1] != capture.AcquireContinuous {
		t.Errorf("frame 2 mode = %v, want continuous", c.modes[1])
	}
}

func TestRenderErrorDoesNotAbortFrame(t *testing.T) {
	var journal []string
	r := &fakeRenderer{}
	e := newTestEngine(r, nil)

	failing := newScriptEffect("failing", 1, &journal)
	failing.renderErr = errors.New("pipeline lost")
	after := newScriptEffect("after", 2, &journal)

	addScripted(e, 1, failing)
	addScripted(e, 2, after)

	e.frame(0.016)

	rendered := false
	for _, entry := range journal {
		if entry == "render:after" {
			rendered = true
		}
	}
	if !rendered {
		t.Error("effect after the failing one was not rendered")
	}
	if r.ends != 1 || r.presents != 1 {
		t.Errorf("frame not completed: ends=%d presents=%d", r.ends, r.presents)
	}
}

func TestBeginFrameErrorSkipsRendering(t *testing.T) {
	var journal []string
	r := &fakeRenderer{beginErr: errors.New("surface lost")}
	e := newTestEngine(r, nil)

	addScripted(e, 1, newScriptEffect("only", 1, &journal))
	e.frame(0.016)

	for _, entry := range journal {
		if entry == "render:only" {
			t.Fatal("rendered despite BeginFrame failure")
		}
	}
	if r.ends != 0 || r.presents != 0 {
		t.Errorf("EndFrame/Present called after failed BeginFrame")
	}
}

func TestSetEffectEnabledSuppressesCalls(t *testing.T) {
	var journal []string
	e := newTestEngine(&fakeRenderer{}, nil)

	eff := newScriptEffect("toggled", 7, &journal)
	addScripted(e, 1, eff)
	e.frame(0.016)

	e.SetEffectEnabled(7, false)
	e.frame(0.016)

	count := 0
	for _, entry := range journal {
		if entry == "render:toggled" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("rendered %d times, want 1 (second frame disabled)", count)
	}
}

func TestRemoveEffectDisposes(t *testing.T) {
	var journal []string
	e := newTestEngine(&fakeRenderer{}, nil)

	eff := newScriptEffect("gone", 9, &journal)
	addScripted(e, 1, eff)
	e.frame(0.016)

	e.RemoveEffect(9)
	if eff.disposes != 1 {
		t.Errorf("disposes = %d, want 1", eff.disposes)
	}
	e.frame(0.016)
	count := 0
	for _, entry := range journal {
		if entry == "render:gone" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("removed effect rendered %d times, want 1", count)
	}
}

func TestDisposeAllTearsDownEffectsAndCapture(t *testing.T) {
	var journal []string
	c := &fakeCapture{}
	e := newTestEngine(&fakeRenderer{}, c)

	eff := newScriptEffect("owned", 3, &journal)
	addScripted(e, 1, eff)
	e.frame(0.016)

	e.disposeAll()
	if eff.disposes != 1 {
		t.Errorf("effect disposes = %d, want 1", eff.disposes)
	}
	if !c.disposed {
		t.Error("capture provider not disposed")
	}
	// disposeAll again is a no-op thanks to idempotent Dispose.
	e.disposeAll()
	if eff.disposes != 1 {
		t.Errorf("effect disposes after repeat = %d, want 1", eff.disposes)
	}
}

func TestAddEffectUsesRegistry(t *testing.T) {
	e := newTestEngine(&fakeRenderer{}, nil)

	eff, err := e.AddEffect(0, "sparkle")
	if err != nil {
		t.Fatalf("AddEffect() error = %v", err)
	}
	if eff.TypeID() != "sparkle" {
		t.Errorf("TypeID = %q, want sparkle", eff.TypeID())
	}

	if _, err := e.AddEffect(0, "does-not-exist"); err == nil {
		t.Error("expected error for unregistered type")
	}
}

func TestFrameContextCarriesWorkerPool(t *testing.T) {
	var journal []string
	e := newTestEngine(&fakeRenderer{}, nil)

	eff := newScriptEffect("pooled", 4, &journal)
	addScripted(e, 1, eff)
	e.frame(0.016)

	if !eff.sawWorkers {
		t.Error("initialization context carried no worker pool")
	}
}

func TestViewportChangeAppliedDuringFrame(t *testing.T) {
	var journal []string
	e := newTestEngine(&fakeRenderer{}, nil)

	eff := newScriptEffect("sized", 5, &journal)
	addScripted(e, 1, eff)
	e.frame(0.016)

	// The window callback only records the new size; effects must see it on
	// the next frame, from the frame goroutine.
	e.mu.Lock()
	e.viewportW, e.viewportH = 800, 600
	e.resizePending = true
	e.mu.Unlock()
	if eff.viewportW != 0 || eff.viewportH != 0 {
		t.Fatal("effect notified outside the frame")
	}

	e.frame(0.016)
	if eff.viewportW != 800 || eff.viewportH != 600 {
		t.Errorf("viewport = %dx%d, want 800x600", eff.viewportW, eff.viewportH)
	}

	// Delivered exactly once, not on every subsequent frame.
	e.frame(0.016)
	count := 0
	for _, entry := range journal {
		if entry == "viewport:sized" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("viewport notifications = %d, want 1", count)
	}
}

func TestConfigureEffectUnknownInstance(t *testing.T) {
	e := newTestEngine(&fakeRenderer{}, nil)
	if err := e.ConfigureEffect(42, settings.Config{}); err == nil {
		t.Error("expected error for unknown instance id")
	}
}
