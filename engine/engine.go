package engine

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cursorfx/cursorfx/engine/capture"
	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/effect"
	"github.com/cursorfx/cursorfx/engine/effects"
	"github.com/cursorfx/cursorfx/engine/profiler"
	"github.com/cursorfx/cursorfx/engine/renderer"
	"github.com/cursorfx/cursorfx/engine/settings"
	"github.com/cursorfx/cursorfx/engine/window"
)

// effectEntry tracks one registered effect instance and its frame state.
type effectEntry struct {
	// order is the render order key; lower draws first.
	order int
	// seq breaks order ties by insertion, preserved through the stable sort.
	seq int
	eff effect.Effect
	// enabled gates Update and Render. Cleared permanently when Initialize fails.
	enabled bool
	// initialized flips after the first-frame Initialize attempt, pass or fail.
	initialized bool
}

// engine implements the Engine interface.
// Coordinates the frame, tick, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	capture  capture.Provider
	cursor   *cursor.Tracker
	registry *effect.Registry
	logger   *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	mu      sync.Mutex
	entries []*effectEntry
	nextSeq int

	viewportW, viewportH int
	// resizePending marks a viewport change recorded by the window callback
	// and not yet delivered to effects on the frame goroutine.
	resizePending bool

	// workers is the shared pool for effects that fan simulation updates out
	// across cores. Workers idle-exit between bursts of large-pool work.
	workers worker.DynamicWorkerPool

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine drives the overlay: it owns the frame loop that snapshots the
// cursor, updates every enabled effect in render order, captures the screen
// when any active effect needs it, and records one render pass.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer effects are initialized against.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Registry returns the effect type registry.
	//
	// Returns:
	//   - *effect.Registry: the registry holding the available effect types
	Registry() *effect.Registry

	// AddEffect creates an instance of the named effect type and schedules it
	// at the given render order. Lower orders draw first; equal orders draw
	// in insertion order. The instance initializes lazily on its first frame.
	//
	// Parameters:
	//   - order: the render order key
	//   - typeID: the registered effect type
	//
	// Returns:
	//   - effect.Effect: the created instance, for Configure calls
	//   - error: an error if the type is not registered
	AddEffect(order int, typeID string) (effect.Effect, error)

	// RemoveEffect unschedules and disposes the instance with the given id.
	// No-op when the id is unknown.
	//
	// Parameters:
	//   - instanceID: the instance to remove
	RemoveEffect(instanceID uint64)

	// SetEffectEnabled toggles an instance without disposing it. Disabled
	// effects receive no Update or Render calls.
	//
	// Parameters:
	//   - instanceID: the instance to toggle
	//   - enabled: the new state
	SetEffectEnabled(instanceID uint64, enabled bool)

	// ConfigureEffect applies a configuration to the instance with the given
	// id, keys absent from cfg keep their current values per the effect's
	// tolerant getters.
	//
	// Parameters:
	//   - instanceID: the instance to configure
	//   - cfg: the configuration to apply
	//
	// Returns:
	//   - error: an error if the id is unknown
	ConfigureEffect(instanceID uint64, cfg settings.Config) error

	// EnableProfiler enables frame statistics logging.
	EnableProfiler()

	// DisableProfiler disables frame statistics logging.
	DisableProfiler()

	// SetTickRate sets the logic tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each logic tick, outside
	// the frame loop.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the frame loop (default; VSync still paces presentation).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Run starts the frame loop (blocks until the window closes).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// The built-in effect types are pre-registered; a window and renderer must be
// supplied via options before Run.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		cursor:          &cursor.Tracker{},
		registry:        effect.NewRegistry(),
		logger:          slog.New(slog.DiscardHandler),
		engineTickRate:  time.Second / 60,
	}

	if err := effects.RegisterAll(e.registry); err != nil {
		panic(fmt.Sprintf("failed to register built-in effects: %v", err))
	}

	for _, opt := range options {
		opt(e)
	}

	// Queue size of 256 holds the chunk fan-out of the largest effect pools
	// with headroom; idle workers exit after a second without pool work.
	e.workers = worker.NewDynamicWorkerPool(max(runtime.NumCPU()-1, 1), 256, 1*time.Second)

	e.profiler = profiler.NewProfiler(e.logger)

	if e.window != nil {
		e.viewportW = e.window.Width()
		e.viewportH = e.window.Height()

		e.window.SetMouseMoveCallback(func(x, y float32) {
			e.cursor.SetPosition(x, y)
		})
		e.window.SetMouseButtonCallback(func(button int, pressed bool) {
			switch button {
			case 0:
				e.cursor.SetButton(cursor.ButtonLeft, pressed)
			case 1:
				e.cursor.SetButton(cursor.ButtonRight, pressed)
			case 2:
				e.cursor.SetButton(cursor.ButtonMiddle, pressed)
			}
		})
		e.window.SetResizeCallback(func(width, height int) {
			// Effects are only touched from the frame goroutine; record the
			// size here and let frame() deliver OnViewportChanged. The
			// renderer reconfigures immediately, it locks internally.
			e.mu.Lock()
			e.viewportW, e.viewportH = width, height
			e.resizePending = true
			e.mu.Unlock()

			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Registry() *effect.Registry {
	return e.registry
}

func (e *engine) AddEffect(order int, typeID string) (effect.Effect, error) {
	eff, err := e.registry.Create(typeID)
	if err != nil {
		return nil, err
	}

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

	e.logger.Info("effect added",
		slog.String("type", typeID),
		slog.Uint64("instance", eff.InstanceID()),
		slog.Int("order", order),
	)
	return eff, nil
}

func (e *engine) RemoveEffect(instanceID uint64) {
	e.mu.Lock()
	var removed effect.Effect
	for i, entry := range e.entries {
		if entry.eff.InstanceID() == instanceID {
			removed = entry.eff
			e.entries = append(e.entries[:i], e.entries[i+1:]...)
			break
		}
	}
	e.mu.Unlock()

	if removed != nil {
		removed.Dispose()
	}
}

func (e *engine) SetEffectEnabled(instanceID uint64, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range e.entries {
		if entry.eff.InstanceID() == instanceID {
			entry.enabled = enabled
			return
		}
	}
}

func (e *engine) ConfigureEffect(instanceID uint64, cfg settings.Config) error {
	e.mu.Lock()
	var target effect.Effect
	for _, entry := range e.entries {
		if entry.eff.InstanceID() == instanceID {
			target = entry.eff
			break
		}
	}
	e.mu.Unlock()

	if target == nil {
		return fmt.Errorf("no effect instance %d", instanceID)
	}
	target.Configure(cfg)
	return nil
}

// snapshotLocked copies the entry slice so the frame loop can iterate without
// holding the lock across effect calls. Callers must hold e.mu.
func (e *engine) snapshotLocked() []*effectEntry {
	out := make([]*effectEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick and frame goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleTick()
	go e.handleFrame()
}

// handleTick runs the fixed-rate logic tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic
// rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleFrame runs the frame loop in its own goroutine: cursor snapshot,
// effect updates in render order, one bounded capture, then a single render
// pass. Recovers from panics to avoid crashing the process and signals quit
// on recovery. Disposes all effects on exit so GPU teardown happens on the
// frame goroutine.
func (e *engine) handleFrame() {
	defer e.wg.Done()
	defer e.disposeAll()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame goroutine recovered from panic", slog.Any("panic", r))
			e.signalQuit()
		}
	}()

	lastFrame := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastFrame).Seconds())
			lastFrame = now

			e.frame(dt)

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.frameLimit > 0 {
				elapsed := time.Since(lastFrame)
				if remaining := e.frameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// frame executes one frame: initialize pending effects, update all enabled
// effects in order, capture once, render all in order. A failing effect is
// logged and skipped; the frame always completes for the others.
func (e *engine) frame(dt float32) {
	if e.renderer == nil {
		return
	}

	e.mu.Lock()
	entries := e.snapshotLocked()
	w, h := e.viewportW, e.viewportH
	resized := e.resizePending
	e.resizePending = false
	e.mu.Unlock()

	ctx := &effect.Context{
		Renderer:       e.renderer,
		Capture:        e.capture,
		Logger:         e.logger,
		Workers:        e.workers,
		ViewportWidth:  w,
		ViewportHeight: h,
	}

	// Viewport changes recorded by the window callback are delivered here so
	// effects only ever run on the frame goroutine.
	if resized {
		for _, entry := range entries {
			if entry.initialized && entry.enabled {
				entry.eff.OnViewportChanged(w, h)
			}
		}
	}

	// Lazy first-frame initialization keeps GPU work on the frame goroutine
	// even when AddEffect is called from elsewhere.
	for _, entry := range entries {
		if entry.initialized || !entry.enabled {
			continue
		}
		entry.initialized = true
		if err := entry.eff.Initialize(ctx); err != nil {
			entry.enabled = false
			e.logger.Error("effect initialization failed, instance disabled",
				slog.String("type", entry.eff.TypeID()),
				slog.Uint64("instance", entry.eff.InstanceID()),
				slog.String("error", err.Error()),
			)
		}
	}

	cur := e.cursor.Snapshot()

	continuous := false
	for _, entry := range entries {
		if !entry.enabled || !entry.initialized {
			continue
		}
		entry.eff.Update(dt, cur)
		if entry.eff.RequiresContinuousCapture() {
			continuous = true
		}
	}

	// One bounded capture per frame; effects that don't sample the screen
	// never pay for it beyond the best-effort poll.
	if e.capture != nil {
		mode := capture.AcquireBestEffort
		if continuous {
			mode = capture.AcquireContinuous
		}
		e.capture.CaptureFrame(mode)
	}

	if err := e.renderer.BeginFrame(); err != nil {
		e.logger.Warn("frame skipped", slog.String("error", err.Error()))
		return
	}
	for _, entry := range entries {
		if !entry.enabled || !entry.initialized {
			continue
		}
		if err := entry.eff.Render(ctx); err != nil {
			e.logger.Error("effect render failed",
				slog.String("type", entry.eff.TypeID()),
				slog.Uint64("instance", entry.eff.InstanceID()),
				slog.String("error", err.Error()),
			)
		}
	}
	e.renderer.EndFrame()
	e.renderer.Present()
}

// disposeAll disposes every registered effect and the capture provider.
// Runs on the frame goroutine during shutdown.
func (e *engine) disposeAll() {
	e.mu.Lock()
	entries := e.snapshotLocked()
	e.entries = nil
	e.mu.Unlock()

	for _, entry := range entries {
		entry.eff.Dispose()
	}
	if e.capture != nil {
		e.capture.Dispose()
	}
}

// EnableProfiler enables frame statistics logging.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables frame statistics logging.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the logic tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Send to channel for immediate update in running tick loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each logic tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the frame loop.
func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Second / time.Duration(fps)
}
