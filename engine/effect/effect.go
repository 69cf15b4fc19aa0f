package effect

import (
	"log/slog"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cursorfx/cursorfx/engine/capture"
	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/renderer"
	"github.com/cursorfx/cursorfx/engine/settings"
)

// Context carries the engine services an effect may use during Initialize and
// Render. The same Context value is passed to every effect in a frame.
type Context struct {
	// Renderer is the rendering system all GPU resources are created through.
	Renderer renderer.Renderer
	// Capture is the screen capture provider, nil when capture is unavailable.
	Capture capture.Provider
	// Logger is the structured logger scoped to the engine.
	Logger *slog.Logger
	// Workers is the engine's shared worker pool for fanning large simulation
	// updates across cores, nil when no pool is configured. Effects that cache
	// it must still join all submitted work before returning from Update.
	Workers worker.DynamicWorkerPool
	// ViewportWidth and ViewportHeight are the overlay surface dimensions in pixels.
	ViewportWidth, ViewportHeight int
}

// Effect is the contract every visual effect implements. The engine drives the
// lifecycle strictly: Initialize once, then any number of
// Configure/Update/Render cycles, then Dispose once. An effect whose
// Initialize fails is disabled and never receives further calls except
// Dispose.
type Effect interface {
	// TypeID returns the registered type identifier for this effect
	// (e.g. "sparkle"). Shared by all instances of the type.
	//
	// Returns:
	//   - string: the effect type identifier
	TypeID() string

	// InstanceID returns the identifier unique to this instance, assigned by
	// the Registry at creation.
	//
	// Returns:
	//   - uint64: the unique instance identifier
	InstanceID() uint64

	// Schema returns the settings this effect exposes, with defaults and
	// ranges. Stable for the lifetime of the instance.
	//
	// Returns:
	//   - settings.Schema: the effect's configuration schema
	Schema() settings.Schema

	// Initialize creates the effect's GPU resources through ctx.Renderer.
	// Called exactly once before any Update or Render. An error is fatal for
	// this instance only; the engine disables it and other effects continue.
	//
	// Parameters:
	//   - ctx: the engine services and viewport dimensions
	//
	// Returns:
	//   - error: an error if resource creation fails
	Initialize(ctx *Context) error

	// Configure applies a settings snapshot. May be called at any time between
	// Initialize and Dispose, including between Update and Render. Unknown
	// keys are ignored; mistyped values fall back to schema defaults.
	//
	// Parameters:
	//   - cfg: the settings to apply
	Configure(cfg settings.Config)

	// Update advances the effect's simulation by dt using the frame's cursor
	// snapshot. Never called before Initialize succeeds or after Dispose.
	//
	// Parameters:
	//   - dt: elapsed time since the previous frame in seconds
	//   - cur: the cursor snapshot for this frame
	Update(dt float32, cur cursor.State)

	// Render encodes this effect's draw calls into the current frame. Called
	// between the engine's BeginFrame and EndFrame, in effect order.
	//
	// Parameters:
	//   - ctx: the engine services and viewport dimensions
	//
	// Returns:
	//   - error: an error if the effect could not render; the frame continues
	//     with the remaining effects
	Render(ctx *Context) error

	// OnViewportChanged notifies the effect that the overlay surface was
	// resized so it can recompute projection data.
	//
	// Parameters:
	//   - width: the new viewport width in pixels
	//   - height: the new viewport height in pixels
	OnViewportChanged(width, height int)

	// RequiresContinuousCapture reports whether this effect samples the screen
	// texture every frame. The engine uses the OR across enabled effects to
	// pick the capture acquire mode.
	//
	// Returns:
	//   - bool: true if fresh screen content is needed every frame
	RequiresContinuousCapture() bool

	// Dispose releases the effect's GPU resources. Safe to call more than
	// once, and safe to call even when Initialize failed.
	Dispose()
}
