package effects

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/effect"
	"github.com/cursorfx/cursorfx/engine/renderer/bind_group_provider"
	"github.com/cursorfx/cursorfx/engine/renderer/pipeline"
	"github.com/cursorfx/cursorfx/engine/renderer/shader"
	"github.com/cursorfx/cursorfx/engine/settings"
	"github.com/cursorfx/cursorfx/engine/simulation"
	"golang.org/x/image/math/f32"
)

// sparkleCapacity sizes the pool for sustained max spawn rate plus click
// bursts, and is large enough that aging fans out over the shared worker pool.
const sparkleCapacity = 4096

// sparkleEffect spawns short-lived glitter particles while the cursor moves
// and bursts a cluster on click. Particles drift with their spawn velocity,
// additively blended so overlapping sparks brighten.
type sparkleEffect struct {
	effect.Base

	pool      *simulation.Pool
	instances []particleInstance

	mesh  bind_group_provider.BindGroupProvider
	group bind_group_provider.BindGroupProvider
	key   string

	// workers is cached from the initialization context; aging a pool this
	// size is worth fanning out. Nil falls back to the serial path.
	workers worker.DynamicWorkerPool

	viewport [2]float32
	cursorAt f32.Vec2

	spawnRate  float32
	burstCount int
	lifetime   simulation.ScalarRange
	size       simulation.ScalarRange
	speed      simulation.ScalarRange
	colors     simulation.ColorRange
	gravity    float32
}

var _ effect.Effect = &sparkleEffect{}

// NewSparkle creates a sparkle effect instance with default settings applied.
//
// Parameters:
//   - instanceID: the unique instance identifier assigned by the registry
//
// Returns:
//   - effect.Effect: the new sparkle instance
func NewSparkle(instanceID uint64) effect.Effect {
	e := &sparkleEffect{
		Base:      effect.NewBase("sparkle", instanceID),
		pool:      simulation.NewPool(sparkleCapacity, int64(instanceID)),
		instances: make([]particleInstance, 0, sparkleCapacity),
	}
	e.Configure(e.Schema().Defaults())
	return e
}

func (e *sparkleEffect) Schema() settings.Schema {
	return settings.Schema{
		{Key: "spawn_rate", Label: "Spawn rate", Default: settings.Float(120), Min: 0, Max: 600, Step: 10},
		{Key: "burst_count", Label: "Click burst", Default: settings.Int(24), Min: 0, Max: 200, Step: 1},
		{Key: "lifetime_min", Label: "Lifetime min", Default: settings.Float(0.4), Min: 0.05, Max: 5, Step: 0.05},
		{Key: "lifetime_max", Label: "Lifetime max", Default: settings.Float(1.1), Min: 0.05, Max: 5, Step: 0.05},
		{Key: "size_min", Label: "Size min", Default: settings.Float(2), Min: 1, Max: 64, Step: 1},
		{Key: "size_max", Label: "Size max", Default: settings.Float(7), Min: 1, Max: 64, Step: 1},
		{Key: "speed_min", Label: "Speed min", Default: settings.Float(20), Min: 0, Max: 1000, Step: 5},
		{Key: "speed_max", Label: "Speed max", Default: settings.Float(140), Min: 0, Max: 1000, Step: 5},
		{Key: "color_from", Label: "Color from", Default: settings.Color(f32.Vec4{1, 0.92, 0.55, 1})},
		{Key: "color_to", Label: "Color to", Default: settings.Color(f32.Vec4{0.65, 0.85, 1, 1})},
		{Key: "gravity", Label: "Gravity", Default: settings.Float(60), Min: -500, Max: 500, Step: 10},
	}
}

func (e *sparkleEffect) Configure(cfg settings.Config) {
	cfg = cfg.Clone()
	e.spawnRate = cfg.FloatClamped("spawn_rate", 120, 0, 600)
	e.burstCount = cfg.IntClamped("burst_count", 24, 0, 200)
	e.lifetime = scalarRangeFromConfig(cfg, "lifetime_min", "lifetime_max", 0.4, 1.1, 0.05, 5)
	e.size = scalarRangeFromConfig(cfg, "size_min", "size_max", 2, 7, 1, 64)
	e.speed = scalarRangeFromConfig(cfg, "speed_min", "speed_max", 20, 140, 0, 1000)
	e.colors = simulation.ColorRange{
		From: cfg.Color("color_from", f32.Vec4{1, 0.92, 0.55, 1}),
		To:   cfg.Color("color_to", f32.Vec4{0.65, 0.85, 1, 1}),
	}
	e.gravity = cfg.FloatClamped("gravity", 60, -500, 500)
}

func (e *sparkleEffect) Initialize(ctx *effect.Context) error {
	e.key = fmt.Sprintf("sparkle-%d", e.InstanceID())
	e.viewport = [2]float32{float32(ctx.ViewportWidth), float32(ctx.ViewportHeight)}
	e.workers = ctx.Workers

	vs := shader.NewShader(e.key+"-vs", shader.ShaderTypeVertex, particleVertexWGSL,
		shader.WithVertexLayouts(quadVertexLayout()),
		shader.WithBindGroupLayout(0, particleBindGroupLayout()),
	)
	fs := shader.NewShader(e.key+"-fs", shader.ShaderTypeFragment, softDotFragmentWGSL)
	p := pipeline.NewPipeline(e.key, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithAdditiveBlend(),
	)
	if err := ctx.Renderer.RegisterPipelines(p); err != nil {
		return fmt.Errorf("sparkle %d: %w", e.InstanceID(), err)
	}

	e.mesh = bind_group_provider.NewBindGroupProvider(e.key + " mesh")
	if err := initQuadMesh(ctx.Renderer, e.mesh); err != nil {
		return fmt.Errorf("sparkle %d: %w", e.InstanceID(), err)
	}

	e.group = bind_group_provider.NewBindGroupProvider(e.key + " particles")
	sizes := map[int]uint64{instancesBinding: sparkleCapacity * particleInstanceStride}
	if err := ctx.Renderer.InitBindGroup(e.group, particleBindGroupLayout(), nil, sizes); err != nil {
		return fmt.Errorf("sparkle %d: %w", e.InstanceID(), err)
	}

	e.MarkInitialized()
	return nil
}

func (e *sparkleEffect) Update(dt float32, cur cursor.State) {
	if !e.Initialized() || e.Disposed() {
		return
	}
	e.cursorAt = cur.Position

	if e.gravity != 0 {
		slots := e.pool.Slots()
		for i := range slots {
			if slots[i].Alive() {
				slots[i].Velocity[1] += e.gravity * dt
			}
		}
	}
	e.pool.UpdateChunked(e.workers, dt, 1)

	if cur.Moved() {
		e.pool.SpawnRate(e.spawnRate, dt, e.spawnAt(cur.Position, 0))
	} else {
		// A stationary cursor must not bank spawn credit for the next move.
		e.pool.ResetRateCarry()
	}
	if cur.Clicked(cursor.ButtonLeft) {
		e.pool.SpawnBurst(e.burstCount, e.spawnAt(cur.Position, 1))
	}
}

// spawnAt builds a spawn function emitting from pos. extraSpeed scales the
// sampled speed so click bursts fly faster than move sparks.
func (e *sparkleEffect) spawnAt(pos f32.Vec2, extraSpeed float32) simulation.SpawnFunc {
	return func(p *simulation.Particle, rng *rand.Rand) {
		angle := rng.Float32() * 2 * math.Pi
		speed := e.speed.Sample(rng) * (1 + extraSpeed)
		p.Position = pos
		p.Velocity = f32.Vec2{
			float32(math.Cos(float64(angle))) * speed,
			float32(math.Sin(float64(angle))) * speed,
		}
		p.Age = 0
		p.MaxAge = e.lifetime.Sample(rng)
		p.Size = e.size.Sample(rng)
		p.Phase = rng.Float32() * 2 * math.Pi
		p.Color = e.colors.Sample(rng)
	}
}

func (e *sparkleEffect) Render(ctx *effect.Context) error {
	if err := e.Guard(); err != nil {
		return err
	}

	e.instances = e.instances[:0]
	slots := e.pool.Slots()
	for i := range slots {
		p := &slots[i]
		if !p.Alive() {
			continue
		}
		c := p.Color
		c[3] *= p.Fade()
		e.instances = append(e.instances, particleInstance{
			Position: p.Position,
			Size:     p.Size,
			Rotation: p.Phase + p.Age*2,
			Color:    c,
		})
	}
	if len(e.instances) == 0 {
		return nil
	}

	params := frameParams{Viewport: e.viewport, Cursor: e.cursorAt}
	ctx.Renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: e.group, Binding: paramsBinding, Data: packParams(params)},
		{Provider: e.group, Binding: instancesBinding, Data: packInstances(e.instances)},
	})
	return ctx.Renderer.DrawCall(e.key, e.mesh, uint32(len(e.instances)), []bind_group_provider.BindGroupProvider{e.group})
}

func (e *sparkleEffect) OnViewportChanged(width, height int) {
	e.viewport = [2]float32{float32(width), float32(height)}
}

func (e *sparkleEffect) RequiresContinuousCapture() bool {
	return false
}

func (e *sparkleEffect) Dispose() {
	if !e.BeginDispose() {
		return
	}
	if e.mesh != nil {
		e.mesh.Release()
	}
	if e.group != nil {
		e.group.Release()
	}
}
