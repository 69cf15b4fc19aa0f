package effects

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/effect"
	"github.com/cursorfx/cursorfx/engine/renderer/bind_group_provider"
	"github.com/cursorfx/cursorfx/engine/renderer/pipeline"
	"github.com/cursorfx/cursorfx/engine/renderer/shader"
	"github.com/cursorfx/cursorfx/engine/settings"
	"github.com/cursorfx/cursorfx/engine/simulation"
	"golang.org/x/image/math/f32"
)

const orbitCapacity = 256

// orbitEffect keeps a swarm of long-lived particles circling the cursor. The
// attractor's radial pull and tangential push balance against damping, so the
// swarm settles into orbits instead of collapsing onto the cursor or flying
// off. Particles respawn near the cursor as old ones expire.
type orbitEffect struct {
	effect.Base

	pool      *simulation.Pool
	attractor simulation.Attractor
	instances []particleInstance

	mesh  bind_group_provider.BindGroupProvider
	group bind_group_provider.BindGroupProvider
	key   string

	viewport [2]float32
	cursorAt f32.Vec2

	count       int
	respawnRate float32
	lifetime    simulation.ScalarRange
	size        simulation.ScalarRange
	spawnRadius float32
	colors      simulation.ColorRange
}

var _ effect.Effect = &orbitEffect{}

// NewOrbit creates an orbit effect instance with default settings applied.
//
// Parameters:
//   - instanceID: the unique instance identifier assigned by the registry
//
// Returns:
//   - effect.Effect: the new orbit instance
func NewOrbit(instanceID uint64) effect.Effect {
	e := &orbitEffect{
		Base:      effect.NewBase("orbit", instanceID),
		pool:      simulation.NewPool(orbitCapacity, int64(instanceID)),
		instances: make([]particleInstance, 0, orbitCapacity),
	}
	e.Configure(e.Schema().Defaults())
	return e
}

func (e *orbitEffect) Schema() settings.Schema {
	return settings.Schema{
		{Key: "count", Label: "Particle count", Default: settings.Int(48), Min: 1, Max: 256, Step: 1},
		{Key: "strength", Label: "Pull strength", Default: settings.Float(900), Min: -3000, Max: 3000, Step: 50},
		{Key: "tangential", Label: "Orbit push", Default: settings.Float(500), Min: -2000, Max: 2000, Step: 50},
		{Key: "damping", Label: "Damping", Default: settings.Float(1.2), Min: 0, Max: 10, Step: 0.1},
		{Key: "falloff", Label: "Falloff radius", Default: settings.Float(300), Min: 0, Max: 2000, Step: 10},
		{Key: "lifetime_min", Label: "Lifetime min", Default: settings.Float(2), Min: 0.2, Max: 20, Step: 0.2},
		{Key: "lifetime_max", Label: "Lifetime max", Default: settings.Float(5), Min: 0.2, Max: 20, Step: 0.2},
		{Key: "size_min", Label: "Size min", Default: settings.Float(3), Min: 1, Max: 64, Step: 1},
		{Key: "size_max", Label: "Size max", Default: settings.Float(6), Min: 1, Max: 64, Step: 1},
		{Key: "spawn_radius", Label: "Spawn radius", Default: settings.Float(80), Min: 0, Max: 500, Step: 5},
		{Key: "color_from", Label: "Color from", Default: settings.Color(f32.Vec4{0.55, 0.65, 1, 1})},
		{Key: "color_to", Label: "Color to", Default: settings.Color(f32.Vec4{1, 0.6, 0.9, 1})},
	}
}

func (e *orbitEffect) Configure(cfg settings.Config) {
	cfg = cfg.Clone()
	e.count = cfg.IntClamped("count", 48, 1, orbitCapacity)
	e.attractor = simulation.Attractor{
		Strength:   cfg.FloatClamped("strength", 900, -3000, 3000),
		Tangential: cfg.FloatClamped("tangential", 500, -2000, 2000),
		Damping:    cfg.FloatClamped("damping", 1.2, 0, 10),
		Falloff:    cfg.FloatClamped("falloff", 300, 0, 2000),
	}
	e.lifetime = scalarRangeFromConfig(cfg, "lifetime_min", "lifetime_max", 2, 5, 0.2, 20)
	e.size = scalarRangeFromConfig(cfg, "size_min", "size_max", 3, 6, 1, 64)
	e.spawnRadius = cfg.FloatClamped("spawn_radius", 80, 0, 500)
	e.colors = simulation.ColorRange{
		From: cfg.Color("color_from", f32.Vec4{0.55, 0.65, 1, 1}),
		To:   cfg.Color("color_to", f32.Vec4{1, 0.6, 0.9, 1}),
	}
	// Respawn fast enough to hold the target population against the mean
	// lifetime, with headroom for sampling variance.
	mean := (e.lifetime.Min + e.lifetime.Max) / 2
	e.respawnRate = float32(e.count) / mean * 1.1
}

func (e *orbitEffect) Initialize(ctx *effect.Context) error {
	e.key = fmt.Sprintf("orbit-%d", e.InstanceID())
	e.viewport = [2]float32{float32(ctx.ViewportWidth), float32(ctx.ViewportHeight)}

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
		return fmt.Errorf("orbit %d: %w", e.InstanceID(), err)
	}

	e.mesh = bind_group_provider.NewBindGroupProvider(e.key + " mesh")
	if err := initQuadMesh(ctx.Renderer, e.mesh); err != nil {
		return fmt.Errorf("orbit %d: %w", e.InstanceID(), err)
	}

	e.group = bind_group_provider.NewBindGroupProvider(e.key + " particles")
	sizes := map[int]uint64{instancesBinding: orbitCapacity * particleInstanceStride}
	if err := ctx.Renderer.InitBindGroup(e.group, particleBindGroupLayout(), nil, sizes); err != nil {
		return fmt.Errorf("orbit %d: %w", e.InstanceID(), err)
	}

	e.MarkInitialized()
	return nil
}

func (e *orbitEffect) Update(dt float32, cur cursor.State) {
	if !e.Initialized() || e.Disposed() {
		return
	}
	e.cursorAt = cur.Position

	// Attractor integrates position, so age without the pool's own integrator.
	simulation.AgeOnly(e.pool, dt, 1)
	e.attractor.StepAll(e.pool, cur.Position, dt)

	if e.pool.Alive() < e.count {
		e.pool.SpawnRate(e.respawnRate, dt, e.spawnAround(cur.Position))
	} else {
		e.pool.ResetRateCarry()
	}
}

// spawnAround places new particles on a disc around the cursor with a small
// tangential kick so they enter orbit instead of falling straight in.
func (e *orbitEffect) spawnAround(pos f32.Vec2) simulation.SpawnFunc {
	return func(p *simulation.Particle, rng *rand.Rand) {
		angle := rng.Float32() * 2 * math.Pi
		radius := e.spawnRadius * (0.5 + rng.Float32()*0.5)
		sin, cos := math.Sincos(float64(angle))
		p.Position = f32.Vec2{
			pos[0] + float32(cos)*radius,
			pos[1] + float32(sin)*radius,
		}
		// Tangent direction for the initial kick.
		speed := float32(math.Sqrt(float64(radius))) * 8
		p.Velocity = f32.Vec2{-float32(sin) * speed, float32(cos) * speed}
		p.Age = 0
		p.MaxAge = e.lifetime.Sample(rng)
		p.Size = e.size.Sample(rng)
		p.Phase = rng.Float32() * 2 * math.Pi
		p.Color = e.colors.Sample(rng)
	}
}

func (e *orbitEffect) Render(ctx *effect.Context) error {
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
			Rotation: p.Phase,
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

func (e *orbitEffect) OnViewportChanged(width, height int) {
	e.viewport = [2]float32{float32(width), float32(height)}
}

func (e *orbitEffect) RequiresContinuousCapture() bool {
	return false
}

func (e *orbitEffect) Dispose() {
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
