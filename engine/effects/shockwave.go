package effects

import (
	"fmt"
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

const shockwaveCapacity = 32

// shockwaveEffect bursts expanding rings from the click point. Each ring is a
// single pool slot: the slot's velocity x component carries the expansion
// speed and its age drives the current radius, so the pool only ages and
// never integrates position.
type shockwaveEffect struct {
	effect.Base

	pool      *simulation.Pool
	instances []particleInstance

	mesh  bind_group_provider.BindGroupProvider
	group bind_group_provider.BindGroupProvider
	key   string

	viewport [2]float32
	cursorAt f32.Vec2

	ringCount int
	speed     simulation.ScalarRange
	lifetime  float32
	thickness float32
	color     f32.Vec4
}

var _ effect.Effect = &shockwaveEffect{}

// NewShockwave creates a shockwave effect instance with default settings applied.
//
// Parameters:
//   - instanceID: the unique instance identifier assigned by the registry
//
// Returns:
//   - effect.Effect: the new shockwave instance
func NewShockwave(instanceID uint64) effect.Effect {
	e := &shockwaveEffect{
		Base:      effect.NewBase("shockwave", instanceID),
		pool:      simulation.NewPool(shockwaveCapacity, int64(instanceID)),
		instances: make([]particleInstance, 0, shockwaveCapacity),
	}
	e.Configure(e.Schema().Defaults())
	return e
}

func (e *shockwaveEffect) Schema() settings.Schema {
	return settings.Schema{
		{Key: "ring_count", Label: "Rings per click", Default: settings.Int(3), Min: 1, Max: 8, Step: 1},
		{Key: "speed_min", Label: "Expansion min", Default: settings.Float(250), Min: 10, Max: 2000, Step: 10},
		{Key: "speed_max", Label: "Expansion max", Default: settings.Float(450), Min: 10, Max: 2000, Step: 10},
		{Key: "lifetime", Label: "Lifetime", Default: settings.Float(0.7), Min: 0.1, Max: 3, Step: 0.05},
		{Key: "thickness", Label: "Ring thickness", Default: settings.Float(0.15), Min: 0.02, Max: 0.5, Step: 0.01},
		{Key: "color", Label: "Color", Default: settings.Color(f32.Vec4{1, 1, 1, 0.8})},
	}
}

func (e *shockwaveEffect) Configure(cfg settings.Config) {
	cfg = cfg.Clone()
	e.ringCount = cfg.IntClamped("ring_count", 3, 1, 8)
	e.speed = scalarRangeFromConfig(cfg, "speed_min", "speed_max", 250, 450, 10, 2000)
	e.lifetime = cfg.FloatClamped("lifetime", 0.7, 0.1, 3)
	e.thickness = cfg.FloatClamped("thickness", 0.15, 0.02, 0.5)
	e.color = cfg.Color("color", f32.Vec4{1, 1, 1, 0.8})
}

func (e *shockwaveEffect) Initialize(ctx *effect.Context) error {
	e.key = fmt.Sprintf("shockwave-%d", e.InstanceID())
	e.viewport = [2]float32{float32(ctx.ViewportWidth), float32(ctx.ViewportHeight)}

	vs := shader.NewShader(e.key+"-vs", shader.ShaderTypeVertex, particleVertexWGSL,
		shader.WithVertexLayouts(quadVertexLayout()),
		shader.WithBindGroupLayout(0, particleBindGroupLayout()),
	)
	fs := shader.NewShader(e.key+"-fs", shader.ShaderTypeFragment, ringFragmentWGSL)
	p := pipeline.NewPipeline(e.key, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithAlphaBlend(),
	)
	if err := ctx.Renderer.RegisterPipelines(p); err != nil {
		return fmt.Errorf("shockwave %d: %w", e.InstanceID(), err)
	}

	e.mesh = bind_group_provider.NewBindGroupProvider(e.key + " mesh")
	if err := initQuadMesh(ctx.Renderer, e.mesh); err != nil {
		return fmt.Errorf("shockwave %d: %w", e.InstanceID(), err)
	}

	e.group = bind_group_provider.NewBindGroupProvider(e.key + " rings")
	sizes := map[int]uint64{instancesBinding: shockwaveCapacity * particleInstanceStride}
	if err := ctx.Renderer.InitBindGroup(e.group, particleBindGroupLayout(), nil, sizes); err != nil {
		return fmt.Errorf("shockwave %d: %w", e.InstanceID(), err)
	}

	e.MarkInitialized()
	return nil
}

func (e *shockwaveEffect) Update(dt float32, cur cursor.State) {
	if !e.Initialized() || e.Disposed() {
		return
	}
	e.cursorAt = cur.Position

	simulation.AgeOnly(e.pool, dt, 1)

	if cur.Clicked(cursor.ButtonLeft) {
		pos := cur.Position
		e.pool.SpawnBurst(e.ringCount, func(p *simulation.Particle, rng *rand.Rand) {
			p.Position = pos
			p.Velocity = f32.Vec2{e.speed.Sample(rng), 0}
			p.Age = 0
			p.MaxAge = e.lifetime
			p.Size = 0
			p.Color = e.color
		})
	}
}

func (e *shockwaveEffect) Render(ctx *effect.Context) error {
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
		radius := p.Velocity[0] * p.Age
		c := p.Color
		c[3] *= 1 - p.LifeRatio()
		e.instances = append(e.instances, particleInstance{
			Position: p.Position,
			Size:     radius * 2,
			Color:    c,
		})
	}
	if len(e.instances) == 0 {
		return nil
	}

	params := frameParams{
		Viewport: e.viewport,
		Cursor:   e.cursorAt,
		Extra:    [4]float32{e.thickness},
	}
	ctx.Renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: e.group, Binding: paramsBinding, Data: packParams(params)},
		{Provider: e.group, Binding: instancesBinding, Data: packInstances(e.instances)},
	})
	return ctx.Renderer.DrawCall(e.key, e.mesh, uint32(len(e.instances)), []bind_group_provider.BindGroupProvider{e.group})
}

func (e *shockwaveEffect) OnViewportChanged(width, height int) {
	e.viewport = [2]float32{float32(width), float32(height)}
}

func (e *shockwaveEffect) RequiresContinuousCapture() bool {
	return false
}

func (e *shockwaveEffect) Dispose() {
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
