package effects

import (
	"fmt"

	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/effect"
	"github.com/cursorfx/cursorfx/engine/renderer/bind_group_provider"
	"github.com/cursorfx/cursorfx/engine/renderer/pipeline"
	"github.com/cursorfx/cursorfx/engine/renderer/shader"
	"github.com/cursorfx/cursorfx/engine/settings"
	"github.com/cursorfx/cursorfx/engine/simulation"
	"golang.org/x/image/math/f32"
)

const trailCapacity = 512

// trailEffect draws a fading ribbon of dots along the cursor's recent path.
// Points are emitted by distance covered rather than per frame, so the ribbon
// density does not change with frame rate. Alpha blended; newer points draw
// over older ones.
type trailEffect struct {
	effect.Base

	trail     *simulation.TrailBuffer
	points    []simulation.TrailPoint
	instances []particleInstance

	mesh  bind_group_provider.BindGroupProvider
	group bind_group_provider.BindGroupProvider
	key   string

	viewport [2]float32
	cursorAt f32.Vec2

	lifetime float32
	width    float32
	taper    float32
	colors   simulation.ColorRange
}

var _ effect.Effect = &trailEffect{}

// NewTrail creates a trail effect instance with default settings applied.
//
// Parameters:
//   - instanceID: the unique instance identifier assigned by the registry
//
// Returns:
//   - effect.Effect: the new trail instance
func NewTrail(instanceID uint64) effect.Effect {
	e := &trailEffect{
		Base:      effect.NewBase("trail", instanceID),
		trail:     simulation.NewTrailBuffer(trailCapacity, 4),
		instances: make([]particleInstance, 0, trailCapacity),
	}
	e.Configure(e.Schema().Defaults())
	return e
}

func (e *trailEffect) Schema() settings.Schema {
	return settings.Schema{
		{Key: "spacing", Label: "Point spacing", Default: settings.Float(4), Min: 1, Max: 64, Step: 1},
		{Key: "lifetime", Label: "Lifetime", Default: settings.Float(0.6), Min: 0.05, Max: 5, Step: 0.05},
		{Key: "width", Label: "Width", Default: settings.Float(10), Min: 1, Max: 128, Step: 1},
		{Key: "taper", Label: "Taper", Default: settings.Float(0.6), Min: 0, Max: 1, Step: 0.05},
		{Key: "color_from", Label: "Color head", Default: settings.Color(f32.Vec4{0.4, 0.8, 1, 0.9})},
		{Key: "color_to", Label: "Color tail", Default: settings.Color(f32.Vec4{0.7, 0.4, 1, 0.9})},
	}
}

func (e *trailEffect) Configure(cfg settings.Config) {
	cfg = cfg.Clone()
	e.trail.SetSpacing(cfg.FloatClamped("spacing", 4, 1, 64))
	e.lifetime = cfg.FloatClamped("lifetime", 0.6, 0.05, 5)
	e.width = cfg.FloatClamped("width", 10, 1, 128)
	e.taper = cfg.FloatClamped("taper", 0.6, 0, 1)
	e.colors = simulation.ColorRange{
		From: cfg.Color("color_from", f32.Vec4{0.4, 0.8, 1, 0.9}),
		To:   cfg.Color("color_to", f32.Vec4{0.7, 0.4, 1, 0.9}),
	}
}

func (e *trailEffect) Initialize(ctx *effect.Context) error {
	e.key = fmt.Sprintf("trail-%d", e.InstanceID())
	e.viewport = [2]float32{float32(ctx.ViewportWidth), float32(ctx.ViewportHeight)}

	vs := shader.NewShader(e.key+"-vs", shader.ShaderTypeVertex, particleVertexWGSL,
		shader.WithVertexLayouts(quadVertexLayout()),
		shader.WithBindGroupLayout(0, particleBindGroupLayout()),
	)
	fs := shader.NewShader(e.key+"-fs", shader.ShaderTypeFragment, softDotFragmentWGSL)
	p := pipeline.NewPipeline(e.key, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithAlphaBlend(),
	)
	if err := ctx.Renderer.RegisterPipelines(p); err != nil {
		return fmt.Errorf("trail %d: %w", e.InstanceID(), err)
	}

	e.mesh = bind_group_provider.NewBindGroupProvider(e.key + " mesh")
	if err := initQuadMesh(ctx.Renderer, e.mesh); err != nil {
		return fmt.Errorf("trail %d: %w", e.InstanceID(), err)
	}

	e.group = bind_group_provider.NewBindGroupProvider(e.key + " points")
	sizes := map[int]uint64{instancesBinding: trailCapacity * particleInstanceStride}
	if err := ctx.Renderer.InitBindGroup(e.group, particleBindGroupLayout(), nil, sizes); err != nil {
		return fmt.Errorf("trail %d: %w", e.InstanceID(), err)
	}

	e.MarkInitialized()
	return nil
}

func (e *trailEffect) Update(dt float32, cur cursor.State) {
	if !e.Initialized() || e.Disposed() {
		return
	}
	e.cursorAt = cur.Position

	e.trail.Update(dt, 1)
	if cur.Moved() {
		e.trail.Advance(cur.Position, simulation.TrailPoint{
			MaxAge: e.lifetime,
			Width:  e.width,
		})
	}
}

func (e *trailEffect) Render(ctx *effect.Context) error {
	if err := e.Guard(); err != nil {
		return err
	}

	e.points = e.trail.Points(e.points[:0])
	e.instances = e.instances[:0]
	n := len(e.points)
	for i := range e.points {
		pt := &e.points[i]
		fade := pt.Fade()
		if fade <= 0 {
			continue
		}
		// t runs 0 at the newest point to 1 at the oldest, driving both the
		// color gradient and the width taper toward the tail.
		t := float32(0)
		if n > 1 {
			t = 1 - float32(i)/float32(n-1)
		}
		c := e.colors.At(t)
		c[3] *= fade
		e.instances = append(e.instances, particleInstance{
			Position: pt.Position,
			Size:     pt.Width * (1 - e.taper*t),
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

func (e *trailEffect) OnViewportChanged(width, height int) {
	e.viewport = [2]float32{float32(width), float32(height)}
}

func (e *trailEffect) RequiresContinuousCapture() bool {
	return false
}

func (e *trailEffect) Dispose() {
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
