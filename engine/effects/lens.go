package effects

import (
	"fmt"

	"github.com/cursorfx/cursorfx/common"
	"github.com/cursorfx/cursorfx/engine/cursor"
	"github.com/cursorfx/cursorfx/engine/effect"
	"github.com/cursorfx/cursorfx/engine/renderer/bind_group_provider"
	"github.com/cursorfx/cursorfx/engine/renderer/pipeline"
	"github.com/cursorfx/cursorfx/engine/renderer/shader"
	"github.com/cursorfx/cursorfx/engine/settings"
	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/math/f32"
)

// lensWGSL draws a circular magnifier under the cursor. The quad is sized
// by params.extra.y (diameter in pixels); the fragment shader samples the
// captured screen texture toward the lens center scaled by params.extra.x
// (zoom factor) and masks to a soft-edged circle.
const lensWGSL = `
struct Params {
    viewport: vec2<f32>,
    cursor: vec2<f32>,
    extra: vec4<f32>,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var screenTex: texture_2d<f32>;
@group(0) @binding(2) var screenSampler: sampler;

struct VSOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(
    @location(0) corner: vec2<f32>,
    @location(1) uv: vec2<f32>,
) -> VSOut {
    let pixel = params.cursor + corner * params.extra.y;
    let ndc = vec2<f32>(
        pixel.x / params.viewport.x * 2.0 - 1.0,
        1.0 - pixel.y / params.viewport.y * 2.0,
    );
    var out: VSOut;
    out.clip = vec4<f32>(ndc, 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
) -> @location(0) vec4<f32> {
    let local = uv - vec2<f32>(0.5, 0.5);
    let d = length(local) * 2.0;
    if (d > 1.0) {
        discard;
    }
    let center = params.cursor / params.viewport;
    let offset = local * params.extra.y / params.viewport;
    let suv = center + offset / params.extra.x;
    var color = textureSample(screenTex, screenSampler, suv);
    // Thin darkened rim so the lens reads as an object over the screen.
    let rim = smoothstep(0.88, 0.97, d);
    color = vec4<f32>(color.rgb * (1.0 - rim * 0.35), 1.0);
    let edge = 1.0 - smoothstep(0.97, 1.0, d);
    return vec4<f32>(color.rgb, edge);
}
`

// lensEffect magnifies the screen content under the cursor inside a circular
// lens. The sampled content comes from the capture provider, so the effect
// requires continuous capture and simply skips drawing until a first frame
// has been captured.
type lensEffect struct {
	effect.Base

	mesh  bind_group_provider.BindGroupProvider
	group bind_group_provider.BindGroupProvider
	key   string

	// boundView is the capture view the current bind group was built
	// against; the capture provider swaps views on resolution change.
	boundView *wgpu.TextureView

	viewport [2]float32
	cursorAt f32.Vec2

	zoom     float32
	diameter float32
}

var _ effect.Effect = &lensEffect{}

// NewLens creates a lens effect instance with default settings applied.
//
// Parameters:
//   - instanceID: the unique instance identifier assigned by the registry
//
// Returns:
//   - effect.Effect: the new lens instance
func NewLens(instanceID uint64) effect.Effect {
	e := &lensEffect{
		Base: effect.NewBase("lens", instanceID),
	}
	e.Configure(e.Schema().Defaults())
	return e
}

func (e *lensEffect) Schema() settings.Schema {
	return settings.Schema{
		{Key: "zoom", Label: "Zoom", Default: settings.Float(2), Min: 1, Max: 8, Step: 0.25},
		{Key: "diameter", Label: "Diameter", Default: settings.Float(220), Min: 40, Max: 800, Step: 10},
	}
}

func (e *lensEffect) Configure(cfg settings.Config) {
	cfg = cfg.Clone()
	e.zoom = cfg.FloatClamped("zoom", 2, 1, 8)
	e.diameter = cfg.FloatClamped("diameter", 220, 40, 800)
}

func (e *lensEffect) Initialize(ctx *effect.Context) error {
	if ctx.Capture == nil {
		return fmt.Errorf("lens %d: screen capture unavailable", e.InstanceID())
	}
	e.key = fmt.Sprintf("lens-%d", e.InstanceID())
	e.viewport = [2]float32{float32(ctx.ViewportWidth), float32(ctx.ViewportHeight)}

	vs := shader.NewShader(e.key+"-vs", shader.ShaderTypeVertex, lensWGSL,
		shader.WithVertexLayouts(quadVertexLayout()),
		shader.WithBindGroupLayout(0, screenBindGroupLayout()),
	)
	fs := shader.NewShader(e.key+"-fs", shader.ShaderTypeFragment, lensWGSL)
	p := pipeline.NewPipeline(e.key, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithAlphaBlend(),
	)
	if err := ctx.Renderer.RegisterPipelines(p); err != nil {
		return fmt.Errorf("lens %d: %w", e.InstanceID(), err)
	}

	e.mesh = bind_group_provider.NewBindGroupProvider(e.key + " mesh")
	if err := initQuadMesh(ctx.Renderer, e.mesh); err != nil {
		return fmt.Errorf("lens %d: %w", e.InstanceID(), err)
	}

	e.group = bind_group_provider.NewBindGroupProvider(e.key + " screen")
	if err := ctx.Renderer.InitSampler(e.group, samplerBinding, common.LinearClampSampler()); err != nil {
		return fmt.Errorf("lens %d: %w", e.InstanceID(), err)
	}

	e.MarkInitialized()
	return nil
}

func (e *lensEffect) Update(dt float32, cur cursor.State) {
	if !e.Initialized() || e.Disposed() {
		return
	}
	e.cursorAt = cur.Position
}

func (e *lensEffect) Render(ctx *effect.Context) error {
	if err := e.Guard(); err != nil {
		return err
	}
	if ctx.Capture == nil || !ctx.Capture.HasContent() {
		return nil
	}
	if err := rebindScreen(ctx, e.group, &e.boundView); err != nil {
		return fmt.Errorf("lens %d: %w", e.InstanceID(), err)
	}

	params := frameParams{
		Viewport: e.viewport,
		Cursor:   e.cursorAt,
		Extra:    [4]float32{e.zoom, e.diameter},
	}
	ctx.Renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: e.group, Binding: paramsBinding, Data: packParams(params)},
	})
	return ctx.Renderer.DrawCall(e.key, e.mesh, 1, []bind_group_provider.BindGroupProvider{e.group})
}

func (e *lensEffect) OnViewportChanged(width, height int) {
	e.viewport = [2]float32{float32(width), float32(height)}
}

func (e *lensEffect) RequiresContinuousCapture() bool {
	return true
}

func (e *lensEffect) Dispose() {
	if !e.BeginDispose() {
		return
	}
	if e.mesh != nil {
		e.mesh.Release()
	}
	if e.group != nil {
		// Detach the capture provider's view before releasing owned resources.
		e.group.SetTextureView(textureBinding, nil)
		e.group.Release()
	}
}
