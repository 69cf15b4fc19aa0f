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
)

// colorFilterWGSL re-renders the captured screen through a protanopia
// daltonization pass. The correction works in linear RGB: redness shifts
// toward blue (reds read as magenta) and greenness toward cyan, the two
// shifts a protanope can still separate. Coefficients came out of a
// parameter sweep against Ishihara plates; the LMS matrices drive the
// optional simulation mode (params.extra.y > 0.5) that previews what a
// protanope sees instead of correcting.
const colorFilterWGSL = `
struct Params {
    viewport: vec2<f32>,
    cursor: vec2<f32>,
    extra: vec4<f32>,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var screenTex: texture_2d<f32>;
@group(0) @binding(2) var screenSampler: sampler;

const RGB_TO_LMS = mat3x3<f32>(
    vec3<f32>(0.31399022, 0.15537241, 0.01775239),
    vec3<f32>(0.63951294, 0.75789446, 0.10944209),
    vec3<f32>(0.04649755, 0.08670142, 0.87256922),
);

const LMS_TO_RGB = mat3x3<f32>(
    vec3<f32>(5.47221206, -1.12524190, 0.02980165),
    vec3<f32>(-4.64196010, 2.29317094, -0.19318073),
    vec3<f32>(0.16963708, -0.16789520, 1.16364789),
);

fn srgb_to_linear(c: vec3<f32>) -> vec3<f32> {
    let lo = c / 12.92;
    let hi = pow((c + vec3<f32>(0.055)) / 1.055, vec3<f32>(2.4));
    return select(hi, lo, c <= vec3<f32>(0.04045));
}

fn linear_to_srgb(c: vec3<f32>) -> vec3<f32> {
    let lo = c * 12.92;
    let hi = 1.055 * pow(clamp(c, vec3<f32>(0.0001), vec3<f32>(1.0)), vec3<f32>(1.0 / 2.4)) - vec3<f32>(0.055);
    return select(hi, lo, c <= vec3<f32>(0.0031308));
}

fn simulate_protanopia(rgb: vec3<f32>) -> vec3<f32> {
    var lms = RGB_TO_LMS * rgb;
    lms.x = min(lms.x, lms.y);
    return LMS_TO_RGB * lms;
}

fn correct_protanopia(rgb: vec3<f32>, strength: f32) -> vec3<f32> {
    let red_to_blue = 1.0;
    let green_to_blue = 0.5;
    let redness = max(0.0, rgb.r - rgb.g);
    let greenness = max(0.0, rgb.g - max(rgb.r * 0.8, rgb.b));
    var out = rgb;
    out.b = out.b + strength * (red_to_blue * redness + green_to_blue * greenness);
    return clamp(out, vec3<f32>(0.0), vec3<f32>(1.0));
}

struct VSOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(
    @location(0) corner: vec2<f32>,
    @location(1) uv: vec2<f32>,
) -> VSOut {
    var out: VSOut;
    out.clip = vec4<f32>(corner * 2.0, 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
) -> @location(0) vec4<f32> {
    let src = textureSample(screenTex, screenSampler, uv);
    let linear = srgb_to_linear(src.rgb);
    var result: vec3<f32>;
    if (params.extra.y > 0.5) {
        result = clamp(simulate_protanopia(linear), vec3<f32>(0.0), vec3<f32>(1.0));
    } else {
        result = correct_protanopia(linear, params.extra.x);
    }
    return vec4<f32>(linear_to_srgb(result), 1.0);
}
`

// colorFilterEffect replaces the whole screen with a color-blindness
// compensated re-render of the captured content. Opaque blend: what the
// capture missed stays untouched only while no content has arrived yet.
type colorFilterEffect struct {
	effect.Base

	mesh  bind_group_provider.BindGroupProvider
	group bind_group_provider.BindGroupProvider
	key   string

	boundView *wgpu.TextureView

	viewport [2]float32

	strength float32
	simulate bool
}

var _ effect.Effect = &colorFilterEffect{}

// NewColorFilter creates a color filter effect instance with default settings
// applied.
//
// Parameters:
//   - instanceID: the unique instance identifier assigned by the registry
//
// Returns:
//   - effect.Effect: the new color filter instance
func NewColorFilter(instanceID uint64) effect.Effect {
	e := &colorFilterEffect{
		Base: effect.NewBase("colorfilter", instanceID),
	}
	e.Configure(e.Schema().Defaults())
	return e
}

func (e *colorFilterEffect) Schema() settings.Schema {
	return settings.Schema{
		{Key: "strength", Label: "Correction strength", Default: settings.Float(1), Min: 0, Max: 2, Step: 0.05},
		{Key: "simulate", Label: "Simulation preview", Default: settings.Bool(false)},
	}
}

func (e *colorFilterEffect) Configure(cfg settings.Config) {
	cfg = cfg.Clone()
	e.strength = cfg.FloatClamped("strength", 1, 0, 2)
	e.simulate = cfg.Bool("simulate", false)
}

func (e *colorFilterEffect) Initialize(ctx *effect.Context) error {
	if ctx.Capture == nil {
		return fmt.Errorf("colorfilter %d: screen capture unavailable", e.InstanceID())
	}
	e.key = fmt.Sprintf("colorfilter-%d", e.InstanceID())
	e.viewport = [2]float32{float32(ctx.ViewportWidth), float32(ctx.ViewportHeight)}

	vs := shader.NewShader(e.key+"-vs", shader.ShaderTypeVertex, colorFilterWGSL,
		shader.WithVertexLayouts(quadVertexLayout()),
		shader.WithBindGroupLayout(0, screenBindGroupLayout()),
	)
	fs := shader.NewShader(e.key+"-fs", shader.ShaderTypeFragment, colorFilterWGSL)
	p := pipeline.NewPipeline(e.key, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithBlendEnabled(false),
	)
	if err := ctx.Renderer.RegisterPipelines(p); err != nil {
		return fmt.Errorf("colorfilter %d: %w", e.InstanceID(), err)
	}

	e.mesh = bind_group_provider.NewBindGroupProvider(e.key + " mesh")
	if err := initQuadMesh(ctx.Renderer, e.mesh); err != nil {
		return fmt.Errorf("colorfilter %d: %w", e.InstanceID(), err)
	}

	e.group = bind_group_provider.NewBindGroupProvider(e.key + " screen")
	if err := ctx.Renderer.InitSampler(e.group, samplerBinding, common.LinearClampSampler()); err != nil {
		return fmt.Errorf("colorfilter %d: %w", e.InstanceID(), err)
	}

	e.MarkInitialized()
	return nil
}

func (e *colorFilterEffect) Update(dt float32, cur cursor.State) {
	// Stateless between frames; the filter only re-renders the capture.
}

func (e *colorFilterEffect) Render(ctx *effect.Context) error {
	if err := e.Guard(); err != nil {
		return err
	}
	if ctx.Capture == nil || !ctx.Capture.HasContent() {
		return nil
	}
	if err := rebindScreen(ctx, e.group, &e.boundView); err != nil {
		return fmt.Errorf("colorfilter %d: %w", e.InstanceID(), err)
	}

	simulate := float32(0)
	if e.simulate {
		simulate = 1
	}
	params := frameParams{
		Viewport: e.viewport,
		Extra:    [4]float32{e.strength, simulate},
	}
	ctx.Renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: e.group, Binding: paramsBinding, Data: packParams(params)},
	})
	return ctx.Renderer.DrawCall(e.key, e.mesh, 1, []bind_group_provider.BindGroupProvider{e.group})
}

func (e *colorFilterEffect) OnViewportChanged(width, height int) {
	e.viewport = [2]float32{float32(width), float32(height)}
}

func (e *colorFilterEffect) RequiresContinuousCapture() bool {
	return true
}

func (e *colorFilterEffect) Dispose() {
	if !e.BeginDispose() {
		return
	}
	if e.mesh != nil {
		e.mesh.Release()
	}
	if e.group != nil {
		e.group.SetTextureView(textureBinding, nil)
		e.group.Release()
	}
}
