package effects

import (
	"github.com/cursorfx/cursorfx/common"
	"github.com/cursorfx/cursorfx/engine/renderer"
	"github.com/cursorfx/cursorfx/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// quadVertex is one corner of the unit quad every effect instance expands.
type quadVertex struct {
	Position [2]float32
	UV       [2]float32
}

// particleInstance is the per-instance GPU layout shared by the particle
// effects. Matches the WGSL Particle struct: 32 bytes, no padding.
type particleInstance struct {
	Position [2]float32
	Size     float32
	Rotation float32
	Color    [4]float32
}

// frameParams is the per-frame uniform block shared by the effect shaders.
// 32 bytes to satisfy uniform alignment; Extra carries effect-specific
// scalars (lens radius, filter strength).
type frameParams struct {
	Viewport [2]float32
	Cursor   [2]float32
	Extra    [4]float32
}

const (
	particleInstanceStride = 32
	frameParamsSize        = 32

	paramsBinding    = 0
	instancesBinding = 1
	textureBinding   = 1
	samplerBinding   = 2
)

// quadVertices spans -0.5..0.5 so instances scale by size around their center.
var quadVertices = []quadVertex{
	{Position: [2]float32{-0.5, -0.5}, UV: [2]float32{0, 1}},
	{Position: [2]float32{0.5, -0.5}, UV: [2]float32{1, 1}},
	{Position: [2]float32{0.5, 0.5}, UV: [2]float32{1, 0}},
	{Position: [2]float32{-0.5, 0.5}, UV: [2]float32{0, 0}},
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

// quadVertexLayout is the vertex buffer layout for the shared unit quad.
func quadVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 16,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	}
}

// initQuadMesh uploads the shared unit quad into the provider's mesh buffers.
func initQuadMesh(r renderer.Renderer, provider bind_group_provider.BindGroupProvider) error {
	return r.InitMeshBuffers(
		provider,
		common.SliceToBytes(quadVertices),
		common.SliceToBytes(quadIndices),
		len(quadIndices),
	)
}

// particleBindGroupLayout declares group 0 for instanced particle effects:
// the frame uniform plus the instance storage buffer.
func particleBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    paramsBinding,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: frameParamsSize,
				},
			},
			{
				Binding:    instancesBinding,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: particleInstanceStride,
				},
			},
		},
	}
}

// screenBindGroupLayout declares group 0 for screen-sampling effects: the
// frame uniform, the capture texture, and its sampler.
func screenBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    paramsBinding,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: frameParamsSize,
				},
			},
			{
				Binding:    textureBinding,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    samplerBinding,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

// particleVertexWGSL expands the unit quad per instance: rotate, scale,
// translate in pixel space, then map to NDC with the y axis flipped.
const particleVertexWGSL = `
struct Params {
    viewport: vec2<f32>,
    cursor: vec2<f32>,
    extra: vec4<f32>,
};

struct Particle {
    position: vec2<f32>,
    size: f32,
    rotation: f32,
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> instances: array<Particle>;

struct VSOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
};

@vertex
fn vs_main(
    @location(0) corner: vec2<f32>,
    @location(1) uv: vec2<f32>,
    @builtin(instance_index) idx: u32,
) -> VSOut {
    let p = instances[idx];
    let c = cos(p.rotation);
    let s = sin(p.rotation);
    let rotated = vec2<f32>(
        corner.x * c - corner.y * s,
        corner.x * s + corner.y * c,
    );
    let pixel = p.position + rotated * p.size;
    let ndc = vec2<f32>(
        pixel.x / params.viewport.x * 2.0 - 1.0,
        1.0 - pixel.y / params.viewport.y * 2.0,
    );
    var out: VSOut;
    out.clip = vec4<f32>(ndc, 0.0, 1.0);
    out.uv = uv;
    out.color = p.color;
    return out;
}
`

// softDotFragmentWGSL shades a soft round dot fading to transparent at the
// quad edge.
const softDotFragmentWGSL = `
@fragment
fn fs_main(
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
) -> @location(0) vec4<f32> {
    let d = distance(uv, vec2<f32>(0.5, 0.5)) * 2.0;
    let falloff = 1.0 - smoothstep(0.6, 1.0, d);
    return vec4<f32>(color.rgb, color.a * falloff);
}
`

// ringFragmentWGSL shades an annulus whose thickness comes from the instance
// alpha-independent extra parameter packed in params.extra.x (0..0.5).
const ringFragmentWGSL = `
struct Params {
    viewport: vec2<f32>,
    cursor: vec2<f32>,
    extra: vec4<f32>,
};

@group(0) @binding(0) var<uniform> params: Params;

@fragment
fn fs_main(
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) color: vec4<f32>,
) -> @location(0) vec4<f32> {
    let d = distance(uv, vec2<f32>(0.5, 0.5)) * 2.0;
    let thickness = params.extra.x;
    let outer = 1.0 - smoothstep(1.0 - thickness * 0.5, 1.0, d);
    let inner = smoothstep(1.0 - thickness * 2.0, 1.0 - thickness, d);
    return vec4<f32>(color.rgb, color.a * outer * inner);
}
`

// packParams serializes the frame uniform for upload.
func packParams(p frameParams) []byte {
	return common.StructToBytes(&p)
}
