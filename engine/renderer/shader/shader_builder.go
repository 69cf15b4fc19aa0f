package shader

import "github.com/cogentcore/webgpu/wgpu"

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithEntryPoint overrides the default entry point name for this shader.
//
// Parameters:
//   - name: the entry point function name declared in the WGSL source
//
// Returns:
//   - ShaderBuilderOption: a function that sets the entry point for this shader
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}

// WithBindGroupLayout declares the bind group layout for a specific group index.
// Declaring the same group twice replaces the earlier descriptor.
//
// Parameters:
//   - group: the bind group index referenced by @group(n) in the WGSL source
//   - desc: the layout descriptor for the group
//
// Returns:
//   - ShaderBuilderOption: a function that declares the bind group layout for this shader
func WithBindGroupLayout(group int, desc wgpu.BindGroupLayoutDescriptor) ShaderBuilderOption {
	return func(s *shader) {
		s.bindGroupLayoutDescriptors[group] = desc
	}
}

// WithVertexLayouts declares the vertex buffer layouts for this shader.
// Only meaningful for vertex shaders.
//
// Parameters:
//   - layouts: the vertex buffer layouts in buffer slot order
//
// Returns:
//   - ShaderBuilderOption: a function that sets the vertex buffer layouts for this shader
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) ShaderBuilderOption {
	return func(s *shader) {
		s.vertexLayouts = layouts
	}
}

// WithWorkgroupSize sets the workgroup dimensions for a compute shader. This
// must match the @workgroup_size attribute in the WGSL source; the engine uses
// it to derive dispatch counts.
//
// Parameters:
//   - size: the workgroup size as [x, y, z]
//
// Returns:
//   - ShaderBuilderOption: a function that sets the workgroup size for this shader
func WithWorkgroupSize(size [3]uint32) ShaderBuilderOption {
	return func(s *shader) {
		s.workGroupSize = size
	}
}
