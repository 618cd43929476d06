package scene

import (
	"fmt"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/internal/engine/shader"
	"github.com/Faultbox/wiresphere/pkg/math"
	"github.com/Faultbox/wiresphere/pkg/sphere"
)

// TransformBinding is the uniform binding that carries the model matrix.
const TransformBinding = 0

// WireframePipelineDesc returns the fixed pipeline description for the
// sphere: one float32x3 position per 12-byte vertex, the transform visible
// to the vertex stage only, and line-list assembly.
func WireframePipelineDesc(src gpu.ShaderSource, format gpu.TextureFormat) gpu.PipelineDesc {
	return gpu.PipelineDesc{
		Label:  "Wireframe Sphere",
		Shader: src,
		Vertex: gpu.VertexLayout{
			Stride: sphere.VertexStride,
			Attributes: []gpu.VertexAttribute{
				{Location: 0, Format: gpu.VertexFormatFloat32x3, Offset: 0},
			},
		},
		Uniforms: []gpu.UniformBinding{
			{
				Binding:    TransformBinding,
				Name:       shader.TransformBlock,
				Size:       math.Mat4Size,
				Visibility: gpu.ShaderStageVertex,
			},
		},
		Topology:     gpu.TopologyLineList,
		TargetFormat: format,
	}
}

// validateWireframe applies the generic checks plus the ones specific to a
// line-list sphere fed by a single transform matrix.
func validateWireframe(desc gpu.PipelineDesc) error {
	if err := desc.Validate(sphere.VertexStride); err != nil {
		return err
	}
	if desc.Topology != gpu.TopologyLineList {
		return gpu.Config("validate pipeline", fmt.Errorf("wireframe needs line-list topology, got %s", desc.Topology))
	}
	u, ok := desc.Uniform(TransformBinding)
	if !ok {
		return gpu.Config("validate pipeline", fmt.Errorf("no uniform at binding %d", TransformBinding))
	}
	if u.Size != math.Mat4Size {
		return gpu.Config("validate pipeline", fmt.Errorf("transform uniform is %d bytes, want %d", u.Size, math.Mat4Size))
	}
	if u.Visibility != gpu.ShaderStageVertex {
		return gpu.Config("validate pipeline", fmt.Errorf("transform uniform must be visible to the vertex stage only"))
	}
	return nil
}
