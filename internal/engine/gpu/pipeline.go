package gpu

import "fmt"

// VertexAttribute describes one attribute inside a vertex buffer layout.
type VertexAttribute struct {
	Location uint32
	Format   VertexFormat
	Offset   uint64
}

// VertexLayout describes the single vertex buffer a pipeline reads.
type VertexLayout struct {
	Stride     uint64
	Attributes []VertexAttribute
}

// UniformBinding describes a uniform buffer binding in group 0.
type UniformBinding struct {
	Binding    uint32
	Name       string // block name in GLSL, informational for WGSL
	Size       uint64
	Visibility ShaderStage
}

// ShaderSource carries the two shader stages for one backend language.
type ShaderSource struct {
	Language      ShaderLanguage
	Vertex        string
	Fragment      string
	VertexEntry   string
	FragmentEntry string
}

// PipelineDesc is the fixed configuration of a render pipeline.
type PipelineDesc struct {
	Label        string
	Shader       ShaderSource
	Vertex       VertexLayout
	Uniforms     []UniformBinding
	Topology     Topology
	TargetFormat TextureFormat
}

// Validate checks the descriptor against the vertex stride of the data it
// will draw. All failures are configuration errors.
func (d PipelineDesc) Validate(vertexStride int) error {
	if d.Shader.Vertex == "" || d.Shader.Fragment == "" {
		return Config("validate pipeline", fmt.Errorf("%s: missing shader source", d.Label))
	}
	if d.Topology == 0 {
		return Config("validate pipeline", fmt.Errorf("%s: topology not set", d.Label))
	}
	if d.Vertex.Stride != uint64(vertexStride) {
		return Config("validate pipeline", fmt.Errorf("%s: vertex stride %d does not match mesh stride %d",
			d.Label, d.Vertex.Stride, vertexStride))
	}
	if len(d.Vertex.Attributes) == 0 {
		return Config("validate pipeline", fmt.Errorf("%s: no vertex attributes", d.Label))
	}

	seen := make(map[uint32]bool, len(d.Vertex.Attributes))
	for _, a := range d.Vertex.Attributes {
		size := a.Format.Size()
		if size == 0 {
			return Config("validate pipeline", fmt.Errorf("%s: attribute %d has unknown format", d.Label, a.Location))
		}
		if a.Offset+uint64(size) > d.Vertex.Stride {
			return Config("validate pipeline", fmt.Errorf("%s: attribute %d (offset %d, %d bytes) overflows stride %d",
				d.Label, a.Location, a.Offset, size, d.Vertex.Stride))
		}
		if seen[a.Location] {
			return Config("validate pipeline", fmt.Errorf("%s: duplicate attribute location %d", d.Label, a.Location))
		}
		seen[a.Location] = true
	}

	bindings := make(map[uint32]bool, len(d.Uniforms))
	for _, u := range d.Uniforms {
		if u.Size == 0 {
			return Config("validate pipeline", fmt.Errorf("%s: uniform binding %d has zero size", d.Label, u.Binding))
		}
		if u.Visibility == 0 {
			return Config("validate pipeline", fmt.Errorf("%s: uniform binding %d is visible to no stage", d.Label, u.Binding))
		}
		if bindings[u.Binding] {
			return Config("validate pipeline", fmt.Errorf("%s: duplicate uniform binding %d", d.Label, u.Binding))
		}
		bindings[u.Binding] = true
	}

	return nil
}

// Uniform returns the uniform binding with the given index.
func (d PipelineDesc) Uniform(binding uint32) (UniformBinding, bool) {
	for _, u := range d.Uniforms {
		if u.Binding == binding {
			return u, true
		}
	}
	return UniformBinding{}, false
}
