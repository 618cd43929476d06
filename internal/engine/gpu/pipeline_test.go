package gpu

import (
	"errors"
	"testing"
)

func validDesc() PipelineDesc {
	return PipelineDesc{
		Label: "test",
		Shader: ShaderSource{
			Language: ShaderLanguageWGSL,
			Vertex:   "vs",
			Fragment: "fs",
		},
		Vertex: VertexLayout{
			Stride: 12,
			Attributes: []VertexAttribute{
				{Location: 0, Format: VertexFormatFloat32x3, Offset: 0},
			},
		},
		Uniforms: []UniformBinding{
			{Binding: 0, Name: "Transform", Size: 64, Visibility: ShaderStageVertex},
		},
		Topology: TopologyLineList,
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validDesc().Validate(12); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PipelineDesc)
		stride int
	}{
		{"stride mismatch", func(d *PipelineDesc) {}, 16},
		{"attribute overflow", func(d *PipelineDesc) {
			d.Vertex.Attributes[0].Format = VertexFormatFloat32x4
		}, 12},
		{"attribute offset", func(d *PipelineDesc) {
			d.Vertex.Attributes[0].Offset = 4
		}, 12},
		{"no attributes", func(d *PipelineDesc) {
			d.Vertex.Attributes = nil
		}, 12},
		{"duplicate location", func(d *PipelineDesc) {
			d.Vertex.Stride = 24
			d.Vertex.Attributes = append(d.Vertex.Attributes, VertexAttribute{Location: 0, Format: VertexFormatFloat32x3, Offset: 12})
		}, 24},
		{"missing shader", func(d *PipelineDesc) {
			d.Shader.Fragment = ""
		}, 12},
		{"no topology", func(d *PipelineDesc) {
			d.Topology = 0
		}, 12},
		{"zero uniform", func(d *PipelineDesc) {
			d.Uniforms[0].Size = 0
		}, 12},
		{"invisible uniform", func(d *PipelineDesc) {
			d.Uniforms[0].Visibility = 0
		}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDesc()
			tt.mutate(&d)
			err := d.Validate(tt.stride)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !IsKind(err, KindConfig) {
				t.Errorf("Validate() kind = %v, want config", KindOf(err))
			}
		})
	}
}

func TestUniformLookup(t *testing.T) {
	d := validDesc()
	u, ok := d.Uniform(0)
	if !ok || u.Size != 64 {
		t.Errorf("Uniform(0) = %+v, %v", u, ok)
	}
	if _, ok := d.Uniform(3); ok {
		t.Error("Uniform(3) should not exist")
	}
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		err  error
		kind Kind
		text string
	}{
		{Config("op", base), KindConfig, "config error: op: boom"},
		{Resource("op", base), KindResource, "resource error: op: boom"},
		{Submit("op", base), KindSubmit, "submit error: op: boom"},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.kind {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.kind)
		}
		if !errors.Is(tt.err, base) {
			t.Errorf("%v should unwrap to base error", tt.err)
		}
		if tt.err.Error() != tt.text {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.text)
		}
	}

	if KindOf(base) != 0 {
		t.Error("unclassified error should have kind 0")
	}
}

func TestFormatSizes(t *testing.T) {
	if VertexFormatFloat32x3.Size() != 12 || VertexFormatFloat32x3.Components() != 3 {
		t.Error("Float32x3 should be 12 bytes, 3 components")
	}
	if IndexFormatUint16.Size() != 2 {
		t.Error("Uint16 index should be 2 bytes")
	}
}
