package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

// Pipeline owns a render pipeline and the layouts and shader modules it
// was built from.
type Pipeline struct {
	desc           gpu.PipelineDesc
	pipeline       *wgpu.RenderPipeline
	groupLayout    *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	modules        []*wgpu.ShaderModule
}

func (p *Pipeline) Desc() gpu.PipelineDesc { return p.desc }

func (p *Pipeline) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	if p.groupLayout != nil {
		p.groupLayout.Release()
		p.groupLayout = nil
	}
	for _, m := range p.modules {
		m.Release()
	}
	p.modules = nil
}

func (d *Device) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	if desc.Shader.Language != gpu.ShaderLanguageWGSL {
		return nil, fmt.Errorf("pipeline %q: webgpu needs WGSL, got %s", desc.Label, desc.Shader.Language)
	}
	topology, err := primitiveTopology(desc.Topology)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}
	attrs, err := vertexAttributes(desc.Vertex)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}

	p := &Pipeline{desc: desc}
	fail := func(step string, err error) (gpu.Pipeline, error) {
		p.Release()
		return nil, fmt.Errorf("pipeline %q: %s: %w", desc.Label, step, err)
	}

	vs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label + " Vertex Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Shader.Vertex},
	})
	if err != nil {
		return fail("vertex shader", err)
	}
	p.modules = append(p.modules, vs)

	fs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label + " Fragment Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Shader.Fragment},
	})
	if err != nil {
		return fail("fragment shader", err)
	}
	p.modules = append(p.modules, fs)

	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.Uniforms))
	for _, u := range desc.Uniforms {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    u.Binding,
			Visibility: shaderStages(u.Visibility),
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: u.Size,
			},
		})
	}
	p.groupLayout, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label + " Bind Group Layout",
		Entries: entries,
	})
	if err != nil {
		return fail("bind group layout", err)
	}

	p.pipelineLayout, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + " Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.groupLayout},
	})
	if err != nil {
		return fail("pipeline layout", err)
	}

	p.pipeline, err = d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Shader.VertexEntry,
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: desc.Vertex.Stride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.Shader.FragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    wgpu.TextureFormat(desc.TargetFormat),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fail("render pipeline", err)
	}

	d.log.Debug("pipeline created",
		zap.String("label", desc.Label),
		zap.Stringer("topology", desc.Topology),
	)
	return p, nil
}

func primitiveTopology(t gpu.Topology) (wgpu.PrimitiveTopology, error) {
	switch t {
	case gpu.TopologyPointList:
		return wgpu.PrimitiveTopologyPointList, nil
	case gpu.TopologyLineList:
		return wgpu.PrimitiveTopologyLineList, nil
	case gpu.TopologyLineStrip:
		return wgpu.PrimitiveTopologyLineStrip, nil
	case gpu.TopologyTriangleList:
		return wgpu.PrimitiveTopologyTriangleList, nil
	default:
		return 0, fmt.Errorf("unsupported topology %s", t)
	}
}

func vertexAttributes(layout gpu.VertexLayout) ([]wgpu.VertexAttribute, error) {
	out := make([]wgpu.VertexAttribute, 0, len(layout.Attributes))
	for _, a := range layout.Attributes {
		var f wgpu.VertexFormat
		switch a.Format {
		case gpu.VertexFormatFloat32x2:
			f = wgpu.VertexFormatFloat32x2
		case gpu.VertexFormatFloat32x3:
			f = wgpu.VertexFormatFloat32x3
		case gpu.VertexFormatFloat32x4:
			f = wgpu.VertexFormatFloat32x4
		default:
			return nil, fmt.Errorf("attribute %d: unknown format", a.Location)
		}
		out = append(out, wgpu.VertexAttribute{
			Format:         f,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		})
	}
	return out, nil
}

func shaderStages(s gpu.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&gpu.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&gpu.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

var _ gpu.Pipeline = (*Pipeline)(nil)
