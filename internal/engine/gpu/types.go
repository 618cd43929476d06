package gpu

import "fmt"

// BufferUsage describes how a buffer is bound.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota + 1
	BufferUsageIndex
	BufferUsageUniform
)

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageVertex:
		return "vertex"
	case BufferUsageIndex:
		return "index"
	case BufferUsageUniform:
		return "uniform"
	default:
		return fmt.Sprintf("BufferUsage(%d)", int(u))
	}
}

// BufferDesc describes a buffer to allocate.
type BufferDesc struct {
	Label    string
	Usage    BufferUsage
	Size     uint64
	Contents []byte
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota + 1
	IndexFormatUint32
)

// Size returns the byte size of one index.
func (f IndexFormat) Size() int {
	switch f {
	case IndexFormatUint16:
		return 2
	case IndexFormatUint32:
		return 4
	default:
		return 0
	}
}

// VertexFormat is the type of one vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota + 1
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// Size returns the byte size of the attribute.
func (f VertexFormat) Size() int {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}

// Components returns the number of float components.
func (f VertexFormat) Components() int {
	return f.Size() / 4
}

// Topology is the primitive assembly mode.
type Topology int

const (
	TopologyPointList Topology = iota + 1
	TopologyLineList
	TopologyLineStrip
	TopologyTriangleList
)

func (t Topology) String() string {
	switch t {
	case TopologyPointList:
		return "point-list"
	case TopologyLineList:
		return "line-list"
	case TopologyLineStrip:
		return "line-strip"
	case TopologyTriangleList:
		return "triangle-list"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// ShaderStage is a bit set of programmable stages.
type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

// TextureFormat is a backend-specific color format value. Backends hand it
// out from Surface.Format and read it back in CreatePipeline.
type TextureFormat uint32

// ShaderLanguage identifies the source language a backend consumes.
type ShaderLanguage int

const (
	ShaderLanguageGLSL ShaderLanguage = iota + 1
	ShaderLanguageWGSL
)

func (l ShaderLanguage) String() string {
	switch l {
	case ShaderLanguageGLSL:
		return "glsl"
	case ShaderLanguageWGSL:
		return "wgsl"
	default:
		return fmt.Sprintf("ShaderLanguage(%d)", int(l))
	}
}

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// RenderPassDesc describes one color attachment render pass.
type RenderPassDesc struct {
	Label      string
	View       View
	ClearColor Color
}

// BindGroupEntry binds a buffer to a uniform binding.
type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
}
