package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/internal/logger"
	"github.com/Faultbox/wiresphere/pkg/math"
	"github.com/Faultbox/wiresphere/pkg/sphere"
)

// Resources owns the GPU buffers of one sphere mesh.
//
// The vertex and index buffers are filled at construction and never written
// again. The transform buffer is the only writable one, and only through
// StageTransform followed by CommitTransform.
type Resources struct {
	vertex    gpu.Buffer
	index     gpu.Buffer
	transform gpu.Buffer

	indexCount uint32
	staged     [math.Mat4Size]byte
}

// NewResources allocates and uploads the buffers for mesh.
func NewResources(dev gpu.Device, mesh *sphere.Mesh) (*Resources, error) {
	r := &Resources{indexCount: uint32(mesh.IndexCount())}

	vertexData := mesh.VertexBytes()
	vb, err := dev.CreateBuffer(gpu.BufferDesc{
		Label:    "Sphere Vertex Buffer",
		Usage:    gpu.BufferUsageVertex,
		Size:     uint64(len(vertexData)),
		Contents: vertexData,
	})
	if err != nil {
		return nil, gpu.Resource("create vertex buffer", err)
	}
	r.vertex = vb

	indexData := mesh.IndexBytes()
	ib, err := dev.CreateBuffer(gpu.BufferDesc{
		Label:    "Sphere Index Buffer",
		Usage:    gpu.BufferUsageIndex,
		Size:     uint64(len(indexData)),
		Contents: indexData,
	})
	if err != nil {
		r.Release()
		return nil, gpu.Resource("create index buffer", err)
	}
	r.index = ib

	tb, err := dev.CreateBuffer(gpu.BufferDesc{
		Label: "Transform Uniform Buffer",
		Usage: gpu.BufferUsageUniform,
		Size:  math.Mat4Size,
	})
	if err != nil {
		r.Release()
		return nil, gpu.Resource("create transform buffer", err)
	}
	r.transform = tb

	logger.Debug("sphere buffers uploaded",
		zap.Int("vertexBytes", len(vertexData)),
		zap.Int("indexBytes", len(indexData)),
		zap.Uint32("indices", r.indexCount),
	)
	return r, nil
}

// VertexBuffer returns the position buffer for binding.
func (r *Resources) VertexBuffer() gpu.Buffer { return r.vertex }

// IndexBuffer returns the uint16 line-list index buffer for binding.
func (r *Resources) IndexBuffer() gpu.Buffer { return r.index }

// TransformBuffer returns the 64-byte uniform buffer for binding.
func (r *Resources) TransformBuffer() gpu.Buffer { return r.transform }

// IndexCount returns the number of indices to draw.
func (r *Resources) IndexCount() uint32 { return r.indexCount }

// StageTransform encodes m into the staging area. Nothing reaches the GPU
// until CommitTransform.
func (r *Resources) StageTransform(m math.Mat4) {
	m.PutBytes(r.staged[:])
}

// CommitTransform writes the staged matrix over the whole transform buffer.
func (r *Resources) CommitTransform(q gpu.Queue) error {
	if err := q.WriteBuffer(r.transform, 0, r.staged[:]); err != nil {
		return fmt.Errorf("write transform: %w", err)
	}
	return nil
}

// Release frees every buffer the set created.
func (r *Resources) Release() {
	for _, b := range []gpu.Buffer{r.vertex, r.index, r.transform} {
		if b != nil {
			b.Release()
		}
	}
	r.vertex, r.index, r.transform = nil, nil, nil
}
