// Package gpu defines the backend-neutral device interfaces the renderer is
// written against. Concrete backends live in subpackages: glbackend (OpenGL
// 4.1 over SDL2), wgpubackend (WebGPU over GLFW) and gputest (an in-memory
// recorder for tests).
//
// The interfaces mirror the WebGPU object model: buffers are created with
// their initial contents, the queue accepts buffer writes and command
// buffer submissions, and drawing is recorded into a render pass on a
// command encoder before being submitted.
package gpu

// Device creates GPU resources and command encoders.
type Device interface {
	// CreateBuffer allocates a buffer of desc.Size bytes. If desc.Contents is
	// non-nil it is uploaded eagerly and must be exactly desc.Size bytes.
	CreateBuffer(desc BufferDesc) (Buffer, error)

	// CreatePipeline builds a render pipeline from a validated descriptor.
	CreatePipeline(desc PipelineDesc) (Pipeline, error)

	// CreateBindGroup ties buffers to the uniform bindings of a pipeline.
	CreateBindGroup(p Pipeline, entries ...BindGroupEntry) (BindGroup, error)

	// CreateCommandEncoder starts recording a new command buffer.
	CreateCommandEncoder() (CommandEncoder, error)

	// Queue returns the device's submission queue.
	Queue() Queue

	// Release frees the device.
	Release()
}

// Queue orders buffer writes and command buffer submissions.
type Queue interface {
	// WriteBuffer replaces len(data) bytes of buf starting at offset.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// Submit enqueues a finished command buffer for execution. It does not
	// wait for completion.
	Submit(cmd CommandBuffer) error
}

// CommandEncoder records GPU commands.
type CommandEncoder interface {
	BeginRenderPass(desc RenderPassDesc) (RenderPass, error)
	Finish() (CommandBuffer, error)
	Release()
}

// RenderPass records draw state and draw calls for one attachment.
type RenderPass interface {
	SetPipeline(p Pipeline)
	SetBindGroup(index uint32, g BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format IndexFormat)
	DrawIndexed(indexCount uint32)
	End() error
}

// CommandBuffer is a finished, submittable recording.
type CommandBuffer interface {
	Release()
}

// Surface is the presentation target of a window.
type Surface interface {
	// Format returns the preferred color format the surface was configured with.
	Format() TextureFormat

	// CurrentView returns a fresh view of the next frame's texture. Views
	// are valid for one frame only and must be released by the caller.
	CurrentView() (View, error)

	// Present shows the frame rendered into the current view.
	Present() error

	// Resize reconfigures the surface for a new framebuffer size.
	Resize(width, height int) error
}

// View is a per-frame render target.
type View interface {
	Release()
}

// Buffer is an opaque GPU buffer handle.
type Buffer interface {
	Size() uint64
	Usage() BufferUsage
	Release()
}

// Pipeline is an immutable render pipeline.
type Pipeline interface {
	Desc() PipelineDesc
	Release()
}

// BindGroup is an immutable set of buffer bindings for a pipeline.
type BindGroup interface {
	Release()
}
