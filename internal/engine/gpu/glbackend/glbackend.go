// Package glbackend implements the gpu interfaces on OpenGL 4.1 core.
//
// OpenGL executes in call order on the context thread, so buffer writes are
// applied immediately and command encoders record closures that run on
// Submit. All calls must come from the thread that owns the context.
package glbackend

import (
	"context"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/internal/logger"
)

// Window is the part of an OpenGL window the backend needs. The context
// must be current on the calling thread.
type Window interface {
	SwapBuffers()
	DrawableSize() (int, int)
}

// Open loads the GL entry points for the current context and returns the
// device and its default-framebuffer surface.
func Open(ctx context.Context, win Window) (*Device, *Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, gpu.Resource("open opengl device", err)
	}
	if err := gl.Init(); err != nil {
		return nil, nil, gpu.Resource("open opengl device", fmt.Errorf("failed to initialize OpenGL: %w", err))
	}

	log := logger.Named("opengl")
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	dev := &Device{log: log}
	dev.queue = &Queue{dev: dev}

	width, height := win.DrawableSize()
	surface := &Surface{win: win, width: width, height: height}
	return dev, surface, nil
}

// glError drains the GL error flags and reports the first one.
func glError(op string) error {
	first := uint32(gl.NO_ERROR)
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == gl.NO_ERROR {
			first = code
		}
	}
	if first != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%04X", op, first)
	}
	return nil
}

// Device is an OpenGL gpu.Device.
type Device struct {
	log   *zap.Logger
	queue *Queue
}

func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q: zero size", desc.Label)
	}
	if desc.Contents != nil && uint64(len(desc.Contents)) != desc.Size {
		return nil, fmt.Errorf("buffer %q: contents are %d bytes, size is %d", desc.Label, len(desc.Contents), desc.Size)
	}

	hint := uint32(gl.STATIC_DRAW)
	if desc.Usage == gpu.BufferUsageUniform {
		hint = gl.DYNAMIC_DRAW
	}

	b := &Buffer{label: desc.Label, size: desc.Size, usage: desc.Usage}
	gl.GenBuffers(1, &b.id)
	// COPY_WRITE_BUFFER does not touch vertex array state.
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	if desc.Contents != nil {
		gl.BufferData(gl.COPY_WRITE_BUFFER, int(desc.Size), gl.Ptr(desc.Contents), hint)
	} else {
		gl.BufferData(gl.COPY_WRITE_BUFFER, int(desc.Size), nil, hint)
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	if err := glError("create buffer " + desc.Label); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (d *Device) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	if desc.Shader.Language != gpu.ShaderLanguageGLSL {
		return nil, fmt.Errorf("pipeline %q: opengl needs GLSL, got %s", desc.Label, desc.Shader.Language)
	}
	mode, ok := drawMode(desc.Topology)
	if !ok {
		return nil, fmt.Errorf("pipeline %q: unsupported topology %s", desc.Label, desc.Topology)
	}

	program, err := CompileProgram(desc.Shader.Vertex, desc.Shader.Fragment)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}
	for _, u := range desc.Uniforms {
		if err := bindUniformBlock(program, u.Name, u.Binding); err != nil {
			gl.DeleteProgram(program)
			return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
		}
	}

	p := &Pipeline{desc: desc, program: program, mode: mode}
	gl.GenVertexArrays(1, &p.vao)
	if err := glError("create pipeline " + desc.Label); err != nil {
		p.Release()
		return nil, err
	}

	d.log.Debug("pipeline created",
		zap.String("label", desc.Label),
		zap.Uint32("program", program),
		zap.Stringer("topology", desc.Topology),
	)
	return p, nil
}

func (d *Device) CreateBindGroup(p gpu.Pipeline, entries ...gpu.BindGroupEntry) (gpu.BindGroup, error) {
	g := &BindGroup{entries: make([]bindEntry, 0, len(entries))}
	for _, e := range entries {
		u, ok := p.Desc().Uniform(e.Binding)
		if !ok {
			return nil, fmt.Errorf("bind group: pipeline %q has no binding %d", p.Desc().Label, e.Binding)
		}
		buf, ok := e.Buffer.(*Buffer)
		if !ok {
			return nil, fmt.Errorf("bind group: binding %d is not an opengl buffer", e.Binding)
		}
		if buf.size < u.Size {
			return nil, fmt.Errorf("bind group: binding %d needs %d bytes, buffer %q has %d", e.Binding, u.Size, buf.label, buf.size)
		}
		g.entries = append(g.entries, bindEntry{binding: e.Binding, buffer: buf})
	}
	return g, nil
}

func (d *Device) CreateCommandEncoder() (gpu.CommandEncoder, error) {
	return &Encoder{}, nil
}

func (d *Device) Queue() gpu.Queue { return d.queue }

// Release is a no-op; the context is owned by the window.
func (d *Device) Release() {}

func drawMode(t gpu.Topology) (uint32, bool) {
	switch t {
	case gpu.TopologyPointList:
		return gl.POINTS, true
	case gpu.TopologyLineList:
		return gl.LINES, true
	case gpu.TopologyLineStrip:
		return gl.LINE_STRIP, true
	case gpu.TopologyTriangleList:
		return gl.TRIANGLES, true
	default:
		return 0, false
	}
}

// Queue applies writes immediately and runs submitted command buffers.
type Queue struct {
	dev *Device
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("write buffer: not an opengl buffer")
	}
	if b.id == 0 {
		return fmt.Errorf("write buffer %q: released", b.label)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("write buffer %q: %d bytes at %d overflows %d", b.label, len(data), offset, b.size)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, int(offset), len(data), gl.Ptr(data))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return glError("write buffer " + b.label)
}

func (q *Queue) Submit(cmd gpu.CommandBuffer) error {
	cb, ok := cmd.(*CommandBuffer)
	if !ok {
		return fmt.Errorf("submit: not an opengl command buffer")
	}
	if cb.submitted {
		return fmt.Errorf("submit: command buffer already submitted")
	}
	cb.submitted = true
	for _, c := range cb.commands {
		c()
	}
	return glError("submit")
}

// Buffer is a GL buffer object.
type Buffer struct {
	id    uint32
	label string
	size  uint64
	usage gpu.BufferUsage
}

func (b *Buffer) Size() uint64          { return b.size }
func (b *Buffer) Usage() gpu.BufferUsage { return b.usage }

func (b *Buffer) Release() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

// Pipeline is a linked program plus the vertex array object its draws use.
type Pipeline struct {
	desc    gpu.PipelineDesc
	program uint32
	vao     uint32
	mode    uint32
}

func (p *Pipeline) Desc() gpu.PipelineDesc { return p.desc }

func (p *Pipeline) Release() {
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}

type bindEntry struct {
	binding uint32
	buffer  *Buffer
}

// BindGroup holds uniform buffers bound with glBindBufferBase at draw time.
type BindGroup struct {
	entries []bindEntry
}

// Release is a no-op; the group does not own its buffers.
func (g *BindGroup) Release() {}

var (
	_ gpu.Device    = (*Device)(nil)
	_ gpu.Queue     = (*Queue)(nil)
	_ gpu.Buffer    = (*Buffer)(nil)
	_ gpu.Pipeline  = (*Pipeline)(nil)
	_ gpu.BindGroup = (*BindGroup)(nil)
)
