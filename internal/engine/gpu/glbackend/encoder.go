package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

// Encoder records GL calls as closures. Nothing touches the context until
// the finished command buffer is submitted.
type Encoder struct {
	commands []func()
	open     bool
	finished bool
}

func (e *Encoder) record(c func()) { e.commands = append(e.commands, c) }

func (e *Encoder) BeginRenderPass(desc gpu.RenderPassDesc) (gpu.RenderPass, error) {
	if e.finished {
		return nil, errors.New("begin render pass: encoder finished")
	}
	if e.open {
		return nil, errors.New("begin render pass: pass already open")
	}
	v, ok := desc.View.(*View)
	if !ok || v.released {
		return nil, errors.New("begin render pass: needs a live opengl view")
	}

	width, height := int32(v.width), int32(v.height)
	c := desc.ClearColor
	e.record(func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, width, height)
		gl.ClearColor(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
		gl.Clear(gl.COLOR_BUFFER_BIT)
	})
	e.open = true
	return &Pass{enc: e}, nil
}

func (e *Encoder) Finish() (gpu.CommandBuffer, error) {
	if e.open {
		return nil, errors.New("finish: render pass still open")
	}
	if e.finished {
		return nil, errors.New("finish: encoder already finished")
	}
	e.finished = true
	return &CommandBuffer{commands: e.commands}, nil
}

func (e *Encoder) Release() { e.commands = nil }

// Pass records draw state and calls into its encoder.
type Pass struct {
	enc       *Encoder
	pipeline  *Pipeline
	vertex    *Buffer
	index     *Buffer
	indexType uint32
	indexSize uint64
	err       error
}

func (p *Pass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Pass) SetPipeline(pl gpu.Pipeline) {
	glp, ok := pl.(*Pipeline)
	if !ok {
		p.fail(errors.New("set pipeline: not an opengl pipeline"))
		return
	}
	p.pipeline = glp
	p.enc.record(func() {
		gl.UseProgram(glp.program)
		gl.BindVertexArray(glp.vao)
	})
}

func (p *Pass) SetBindGroup(index uint32, g gpu.BindGroup) {
	glg, ok := g.(*BindGroup)
	if !ok {
		p.fail(errors.New("set bind group: not an opengl bind group"))
		return
	}
	p.enc.record(func() {
		for _, e := range glg.entries {
			gl.BindBufferBase(gl.UNIFORM_BUFFER, e.binding, e.buffer.id)
		}
	})
}

func (p *Pass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	if slot != 0 {
		p.fail(fmt.Errorf("set vertex buffer: slot %d, only slot 0 is supported", slot))
		return
	}
	b, ok := buf.(*Buffer)
	if !ok {
		p.fail(errors.New("set vertex buffer: not an opengl buffer"))
		return
	}
	if p.pipeline == nil {
		p.fail(errors.New("set vertex buffer: no pipeline set"))
		return
	}
	p.vertex = b
	layout := p.pipeline.desc.Vertex
	p.enc.record(func() {
		gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
		for _, a := range layout.Attributes {
			gl.EnableVertexAttribArray(a.Location)
			gl.VertexAttribPointerWithOffset(a.Location, int32(a.Format.Components()), gl.FLOAT, false, int32(layout.Stride), uintptr(a.Offset))
		}
	})
}

func (p *Pass) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat) {
	b, ok := buf.(*Buffer)
	if !ok {
		p.fail(errors.New("set index buffer: not an opengl buffer"))
		return
	}
	switch format {
	case gpu.IndexFormatUint16:
		p.indexType = gl.UNSIGNED_SHORT
	case gpu.IndexFormatUint32:
		p.indexType = gl.UNSIGNED_INT
	default:
		p.fail(fmt.Errorf("set index buffer: unknown format %d", format))
		return
	}
	p.index = b
	p.indexSize = uint64(format.Size())
	p.enc.record(func() {
		// Element array binding is vertex array state; the pipeline's VAO is bound.
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.id)
	})
}

func (p *Pass) DrawIndexed(indexCount uint32) {
	switch {
	case p.pipeline == nil:
		p.fail(errors.New("draw: no pipeline set"))
		return
	case p.vertex == nil || p.index == nil:
		p.fail(errors.New("draw: vertex or index buffer missing"))
		return
	case uint64(indexCount)*p.indexSize > p.index.size:
		p.fail(fmt.Errorf("draw: %d indices overrun index buffer %q", indexCount, p.index.label))
		return
	}
	mode, indexType := p.pipeline.mode, p.indexType
	p.enc.record(func() {
		gl.DrawElementsWithOffset(mode, int32(indexCount), indexType, 0)
	})
}

func (p *Pass) End() error {
	if !p.enc.open {
		return errors.New("end render pass: no open pass")
	}
	p.enc.open = false
	p.enc.record(func() {
		gl.BindVertexArray(0)
		gl.UseProgram(0)
	})
	return p.err
}

// CommandBuffer is a finished list of recorded GL calls.
type CommandBuffer struct {
	commands  []func()
	submitted bool
}

func (c *CommandBuffer) Release() { c.commands = nil }

var (
	_ gpu.CommandEncoder = (*Encoder)(nil)
	_ gpu.RenderPass     = (*Pass)(nil)
	_ gpu.CommandBuffer  = (*CommandBuffer)(nil)
)
