package wgpubackend

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

// Encoder wraps a wgpu command encoder.
type Encoder struct {
	enc  *wgpu.CommandEncoder
	open bool
}

func (e *Encoder) BeginRenderPass(desc gpu.RenderPassDesc) (gpu.RenderPass, error) {
	if e.open {
		return nil, errors.New("begin render pass: pass already open")
	}
	v, ok := desc.View.(*View)
	if !ok || v.view == nil {
		return nil, errors.New("begin render pass: needs a live webgpu view")
	}
	c := desc.ClearColor
	pass := e.enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       v.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A},
		}},
	})
	e.open = true
	return &Pass{enc: e, pass: pass}, nil
}

func (e *Encoder) Finish() (gpu.CommandBuffer, error) {
	if e.open {
		return nil, errors.New("finish: render pass still open")
	}
	cb, err := e.enc.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &CommandBuffer{buf: cb}, nil
}

func (e *Encoder) Release() {
	if e.enc != nil {
		e.enc.Release()
		e.enc = nil
	}
}

// Pass wraps a wgpu render pass encoder. Type mismatches are reported by End.
type Pass struct {
	enc  *Encoder
	pass *wgpu.RenderPassEncoder
	err  error
}

func (p *Pass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Pass) SetPipeline(pl gpu.Pipeline) {
	wp, ok := pl.(*Pipeline)
	if !ok {
		p.fail(errors.New("set pipeline: not a webgpu pipeline"))
		return
	}
	p.pass.SetPipeline(wp.pipeline)
}

func (p *Pass) SetBindGroup(index uint32, g gpu.BindGroup) {
	wg, ok := g.(*BindGroup)
	if !ok {
		p.fail(errors.New("set bind group: not a webgpu bind group"))
		return
	}
	p.pass.SetBindGroup(index, wg.group, nil)
}

func (p *Pass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok {
		p.fail(errors.New("set vertex buffer: not a webgpu buffer"))
		return
	}
	p.pass.SetVertexBuffer(slot, b.buf, 0, wgpu.WholeSize)
}

func (p *Pass) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat) {
	b, ok := buf.(*Buffer)
	if !ok {
		p.fail(errors.New("set index buffer: not a webgpu buffer"))
		return
	}
	var f wgpu.IndexFormat
	switch format {
	case gpu.IndexFormatUint16:
		f = wgpu.IndexFormatUint16
	case gpu.IndexFormatUint32:
		f = wgpu.IndexFormatUint32
	default:
		p.fail(fmt.Errorf("set index buffer: unknown format %d", format))
		return
	}
	p.pass.SetIndexBuffer(b.buf, f, 0, wgpu.WholeSize)
}

func (p *Pass) DrawIndexed(indexCount uint32) {
	p.pass.DrawIndexed(indexCount, 1, 0, 0, 0)
}

func (p *Pass) End() error {
	if !p.enc.open {
		return errors.New("end render pass: no open pass")
	}
	p.enc.open = false
	p.pass.End()
	p.pass.Release()
	return p.err
}

// CommandBuffer wraps a finished wgpu command buffer.
type CommandBuffer struct {
	buf *wgpu.CommandBuffer
}

func (c *CommandBuffer) Release() {
	if c.buf != nil {
		c.buf.Release()
		c.buf = nil
	}
}

var (
	_ gpu.CommandEncoder = (*Encoder)(nil)
	_ gpu.RenderPass     = (*Pass)(nil)
	_ gpu.CommandBuffer  = (*CommandBuffer)(nil)
)
