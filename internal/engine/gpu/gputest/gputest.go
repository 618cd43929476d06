// Package gputest provides an in-memory gpu.Device that records every call.
// Tests use it to observe allocation, upload and submission order without a
// real graphics context, and to inject failures at any operation.
package gputest

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

// Operation names recorded in the device log.
const (
	OpCreateBuffer    = "create-buffer"
	OpCreatePipeline  = "create-pipeline"
	OpCreateBindGroup = "create-bind-group"
	OpCreateEncoder   = "create-encoder"
	OpWriteBuffer     = "write-buffer"
	OpBeginPass       = "begin-pass"
	OpEndPass         = "end-pass"
	OpFinish          = "finish"
	OpSubmit          = "submit"
	OpAcquireView     = "acquire-view"
	OpPresent         = "present"
	OpResize          = "resize"
)

// Format is the texture format reported by fake surfaces.
const Format gpu.TextureFormat = 0x17

// Entry is one recorded device call.
type Entry struct {
	Op    string
	Label string
}

// Command is one recorded render pass command.
type Command struct {
	Op         string
	Pipeline   *Pipeline
	BindGroup  *BindGroup
	Buffer     *Buffer
	Index      uint32
	Format     gpu.IndexFormat
	Count      uint32
	ClearColor gpu.Color
}

// Device is a recording gpu.Device.
type Device struct {
	log         []Entry
	failures    map[string]error
	buffers     []*Buffer
	pipelines   []*Pipeline
	submissions [][]Command
	queue       *Queue
	released    bool
}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	d := &Device{failures: make(map[string]error)}
	d.queue = &Queue{dev: d}
	return d
}

// FailOn makes every later call of op return err. A nil err clears it.
func (d *Device) FailOn(op string, err error) {
	if err == nil {
		delete(d.failures, op)
		return
	}
	d.failures[op] = err
}

func (d *Device) record(op, label string) error {
	d.log = append(d.log, Entry{Op: op, Label: label})
	if err, ok := d.failures[op]; ok {
		return err
	}
	return nil
}

// Log returns a copy of the call log.
func (d *Device) Log() []Entry {
	out := make([]Entry, len(d.log))
	copy(out, d.log)
	return out
}

// Ops returns the operation names in call order.
func (d *Device) Ops() []string {
	ops := make([]string, len(d.log))
	for i, e := range d.log {
		ops[i] = e.Op
	}
	return ops
}

// Count returns how many times op was called.
func (d *Device) Count(op string) int {
	n := 0
	for _, e := range d.log {
		if e.Op == op {
			n++
		}
	}
	return n
}

// ResetLog clears the call log but keeps resources.
func (d *Device) ResetLog() {
	d.log = d.log[:0]
}

// Buffers returns every buffer created so far.
func (d *Device) Buffers() []*Buffer {
	out := make([]*Buffer, len(d.buffers))
	copy(out, d.buffers)
	return out
}

// Submissions returns the recorded commands of each submitted buffer.
func (d *Device) Submissions() [][]Command {
	out := make([][]Command, len(d.submissions))
	copy(out, d.submissions)
	return out
}

// Released reports whether Release was called.
func (d *Device) Released() bool { return d.released }

func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	if err := d.record(OpCreateBuffer, desc.Label); err != nil {
		return nil, err
	}
	if desc.Size == 0 {
		return nil, errors.New("gputest: zero-sized buffer")
	}
	if desc.Contents != nil && uint64(len(desc.Contents)) != desc.Size {
		return nil, fmt.Errorf("gputest: contents are %d bytes, buffer is %d", len(desc.Contents), desc.Size)
	}
	b := &Buffer{
		label: desc.Label,
		usage: desc.Usage,
		data:  make([]byte, desc.Size),
	}
	copy(b.data, desc.Contents)
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *Device) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	if err := d.record(OpCreatePipeline, desc.Label); err != nil {
		return nil, err
	}
	p := &Pipeline{desc: desc}
	d.pipelines = append(d.pipelines, p)
	return p, nil
}

func (d *Device) CreateBindGroup(p gpu.Pipeline, entries ...gpu.BindGroupEntry) (gpu.BindGroup, error) {
	if err := d.record(OpCreateBindGroup, p.Desc().Label); err != nil {
		return nil, err
	}
	for _, e := range entries {
		u, ok := p.Desc().Uniform(e.Binding)
		if !ok {
			return nil, fmt.Errorf("gputest: pipeline has no binding %d", e.Binding)
		}
		if e.Buffer.Size() < u.Size {
			return nil, fmt.Errorf("gputest: binding %d needs %d bytes, buffer has %d", e.Binding, u.Size, e.Buffer.Size())
		}
	}
	return &BindGroup{pipeline: p.(*Pipeline), entries: entries}, nil
}

func (d *Device) CreateCommandEncoder() (gpu.CommandEncoder, error) {
	if err := d.record(OpCreateEncoder, ""); err != nil {
		return nil, err
	}
	return &Encoder{dev: d}, nil
}

func (d *Device) Queue() gpu.Queue { return d.queue }

func (d *Device) Release() { d.released = true }

// Queue is the recording device's queue.
type Queue struct {
	dev *Device
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b := buf.(*Buffer)
	if err := q.dev.record(OpWriteBuffer, b.label); err != nil {
		return err
	}
	if b.released {
		return fmt.Errorf("gputest: write to released buffer %q", b.label)
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("gputest: write of %d bytes at %d overflows %q (%d bytes)", len(data), offset, b.label, len(b.data))
	}
	copy(b.data[offset:], data)
	b.writes = append(b.writes, Write{Offset: offset, Size: len(data)})
	return nil
}

func (q *Queue) Submit(cmd gpu.CommandBuffer) error {
	if err := q.dev.record(OpSubmit, ""); err != nil {
		return err
	}
	cb := cmd.(*CommandBuffer)
	if cb.released {
		return errors.New("gputest: submit of released command buffer")
	}
	q.dev.submissions = append(q.dev.submissions, cb.commands)
	return nil
}

// Write is one recorded buffer write.
type Write struct {
	Offset uint64
	Size   int
}

// Buffer is a recording buffer backed by a byte slice.
type Buffer struct {
	label    string
	usage    gpu.BufferUsage
	data     []byte
	writes   []Write
	released bool
}

func (b *Buffer) Size() uint64          { return uint64(len(b.data)) }
func (b *Buffer) Usage() gpu.BufferUsage { return b.usage }
func (b *Buffer) Release()              { b.released = true }

// Label returns the buffer label.
func (b *Buffer) Label() string { return b.label }

// Data returns a copy of the buffer contents.
func (b *Buffer) Data() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Writes returns the queue writes this buffer received.
func (b *Buffer) Writes() []Write {
	out := make([]Write, len(b.writes))
	copy(out, b.writes)
	return out
}

// Released reports whether Release was called.
func (b *Buffer) Released() bool { return b.released }

// Pipeline is a recorded pipeline.
type Pipeline struct {
	desc     gpu.PipelineDesc
	released bool
}

func (p *Pipeline) Desc() gpu.PipelineDesc { return p.desc }
func (p *Pipeline) Release()               { p.released = true }

// BindGroup is a recorded bind group.
type BindGroup struct {
	pipeline *Pipeline
	entries  []gpu.BindGroupEntry
	released bool
}

func (g *BindGroup) Release() { g.released = true }

// Entries returns the bound buffers.
func (g *BindGroup) Entries() []gpu.BindGroupEntry { return g.entries }

// Encoder records render passes.
type Encoder struct {
	dev      *Device
	commands []Command
	open     bool
	finished bool
}

func (e *Encoder) BeginRenderPass(desc gpu.RenderPassDesc) (gpu.RenderPass, error) {
	if err := e.dev.record(OpBeginPass, desc.Label); err != nil {
		return nil, err
	}
	if e.open {
		return nil, errors.New("gputest: render pass already open")
	}
	v, ok := desc.View.(*View)
	if !ok || v.released {
		return nil, errors.New("gputest: render pass needs a live view")
	}
	e.open = true
	e.commands = append(e.commands, Command{Op: OpBeginPass, ClearColor: desc.ClearColor})
	return &Pass{enc: e}, nil
}

func (e *Encoder) Finish() (gpu.CommandBuffer, error) {
	if err := e.dev.record(OpFinish, ""); err != nil {
		return nil, err
	}
	if e.open {
		return nil, errors.New("gputest: finish with open render pass")
	}
	e.finished = true
	return &CommandBuffer{commands: e.commands}, nil
}

func (e *Encoder) Release() {}

// Pass records commands into its encoder.
type Pass struct {
	enc       *Encoder
	pipeline  *Pipeline
	vertex    *Buffer
	index     *Buffer
	format    gpu.IndexFormat
	bindGroup *BindGroup
	err       error
}

func (p *Pass) add(c Command) { p.enc.commands = append(p.enc.commands, c) }

func (p *Pass) SetPipeline(pl gpu.Pipeline) {
	p.pipeline = pl.(*Pipeline)
	p.add(Command{Op: "set-pipeline", Pipeline: p.pipeline})
}

func (p *Pass) SetBindGroup(index uint32, g gpu.BindGroup) {
	p.bindGroup = g.(*BindGroup)
	p.add(Command{Op: "set-bind-group", Index: index, BindGroup: p.bindGroup})
}

func (p *Pass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	p.vertex = buf.(*Buffer)
	p.add(Command{Op: "set-vertex-buffer", Index: slot, Buffer: p.vertex})
}

func (p *Pass) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat) {
	p.index = buf.(*Buffer)
	p.format = format
	p.add(Command{Op: "set-index-buffer", Buffer: p.index, Format: format})
}

func (p *Pass) DrawIndexed(indexCount uint32) {
	switch {
	case p.pipeline == nil:
		p.err = errors.New("gputest: draw without pipeline")
	case p.vertex == nil || p.index == nil:
		p.err = errors.New("gputest: draw without vertex or index buffer")
	case uint64(indexCount)*uint64(p.format.Size()) > p.index.Size():
		p.err = fmt.Errorf("gputest: draw of %d indices overruns index buffer", indexCount)
	}
	p.add(Command{Op: "draw-indexed", Count: indexCount})
}

func (p *Pass) End() error {
	if err := p.enc.dev.record(OpEndPass, ""); err != nil {
		return err
	}
	p.enc.open = false
	p.add(Command{Op: OpEndPass})
	return p.err
}

// CommandBuffer is a finished recording.
type CommandBuffer struct {
	commands []Command
	released bool
}

func (c *CommandBuffer) Release() { c.released = true }

// Surface is a recording presentation target sharing its device's log.
type Surface struct {
	dev           *Device
	width, height int
	acquired      int
	released      int
	current       *View
}

// NewSurface returns a surface attached to dev.
func NewSurface(dev *Device, width, height int) *Surface {
	return &Surface{dev: dev, width: width, height: height}
}

func (s *Surface) Format() gpu.TextureFormat { return Format }

func (s *Surface) CurrentView() (gpu.View, error) {
	if err := s.dev.record(OpAcquireView, ""); err != nil {
		return nil, err
	}
	if s.current != nil && !s.current.released {
		return nil, errors.New("gputest: previous view still held")
	}
	s.acquired++
	s.current = &View{surface: s}
	return s.current, nil
}

func (s *Surface) Present() error {
	return s.dev.record(OpPresent, "")
}

func (s *Surface) Resize(width, height int) error {
	if err := s.dev.record(OpResize, fmt.Sprintf("%dx%d", width, height)); err != nil {
		return err
	}
	s.width, s.height = width, height
	return nil
}

// Size returns the configured size.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// OutstandingViews returns views acquired but not yet released.
func (s *Surface) OutstandingViews() int { return s.acquired - s.released }

// View is a recording per-frame view.
type View struct {
	surface  *Surface
	released bool
}

func (v *View) Release() {
	if !v.released {
		v.released = true
		v.surface.released++
	}
}

var (
	_ gpu.Device         = (*Device)(nil)
	_ gpu.Queue          = (*Queue)(nil)
	_ gpu.Buffer         = (*Buffer)(nil)
	_ gpu.Pipeline       = (*Pipeline)(nil)
	_ gpu.BindGroup      = (*BindGroup)(nil)
	_ gpu.CommandEncoder = (*Encoder)(nil)
	_ gpu.RenderPass     = (*Pass)(nil)
	_ gpu.CommandBuffer  = (*CommandBuffer)(nil)
	_ gpu.Surface        = (*Surface)(nil)
	_ gpu.View           = (*View)(nil)
)
