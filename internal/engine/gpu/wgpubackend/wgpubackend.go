// Package wgpubackend implements the gpu interfaces on wgpu-native through
// github.com/cogentcore/webgpu, presenting into a GLFW window.
package wgpubackend

import (
	"context"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/internal/logger"
)

// Window is the part of a GLFW window the backend needs.
type Window interface {
	Handle() *glfw.Window
	DrawableSize() (int, int)
}

// Options tune adapter selection and presentation.
type Options struct {
	// VSync selects FIFO presentation; otherwise frames present immediately.
	VSync bool
	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool
}

// Open creates the instance, surface, adapter and device and configures the
// surface to the window's drawable size with its preferred format.
func Open(ctx context.Context, win Window, opts Options) (*Device, *Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, gpu.Resource("open webgpu device", err)
	}
	log := logger.Named("webgpu")

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win.Handle()))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
		CompatibleSurface:    surface,
	})
	if err != nil {
		surface.Release()
		instance.Release()
		return nil, nil, gpu.Resource("request adapter", err)
	}
	if err := ctx.Err(); err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, nil, gpu.Resource("request adapter", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Wiresphere Device"})
	if err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, nil, gpu.Resource("request device", err)
	}

	d := &Device{
		log:      log,
		instance: instance,
		adapter:  adapter,
		device:   device,
	}
	d.queue = &Queue{queue: device.GetQueue()}

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		d.Release()
		surface.Release()
		return nil, nil, gpu.Resource("configure surface", errors.New("surface reports no formats"))
	}

	s := &Surface{
		dev:     d,
		surface: surface,
		format:  caps.Formats[0],
		alpha:   wgpu.CompositeAlphaModeOpaque,
		present: wgpu.PresentModeImmediate,
	}
	if opts.VSync {
		s.present = wgpu.PresentModeFifo
	}
	if !supportsOpaque(caps.AlphaModes) && len(caps.AlphaModes) > 0 {
		s.alpha = caps.AlphaModes[0]
	}
	d.surface = s

	width, height := win.DrawableSize()
	if err := s.Resize(width, height); err != nil {
		d.Release()
		return nil, nil, gpu.Resource("configure surface", err)
	}

	log.Info("WebGPU initialized",
		zap.Uint32("format", uint32(s.format)),
		zap.Bool("vsync", opts.VSync),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return d, s, nil
}

func supportsOpaque(modes []wgpu.CompositeAlphaMode) bool {
	for _, m := range modes {
		if m == wgpu.CompositeAlphaModeOpaque {
			return true
		}
	}
	return false
}

// Device is a WebGPU gpu.Device.
type Device struct {
	log      *zap.Logger
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *Queue
	surface  *Surface
}

func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q: zero size", desc.Label)
	}
	usage, err := bufferUsage(desc.Usage)
	if err != nil {
		return nil, fmt.Errorf("buffer %q: %w", desc.Label, err)
	}

	var buf *wgpu.Buffer
	if desc.Contents != nil {
		if uint64(len(desc.Contents)) != desc.Size {
			return nil, fmt.Errorf("buffer %q: contents are %d bytes, size is %d", desc.Label, len(desc.Contents), desc.Size)
		}
		buf, err = d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    desc.Label,
			Contents: desc.Contents,
			Usage:    usage,
		})
	} else {
		buf, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: desc.Label,
			Size:  desc.Size,
			Usage: usage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("buffer %q: %w", desc.Label, err)
	}
	return &Buffer{buf: buf, label: desc.Label, size: desc.Size, usage: desc.Usage}, nil
}

func bufferUsage(u gpu.BufferUsage) (wgpu.BufferUsage, error) {
	switch u {
	case gpu.BufferUsageVertex:
		return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst, nil
	case gpu.BufferUsageIndex:
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst, nil
	case gpu.BufferUsageUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst, nil
	default:
		return 0, fmt.Errorf("unknown usage %s", u)
	}
}

func (d *Device) CreateBindGroup(p gpu.Pipeline, entries ...gpu.BindGroupEntry) (gpu.BindGroup, error) {
	wp, ok := p.(*Pipeline)
	if !ok {
		return nil, errors.New("bind group: not a webgpu pipeline")
	}
	out := make([]wgpu.BindGroupEntry, 0, len(entries))
	for _, e := range entries {
		u, ok := wp.desc.Uniform(e.Binding)
		if !ok {
			return nil, fmt.Errorf("bind group: pipeline %q has no binding %d", wp.desc.Label, e.Binding)
		}
		buf, ok := e.Buffer.(*Buffer)
		if !ok {
			return nil, fmt.Errorf("bind group: binding %d is not a webgpu buffer", e.Binding)
		}
		if buf.size < u.Size {
			return nil, fmt.Errorf("bind group: binding %d needs %d bytes, buffer %q has %d", e.Binding, u.Size, buf.label, buf.size)
		}
		out = append(out, wgpu.BindGroupEntry{
			Binding: e.Binding,
			Buffer:  buf.buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	g, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   wp.desc.Label + " Bind Group",
		Layout:  wp.groupLayout,
		Entries: out,
	})
	if err != nil {
		return nil, fmt.Errorf("bind group: %w", err)
	}
	return &BindGroup{group: g}, nil
}

func (d *Device) CreateCommandEncoder() (gpu.CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	return &Encoder{enc: enc}, nil
}

func (d *Device) Queue() gpu.Queue { return d.queue }

// Release frees the surface, device, adapter and instance.
func (d *Device) Release() {
	if d.surface != nil {
		d.surface.release()
		d.surface = nil
	}
	if d.queue != nil && d.queue.queue != nil {
		d.queue.queue.Release()
		d.queue.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// Queue wraps the device queue.
type Queue struct {
	queue *wgpu.Queue
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return errors.New("write buffer: not a webgpu buffer")
	}
	if b.buf == nil {
		return fmt.Errorf("write buffer %q: released", b.label)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("write buffer %q: %d bytes at %d overflows %d", b.label, len(data), offset, b.size)
	}
	return q.queue.WriteBuffer(b.buf, offset, data)
}

func (q *Queue) Submit(cmd gpu.CommandBuffer) error {
	cb, ok := cmd.(*CommandBuffer)
	if !ok {
		return errors.New("submit: not a webgpu command buffer")
	}
	if cb.buf == nil {
		return errors.New("submit: command buffer released")
	}
	q.queue.Submit(cb.buf)
	return nil
}

// Buffer wraps a wgpu buffer.
type Buffer struct {
	buf   *wgpu.Buffer
	label string
	size  uint64
	usage gpu.BufferUsage
}

func (b *Buffer) Size() uint64          { return b.size }
func (b *Buffer) Usage() gpu.BufferUsage { return b.usage }

func (b *Buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

// BindGroup wraps a wgpu bind group.
type BindGroup struct {
	group *wgpu.BindGroup
}

func (g *BindGroup) Release() {
	if g.group != nil {
		g.group.Release()
		g.group = nil
	}
}

var (
	_ gpu.Device    = (*Device)(nil)
	_ gpu.Queue     = (*Queue)(nil)
	_ gpu.Buffer    = (*Buffer)(nil)
	_ gpu.BindGroup = (*BindGroup)(nil)
)
