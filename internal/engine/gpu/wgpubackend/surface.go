package wgpubackend

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

// Surface is a configured wgpu surface.
type Surface struct {
	dev     *Device
	surface *wgpu.Surface
	format  wgpu.TextureFormat
	alpha   wgpu.CompositeAlphaMode
	present wgpu.PresentMode
	width   int
	height  int
	current *View
}

func (s *Surface) Format() gpu.TextureFormat { return gpu.TextureFormat(s.format) }

func (s *Surface) CurrentView() (gpu.View, error) {
	if s.current != nil && s.current.view != nil {
		return nil, errors.New("current view: previous view still held")
	}
	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	s.current = &View{texture: tex, view: view}
	return s.current, nil
}

func (s *Surface) Present() error {
	if s.current == nil || s.current.view == nil {
		return errors.New("present: no view acquired")
	}
	s.surface.Present()
	return nil
}

// Resize reconfigures the surface. The size must be positive.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize: invalid size %dx%d", width, height)
	}
	s.surface.Configure(s.dev.adapter, s.dev.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: s.present,
		AlphaMode:   s.alpha,
	})
	s.width, s.height = width, height
	return nil
}

// Size returns the configured size.
func (s *Surface) Size() (int, int) { return s.width, s.height }

func (s *Surface) release() {
	if s.current != nil {
		s.current.Release()
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
}

// View is the current surface texture and its view.
type View struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (v *View) Release() {
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
	if v.texture != nil {
		v.texture.Release()
		v.texture = nil
	}
}

var (
	_ gpu.Surface = (*Surface)(nil)
	_ gpu.View    = (*View)(nil)
)
