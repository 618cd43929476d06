package glbackend

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

// SurfaceFormat is the format reported for the default framebuffer.
const SurfaceFormat gpu.TextureFormat = 0x8058 // GL_RGBA8

// Surface presents the default framebuffer of a window by swapping buffers.
type Surface struct {
	win           Window
	width, height int
	current       *View
}

func (s *Surface) Format() gpu.TextureFormat { return SurfaceFormat }

func (s *Surface) CurrentView() (gpu.View, error) {
	if s.current != nil && !s.current.released {
		return nil, errors.New("current view: previous view still held")
	}
	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("current view: surface is %dx%d", s.width, s.height)
	}
	s.current = &View{width: s.width, height: s.height}
	return s.current, nil
}

func (s *Surface) Present() error {
	s.win.SwapBuffers()
	return glError("present")
}

func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize: invalid size %dx%d", width, height)
	}
	s.width, s.height = width, height
	return nil
}

// View is the default framebuffer at the size it had when acquired.
type View struct {
	width, height int
	released      bool
}

func (v *View) Release() { v.released = true }

var (
	_ gpu.Surface = (*Surface)(nil)
	_ gpu.View    = (*View)(nil)
)
