package window

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/engine/input"
	"github.com/Faultbox/wiresphere/internal/logger"
)

// GLFWWindow is a GLFW window with no client API, used as a WebGPU surface
// target. Events arrive through callbacks and are queued until PollEvents.
type GLFWWindow struct {
	config Config
	window *glfw.Window
	events input.Queue
}

// NewGLFW creates a GLFW window.
func NewGLFW(cfg Config) (*GLFWWindow, error) {
	logger.Info("initializing GLFW")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw.Init failed: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	width, height := cfg.Width, cfg.Height
	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if mode := monitor.GetVideoMode(); mode != nil {
			width, height = mode.Width, mode.Height
		}
	}

	win, err := glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	w := &GLFWWindow{config: cfg, window: win}
	win.SetCloseCallback(func(*glfw.Window) {
		w.events.Push(input.Event{Type: input.EventQuit})
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events.Push(input.Event{Type: input.EventWindowResize, Width: width, Height: height})
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			w.events.Push(input.Event{Type: input.EventKeyDown, Key: glfwKey(key)})
		case glfw.Release:
			w.events.Push(input.Event{Type: input.EventKeyUp, Key: glfwKey(key)})
		}
	})

	logger.Info("window created",
		zap.String("api", "none"),
		zap.String("title", cfg.Title),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("fullscreen", cfg.Fullscreen),
	)

	return w, nil
}

// Handle returns the underlying GLFW window.
func (w *GLFWWindow) Handle() *glfw.Window { return w.window }

// DrawableSize returns the framebuffer size in pixels.
func (w *GLFWWindow) DrawableSize() (int, int) {
	return w.window.GetFramebufferSize()
}

// VSync reports whether presentation should wait for vertical blank.
func (w *GLFWWindow) VSync() bool { return w.config.VSync }

// PollEvents processes pending GLFW events and drains them into dst.
func (w *GLFWWindow) PollEvents(dst []input.Event) []input.Event {
	glfw.PollEvents()
	return w.events.PollEvents(dst)
}

// Close destroys the window and terminates GLFW.
func (w *GLFWWindow) Close() {
	logger.Info("closing window")
	if w.window != nil {
		w.window.Destroy()
	}
	glfw.Terminate()
}

func glfwKey(k glfw.Key) input.Key {
	switch k {
	case glfw.KeyEscape:
		return input.KeyEscape
	case glfw.KeyQ:
		return input.KeyQ
	default:
		return input.KeyUnknown
	}
}

var _ input.Source = (*GLFWWindow)(nil)
