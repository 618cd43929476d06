// Package app wires configuration, a graphics backend, the sphere scene,
// the frame driver and the frame loop into one viewer.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/config"
	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/internal/engine/input"
	"github.com/Faultbox/wiresphere/internal/engine/loop"
	"github.com/Faultbox/wiresphere/internal/engine/renderer"
	"github.com/Faultbox/wiresphere/internal/engine/scene"
	"github.com/Faultbox/wiresphere/internal/engine/shader"
	"github.com/Faultbox/wiresphere/internal/logger"
)

// Title is the window title.
const Title = "Wiresphere"

// Window is a platform window: an event source that can be closed.
type Window interface {
	input.Source
	Close()
}

// Platform is an opened window with its device and surface.
type Platform struct {
	Window   Window
	Device   gpu.Device
	Surface  gpu.Surface
	Language gpu.ShaderLanguage
}

// Opener creates the platform for a configuration.
type Opener func(ctx context.Context, cfg *config.Config) (*Platform, error)

// App is the viewer instance.
type App struct {
	config    *config.Config
	platform  *Platform
	sphere    *scene.Sphere
	driver    *renderer.Driver
	scheduler loop.Scheduler
	log       *zap.Logger
}

// New opens the platform and builds the scene. On error everything opened
// so far is closed.
func New(ctx context.Context, cfg *config.Config, open Opener) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		config: cfg,
		log:    logger.Named("app"),
	}
	a.log.Info("initializing viewer",
		zap.String("backend", cfg.Graphics.Backend),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("latitudeBands", cfg.Sphere.LatitudeBands),
		zap.Int("longitudeBands", cfg.Sphere.LongitudeBands),
	)

	p, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Graphics.Backend, err)
	}
	a.platform = p

	a.sphere, err = scene.NewSphere(p.Device, p.Surface.Format(), scene.Config{
		LatitudeBands:  cfg.Sphere.LatitudeBands,
		LongitudeBands: cfg.Sphere.LongitudeBands,
		Language:       p.Language,
		Shaders:        shader.Wireframe(),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create sphere: %w", err)
	}

	a.driver = renderer.New(p.Device, p.Surface, a.sphere, renderer.Config{
		AngleStep:  cfg.Animation.AngleStep,
		ClearColor: cfg.ClearColor(),
	})

	a.scheduler = loop.NewRefreshLoop(input.New(p.Window), loop.Config{
		VSync:     cfg.Graphics.VSync,
		FPSLimit:  cfg.Graphics.FPSLimit,
		MaxFrames: cfg.Animation.MaxFrames,
	}, a.resize)

	a.log.Info("viewer initialized",
		zap.Int("vertices", a.sphere.Mesh().VertexCount()),
		zap.Int("indices", a.sphere.Mesh().IndexCount()),
	)
	return a, nil
}

// SetScheduler replaces the frame loop, e.g. with loop.FixedTicks.
func (a *App) SetScheduler(s loop.Scheduler) {
	a.scheduler = s
}

// Driver returns the frame driver.
func (a *App) Driver() *renderer.Driver { return a.driver }

// Run drives frames until the scheduler stops. A device error halts the
// driver and is returned.
func (a *App) Run(ctx context.Context) error {
	err := a.scheduler.Run(ctx, a.driver.Step)
	a.log.Info("frame loop stopped",
		zap.Uint64("frames", a.driver.Frames()),
		zap.Float64("angle", a.driver.Angle()),
		zap.Stringer("state", a.driver.State()),
	)
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

// resize reconfigures the surface. A zero size means the window is
// minimized and is skipped.
func (a *App) resize(width, height int) error {
	if width <= 0 || height <= 0 {
		a.log.Debug("skipping resize of minimized window", zap.Int("width", width), zap.Int("height", height))
		return nil
	}
	if err := a.platform.Surface.Resize(width, height); err != nil {
		return gpu.Resource("resize surface", err)
	}
	a.log.Debug("surface resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// Close releases GPU resources and closes the window.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.sphere != nil {
		a.sphere.Release()
		a.sphere = nil
	}
	if a.platform != nil {
		if a.platform.Device != nil {
			a.platform.Device.Release()
		}
		if a.platform.Window != nil {
			a.platform.Window.Close()
		}
		a.platform = nil
	}
}

// ErrUnknownBackend is returned by openers for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown graphics backend")
