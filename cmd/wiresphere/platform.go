package main

import (
	"context"
	"fmt"

	"github.com/Faultbox/wiresphere/internal/app"
	"github.com/Faultbox/wiresphere/internal/config"
	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/internal/engine/gpu/glbackend"
	"github.com/Faultbox/wiresphere/internal/engine/gpu/wgpubackend"
	"github.com/Faultbox/wiresphere/internal/engine/window"
)

// openPlatform creates the window and device for the configured backend.
func openPlatform(ctx context.Context, cfg *config.Config) (*app.Platform, error) {
	wcfg := window.Config{
		Title:      app.Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}

	switch cfg.Graphics.Backend {
	case config.BackendOpenGL:
		win, err := window.New(wcfg)
		if err != nil {
			return nil, gpu.Resource("create window", err)
		}
		dev, surface, err := glbackend.Open(ctx, win)
		if err != nil {
			win.Close()
			return nil, err
		}
		return &app.Platform{
			Window:   win,
			Device:   dev,
			Surface:  surface,
			Language: gpu.ShaderLanguageGLSL,
		}, nil

	case config.BackendWebGPU:
		win, err := window.NewGLFW(wcfg)
		if err != nil {
			return nil, gpu.Resource("create window", err)
		}
		dev, surface, err := wgpubackend.Open(ctx, win, wgpubackend.Options{VSync: cfg.Graphics.VSync})
		if err != nil {
			win.Close()
			return nil, err
		}
		return &app.Platform{
			Window:   win,
			Device:   dev,
			Surface:  surface,
			Language: gpu.ShaderLanguageWGSL,
		}, nil

	default:
		return nil, gpu.Config("open platform", fmt.Errorf("%w: %q", app.ErrUnknownBackend, cfg.Graphics.Backend))
	}
}
