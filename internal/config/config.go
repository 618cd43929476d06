// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"math"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
	"github.com/Faultbox/wiresphere/pkg/sphere"
)

// Backend names accepted in graphics.backend.
const (
	BackendOpenGL = "opengl"
	BackendWebGPU = "webgpu"
)

// Config holds all viewer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Sphere    SphereConfig    `yaml:"sphere"`
	Animation AnimationConfig `yaml:"animation"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Backend    string `yaml:"backend"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// SphereConfig holds mesh tessellation.
type SphereConfig struct {
	LatitudeBands  int `yaml:"latitude_bands"`
	LongitudeBands int `yaml:"longitude_bands"`
}

// AnimationConfig holds per-frame rotation and clear settings.
type AnimationConfig struct {
	AngleStep  float64    `yaml:"angle_step"`  // radians per frame
	ClearColor [4]float64 `yaml:"clear_color"` // RGBA, 0..1
	MaxFrames  uint64     `yaml:"max_frames"`  // 0 = run until closed
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Backend:    BackendOpenGL,
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Sphere: SphereConfig{
			LatitudeBands:  sphere.DefaultLatitudeBands,
			LongitudeBands: sphere.DefaultLongitudeBands,
		},
		Animation: AnimationConfig{
			AngleStep:  0.01,
			ClearColor: [4]float64{0.1, 0.1, 0.1, 1.0},
			MaxFrames:  0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks every setting and returns the first problem as a
// configuration error.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return gpu.Config("validate config", err)
	}
	return nil
}

func (c *Config) validate() error {
	g := c.Graphics
	switch g.Backend {
	case BackendOpenGL, BackendWebGPU:
	default:
		return fmt.Errorf("graphics.backend: unknown backend %q (want %q or %q)", g.Backend, BackendOpenGL, BackendWebGPU)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("graphics: window size %dx%d must be positive", g.Width, g.Height)
	}
	if g.FPSLimit < 0 {
		return fmt.Errorf("graphics.fps_limit: %d must not be negative", g.FPSLimit)
	}

	s := c.Sphere
	if s.LatitudeBands <= 0 || s.LongitudeBands <= 0 {
		return fmt.Errorf("sphere: band counts %d/%d must be positive", s.LatitudeBands, s.LongitudeBands)
	}
	if s.LatitudeBands >= sphere.MaxVertices || s.LongitudeBands >= sphere.MaxVertices ||
		(s.LatitudeBands+1)*(s.LongitudeBands+1) > sphere.MaxVertices {
		return fmt.Errorf("sphere: %dx%d bands exceed %d vertices", s.LatitudeBands, s.LongitudeBands, sphere.MaxVertices)
	}

	a := c.Animation
	if math.IsNaN(a.AngleStep) || math.IsInf(a.AngleStep, 0) {
		return fmt.Errorf("animation.angle_step: %v is not finite", a.AngleStep)
	}
	if a.AngleStep <= 0 {
		return fmt.Errorf("animation.angle_step: %v must be positive", a.AngleStep)
	}
	for i, v := range a.ClearColor {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("animation.clear_color[%d]: %v outside 0..1", i, v)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

// ClearColor returns the configured clear color.
func (c *Config) ClearColor() gpu.Color {
	cc := c.Animation.ClearColor
	return gpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

// ShaderLanguage returns the shader language of the configured backend.
func (c *Config) ShaderLanguage() gpu.ShaderLanguage {
	if c.Graphics.Backend == BackendWebGPU {
		return gpu.ShaderLanguageWGSL
	}
	return gpu.ShaderLanguageGLSL
}
