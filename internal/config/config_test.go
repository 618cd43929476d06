package config

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Backend != BackendOpenGL {
		t.Errorf("expected backend %q, got %q", BackendOpenGL, cfg.Graphics.Backend)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test sphere defaults
	if cfg.Sphere.LatitudeBands != 30 || cfg.Sphere.LongitudeBands != 30 {
		t.Errorf("expected 30x30 bands, got %dx%d", cfg.Sphere.LatitudeBands, cfg.Sphere.LongitudeBands)
	}

	// Test animation defaults
	if cfg.Animation.AngleStep != 0.01 {
		t.Errorf("expected angle step 0.01, got %f", cfg.Animation.AngleStep)
	}
	if want := (gpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}); cfg.ClearColor() != want {
		t.Errorf("expected clear color %+v, got %+v", want, cfg.ClearColor())
	}
	if cfg.Animation.MaxFrames != 0 {
		t.Errorf("expected unlimited frames, got %d", cfg.Animation.MaxFrames)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  backend: webgpu
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144

sphere:
  latitude_bands: 12
  longitude_bands: 24

animation:
  angle_step: 0.02
  clear_color: [0.0, 0.0, 0.2, 1.0]
  max_frames: 600

logging:
  level: "debug"
  log_file: "wiresphere.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Backend != BackendWebGPU {
		t.Errorf("expected backend webgpu, got %s", cfg.Graphics.Backend)
	}
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.FPSLimit != 144 {
		t.Errorf("expected fps limit 144, got %d", cfg.Graphics.FPSLimit)
	}

	if cfg.Sphere.LatitudeBands != 12 || cfg.Sphere.LongitudeBands != 24 {
		t.Errorf("expected 12x24 bands, got %dx%d", cfg.Sphere.LatitudeBands, cfg.Sphere.LongitudeBands)
	}

	if cfg.Animation.AngleStep != 0.02 {
		t.Errorf("expected angle step 0.02, got %f", cfg.Animation.AngleStep)
	}
	if cfg.Animation.ClearColor != [4]float64{0, 0, 0.2, 1} {
		t.Errorf("expected clear color [0 0 0.2 1], got %v", cfg.Animation.ClearColor)
	}
	if cfg.Animation.MaxFrames != 600 {
		t.Errorf("expected max frames 600, got %d", cfg.Animation.MaxFrames)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "wiresphere.log" {
		t.Errorf("expected log file 'wiresphere.log', got %s", cfg.Logging.LogFile)
	}

	if cfg.ShaderLanguage() != gpu.ShaderLanguageWGSL {
		t.Errorf("expected WGSL for webgpu, got %s", cfg.ShaderLanguage())
	}
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("sphere:\n  latitude_bands: 8\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Sphere.LatitudeBands != 8 {
		t.Errorf("expected latitude bands 8, got %d", cfg.Sphere.LatitudeBands)
	}
	if cfg.Sphere.LongitudeBands != 30 {
		t.Errorf("expected longitude bands to stay 30, got %d", cfg.Sphere.LongitudeBands)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width to stay 1280, got %d", cfg.Graphics.Width)
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Errorf("empty file should load, got %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad syntax", "graphics:\n  width: not a number\n  invalid syntax here\n"},
		{"wrong type", "sphere:\n  latitude_bands: many\n"},
		{"unknown key", "graphics:\n  widht: 800\n"},
		{"short color", "animation:\n  clear_color: [0.1, 0.2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg := Default()
			if err := loadFromFile(cfg, configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Graphics.Backend = "vulkan" }},
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"negative height", func(c *Config) { c.Graphics.Height = -1 }},
		{"negative fps limit", func(c *Config) { c.Graphics.FPSLimit = -30 }},
		{"zero latitude", func(c *Config) { c.Sphere.LatitudeBands = 0 }},
		{"negative longitude", func(c *Config) { c.Sphere.LongitudeBands = -4 }},
		{"too many vertices", func(c *Config) { c.Sphere.LatitudeBands, c.Sphere.LongitudeBands = 300, 300 }},
		{"huge band count", func(c *Config) { c.Sphere.LatitudeBands = 1 << 40 }},
		{"clear color above one", func(c *Config) { c.Animation.ClearColor[0] = 1.5 }},
		{"clear color negative", func(c *Config) { c.Animation.ClearColor[3] = -0.1 }},
		{"zero angle step", func(c *Config) { c.Animation.AngleStep = 0 }},
		{"negative angle step", func(c *Config) { c.Animation.AngleStep = -0.01 }},
		{"infinite angle step", func(c *Config) { c.Animation.AngleStep = math.Inf(1) }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !gpu.IsKind(err, gpu.KindConfig) {
				t.Errorf("expected config error, got %v", err)
			}
		})
	}
}

func TestValidateLargestGrid(t *testing.T) {
	cfg := Default()
	// 256 * 256 = 65536 vertices, the uint16 limit.
	cfg.Sphere.LatitudeBands, cfg.Sphere.LongitudeBands = 255, 255
	if err := cfg.Validate(); err != nil {
		t.Errorf("255x255 should validate, got %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Graphics.Backend = BackendWebGPU
	cfg.Sphere.LatitudeBands = 16
	cfg.Animation.ClearColor = [4]float64{0.2, 0.3, 0.4, 1}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("reloaded config = %+v, want %+v", *loaded, *cfg)
	}
}

func TestSaveToRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Sphere.LatitudeBands = 0

	if err := cfg.SaveTo(path); !gpu.IsKind(err, gpu.KindConfig) {
		t.Errorf("SaveTo error = %v, want config error", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid config should not be written")
	}
}

// setFlags parses args into a fresh flag set for the duration of the test.
func setFlags(t *testing.T, args ...string) {
	t.Helper()
	prev := cli
	cli = newCLIFlags(flag.NewFlagSet("wiresphere", flag.ContinueOnError))
	t.Cleanup(func() { cli = prev })
	if err := cli.fs.Parse(args); err != nil {
		t.Fatalf("parse flags %v: %v", args, err)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "backend flag",
			args: []string{"--backend=" + BackendWebGPU},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Backend != BackendWebGPU {
					t.Errorf("expected backend webgpu, got %s", cfg.Graphics.Backend)
				}
			},
		},
		{
			name: "windowed flag",
			args: []string{"--windowed"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
		},
		{
			name: "fullscreen flag",
			args: []string{"--fullscreen"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
		},
		{
			name: "width and height flags",
			args: []string{"--width=2560", "--height=1440"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
		},
		{
			name: "tessellation flags",
			args: []string{"--lat=6", "--lon=9"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Sphere.LatitudeBands != 6 || cfg.Sphere.LongitudeBands != 9 {
					t.Errorf("expected 6x9 bands, got %dx%d", cfg.Sphere.LatitudeBands, cfg.Sphere.LongitudeBands)
				}
			},
		},
		{
			name: "frames flag",
			args: []string{"--frames=120"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Animation.MaxFrames != 120 {
					t.Errorf("expected max frames 120, got %d", cfg.Animation.MaxFrames)
				}
			},
		},
		{
			name: "explicit zero values are kept",
			args: []string{"--lat=0", "--width=0", "--frames=0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Sphere.LatitudeBands != 0 {
					t.Errorf("expected latitude bands 0, got %d", cfg.Sphere.LatitudeBands)
				}
				if cfg.Graphics.Width != 0 {
					t.Errorf("expected width 0, got %d", cfg.Graphics.Width)
				}
			},
		},
		{
			name: "unset flags leave config alone",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if *cfg != *Default() {
					t.Errorf("config changed without flags: %+v", *cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.args...)

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
sphere:
  latitude_bands: 10
  longitude_bands: 20
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Flags override the config file
	setFlags(t, "--config="+configPath, "--width=1920", "--lat=4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}

	if cfg.Sphere.LatitudeBands != 4 {
		t.Errorf("expected latitude bands 4 from flag, got %d", cfg.Sphere.LatitudeBands)
	}
	if cfg.Sphere.LongitudeBands != 20 {
		t.Errorf("expected longitude bands 20 from file, got %d", cfg.Sphere.LongitudeBands)
	}

	// Defaults survive where neither file nor flag set a value
	if cfg.Animation.AngleStep != 0.01 {
		t.Errorf("expected default angle step 0.01, got %f", cfg.Animation.AngleStep)
	}
}

func TestLoadRejectsInvalidFlagValue(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"unknown backend", "--backend=metal"},
		{"negative latitude", "--lat=-5"},
		{"zero longitude", "--lon=0"},
		{"negative width", "--width=-800"},
		{"zero height", "--height=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			setFlags(t, "--config="+configPath, tt.arg)

			cfg, err := Load()
			if !gpu.IsKind(err, gpu.KindConfig) {
				t.Errorf("Load error = %v, want config error", err)
			}
			if cfg != nil {
				t.Errorf("Load returned config %+v alongside error", *cfg)
			}
		})
	}
}
