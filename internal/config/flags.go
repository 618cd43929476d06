package config

import "flag"

// cliFlags holds the command-line overrides bound to one flag set.
type cliFlags struct {
	fs *flag.FlagSet

	config     *string
	debug      *bool
	backend    *string
	windowed   *bool
	fullscreen *bool
	width      *int
	height     *int
	lat        *int
	lon        *int
	frames     *uint64
}

func newCLIFlags(fs *flag.FlagSet) *cliFlags {
	return &cliFlags{
		fs:         fs,
		config:     fs.String("config", "", "Path to config file"),
		debug:      fs.Bool("debug", false, "Enable debug logging"),
		backend:    fs.String("backend", "", "Graphics backend: opengl or webgpu"),
		windowed:   fs.Bool("windowed", false, "Run in windowed mode"),
		fullscreen: fs.Bool("fullscreen", false, "Run in fullscreen mode"),
		width:      fs.Int("width", 0, "Window width"),
		height:     fs.Int("height", 0, "Window height"),
		lat:        fs.Int("lat", 0, "Latitude bands"),
		lon:        fs.Int("lon", 0, "Longitude bands"),
		frames:     fs.Uint64("frames", 0, "Stop after this many frames (0 = run until closed)"),
	}
}

var cli = newCLIFlags(flag.CommandLine)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *cli.config
}

// applyFlags applies CLI flag overrides to the config. Numeric flags only
// override when given on the command line, so an explicit bad value reaches
// Validate instead of falling back to the file or default.
func applyFlags(cfg *Config) {
	if *cli.debug {
		cfg.Logging.Level = "debug"
	}
	if *cli.backend != "" {
		cfg.Graphics.Backend = *cli.backend
	}
	if *cli.windowed {
		cfg.Graphics.Fullscreen = false
	}
	if *cli.fullscreen {
		cfg.Graphics.Fullscreen = true
	}

	cli.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Graphics.Width = *cli.width
		case "height":
			cfg.Graphics.Height = *cli.height
		case "lat":
			cfg.Sphere.LatitudeBands = *cli.lat
		case "lon":
			cfg.Sphere.LongitudeBands = *cli.lon
		case "frames":
			cfg.Animation.MaxFrames = *cli.frames
		}
	})
}
