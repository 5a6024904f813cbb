package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagMesh       = flag.String("mesh", "", "OBJ file to load")
	flagTarget     = flag.Int("target", 0, "Initial vertex count")
	flagStep       = flag.Int("step", -1, "Initial history step")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMesh != "" {
		cfg.Mesh.Path = *flagMesh
	} else if flag.NArg() > 0 {
		cfg.Mesh.Path = flag.Arg(0)
	}
	if *flagTarget > 0 {
		cfg.LOD.InitialTarget = *flagTarget
	}
	if *flagStep >= 0 {
		cfg.LOD.InitialStep = *flagStep
		cfg.LOD.InitialTarget = 0
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
}
