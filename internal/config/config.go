// Package config handles viewer and tool configuration loading.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	LOD     LODConfig     `yaml:"lod"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds the input model settings.
type MeshConfig struct {
	Path string `yaml:"path"` // OBJ file to load
}

// LODConfig holds level-of-detail settings.
type LODConfig struct {
	InitialTarget int    `yaml:"initial_target"` // 0 keeps full detail
	InitialStep   int    `yaml:"initial_step"`   // applied when InitialTarget is 0
	StepSize      int    `yaml:"step_size"`      // vertices per PageUp/PageDown
	HistoryFile   string `yaml:"history_file"`   // optional precomputed history
}

// ViewerConfig holds display and rendering settings.
type ViewerConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Fullscreen    bool    `yaml:"fullscreen"`
	VSync         bool    `yaml:"vsync"`
	Wireframe     bool    `yaml:"wireframe"`
	FOV           float32 `yaml:"fov"` // degrees
	ScreenshotDir string  `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Path: "model.obj",
		},
		LOD: LODConfig{
			StepSize: 10,
		},
		Viewer: ViewerConfig{
			Width:         1280,
			Height:        720,
			Fullscreen:    false,
			VSync:         true,
			FOV:           45,
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings no component can work with.
func (c *Config) Validate() error {
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Viewer.Width, c.Viewer.Height)
	}
	if c.LOD.StepSize < 0 {
		return fmt.Errorf("%w: negative step size %d", ErrInvalidConfig, c.LOD.StepSize)
	}
	if c.LOD.InitialTarget < 0 || c.LOD.InitialStep < 0 {
		return fmt.Errorf("%w: negative initial level", ErrInvalidConfig)
	}
	if c.Viewer.FOV <= 0 || c.Viewer.FOV >= 180 {
		return fmt.Errorf("%w: field of view %g", ErrInvalidConfig, c.Viewer.FOV)
	}
	return nil
}
