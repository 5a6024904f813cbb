package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test viewer defaults
	if cfg.Viewer.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Viewer.Height)
	}
	if cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Viewer.FOV != 45 {
		t.Errorf("expected fov 45, got %f", cfg.Viewer.FOV)
	}

	// Test LOD defaults
	if cfg.LOD.StepSize != 10 {
		t.Errorf("expected step size 10, got %d", cfg.LOD.StepSize)
	}
	if cfg.LOD.InitialTarget != 0 || cfg.LOD.InitialStep != 0 {
		t.Error("expected full detail by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
mesh:
  path: "bunny.obj"

lod:
  initial_target: 500
  step_size: 25
  history_file: "bunny.history.yaml"

viewer:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  wireframe: true
  fov: 60

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Mesh.Path != "bunny.obj" {
		t.Errorf("expected mesh bunny.obj, got %s", cfg.Mesh.Path)
	}
	if cfg.LOD.InitialTarget != 500 {
		t.Errorf("expected initial target 500, got %d", cfg.LOD.InitialTarget)
	}
	if cfg.LOD.StepSize != 25 {
		t.Errorf("expected step size 25, got %d", cfg.LOD.StepSize)
	}
	if cfg.LOD.HistoryFile != "bunny.history.yaml" {
		t.Errorf("expected history file, got %s", cfg.LOD.HistoryFile)
	}

	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Viewer.Height)
	}
	if !cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Viewer.VSync {
		t.Error("expected vsync to be false")
	}
	if !cfg.Viewer.Wireframe {
		t.Error("expected wireframe to be true")
	}
	if cfg.Viewer.FOV != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Viewer.FOV)
	}

	// Unset keys keep their defaults
	if cfg.Viewer.ScreenshotDir != "screenshots" {
		t.Errorf("expected default screenshot dir, got %s", cfg.Viewer.ScreenshotDir)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
viewer:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
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
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero width", func(c *Config) { c.Viewer.Width = 0 }, false},
		{"negative height", func(c *Config) { c.Viewer.Height = -1 }, false},
		{"negative step size", func(c *Config) { c.LOD.StepSize = -5 }, false},
		{"zero step size", func(c *Config) { c.LOD.StepSize = 0 }, true},
		{"negative target", func(c *Config) { c.LOD.InitialTarget = -1 }, false},
		{"flat fov", func(c *Config) { c.Viewer.FOV = 180 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Create temp directory and change to it
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("viewer:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Mesh.Path = "dragon.obj"
	cfg.LOD.StepSize = 50
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("reloaded config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "mesh flag",
			setup: func() {
				*flagMesh = "teapot.obj"
			},
			verify: func(cfg *Config) {
				if cfg.Mesh.Path != "teapot.obj" {
					t.Errorf("expected mesh teapot.obj, got %s", cfg.Mesh.Path)
				}
			},
			teardown: func() {
				*flagMesh = ""
			},
		},
		{
			name: "target flag",
			setup: func() {
				*flagTarget = 120
			},
			verify: func(cfg *Config) {
				if cfg.LOD.InitialTarget != 120 {
					t.Errorf("expected initial target 120, got %d", cfg.LOD.InitialTarget)
				}
			},
			teardown: func() {
				*flagTarget = 0
			},
		},
		{
			name: "step flag overrides target",
			setup: func() {
				*flagTarget = 120
				*flagStep = 7
			},
			verify: func(cfg *Config) {
				if cfg.LOD.InitialStep != 7 {
					t.Errorf("expected initial step 7, got %d", cfg.LOD.InitialStep)
				}
				if cfg.LOD.InitialTarget != 0 {
					t.Errorf("expected target cleared, got %d", cfg.LOD.InitialTarget)
				}
			},
			teardown: func() {
				*flagTarget = 0
				*flagStep = -1
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Viewer.Width)
				}
				if cfg.Viewer.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Viewer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
viewer:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewer.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("lod:\n  step_size: -3\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
