// Package main is the entry point for the progressive mesh viewer.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/progmesh/internal/config"
	"github.com/Faultbox/progmesh/internal/logger"
	"github.com/Faultbox/progmesh/internal/viewer"
	"github.com/Faultbox/progmesh/pkg/formats"
	"github.com/Faultbox/progmesh/pkg/lod"
	"github.com/Faultbox/progmesh/pkg/mesh"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Progressive Mesh Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	m, err := formats.LoadOBJ(cfg.Mesh.Path)
	if err != nil {
		return err
	}
	logger.Info("mesh loaded",
		zap.String("path", cfg.Mesh.Path),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
	)

	ctrl, err := newController(cfg.LOD, m)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(cfg.Mesh.Path), filepath.Ext(cfg.Mesh.Path))
	session := viewer.NewSession(name, ctrl, cfg.LOD, cfg.Viewer.Wireframe)

	v, err := viewer.New(cfg.Viewer, session)
	if err != nil {
		return err
	}
	defer v.Close()

	return v.Run()
}

// newController uses the configured history file when there is one and
// builds a fresh history otherwise.
func newController(cfg config.LODConfig, m *mesh.Mesh) (*lod.Controller, error) {
	if cfg.HistoryFile == "" {
		ctrl := lod.NewController(m, nil)
		stats := ctrl.Stats()
		logger.Info("history built",
			zap.Int("collapses", stats.Collapses),
			zap.Int("discarded", stats.Discarded),
			zap.Bool("exhausted", stats.Exhausted),
			zap.Duration("took", stats.Duration),
		)
		return ctrl, nil
	}

	f, err := os.Open(cfg.HistoryFile)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	h, err := lod.ReadHistory(f, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.HistoryFile, err)
	}
	logger.Info("history loaded", zap.String("path", cfg.HistoryFile), zap.Int("collapses", len(h)))
	return lod.NewControllerFromHistory(m, h, nil)
}
