// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/progmesh/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer owns global OpenGL state and frame setup.
type Renderer struct {
	config Config
	log    *zap.Logger
}

// New initializes OpenGL and sets default state.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0) // Dark blue-gray background

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Resize updates the viewport to the drawable size.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Size returns the viewport size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	r.log.Debug("closing renderer")
}
