package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/progmesh/internal/config"
	"github.com/Faultbox/progmesh/internal/engine/camera"
	"github.com/Faultbox/progmesh/internal/engine/debug"
	"github.com/Faultbox/progmesh/internal/engine/input"
	"github.com/Faultbox/progmesh/internal/engine/renderer"
	"github.com/Faultbox/progmesh/internal/engine/window"
	"github.com/Faultbox/progmesh/internal/logger"
)

// keyActions maps scancodes to viewer commands.
var keyActions = map[sdl.Scancode]Action{
	sdl.SCANCODE_EQUALS:   ActionFiner,
	sdl.SCANCODE_KP_PLUS:  ActionFiner,
	sdl.SCANCODE_MINUS:    ActionCoarser,
	sdl.SCANCODE_KP_MINUS: ActionCoarser,
	sdl.SCANCODE_PAGEUP:   ActionFinerPage,
	sdl.SCANCODE_PAGEDOWN: ActionCoarserPage,
	sdl.SCANCODE_HOME:     ActionFullDetail,
	sdl.SCANCODE_END:      ActionMinimalDetail,
	sdl.SCANCODE_R:        ActionReset,
	sdl.SCANCODE_B:        ActionRebuild,
	sdl.SCANCODE_W:        ActionWireframe,
	sdl.SCANCODE_X:        ActionBounds,
	sdl.SCANCODE_F12:      ActionScreenshot,
	sdl.SCANCODE_ESCAPE:   ActionQuit,
}

// Viewer is the main viewer instance.
type Viewer struct {
	config      config.ViewerConfig
	session     *Session
	running     bool
	window      *window.Window
	renderer    *renderer.Renderer
	mesh        *renderer.MeshRenderer
	input       *input.Input
	camera      *camera.OrbitCamera
	screenshots *debug.ScreenshotCapture
	log         *zap.Logger
}

// New opens a window and uploads the session's mesh. The session's
// controller is attached to the GPU index buffer.
func New(cfg config.ViewerConfig, session *Session) (*Viewer, error) {
	v := &Viewer{
		config:      cfg,
		session:     session,
		camera:      camera.NewOrbitCamera(),
		screenshots: debug.NewScreenshotCapture(cfg.ScreenshotDir, session.Name),
		log:         logger.Named("viewer"),
	}

	v.log.Info("initializing viewer",
		zap.String("mesh", session.Name),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
	)

	// Window first, since it creates the OpenGL context
	var err error
	v.window, err = window.New(window.Config{
		Title:      session.Title(),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Fullscreen: cfg.Fullscreen,
		VSync:      cfg.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	fbw, fbh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{Width: fbw, Height: fbh})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	ctrl := session.Controller
	v.mesh, err = renderer.NewMeshRenderer(ctrl.Original())
	if err != nil {
		v.renderer.Close()
		v.window.Close()
		return nil, fmt.Errorf("failed to upload mesh: %w", err)
	}
	ctrl.SetSink(v.mesh)

	if lo, hi, ok := ctrl.Original().Bounds(); ok {
		v.camera.FOV = cfg.FOV
		v.camera.FitToBounds(lo, hi)
	}

	v.input = input.New()

	v.log.Info("viewer initialized")
	return v, nil
}

// Run starts the main loop and returns when the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				v.renderer.Resize(v.window.DrawableSize())
			case input.EventKeyDown:
				v.handleKey(event.Key)
			}
		}

		if dx, dy := v.input.DragDelta(sdl.BUTTON_LEFT); dx != 0 || dy != 0 {
			v.camera.HandleDrag(float32(dx), float32(dy))
		}
		if wheel := v.input.WheelDelta(); wheel != 0 {
			v.camera.HandleZoom(float32(wheel))
		}

		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	action, ok := keyActions[key]
	if !ok {
		return
	}

	switch action {
	case ActionQuit:
		v.running = false
	case ActionScreenshot:
		v.screenshot()
	default:
		if v.session.Apply(action) {
			v.window.SetTitle(v.session.Title())
		}
	}
}

// screenshot renders one frame into the back buffer and saves it.
func (v *Viewer) screenshot() {
	v.render()
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.screenshots.CaptureFromPixels(pixels, w, h, v.session.Label())
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) render() {
	v.renderer.Begin()
	v.mesh.Wireframe = v.session.Wireframe
	v.mesh.ShowBounds = v.session.ShowBounds
	v.mesh.Draw(mgl32.Ident4(), v.camera.ViewMatrix(), v.camera.ProjectionMatrix(v.renderer.Aspect()))
}

// Close releases viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	v.session.Controller.SetSink(nil)
	if v.mesh != nil {
		v.mesh.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
