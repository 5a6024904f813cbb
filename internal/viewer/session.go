// Package viewer implements the interactive level-of-detail viewer.
package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/progmesh/internal/config"
	"github.com/Faultbox/progmesh/internal/logger"
	"github.com/Faultbox/progmesh/pkg/lod"
)

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionFiner
	ActionCoarser
	ActionFinerPage
	ActionCoarserPage
	ActionFullDetail
	ActionMinimalDetail
	ActionReset
	ActionRebuild
	ActionWireframe
	ActionBounds
	ActionScreenshot
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:          "none",
	ActionFiner:         "finer",
	ActionCoarser:       "coarser",
	ActionFinerPage:     "finer-page",
	ActionCoarserPage:   "coarser-page",
	ActionFullDetail:    "full-detail",
	ActionMinimalDetail: "minimal-detail",
	ActionReset:         "reset",
	ActionRebuild:       "rebuild",
	ActionWireframe:     "wireframe",
	ActionBounds:        "bounds",
	ActionScreenshot:    "screenshot",
	ActionQuit:          "quit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Session is the viewer state that does not depend on a window: the LOD
// controller plus display toggles.
type Session struct {
	Name       string
	Controller *lod.Controller
	StepSize   int
	Wireframe  bool
	ShowBounds bool

	log *zap.Logger
}

// NewSession wraps ctrl and moves it to the configured initial level.
func NewSession(name string, ctrl *lod.Controller, cfg config.LODConfig, wireframe bool) *Session {
	s := &Session{
		Name:       name,
		Controller: ctrl,
		StepSize:   max(cfg.StepSize, 1),
		Wireframe:  wireframe,
		log:        logger.Named("viewer"),
	}
	switch {
	case cfg.InitialTarget > 0:
		ctrl.SetTargetVertexCount(cfg.InitialTarget)
	case cfg.InitialStep > 0:
		ctrl.SetStep(cfg.InitialStep)
	}
	return s
}

// Apply performs a. It reports whether the drawn image changes. Screenshot
// and quit are left to the caller.
func (s *Session) Apply(a Action) bool {
	c := s.Controller
	before := c.Step()

	switch a {
	case ActionFiner:
		c.SetTargetVertexCount(c.CurrentVertexCount() + 1)
	case ActionCoarser:
		c.SetTargetVertexCount(c.CurrentVertexCount() - 1)
	case ActionFinerPage:
		c.SetTargetVertexCount(c.CurrentVertexCount() + s.StepSize)
	case ActionCoarserPage:
		c.SetTargetVertexCount(c.CurrentVertexCount() - s.StepSize)
	case ActionFullDetail:
		c.SetStep(0)
	case ActionMinimalDetail:
		c.SetStep(c.HistoryLen())
	case ActionReset:
		c.Reset()
	case ActionRebuild:
		stats := c.BuildHistory()
		s.log.Info("history rebuilt",
			zap.Int("collapses", stats.Collapses),
			zap.Int("discarded", stats.Discarded),
			zap.Bool("exhausted", stats.Exhausted),
			zap.Duration("took", stats.Duration),
		)
		return true
	case ActionWireframe:
		s.Wireframe = !s.Wireframe
		return true
	case ActionBounds:
		s.ShowBounds = !s.ShowBounds
		return true
	default:
		return false
	}

	if c.Step() == before {
		return false
	}
	s.log.Debug("level changed",
		zap.Stringer("action", a),
		zap.Int("step", c.Step()),
		zap.Int("vertices", c.CurrentVertexCount()),
	)
	return true
}

// Title describes the current level for the window title bar.
func (s *Session) Title() string {
	c := s.Controller
	return fmt.Sprintf("%s - %d vertices [%d..%d] - step %d/%d - %d triangles",
		s.Name,
		c.CurrentVertexCount(), c.MinVertexCount(), c.MaxVertexCount(),
		c.Step(), c.HistoryLen(),
		c.Working().ActiveTriangleCount(),
	)
}

// Label is a short file-name friendly description of the current level.
func (s *Session) Label() string {
	return fmt.Sprintf("v%d", s.Controller.CurrentVertexCount())
}
