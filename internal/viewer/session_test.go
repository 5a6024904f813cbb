package viewer

import (
	"strings"
	"testing"

	"github.com/Faultbox/progmesh/internal/config"
	"github.com/Faultbox/progmesh/pkg/lod"
	"github.com/Faultbox/progmesh/pkg/mesh/meshtest"
)

func newSession(t *testing.T, cfg config.LODConfig) *Session {
	t.Helper()
	return NewSession("grid", lod.NewController(meshtest.Grid(6), nil), cfg, false)
}

func TestNewSessionInitialLevel(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LODConfig
		wantCount int
	}{
		{"full detail", config.LODConfig{}, 36},
		{"target", config.LODConfig{InitialTarget: 20}, 20},
		{"step", config.LODConfig{InitialStep: 6}, 30},
		{"target wins", config.LODConfig{InitialTarget: 10, InitialStep: 6}, 10},
		{"target below floor", config.LODConfig{InitialTarget: 1}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, tt.cfg)
			if got := s.Controller.CurrentVertexCount(); got != tt.wantCount {
				t.Errorf("expected %d vertices, got %d", tt.wantCount, got)
			}
		})
	}
}

func TestApplyDetailActions(t *testing.T) {
	s := newSession(t, config.LODConfig{StepSize: 5})
	c := s.Controller

	steps := []struct {
		action Action
		want   int
		moved  bool
	}{
		{ActionFiner, 36, false},
		{ActionCoarser, 35, true},
		{ActionCoarserPage, 30, true},
		{ActionFinerPage, 35, true},
		{ActionMinimalDetail, 3, true},
		{ActionCoarser, 3, false},
		{ActionFullDetail, 36, true},
		{ActionCoarserPage, 31, true},
		{ActionReset, 36, true},
		{ActionReset, 36, false},
	}

	for i, st := range steps {
		moved := s.Apply(st.action)
		if got := c.CurrentVertexCount(); got != st.want {
			t.Errorf("step %d (%s): expected %d vertices, got %d", i, st.action, st.want, got)
		}
		if moved != st.moved {
			t.Errorf("step %d (%s): expected moved=%v", i, st.action, st.moved)
		}
	}
}

func TestApplyToggles(t *testing.T) {
	s := newSession(t, config.LODConfig{})

	if !s.Apply(ActionWireframe) || !s.Wireframe {
		t.Error("wireframe should toggle on")
	}
	if !s.Apply(ActionWireframe) || s.Wireframe {
		t.Error("wireframe should toggle off")
	}
	if !s.Apply(ActionBounds) || !s.ShowBounds {
		t.Error("bounds should toggle on")
	}
	if s.Apply(ActionScreenshot) || s.Apply(ActionQuit) || s.Apply(ActionNone) {
		t.Error("caller-handled actions should not report a change")
	}
}

func TestApplyRebuild(t *testing.T) {
	s := newSession(t, config.LODConfig{InitialTarget: 12})
	history := s.Controller.History()

	if !s.Apply(ActionRebuild) {
		t.Error("rebuild should redraw")
	}
	if s.Controller.Step() != 0 {
		t.Errorf("rebuild should return to full detail, step %d", s.Controller.Step())
	}
	if got := s.Controller.History(); len(got) != len(history) {
		t.Errorf("rebuilt history has %d entries, want %d", len(got), len(history))
	}
}

func TestStepSizeFloor(t *testing.T) {
	s := newSession(t, config.LODConfig{StepSize: 0})
	if s.StepSize != 1 {
		t.Errorf("expected step size 1, got %d", s.StepSize)
	}
}

func TestTitleAndLabel(t *testing.T) {
	s := newSession(t, config.LODConfig{InitialStep: 4})

	title := s.Title()
	for _, want := range []string{"grid", "32 vertices", "[3..36]", "step 4/33"} {
		if !strings.Contains(title, want) {
			t.Errorf("title %q missing %q", title, want)
		}
	}
	if s.Label() != "v32" {
		t.Errorf("expected label v32, got %s", s.Label())
	}
}

func TestActionString(t *testing.T) {
	if ActionFinerPage.String() != "finer-page" {
		t.Errorf("unexpected name %s", ActionFinerPage)
	}
	if Action(99).String() != "Action(99)" {
		t.Errorf("unexpected name %s", Action(99))
	}
}
