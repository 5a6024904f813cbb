package lod

import (
	"time"

	"github.com/Faultbox/progmesh/pkg/mesh"
)

// MinimumVertices is the alive vertex count at which simplification stops.
const MinimumVertices = 3

// IndexSink receives the render index list after every topology change.
type IndexSink interface {
	UpdateIndices(indices []uint32)
}

// BuildStats describes the last history build.
type BuildStats struct {
	Collapses int
	Discarded int // stale queue entries skipped
	Exhausted bool
	Duration  time.Duration
}

// Controller owns an immutable original mesh and a working copy, and moves
// the working copy along a precomputed collapse history.
//
// SetStep always rebuilds the working copy from the original and is the
// canonical way to reach a level of detail. SetTargetVertexCount, Advance and
// Retreat step incrementally; because Split does not restore adjacency, a
// state reached by stepping back may differ in neighbor lists from the same
// step reached by SetStep, while alive set and triangle corners still match
// whenever every retreat undoes collapses in reverse order.
type Controller struct {
	original *mesh.Mesh
	working  *mesh.Mesh
	history  History
	cursor   int
	sink     IndexSink
	stats    BuildStats
}

// NewController creates a controller over original and builds its history.
// original must not be mutated afterwards. sink may be nil.
func NewController(original *mesh.Mesh, sink IndexSink) *Controller {
	c := &Controller{
		original: original,
		sink:     sink,
	}
	c.BuildHistory()
	return c
}

// NewControllerFromHistory creates a controller that uses a previously
// computed history instead of building one.
func NewControllerFromHistory(original *mesh.Mesh, h History, sink IndexSink) (*Controller, error) {
	c := &Controller{
		original: original,
		sink:     sink,
	}
	if err := c.LoadHistory(h); err != nil {
		return nil, err
	}
	return c, nil
}

// SetSink replaces the index sink and pushes the current indices to it.
func (c *Controller) SetSink(sink IndexSink) {
	c.sink = sink
	c.notify()
}

// BuildHistory recomputes the collapse history from scratch by greedily
// collapsing the cheapest candidate until MinimumVertices remain or no
// candidate is left, then resets the working mesh to full detail.
func (c *Controller) BuildHistory() BuildStats {
	start := time.Now()

	work := c.original.Clone()
	work.ComputeQuadrics()

	sched := NewScheduler(work)
	sched.Seed()

	history := make(History, 0, max(work.AliveCount()-MinimumVertices, 0))
	exhausted := false
	for work.AliveCount() > MinimumVertices {
		cand, ok := sched.PopCheapest()
		if !ok {
			exhausted = true
			break
		}
		v := work.Vertex(cand.From).CollapseTarget
		changed, err := work.Collapse(cand.From, v)
		if err != nil {
			continue
		}
		history = append(history, Entry{From: cand.From, To: v})
		sched.Refresh(changed)
	}

	c.history = history
	c.stats = BuildStats{
		Collapses: len(history),
		Discarded: sched.Discarded(),
		Exhausted: exhausted,
		Duration:  time.Since(start),
	}
	c.Reset()
	return c.stats
}

// LoadHistory installs a previously computed history after checking that it
// fits the original mesh, then resets to full detail.
func (c *Controller) LoadHistory(h History) error {
	if err := h.Validate(c.original); err != nil {
		return err
	}
	c.history = append(History(nil), h...)
	c.stats = BuildStats{Collapses: len(h)}
	c.Reset()
	return nil
}

// SetTargetVertexCount steps the working mesh one history entry at a time
// until it has target alive vertices. target is clamped to
// [MinVertexCount, MaxVertexCount].
func (c *Controller) SetTargetVertexCount(target int) {
	target = clamp(target, c.MinVertexCount(), c.MaxVertexCount())

	moved := false
	for c.working.AliveCount() > target && c.advance() {
		moved = true
	}
	for c.working.AliveCount() < target && c.retreat() {
		moved = true
	}
	if moved {
		c.notify()
	}
}

// Advance applies the next history entry. It returns false at the end of
// the history.
func (c *Controller) Advance() bool {
	if !c.advance() {
		return false
	}
	c.notify()
	return true
}

// Retreat undoes the last applied history entry. It returns false at full
// detail.
func (c *Controller) Retreat() bool {
	if !c.retreat() {
		return false
	}
	c.notify()
	return true
}

// SetStep rebuilds the working mesh from the original and replays the first
// step history entries. step is clamped to [0, HistoryLen].
func (c *Controller) SetStep(step int) {
	step = clamp(step, 0, len(c.history))

	c.working = c.original.Clone()
	c.cursor = 0
	for c.cursor < step {
		if !c.advance() {
			break
		}
	}
	c.notify()
}

// Reset returns the working mesh to full detail.
func (c *Controller) Reset() {
	c.SetStep(0)
}

// CurrentVertexCount returns the alive vertex count of the working mesh.
func (c *Controller) CurrentVertexCount() int { return c.working.AliveCount() }

// MaxVertexCount returns the alive vertex count of the original mesh.
func (c *Controller) MaxVertexCount() int { return c.original.AliveCount() }

// MinVertexCount returns the lowest reachable vertex count.
func (c *Controller) MinVertexCount() int { return c.MaxVertexCount() - len(c.history) }

// HistoryLen returns the number of collapses in the history.
func (c *Controller) HistoryLen() int { return len(c.history) }

// Step returns how many history entries are applied.
func (c *Controller) Step() int { return c.cursor }

// History returns a copy of the collapse history.
func (c *Controller) History() History { return append(History(nil), c.history...) }

// Stats returns statistics about the last history build.
func (c *Controller) Stats() BuildStats { return c.stats }

// Working returns the working mesh. Callers must treat it as read-only.
func (c *Controller) Working() *mesh.Mesh { return c.working }

// Original returns the original mesh.
func (c *Controller) Original() *mesh.Mesh { return c.original }

// RenderIndices returns the index list of the working mesh.
func (c *Controller) RenderIndices() []uint32 { return c.working.RenderIndices() }

func (c *Controller) advance() bool {
	if c.cursor >= len(c.history) {
		return false
	}
	e := c.history[c.cursor]
	if _, err := c.working.Collapse(e.From, e.To); err != nil {
		return false
	}
	c.cursor++
	return true
}

func (c *Controller) retreat() bool {
	if c.cursor <= 0 {
		return false
	}
	e := c.history[c.cursor-1]
	if err := c.working.Split(e.From, e.To); err != nil {
		return false
	}
	c.cursor--
	return true
}

func (c *Controller) notify() {
	if c.sink != nil {
		c.sink.UpdateIndices(c.working.RenderIndices())
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
