// Package lod builds and replays progressive-mesh collapse histories.
package lod

import (
	"container/heap"
	gomath "math"

	"github.com/Faultbox/progmesh/pkg/mesh"
)

// Candidate is a proposed collapse of From into To.
type Candidate struct {
	From mesh.VertexID
	To   mesh.VertexID
	Cost float64
}

// candidateHeap is a min-heap of candidates ordered by cost. Ties break on
// the source id so that the pop order is deterministic.
type candidateHeap []Candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].Cost != h[j].Cost {
		return h[i].Cost < h[j].Cost
	}
	return h[i].From < h[j].From
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(Candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[0 : n-1]
	return c
}

// Scheduler keeps the cheapest collapse for every alive vertex.
//
// Entries are never removed when a vertex is refreshed. A popped entry is
// used only if both endpoints are still alive and it matches the target and
// cost last recorded for its source vertex; anything else is stale.
type Scheduler struct {
	mesh      *mesh.Mesh
	queue     candidateHeap
	bestCost  []float64
	discarded int
}

// NewScheduler creates an empty scheduler over m. Call Seed before popping.
func NewScheduler(m *mesh.Mesh) *Scheduler {
	return &Scheduler{
		mesh:     m,
		bestCost: make([]float64, m.VertexCount()),
	}
}

// Seed computes the best target of every alive vertex and queues it.
func (s *Scheduler) Seed() {
	s.queue = s.queue[:0]
	for u := 0; u < s.mesh.VertexCount(); u++ {
		if c, ok := s.best(u); ok {
			s.queue = append(s.queue, c)
		}
	}
	heap.Init(&s.queue)
}

// Refresh recomputes the best target of each listed vertex and queues the
// new candidate. Older entries for the same vertices stay queued.
func (s *Scheduler) Refresh(ids []mesh.VertexID) {
	for _, u := range ids {
		if c, ok := s.best(u); ok {
			heap.Push(&s.queue, c)
		}
	}
}

// PopCheapest returns the cheapest valid candidate. ok is false once the
// queue holds no valid entry.
func (s *Scheduler) PopCheapest() (c Candidate, ok bool) {
	for s.queue.Len() > 0 {
		c = heap.Pop(&s.queue).(Candidate)
		if s.valid(c) {
			return c, true
		}
		s.discarded++
	}
	return Candidate{}, false
}

// Discarded returns how many stale entries PopCheapest has thrown away.
func (s *Scheduler) Discarded() int {
	return s.discarded
}

// Len returns the number of queued entries, stale ones included.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// best scans u's neighbors for the cheapest alive target, records it on the
// vertex and returns it. Vertices without an alive neighbor get no target.
func (s *Scheduler) best(u mesh.VertexID) (Candidate, bool) {
	vert := s.mesh.Vertex(u)
	if vert == nil {
		return Candidate{}, false
	}
	vert.CollapseTarget = mesh.None
	s.bestCost[u] = gomath.Inf(1)
	if !vert.Alive {
		return Candidate{}, false
	}

	best := Candidate{From: u, To: mesh.None, Cost: gomath.Inf(1)}
	for _, v := range vert.Neighbors {
		if v == u || !s.mesh.IsAlive(v) {
			continue
		}
		cost := s.mesh.Cost(u, v)
		if cost < best.Cost {
			best.To = v
			best.Cost = cost
		}
	}
	if best.To == mesh.None {
		return Candidate{}, false
	}

	vert.CollapseTarget = best.To
	s.bestCost[u] = best.Cost
	return best, true
}

func (s *Scheduler) valid(c Candidate) bool {
	if !s.mesh.IsAlive(c.From) || !s.mesh.IsAlive(c.To) {
		return false
	}
	if s.mesh.Vertex(c.From).CollapseTarget != c.To {
		return false
	}
	// A refresh may keep the target but change the cost; only the latest
	// entry counts. Costs are recomputed deterministically, so exact equality
	// holds for it.
	return s.bestCost[c.From] == c.Cost
}
