package mesh

import "github.com/Faultbox/progmesh/pkg/math"

// BoundaryPenalty is added to the cost of collapsing along a boundary edge so
// that open borders erode last.
const BoundaryPenalty = 100.0

// ComputeQuadrics resets every vertex quadric and accumulates the plane
// quadric of each incident triangle. Degenerate triangles contribute nothing.
func (m *Mesh) ComputeQuadrics() {
	planes := make([]math.Quadric, len(m.triangles))
	for tid := range m.triangles {
		t := &m.triangles[tid]
		n := m.TriangleNormal(tid)
		if n.IsZero() {
			continue
		}
		planes[tid] = math.PlaneQuadricFrom(n, m.vertices[t.Verts[0]].Position)
	}

	for i := range m.vertices {
		v := &m.vertices[i]
		v.Quadric = math.Quadric{}
		for _, tid := range v.Triangles {
			v.Quadric = v.Quadric.Add(planes[tid])
		}
	}
}

// Cost scores collapsing u into v. The merged vertex stays at v's position,
// so the cost is directional: Cost(u, v) and Cost(v, u) generally differ.
func (m *Mesh) Cost(u, v VertexID) float64 {
	if !m.validVertex(u) || !m.validVertex(v) {
		return 0
	}
	q := m.vertices[u].Quadric.Add(m.vertices[v].Quadric)
	cost := q.Evaluate(m.vertices[v].Position)
	if m.IsBoundaryEdge(u, v) {
		cost += BoundaryPenalty
	}
	return cost
}
