package mesh

import "fmt"

// Collapse merges vertex u into vertex v.
//
// Triangles incident to u that also contain v become tombstones (all three
// corners set to u); the rest have u replaced by v and become incident to v.
// u is removed from every neighbor list, v gains those of u's former
// neighbors it did not already list, and u's own list is cleared. The former
// neighbors do not gain v in return.
//
// The returned ids are v followed by u's former neighbors: the vertices whose
// adjacency changed and whose cached collapse costs are stale. On a rejected
// call the mesh is left untouched and nil is returned with the reason.
func (m *Mesh) Collapse(u, v VertexID) ([]VertexID, error) {
	if err := m.checkPair(u, v); err != nil {
		return nil, fmt.Errorf("collapse %d->%d: %w", u, v, err)
	}
	if !m.vertices[u].Alive || !m.vertices[v].Alive {
		return nil, fmt.Errorf("collapse %d->%d: %w", u, v, ErrVertexDead)
	}

	vu := &m.vertices[u]
	vu.Alive = false
	m.alive--

	for _, tid := range vu.Triangles {
		t := &m.triangles[tid]
		if !t.Contains(u) {
			continue
		}
		if t.Contains(v) {
			t.Verts = [3]VertexID{u, u, u}
			continue
		}
		t.Replace(u, v)
		m.addIncidence(v, tid)
	}

	former := uniqueExcept(vu.Neighbors, u)
	vu.Neighbors = nil

	for _, n := range former {
		m.vertices[n].Neighbors = removeAll(m.vertices[n].Neighbors, u)
	}
	for _, n := range former {
		if n == v || !m.vertices[n].Alive {
			continue
		}
		if !contains(m.vertices[v].Neighbors, n) {
			m.vertices[v].Neighbors = append(m.vertices[v].Neighbors, n)
		}
	}

	changed := make([]VertexID, 0, len(former)+1)
	changed = append(changed, v)
	for _, n := range former {
		if n != v {
			changed = append(changed, n)
		}
	}
	return changed, nil
}

// Split is the inverse of a prior Collapse(u, v). It revives u, restores the
// tombstones u left behind and u's degenerate input triangles from their
// original corners, and gives back to u the corners v took over.
//
// Adjacency is not restored: u comes back with an empty neighbor list and
// its former neighbors keep the lists they had after the collapse. Only a
// replay from the original mesh reproduces canonical adjacency.
func (m *Mesh) Split(u, v VertexID) error {
	if err := m.checkPair(u, v); err != nil {
		return fmt.Errorf("split %d->%d: %w", u, v, err)
	}
	if m.vertices[u].Alive {
		return fmt.Errorf("split %d->%d: %w", u, v, ErrVertexAlive)
	}

	vu := &m.vertices[u]
	vu.Alive = true
	m.alive++

	for _, tid := range vu.Triangles {
		t := &m.triangles[tid]
		switch {
		case t.isTombstoneOf(u), t.IsDegenerate() && t.degenerateInputOf(u):
			t.Verts = t.OriginalVerts
		case t.IsDegenerate():
			// someone else's tombstone
		case t.Contains(v) && !t.Contains(u):
			t.Replace(v, u)
		}
	}
	return nil
}

// IsBoundaryEdge reports whether exactly one non-degenerate triangle uses the
// edge (u, v). Two triangles make an interior edge; more than two is a
// non-manifold edge and is not treated as boundary.
func (m *Mesh) IsBoundaryEdge(u, v VertexID) bool {
	return m.EdgeValence(u, v) == 1
}

// EdgeValence counts the non-degenerate triangles that contain both u and v.
func (m *Mesh) EdgeValence(u, v VertexID) int {
	if !m.validVertex(u) || !m.validVertex(v) || u == v {
		return 0
	}
	count := 0
	for _, tid := range m.vertices[u].Triangles {
		t := &m.triangles[tid]
		if t.IsDegenerate() {
			continue
		}
		if t.Contains(u) && t.Contains(v) {
			count++
		}
	}
	return count
}

func (m *Mesh) checkPair(u, v VertexID) error {
	if !m.validVertex(u) || !m.validVertex(v) {
		return ErrInvalidVertex
	}
	if u == v {
		return ErrSelfCollapse
	}
	return nil
}

func contains(ids []VertexID, id VertexID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// removeAll drops every occurrence of id, reusing the backing array.
func removeAll(ids []VertexID, id VertexID) []VertexID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// uniqueExcept returns ids deduplicated in first-seen order, without skip.
func uniqueExcept(ids []VertexID, skip VertexID) []VertexID {
	out := make([]VertexID, 0, len(ids))
	for _, x := range ids {
		if x == skip || contains(out, x) {
			continue
		}
		out = append(out, x)
	}
	return out
}
