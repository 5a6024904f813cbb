// Package mesh provides the index-based triangle mesh used by the progressive
// simplifier.
//
// Vertices and triangles live in dense arenas and are referred to by stable
// integer ids. Ids are never reused or renumbered: a collapsed vertex stays in
// storage with Alive set to false, and a collapsed triangle stays in storage as
// a degenerate tombstone.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/progmesh/pkg/math"
)

// VertexID identifies a vertex for the lifetime of a Mesh.
type VertexID = int

// TriangleID identifies a triangle for the lifetime of a Mesh.
type TriangleID = int

// None marks an absent vertex reference.
const None VertexID = -1

// Mesh errors.
var (
	ErrIndexOutOfRange = errors.New("triangle index out of range")
	ErrInvalidVertex   = errors.New("invalid vertex id")
	ErrSelfCollapse    = errors.New("cannot collapse a vertex into itself")
	ErrVertexDead      = errors.New("vertex is not alive")
	ErrVertexAlive     = errors.New("vertex is already alive")
)

// VertexData is the per-vertex input consumed from a loader.
type VertexData struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
}

// Vertex is a vertex record.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2

	// Quadric is the accumulated plane error of the vertex's original faces.
	Quadric math.Quadric

	// Triangles lists incident triangle ids. Entries are unique.
	Triangles []TriangleID
	// Neighbors is a multiset of adjacent vertex ids.
	Neighbors []VertexID

	// CollapseTarget is the cheapest known merge target, or None.
	CollapseTarget VertexID
	Alive          bool
}

// Triangle is a triangle record.
type Triangle struct {
	Verts         [3]VertexID
	OriginalVerts [3]VertexID
}

// IsDegenerate reports whether any two corners coincide.
func (t *Triangle) IsDegenerate() bool {
	return t.Verts[0] == t.Verts[1] || t.Verts[1] == t.Verts[2] || t.Verts[2] == t.Verts[0]
}

// Contains reports whether v is a corner of the triangle.
func (t *Triangle) Contains(v VertexID) bool {
	return t.Verts[0] == v || t.Verts[1] == v || t.Verts[2] == v
}

// Replace substitutes every occurrence of from with to.
func (t *Triangle) Replace(from, to VertexID) {
	for i := range t.Verts {
		if t.Verts[i] == from {
			t.Verts[i] = to
		}
	}
}

// degenerateInputOf reports whether the triangle was loaded degenerate with u
// as one of its corners.
func (t *Triangle) degenerateInputOf(u VertexID) bool {
	o := t.OriginalVerts
	if o[0] != o[1] && o[1] != o[2] && o[0] != o[2] {
		return false
	}
	return o[0] == u || o[1] == u || o[2] == u
}

// isTombstoneOf reports whether the triangle was collapsed away by u.
func (t *Triangle) isTombstoneOf(u VertexID) bool {
	return t.Verts[0] == u && t.Verts[1] == u && t.Verts[2] == u
}

// Mesh is the geometry store: vertex and triangle arenas plus adjacency.
type Mesh struct {
	vertices  []Vertex
	triangles []Triangle
	alive     int
}

// New builds a mesh from a flat vertex list and 0-based triangle corners.
// Incidence and the neighbor multiset are derived from the triangles and
// vertex quadrics are computed once. Degenerate or non-manifold input is
// accepted as is.
func New(vertices []VertexData, triangles [][3]int) (*Mesh, error) {
	m := &Mesh{
		vertices:  make([]Vertex, len(vertices)),
		triangles: make([]Triangle, len(triangles)),
		alive:     len(vertices),
	}

	for i, vd := range vertices {
		m.vertices[i] = Vertex{
			Position:       vd.Position,
			Normal:         vd.Normal,
			TexCoord:       vd.TexCoord,
			CollapseTarget: None,
			Alive:          true,
		}
	}

	for tid, corners := range triangles {
		for _, c := range corners {
			if c < 0 || c >= len(vertices) {
				return nil, fmt.Errorf("triangle %d: %w (%d, have %d vertices)", tid, ErrIndexOutOfRange, c, len(vertices))
			}
		}
		m.triangles[tid] = Triangle{Verts: corners, OriginalVerts: corners}

		a, b, c := corners[0], corners[1], corners[2]
		m.addIncidence(a, tid)
		m.addIncidence(b, tid)
		m.addIncidence(c, tid)

		m.vertices[a].Neighbors = append(m.vertices[a].Neighbors, b, c)
		m.vertices[b].Neighbors = append(m.vertices[b].Neighbors, a, c)
		m.vertices[c].Neighbors = append(m.vertices[c].Neighbors, a, b)
	}

	m.ComputeQuadrics()
	return m, nil
}

// Clone returns a deep copy that shares no storage with m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		vertices:  make([]Vertex, len(m.vertices)),
		triangles: make([]Triangle, len(m.triangles)),
		alive:     m.alive,
	}
	copy(c.triangles, m.triangles)
	for i := range m.vertices {
		v := m.vertices[i]
		v.Triangles = append([]TriangleID(nil), v.Triangles...)
		v.Neighbors = append([]VertexID(nil), v.Neighbors...)
		c.vertices[i] = v
	}
	return c
}

// VertexCount returns the number of vertex records, alive or not.
func (m *Mesh) VertexCount() int { return len(m.vertices) }

// TriangleCount returns the number of triangle records, degenerate or not.
func (m *Mesh) TriangleCount() int { return len(m.triangles) }

// AliveCount returns the number of alive vertices.
func (m *Mesh) AliveCount() int { return m.alive }

// Vertex returns the vertex record for id. The pointer aliases mesh storage
// and must not be retained across mutations by callers outside this module.
func (m *Mesh) Vertex(id VertexID) *Vertex {
	if !m.validVertex(id) {
		return nil
	}
	return &m.vertices[id]
}

// Triangle returns a copy of the triangle record for id.
func (m *Mesh) Triangle(id TriangleID) (Triangle, bool) {
	if id < 0 || id >= len(m.triangles) {
		return Triangle{}, false
	}
	return m.triangles[id], true
}

// IsAlive reports whether id names an alive vertex.
func (m *Mesh) IsAlive(id VertexID) bool {
	return m.validVertex(id) && m.vertices[id].Alive
}

// TriangleNormal returns the unit plane normal of the triangle's current
// corners. Degenerate and zero-area triangles yield the zero vector.
func (m *Mesh) TriangleNormal(id TriangleID) math.Vec3 {
	if id < 0 || id >= len(m.triangles) {
		return math.Vec3{}
	}
	t := &m.triangles[id]
	if t.IsDegenerate() {
		return math.Vec3{}
	}
	p0 := m.vertices[t.Verts[0]].Position
	p1 := m.vertices[t.Verts[1]].Position
	p2 := m.vertices[t.Verts[2]].Position
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

// Bounds returns the axis-aligned box around all alive vertices. ok is false
// when no vertex is alive.
func (m *Mesh) Bounds() (lo, hi math.Vec3, ok bool) {
	for i := range m.vertices {
		v := &m.vertices[i]
		if !v.Alive {
			continue
		}
		if !ok {
			lo, hi, ok = v.Position, v.Position, true
			continue
		}
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi, ok
}

// RenderIndices returns a flat list of vertex index triples, one for each
// non-degenerate triangle whose corners are all alive, in triangle id order.
func (m *Mesh) RenderIndices() []uint32 {
	indices := make([]uint32, 0, len(m.triangles)*3)
	for i := range m.triangles {
		t := &m.triangles[i]
		if !m.renderable(t) {
			continue
		}
		indices = append(indices, uint32(t.Verts[0]), uint32(t.Verts[1]), uint32(t.Verts[2]))
	}
	return indices
}

// ActiveTriangleCount returns the number of triangles RenderIndices would emit.
func (m *Mesh) ActiveTriangleCount() int {
	n := 0
	for i := range m.triangles {
		if m.renderable(&m.triangles[i]) {
			n++
		}
	}
	return n
}

func (m *Mesh) renderable(t *Triangle) bool {
	if t.IsDegenerate() {
		return false
	}
	return m.vertices[t.Verts[0]].Alive && m.vertices[t.Verts[1]].Alive && m.vertices[t.Verts[2]].Alive
}

func (m *Mesh) validVertex(id VertexID) bool {
	return id >= 0 && id < len(m.vertices)
}

func (m *Mesh) addIncidence(v VertexID, tid TriangleID) {
	vert := &m.vertices[v]
	for _, existing := range vert.Triangles {
		if existing == tid {
			return
		}
	}
	vert.Triangles = append(vert.Triangles, tid)
}

// SameTopology reports whether both meshes have the same alive vertex set and
// the same current triangle corners. Adjacency and quadrics are ignored.
func (m *Mesh) SameTopology(other *Mesh) bool {
	if len(m.vertices) != len(other.vertices) || len(m.triangles) != len(other.triangles) {
		return false
	}
	if m.alive != other.alive {
		return false
	}
	for i := range m.vertices {
		if m.vertices[i].Alive != other.vertices[i].Alive {
			return false
		}
	}
	for i := range m.triangles {
		if m.triangles[i].Verts != other.triangles[i].Verts {
			return false
		}
	}
	return true
}

// VertexNormals returns one unit normal per vertex. Loaded normals are kept;
// vertices without one get the area-weighted sum of their visible triangle
// normals.
func (m *Mesh) VertexNormals() []math.Vec3 {
	sums := make([]math.Vec3, len(m.vertices))
	for i := range m.triangles {
		t := &m.triangles[i]
		if !m.renderable(t) {
			continue
		}
		p0 := m.vertices[t.Verts[0]].Position
		p1 := m.vertices[t.Verts[1]].Position
		p2 := m.vertices[t.Verts[2]].Position
		// Unnormalized cross product weights by area.
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, v := range t.Verts {
			sums[v] = sums[v].Add(n)
		}
	}

	out := make([]math.Vec3, len(m.vertices))
	for i := range m.vertices {
		if n := m.vertices[i].Normal; !n.IsZero() {
			out[i] = n.Normalize()
			continue
		}
		out[i] = sums[i].Normalize()
	}
	return out
}
