package mesh_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/Faultbox/progmesh/pkg/math"
	"github.com/Faultbox/progmesh/pkg/mesh"
	"github.com/Faultbox/progmesh/pkg/mesh/meshtest"
)

func TestNewBuildsIncidence(t *testing.T) {
	m := meshtest.Quad()

	if m.VertexCount() != 4 {
		t.Errorf("expected 4 vertices, got %d", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", m.TriangleCount())
	}
	if m.AliveCount() != 4 {
		t.Errorf("expected 4 alive, got %d", m.AliveCount())
	}

	v0 := m.Vertex(0)
	if !slices.Equal(v0.Triangles, []mesh.TriangleID{0, 1}) {
		t.Errorf("vertex 0 triangles = %v, want [0 1]", v0.Triangles)
	}
	// Two entries per corner, duplicates kept
	if !slices.Equal(v0.Neighbors, []mesh.VertexID{1, 2, 2, 3}) {
		t.Errorf("vertex 0 neighbors = %v, want [1 2 2 3]", v0.Neighbors)
	}
	if v0.CollapseTarget != mesh.None {
		t.Errorf("expected no collapse target, got %d", v0.CollapseTarget)
	}
}

func TestNewRejectsOutOfRange(t *testing.T) {
	verts := meshtest.Positions(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1})

	tests := []struct {
		name string
		tris [][3]int
	}{
		{"too large", [][3]int{{0, 1, 3}}},
		{"negative", [][3]int{{0, -1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mesh.New(verts, tt.tris)
			if !errors.Is(err, mesh.ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}
}

func TestDegenerateInputTolerated(t *testing.T) {
	verts := meshtest.Positions(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1})
	m, err := mesh.New(verts, [][3]int{{0, 1, 2}, {0, 0, 1}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := m.TriangleNormal(1); !got.IsZero() {
		t.Errorf("degenerate triangle normal = %v, want zero", got)
	}
	if got := m.RenderIndices(); !slices.Equal(got, []uint32{0, 1, 2}) {
		t.Errorf("RenderIndices = %v, want [0 1 2]", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := meshtest.Octahedron()
	c := orig.Clone()

	if _, err := c.Collapse(4, 0); err != nil {
		t.Fatalf("Collapse failed: %v", err)
	}

	if orig.AliveCount() != 6 {
		t.Errorf("original alive count changed to %d", orig.AliveCount())
	}
	if !orig.SameTopology(meshtest.Octahedron()) {
		t.Error("original topology changed after collapsing the clone")
	}
	if len(orig.Vertex(0).Neighbors) != 8 {
		t.Errorf("original neighbors changed: %v", orig.Vertex(0).Neighbors)
	}
}

func TestBounds(t *testing.T) {
	m := meshtest.Octahedron()

	lo, hi, ok := m.Bounds()
	if !ok {
		t.Fatal("expected bounds")
	}
	if lo != (math.Vec3{X: -1, Y: -1, Z: -1}) || hi != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("bounds = %v..%v, want -1..1", lo, hi)
	}

	// Killing the +X tip shrinks the box
	if _, err := m.Collapse(0, 4); err != nil {
		t.Fatalf("Collapse failed: %v", err)
	}
	_, hi, _ = m.Bounds()
	if hi.X != 0 {
		t.Errorf("expected max X 0 after collapse, got %v", hi.X)
	}
}

func TestTriangleNormal(t *testing.T) {
	m := meshtest.Quad()
	n := m.TriangleNormal(0)
	if n != (math.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("normal = %v, want +Z", n)
	}
	if got := m.TriangleNormal(99); !got.IsZero() {
		t.Errorf("out of range normal = %v, want zero", got)
	}
}

func TestVertexNormals(t *testing.T) {
	m := meshtest.Quad()
	for i, n := range m.VertexNormals() {
		if n != (math.Vec3{Z: 1}) {
			t.Errorf("vertex %d normal = %v, want +Z", i, n)
		}
	}

	verts := meshtest.Positions(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1})
	verts[0].Normal = math.Vec3{X: 2}
	m = meshtest.Must(mesh.New(verts, [][3]int{{0, 1, 2}}))
	normals := m.VertexNormals()
	if normals[0] != (math.Vec3{X: 1}) {
		t.Errorf("loaded normal should be kept and normalized, got %v", normals[0])
	}
	if normals[1] != (math.Vec3{Z: 1}) {
		t.Errorf("computed normal = %v, want +Z", normals[1])
	}
}
