// Package meshtest builds small reference meshes for tests.
package meshtest

import (
	"fmt"

	"github.com/Faultbox/progmesh/pkg/math"
	"github.com/Faultbox/progmesh/pkg/mesh"
)

// Positions converts bare positions to vertex data.
func Positions(ps ...math.Vec3) []mesh.VertexData {
	out := make([]mesh.VertexData, len(ps))
	for i, p := range ps {
		out[i] = mesh.VertexData{Position: p}
	}
	return out
}

// Must panics if New fails. Fixtures are known-good.
func Must(m *mesh.Mesh, err error) *mesh.Mesh {
	if err != nil {
		panic(fmt.Sprintf("meshtest: %v", err))
	}
	return m
}

// Quad is the unit square at z=0 split along the 0-2 diagonal.
func Quad() *mesh.Mesh {
	verts := Positions(
		math.Vec3{X: 0, Y: 0, Z: 0},
		math.Vec3{X: 1, Y: 0, Z: 0},
		math.Vec3{X: 1, Y: 1, Z: 0},
		math.Vec3{X: 0, Y: 1, Z: 0},
	)
	return Must(mesh.New(verts, [][3]int{{0, 1, 2}, {0, 2, 3}}))
}

// Tetrahedron is a closed 4-vertex, 4-face mesh with outward winding.
func Tetrahedron() *mesh.Mesh {
	verts := Positions(
		math.Vec3{X: 0, Y: 0, Z: 0},
		math.Vec3{X: 1, Y: 0, Z: 0},
		math.Vec3{X: 0, Y: 1, Z: 0},
		math.Vec3{X: 0, Y: 0, Z: 1},
	)
	return Must(mesh.New(verts, [][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}))
}

// Octahedron is a closed 6-vertex, 8-face mesh centered at the origin.
func Octahedron() *mesh.Mesh {
	verts := Positions(
		math.Vec3{X: 1, Y: 0, Z: 0},
		math.Vec3{X: -1, Y: 0, Z: 0},
		math.Vec3{X: 0, Y: 1, Z: 0},
		math.Vec3{X: 0, Y: -1, Z: 0},
		math.Vec3{X: 0, Y: 0, Z: 1},
		math.Vec3{X: 0, Y: 0, Z: -1},
	)
	tris := [][3]int{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	}
	return Must(mesh.New(verts, tris))
}

// Grid is an n x n vertex grid on the z=0 plane with a small height bump in
// the middle so that collapse costs are not all equal.
func Grid(n int) *mesh.Mesh {
	if n < 2 {
		n = 2
	}
	verts := make([]mesh.VertexData, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx := float32(x) - float32(n-1)/2
			dy := float32(y) - float32(n-1)/2
			z := float32(0)
			if dx*dx+dy*dy < 2 {
				z = 0.25
			}
			verts = append(verts, mesh.VertexData{Position: math.Vec3{X: float32(x), Y: float32(y), Z: z}})
		}
	}

	tris := make([][3]int, 0, (n-1)*(n-1)*2)
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			i := y*n + x
			tris = append(tris, [3]int{i, i + 1, i + n + 1}, [3]int{i, i + n + 1, i + n})
		}
	}
	return Must(mesh.New(verts, tris))
}
