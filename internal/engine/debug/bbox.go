package debug

import "github.com/Faultbox/progmesh/pkg/math"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BBoxWireframe creates line vertices for the box [lo, hi] grown by padding
// on every side. Returns 24 vertices as [x, y, z] triples.
func BBoxWireframe(lo, hi math.Vec3, padding float32) []float32 {
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	lo, hi = lo.Min(hi).Sub(pad), lo.Max(hi).Add(pad)
	minX, minY, minZ := lo.X, lo.Y, lo.Z
	maxX, maxY, maxZ := hi.X, hi.Y, hi.Z

	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}
