// Package math provides the small vector and quadric types used by the mesh
// simplifier.
package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
