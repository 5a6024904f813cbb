package math

// Quadric is a symmetric 4x4 error matrix stored as its 10 independent
// coefficients, row-major upper triangle:
//
//	[A  B  C  D]
//	[B  E  F  G]
//	[C  F  H  I]
//	[D  G  I  J]
//
// Evaluating it at a homogeneous point p = (x, y, z, 1) yields the sum of
// squared distances from p to every plane accumulated into it.
type Quadric struct {
	A, B, C, D float64
	E, F, G    float64
	H, I       float64
	J          float64
}

// PlaneQuadric returns the fundamental error quadric of the plane
// ax + by + cz + d = 0, i.e. the outer product [a b c d]^T [a b c d].
func PlaneQuadric(a, b, c, d float64) Quadric {
	return Quadric{
		A: a * a, B: a * b, C: a * c, D: a * d,
		E: b * b, F: b * c, G: b * d,
		H: c * c, I: c * d,
		J: d * d,
	}
}

// PlaneQuadricFrom builds the plane through point with the given unit normal.
// A zero normal yields the zero quadric.
func PlaneQuadricFrom(normal, point Vec3) Quadric {
	a, b, c := float64(normal.X), float64(normal.Y), float64(normal.Z)
	d := -(a*float64(point.X) + b*float64(point.Y) + c*float64(point.Z))
	return PlaneQuadric(a, b, c, d)
}

// Add returns q + other.
func (q Quadric) Add(other Quadric) Quadric {
	return Quadric{
		A: q.A + other.A, B: q.B + other.B, C: q.C + other.C, D: q.D + other.D,
		E: q.E + other.E, F: q.F + other.F, G: q.G + other.G,
		H: q.H + other.H, I: q.I + other.I,
		J: q.J + other.J,
	}
}

// Evaluate returns p^T Q p for the homogeneous point (p, 1).
func (q Quadric) Evaluate(p Vec3) float64 {
	x, y, z := float64(p.X), float64(p.Y), float64(p.Z)
	return q.A*x*x + 2*q.B*x*y + 2*q.C*x*z + 2*q.D*x +
		q.E*y*y + 2*q.F*y*z + 2*q.G*y +
		q.H*z*z + 2*q.I*z +
		q.J
}

// Mat4 expands the quadric into a full row-major 4x4 matrix.
func (q Quadric) Mat4() [16]float64 {
	return [16]float64{
		q.A, q.B, q.C, q.D,
		q.B, q.E, q.F, q.G,
		q.C, q.F, q.H, q.I,
		q.D, q.G, q.I, q.J,
	}
}
