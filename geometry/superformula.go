// Package geometry builds creature bodies: superformula radius evaluation,
// spherical-product mesh segments, recursive fractal outgrowths, and a binary
// STL writer for the export boundary.
//
// The radius function is the Gielis superformula (polar form):
//
//	r = (|cos(m*theta/4)|^n2 + |sin(m*theta/4)|^n3) ^ (-1/n1)
//
// m is the symmetry (number of lobes), n1 the overall roundness, n2/n3 the
// curvature of the cosine and sine terms.
//
// Reference: Gielis, J. (2003). A generic geometric transformation that
// unifies a wide range of natural and abstract shapes. American Journal of
// Botany, 90(3), 333-338.
package geometry

import "math"

// Radius clamp. Load-bearing: degenerate genomes must never produce
// unbounded or zero-size geometry.
const (
	MinRadius = 0.1
	MaxRadius = 5.0
)

const (
	epsExponent    = 0.001  // Substituted for n1 when it is near zero
	epsDenominator = 0.0001 // Below this the sum term counts as degenerate
)

// Radius evaluates the superformula at the given angle. Total over finite
// inputs: near-zero exponents and denominators are substituted rather than
// propagated, and the result is always within [MinRadius, MaxRadius].
func Radius(angle, m, n1, n2, n3 float64) float64 {
	if math.Abs(n1) < epsExponent {
		n1 = epsExponent
	}

	t := m * angle / 4.0
	denom := math.Pow(math.Abs(math.Cos(t)), n2) + math.Pow(math.Abs(math.Sin(t)), n3)

	if denom < epsDenominator {
		return 1.0
	}

	return clamp(math.Pow(denom, -1.0/n1), MinRadius, MaxRadius)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
