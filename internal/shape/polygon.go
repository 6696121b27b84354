package shape

import (
	"math"
	"math/cmplx"
)

// Polygon returns a closed path through nodes.
func Polygon(nodes ...complex128) *Path {
	p := NewPath(nodes...)
	p.Closed = true
	return p
}

// Rect returns the axis-aligned rectangle with corners a and b.
func Rect(a, b complex128) *Path {
	return Polygon(a, complex(real(b), imag(a)), b, complex(real(a), imag(b)))
}

// RegularPolygon returns an n-gon inscribed in the circle of radius r around
// center, its first vertex at angle phase.
func RegularPolygon(center complex128, r float64, n int, phase float64) *Path {
	nodes := make([]complex128, n)
	for i := range nodes {
		nodes[i] = center + cmplx.Rect(r, phase+2*math.Pi*float64(i)/float64(n))
	}
	return Polygon(nodes...)
}
