package figure

import (
	"math"
	"math/cmplx"
	"reflect"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scene2video/internal/canvas"
)

// Equal reports whether a and b are value-equal within tol: same type, same
// visibility and depth, every attribute within tol and, for composites, every
// sub-figure Equal.
func Equal(a, b Figure, tol float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	pa, pb := a.Properties(), b.Properties()
	if pa.Hidden != pb.Hidden || pa.Z != pb.Z {
		return false
	}
	af, bf := a.Fields(), b.Fields()
	if len(af) != len(bf) {
		return false
	}
	for i := range af {
		if af[i].Name != bf[i].Name || !valueEqual(af[i].Value(), bf[i].Value(), tol) {
			return false
		}
	}
	ca, ok := a.(Composite)
	if !ok {
		return true
	}
	sa, sb := ca.Subfigures(), b.(Composite).Subfigures()
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if !Equal(sa[i], sb[i], tol) {
			return false
		}
	}
	return true
}

func valueEqual(x, y any, tol float64) bool {
	switch a := x.(type) {
	case float64:
		return nearFloat(a, y.(float64), tol)
	case complex128:
		b := y.(complex128)
		if cmplx.IsInf(a) || cmplx.IsInf(b) {
			return a == b
		}
		return cmplx.Abs(a-b) <= tol
	case []float64:
		b := y.([]float64)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !nearFloat(a[i], b[i], tol) {
				return false
			}
		}
		return true
	case []complex128:
		b := y.([]complex128)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !valueEqual(a[i], b[i], tol) {
				return false
			}
		}
		return true
	case [4]float64:
		b := y.([4]float64)
		return valueEqual(a[:], b[:], tol)
	case mgl64.Vec3:
		return a.ApproxEqualThreshold(y.(mgl64.Vec3), tol)
	case []mgl64.Vec3:
		b := y.([]mgl64.Vec3)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].ApproxEqualThreshold(b[i], tol) {
				return false
			}
		}
		return true
	case mgl64.Mat3:
		return a.ApproxEqualThreshold(y.(mgl64.Mat3), tol)
	case canvas.Color:
		return a.Close(y.(canvas.Color), tol)
	case canvas.Paint:
		b := y.(canvas.Paint)
		if !a.Color.Close(b.Color, tol) || (a.Gradient == nil) != (b.Gradient == nil) {
			return false
		}
		if a.Gradient == nil {
			return true
		}
		ga, gb := a.Gradient, b.Gradient
		if len(ga.Stops) != len(gb.Stops) || !valueEqual(ga.Start, gb.Start, tol) || !valueEqual(ga.End, gb.End, tol) {
			return false
		}
		for i := range ga.Stops {
			if !nearFloat(ga.Stops[i].Offset, gb.Stops[i].Offset, tol) || !ga.Stops[i].Color.Close(gb.Stops[i].Color, tol) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(x, y)
}

func nearFloat(a, b, tol float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= tol
}
