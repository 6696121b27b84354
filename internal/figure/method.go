package figure

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scene2video/internal/canvas"
)

// Rule interpolates the value types a tween method cares about. Scalars and
// list-valued attributes always blend linearly.
type Rule interface {
	Complex(a, b complex128, t float64) complex128
	Vec3(a, b mgl64.Vec3, t float64) mgl64.Vec3
	Color(a, b canvas.Color, t float64) canvas.Color
}

// Method is a named interpolation strategy. Split, when set, adjusts the
// method of the two halves of a segment cut at progress tmid so that the
// halves retrace the original path.
type Method struct {
	Name  string
	Rule  Rule
	Split func(tmid float64, beg, mid, fin Figure) error
}

func (m *Method) String() string { return m.Name }

var (
	// Linear blends positions along straight lines.
	Linear = &Method{Name: "linear", Rule: linearRule{}}
	// Spiral blends positions along logarithmic spirals around the origin.
	// Any sub-segment of a spiral is itself the spiral between its ends, so
	// it needs no splitter.
	Spiral = &Method{Name: "spiral", Rule: spiralRule{}}
	// Perceptual blends colors in L*a*b* space and everything else linearly.
	Perceptual = &Method{Name: "perceptual", Rule: labRule{}}
)

// Pivot rotates positions by angle radians around the unique center that
// carries each start point onto its end point.
func Pivot(angle float64) *Method {
	return &Method{
		Name: "pivot",
		Rule: pivotRule{angle: angle},
		Split: func(tmid float64, beg, mid, _ Figure) error {
			beg.Properties().Method = Pivot(angle * tmid)
			mid.Properties().Method = Pivot(angle * (1 - tmid))
			return nil
		},
	}
}

// MethodNamed resolves a method by name. angle is used by "pivot" only.
func MethodNamed(name string, angle float64) (*Method, error) {
	switch name {
	case "", "linear":
		return Linear, nil
	case "spiral":
		return Spiral, nil
	case "perceptual", "lab":
		return Perceptual, nil
	case "pivot":
		return Pivot(angle), nil
	}
	return nil, fmt.Errorf("unknown tween method %q", name)
}

// Tween interpolates from a toward b at progress t using a's method.
func Tween(a, b Figure, t float64) (Figure, error) {
	return MethodOf(a).Tween(a, b, t)
}

// Tween interpolates from a toward b at progress t. t=0 yields a copy of a
// and t=1 a copy of b; other values, including overshooting ones, blend.
func (m *Method) Tween(a, b Figure, t float64) (Figure, error) {
	if err := Compatible(a, b); err != nil {
		return nil, err
	}
	switch t {
	case 0:
		return a.Copy(), nil
	case 1:
		return b.Copy(), nil
	}
	if mo, ok := a.(Morpher); ok {
		return mo.Morph(b, t, m.Rule)
	}
	c := a.Copy()
	if err := Blend(c, a, b, t, m.Rule); err != nil {
		return nil, err
	}
	return c, nil
}

type linearRule struct{}

func (linearRule) Complex(a, b complex128, t float64) complex128 {
	return a*complex(1-t, 0) + b*complex(t, 0)
}

func (linearRule) Vec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func (linearRule) Color(a, b canvas.Color, t float64) canvas.Color { return a.Lerp(b, t) }

type labRule struct{ linearRule }

func (labRule) Color(a, b canvas.Color, t float64) canvas.Color { return a.LerpLab(b, t) }

type spiralRule struct{ linearRule }

func (r spiralRule) Complex(a, b complex128, t float64) complex128 {
	if a == 0 || b == 0 {
		return r.linearRule.Complex(a, b, t)
	}
	return a * cmplx.Exp(complex(t, 0)*cmplx.Log(b/a))
}

func (r spiralRule) Vec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return r.linearRule.Vec3(a, b, t)
	}
	ua, ub := a.Mul(1/la), b.Mul(1/lb)
	mag := la * math.Pow(lb/la, t)
	omega := math.Acos(mgl64.Clamp(ua.Dot(ub), -1, 1))
	if omega < 1e-9 {
		return ua.Mul(mag)
	}
	s := math.Sin(omega)
	dir := ua.Mul(math.Sin((1-t)*omega) / s).Add(ub.Mul(math.Sin(t*omega) / s))
	return dir.Mul(mag)
}

type pivotRule struct {
	linearRule
	angle float64
}

func (r pivotRule) Complex(a, b complex128, t float64) complex128 {
	w := cmplx.Exp(complex(0, r.angle))
	if cmplx.Abs(1-w) < 1e-12 {
		return r.linearRule.Complex(a, b, t)
	}
	p := (b - w*a) / (1 - w)
	return p + cmplx.Exp(complex(0, r.angle*t))*(a-p)
}
