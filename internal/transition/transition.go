// Package transition holds the scalar easing curves applied to interpolation
// progress before it reaches a tween method.
package transition

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Func remaps progress in [0,1] onto [0,1]. It must map 0 to 0 and 1 to 1.
type Func func(float64) float64

// Linear returns progress unchanged.
func Linear(t float64) float64 { return t }

// Smooth is the classic smoothstep 3t^2 - 2t^3.
func Smooth(t float64) float64 {
	t = Clamp(t)
	return t * t * (3 - 2*t)
}

// Smoother is 6t^5 - 15t^4 + 10t^3.
func Smoother(t float64) float64 {
	t = Clamp(t)
	return t * t * t * (t*(t*6-15) + 10)
}

func QuadIn(t float64) float64  { return t * t }
func QuadOut(t float64) float64 { return t * (2 - t) }

func QuadInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - 2*(1-t)*(1-t)
}

func CubicIn(t float64) float64 { return t * t * t }

func CubicOut(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func CubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

func SineInOut(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// BackOut overshoots slightly before settling at 1.
func BackOut(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}

// Ease is the CSS "ease" curve.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// CubicBezier returns the easing curve matching CSS cubic-bezier(x1,y1,x2,y2).
func CubicBezier(x1, y1, x2, y2 float64) Func {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		for range 8 {
			x := bezier(x1, x2, u) - t
			if math.Abs(x) < 1e-9 {
				return bezier(y1, y2, Clamp(u))
			}
			dx := bezierSlope(x1, x2, u)
			if math.Abs(dx) < 1e-9 {
				break
			}
			u -= x / dx
		}

		lo, hi := 0.0, 1.0
		u = Clamp(u)
		for range 40 {
			x := bezier(x1, x2, u) - t
			if math.Abs(x) < 1e-9 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) / 2
		}
		return bezier(y1, y2, u)
	}
}

func bezier(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func bezierSlope(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

// Clamp clamps t into [0,1].
func Clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Split divides f at s (0<s<1) into two renormalized halves so that
// f1 over [0,1] traces f over [0,s] and f2 traces f over [s,1]:
//
//	f1(x) = f(s·x) / f(s)
//	f2(x) = (f(s + (1-s)·x) - f(s)) / (1 - f(s))
//
// When f(s) is 0 or 1 the corresponding half is flat and cannot be
// renormalized; Linear is returned for it.
func Split(f Func, s float64) (Func, Func) {
	if f == nil {
		f = Linear
	}
	fs := f(s)
	var f1, f2 Func = Linear, Linear
	if fs != 0 {
		f1 = func(x float64) float64 {
			if x >= 1 {
				return 1
			}
			return f(s*x) / fs
		}
	}
	if fs != 1 {
		f2 = func(x float64) float64 {
			if x <= 0 {
				return 0
			}
			if x >= 1 {
				return 1
			}
			return (f(s+(1-s)*x) - fs) / (1 - fs)
		}
	}
	return f1, f2
}

var registry = map[string]Func{
	"linear":      Linear,
	"smooth":      Smooth,
	"smoother":    Smoother,
	"quad-in":     QuadIn,
	"quad-out":    QuadOut,
	"quad-inout":  QuadInOut,
	"cubic-in":    CubicIn,
	"cubic-out":   CubicOut,
	"cubic-inout": CubicInOut,
	"sine-inout":  SineInOut,
	"back-out":    BackOut,
	"ease":        Ease,
	"ease-in":     CubicBezier(0.42, 0, 1, 1),
	"ease-out":    CubicBezier(0, 0, 0.58, 1),
	"ease-in-out": CubicBezier(0.42, 0, 0.58, 1),
}

// Named returns the transition registered under name. It also accepts
// "cubic-bezier(x1,y1,x2,y2)".
func Named(name string) (Func, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Linear, nil
	}
	if f, ok := registry[name]; ok {
		return f, nil
	}
	if strings.HasPrefix(name, "cubic-bezier(") && strings.HasSuffix(name, ")") {
		parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(name, "cubic-bezier("), ")"), ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("cubic-bezier needs 4 arguments, got %d", len(parts))
		}
		var p [4]float64
		for i, s := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("cubic-bezier argument %d: %w", i+1, err)
			}
			p[i] = v
		}
		return CubicBezier(p[0], p[1], p[2], p[3]), nil
	}
	return nil, fmt.Errorf("unknown transition: %s", name)
}

// Names lists the registered transition names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
