package canvas

import (
	"sort"
)

// Stop is one color stop of a gradient.
type Stop struct {
	Offset float64
	Color  Color
}

// Gradient is a linear gradient between Start and End (user space).
type Gradient struct {
	Start, End complex128
	Stops      []Stop
}

// Copy returns an independent copy of g.
func (g *Gradient) Copy() *Gradient {
	if g == nil {
		return nil
	}
	c := *g
	c.Stops = append([]Stop(nil), g.Stops...)
	return &c
}

// At samples the gradient color at offset u.
func (g *Gradient) At(u float64) Color {
	n := len(g.Stops)
	if n == 0 {
		return Transparent
	}
	if u <= g.Stops[0].Offset {
		return g.Stops[0].Color
	}
	if u >= g.Stops[n-1].Offset {
		return g.Stops[n-1].Color
	}
	i := sort.Search(n, func(i int) bool { return g.Stops[i].Offset > u })
	a, b := g.Stops[i-1], g.Stops[i]
	span := b.Offset - a.Offset
	if span <= 0 {
		return b.Color
	}
	return a.Color.Lerp(b.Color, (u-a.Offset)/span)
}

// Paint is either a solid color or, when Gradient is set, a gradient.
type Paint struct {
	Color    Color
	Gradient *Gradient
}

// Solid returns a solid paint.
func Solid(c Color) Paint { return Paint{Color: c} }

// Copy returns an independent copy of p.
func (p Paint) Copy() Paint {
	p.Gradient = p.Gradient.Copy()
	return p
}

// Apply installs p as the current source on c.
func (p Paint) Apply(c Canvas, alpha float64) {
	if p.Gradient == nil {
		c.SetColor(p.Color.WithAlpha(alpha))
		return
	}
	g := p.Gradient.Copy()
	for i := range g.Stops {
		g.Stops[i].Color = g.Stops[i].Color.WithAlpha(alpha)
	}
	c.SetGradient(g)
}

// Degenerate returns a gradient with the geometry and stop offsets of like,
// every stop set to c. It is the stand-in for a solid color being tweened
// against a gradient.
func Degenerate(c Color, like *Gradient) *Gradient {
	g := &Gradient{Start: like.Start, End: like.End, Stops: make([]Stop, len(like.Stops))}
	for i, s := range like.Stops {
		g.Stops[i] = Stop{Offset: s.Offset, Color: c}
	}
	return g
}

// NormalizePaints makes a and b structurally compatible: a solid paint facing
// a gradient becomes a degenerate gradient, and two gradients with different
// stop offsets are both resampled on the union of offsets.
func NormalizePaints(a, b Paint) (Paint, Paint) {
	a, b = a.Copy(), b.Copy()
	switch {
	case a.Gradient == nil && b.Gradient == nil:
		return a, b
	case a.Gradient == nil:
		a.Gradient = Degenerate(a.Color, b.Gradient)
		return a, b
	case b.Gradient == nil:
		b.Gradient = Degenerate(b.Color, a.Gradient)
		return a, b
	}
	if sameOffsets(a.Gradient.Stops, b.Gradient.Stops) {
		return a, b
	}
	offsets := unionOffsets(a.Gradient.Stops, b.Gradient.Stops)
	a.Gradient.Stops = resample(a.Gradient, offsets)
	b.Gradient.Stops = resample(b.Gradient, offsets)
	return a, b
}

// LerpPaint blends two paints, normalizing them first. The endpoints return
// copies of a and b exactly.
func LerpPaint(a, b Paint, t float64, blend func(x, y Color, t float64) Color) Paint {
	if t <= 0 {
		return a.Copy()
	}
	if t >= 1 {
		return b.Copy()
	}
	if blend == nil {
		blend = Color.Lerp
	}
	a, b = NormalizePaints(a, b)
	out := Paint{Color: blend(a.Color, b.Color, t)}
	if a.Gradient == nil {
		return out
	}
	g := &Gradient{
		Start: a.Gradient.Start*complex(1-t, 0) + b.Gradient.Start*complex(t, 0),
		End:   a.Gradient.End*complex(1-t, 0) + b.Gradient.End*complex(t, 0),
		Stops: make([]Stop, len(a.Gradient.Stops)),
	}
	for i := range g.Stops {
		sa, sb := a.Gradient.Stops[i], b.Gradient.Stops[i]
		g.Stops[i] = Stop{Offset: mix(sa.Offset, sb.Offset, t), Color: blend(sa.Color, sb.Color, t)}
	}
	out.Gradient = g
	return out
}

func sameOffsets(a, b []Stop) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Offset != b[i].Offset {
			return false
		}
	}
	return true
}

func unionOffsets(a, b []Stop) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, s := range append(append([]Stop(nil), a...), b...) {
		if !seen[s.Offset] {
			seen[s.Offset] = true
			out = append(out, s.Offset)
		}
	}
	sort.Float64s(out)
	return out
}

func resample(g *Gradient, offsets []float64) []Stop {
	stops := make([]Stop, len(offsets))
	for i, u := range offsets {
		stops[i] = Stop{Offset: u, Color: g.At(u)}
	}
	return stops
}
