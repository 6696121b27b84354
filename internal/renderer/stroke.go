package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/ivlev/scene2video/internal/canvas"
)

// joinSides is the number of sides of the polygon approximating round joins.
const joinSides = 12

// strokePolyline adds the outline of pts at half-width hw. Every piece is
// wound the same way so overlaps accumulate instead of cancelling.
func strokePolyline(z *vector.Rasterizer, pts []f64.Vec2, hw float64) {
	if len(pts) == 0 {
		return
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b[0]-a[0], b[1]-a[1]
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		polygon(z, []f64.Vec2{
			{a[0] + nx, a[1] + ny},
			{b[0] + nx, b[1] + ny},
			{b[0] - nx, b[1] - ny},
			{a[0] - nx, a[1] - ny},
		})
	}
	for _, p := range pts {
		disc(z, p, hw)
	}
}

func disc(z *vector.Rasterizer, c f64.Vec2, r float64) {
	pts := make([]f64.Vec2, joinSides)
	for i := range pts {
		// Clockwise, matching the segment quads.
		s, co := math.Sincos(-2 * math.Pi * float64(i) / joinSides)
		pts[i] = f64.Vec2{c[0] + r*co, c[1] + r*s}
	}
	polygon(z, pts)
}

// dashPolyline cuts pts into the "on" pieces of pattern starting offset into
// it. An empty or all-zero pattern returns pts whole.
func dashPolyline(pts []f64.Vec2, pattern []float64, offset float64) [][]f64.Vec2 {
	period := 0.0
	for _, d := range pattern {
		period += math.Max(d, 0)
	}
	if len(pattern) == 0 || period <= 0 || len(pts) < 2 {
		return [][]f64.Vec2{pts}
	}
	if len(pattern)%2 == 1 {
		pattern = append(append([]float64(nil), pattern...), pattern...)
	}

	// Position inside the pattern.
	idx, left := 0, 0.0
	pos := math.Mod(offset, period)
	if pos < 0 {
		pos += period
	}
	for {
		d := math.Max(pattern[idx], 0)
		if pos < d {
			left = d - pos
			break
		}
		pos -= d
		idx = (idx + 1) % len(pattern)
	}

	var out [][]f64.Vec2
	var cur []f64.Vec2
	on := idx%2 == 0
	if on {
		cur = []f64.Vec2{pts[0]}
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := math.Hypot(b[0]-a[0], b[1]-a[1])
		done := 0.0
		for seg-done > left {
			done += left
			p := f64.Vec2{a[0] + (b[0]-a[0])*done/seg, a[1] + (b[1]-a[1])*done/seg}
			if on {
				out = append(out, append(cur, p))
				cur = nil
			} else {
				cur = []f64.Vec2{p}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = math.Max(pattern[idx], 0)
		}
		left -= seg - done
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

// gradientImage is an unbounded image of a linear gradient in device space.
type gradientImage struct {
	g     *canvas.Gradient
	p0, d f64.Vec2
	lenSq float64
}

func newGradientImage(g *canvas.Gradient, start, end f64.Vec2) *gradientImage {
	d := f64.Vec2{end[0] - start[0], end[1] - start[1]}
	return &gradientImage{g: g.Copy(), p0: start, d: d, lenSq: d[0]*d[0] + d[1]*d[1]}
}

func (gi *gradientImage) ColorModel() color.Model { return color.NRGBAModel }

func (gi *gradientImage) Bounds() image.Rectangle {
	return image.Rect(-1<<30, -1<<30, 1<<30, 1<<30)
}

func (gi *gradientImage) At(x, y int) color.Color {
	u := 0.0
	if gi.lenSq > 0 {
		px, py := float64(x)+0.5-gi.p0[0], float64(y)+0.5-gi.p0[1]
		u = (px*gi.d[0] + py*gi.d[1]) / gi.lenSq
	}
	return gi.g.At(u).NRGBA()
}
