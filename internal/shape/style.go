// Package shape holds the concrete figures: paths, polygons, splines,
// points, text, pictures and QR codes.
package shape

import (
	"math"
	"math/cmplx"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/figure"
)

// Style is the stroke, fill and placement shared by path-like figures.
type Style struct {
	Color      canvas.Color
	Alpha      float64
	Width      float64
	Dash       []float64
	DashOffset float64
	Fill       canvas.Paint
	FillAlpha  float64
	// Origin and Rotation place the node coordinates.
	Origin   complex128
	Rotation float64
	// Start and End bound the drawn fraction of the outline by arc length.
	Start, End float64
}

// DefaultStyle is a white one-pixel outline without fill.
func DefaultStyle() Style {
	return Style{Color: canvas.White, Alpha: 1, Width: 1, FillAlpha: 1, End: 1}
}

func (s *Style) fields() []figure.Field {
	return []figure.Field{
		{Name: "color", Kind: figure.Numeric, Ptr: &s.Color},
		{Name: "alpha", Kind: figure.Numeric, Ptr: &s.Alpha},
		{Name: "width", Kind: figure.Numeric, Ptr: &s.Width},
		{Name: "dash", Kind: figure.Dash, Ptr: &s.Dash},
		{Name: "dashoffset", Kind: figure.Numeric, Ptr: &s.DashOffset},
		{Name: "fill", Kind: figure.Numeric, Ptr: &s.Fill},
		{Name: "fillalpha", Kind: figure.Numeric, Ptr: &s.FillAlpha},
		{Name: "origin", Kind: figure.Numeric, Ptr: &s.Origin},
		{Name: "rotation", Kind: figure.Numeric, Ptr: &s.Rotation},
		{Name: "start", Kind: figure.Numeric, Ptr: &s.Start},
		{Name: "end", Kind: figure.Numeric, Ptr: &s.End},
	}
}

func (s Style) copy() Style {
	s.Dash = append([]float64(nil), s.Dash...)
	s.Fill = s.Fill.Copy()
	return s
}

func (s *Style) filled() bool {
	return s.FillAlpha > 0 && (s.Fill.Gradient != nil || s.Fill.Color.A > 0)
}

func (s *Style) stroked() bool {
	return s.Alpha > 0 && s.Width > 0 && s.Color.A > 0
}

func (s *Style) place(c canvas.Canvas) {
	c.Translate(real(s.Origin), imag(s.Origin))
	if s.Rotation != 0 {
		c.Rotate(s.Rotation)
	}
}

func (s *Style) fill(c canvas.Canvas) {
	s.Fill.Apply(c, s.FillAlpha)
	c.Fill()
}

func (s *Style) stroke(c canvas.Canvas) {
	c.SetColor(s.Color.WithAlpha(s.Alpha))
	c.SetLineWidth(s.Width)
	c.SetDash(s.Dash, s.DashOffset)
	c.Stroke()
}

// run is a connected polyline.
type run struct {
	pts    []complex128
	closed bool
}

func (r run) length() float64 {
	var l float64
	for i := 1; i < len(r.pts); i++ {
		l += cmplx.Abs(r.pts[i] - r.pts[i-1])
	}
	if r.closed && len(r.pts) > 1 {
		l += cmplx.Abs(r.pts[0] - r.pts[len(r.pts)-1])
	}
	return l
}

// open returns the run as an explicit polyline, repeating the first point
// when closed.
func (r run) open() []complex128 {
	if !r.closed || len(r.pts) < 2 {
		return r.pts
	}
	return append(append([]complex128(nil), r.pts...), r.pts[0])
}

// trim keeps the part of runs between fractions start and end of their total
// arc length.
func trim(runs []run, start, end float64) []run {
	start, end = math.Max(start, 0), math.Min(end, 1)
	if start <= 0 && end >= 1 {
		return runs
	}
	if end <= start {
		return nil
	}
	var total float64
	for _, r := range runs {
		total += r.length()
	}
	if total == 0 {
		return nil
	}
	lo, hi := start*total, end*total
	var out []run
	var pos float64
	for _, r := range runs {
		pts := r.open()
		var cur []complex128
		for i := 1; i < len(pts); i++ {
			a, b := pts[i-1], pts[i]
			seg := cmplx.Abs(b - a)
			s0, s1 := pos, pos+seg
			pos = s1
			if s1 <= lo || s0 >= hi || seg == 0 {
				continue
			}
			u0 := math.Max(0, (lo-s0)/seg)
			u1 := math.Min(1, (hi-s0)/seg)
			p0 := a + (b-a)*complex(u0, 0)
			p1 := a + (b-a)*complex(u1, 0)
			if len(cur) == 0 {
				cur = append(cur, p0)
			}
			cur = append(cur, p1)
		}
		if len(cur) > 1 {
			out = append(out, run{pts: cur})
		}
	}
	return out
}

func trace(c canvas.Canvas, runs []run) {
	c.NewPath()
	for _, r := range runs {
		if len(r.pts) == 0 {
			continue
		}
		c.MoveTo(real(r.pts[0]), imag(r.pts[0]))
		for _, p := range r.pts[1:] {
			c.LineTo(real(p), imag(p))
		}
		if r.closed {
			c.ClosePath()
		}
	}
}

// drawRuns fills and strokes runs with style s.
func drawRuns(c canvas.Canvas, s *Style, runs []run) {
	c.Save()
	defer c.Restore()
	s.place(c)
	if s.filled() {
		trace(c, runs)
		s.fill(c)
	}
	if s.stroked() {
		trace(c, trim(runs, s.Start, s.End))
		s.stroke(c)
	}
}
