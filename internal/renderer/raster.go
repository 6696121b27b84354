// Package renderer rasterizes canvas drawing calls into RGBA images.
package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/ivlev/scene2video/internal/canvas"
)

// curveSteps is the number of line segments per cubic Bezier.
const curveSteps = 16

type state struct {
	ctm        f64.Aff3
	color      canvas.Color
	gradient   *gradientImage
	width      float64
	dash       []float64
	dashOffset float64
}

type subpath struct {
	pts    []f64.Vec2
	closed bool
}

// Raster implements canvas.Surface on an *image.RGBA. Paths are transformed
// to device space as they are built.
type Raster struct {
	img   *image.RGBA
	st    state
	stack []state
	path  []subpath
	fonts *fontCache
}

// New returns a transparent w×h raster.
func New(w, h int) *Raster {
	return newRaster(image.NewRGBA(image.Rect(0, 0, w, h)), newFontCache())
}

// Wrap draws onto an existing image, typically one taken from a pool.
func Wrap(img *image.RGBA) *Raster {
	return newRaster(img, newFontCache())
}

func newRaster(img *image.RGBA, fonts *fontCache) *Raster {
	return &Raster{
		img:   img,
		st:    state{ctm: identity, color: canvas.Black, width: 1},
		fonts: fonts,
	}
}

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Reset retargets the raster to img with a fresh graphics state, keeping its
// font cache.
func (r *Raster) Reset(img *image.RGBA) {
	r.img = img
	r.st = state{ctm: identity, color: canvas.Black, width: 1}
	r.stack = r.stack[:0]
	r.path = r.path[:0]
}

func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Save() {
	st := r.st
	st.dash = append([]float64(nil), r.st.dash...)
	r.stack = append(r.stack, st)
}

func (r *Raster) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.st = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Raster) Translate(x, y float64) {
	r.st.ctm = mul(r.st.ctm, f64.Aff3{1, 0, x, 0, 1, y})
}

func (r *Raster) Scale(sx, sy float64) {
	r.st.ctm = mul(r.st.ctm, f64.Aff3{sx, 0, 0, 0, sy, 0})
}

func (r *Raster) Rotate(theta float64) {
	s, c := math.Sincos(theta)
	r.st.ctm = mul(r.st.ctm, f64.Aff3{c, -s, 0, s, c, 0})
}

// mul returns the transform applying b first, then a.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func apply(m f64.Aff3, x, y float64) f64.Vec2 {
	return f64.Vec2{m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]}
}

// scaleX is the device length of one user unit along x.
func (r *Raster) scaleX() float64 {
	return math.Hypot(r.st.ctm[0], r.st.ctm[3])
}

func (r *Raster) NewPath() { r.path = r.path[:0] }

func (r *Raster) MoveTo(x, y float64) {
	r.path = append(r.path, subpath{pts: []f64.Vec2{apply(r.st.ctm, x, y)}})
}

func (r *Raster) current() *subpath {
	if len(r.path) == 0 || r.path[len(r.path)-1].closed {
		var start f64.Vec2
		if n := len(r.path); n > 0 {
			start = r.path[n-1].pts[0]
		}
		r.path = append(r.path, subpath{pts: []f64.Vec2{start}})
	}
	return &r.path[len(r.path)-1]
}

func (r *Raster) LineTo(x, y float64) {
	sp := r.current()
	sp.pts = append(sp.pts, apply(r.st.ctm, x, y))
}

func (r *Raster) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	sp := r.current()
	p0 := sp.pts[len(sp.pts)-1]
	p1 := apply(r.st.ctm, x1, y1)
	p2 := apply(r.st.ctm, x2, y2)
	p3 := apply(r.st.ctm, x3, y3)
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		sp.pts = append(sp.pts, f64.Vec2{
			a*p0[0] + b*p1[0] + c*p2[0] + d*p3[0],
			a*p0[1] + b*p1[1] + c*p2[1] + d*p3[1],
		})
	}
}

func (r *Raster) ClosePath() {
	if n := len(r.path); n > 0 {
		r.path[n-1].closed = true
	}
}

func (r *Raster) SetColor(c canvas.Color) {
	r.st.color = c
	r.st.gradient = nil
}

func (r *Raster) SetGradient(g *canvas.Gradient) {
	if g == nil {
		r.st.gradient = nil
		return
	}
	r.st.gradient = newGradientImage(g, apply(r.st.ctm, real(g.Start), imag(g.Start)), apply(r.st.ctm, real(g.End), imag(g.End)))
}

func (r *Raster) SetLineWidth(w float64) { r.st.width = w }

func (r *Raster) SetDash(pattern []float64, offset float64) {
	r.st.dash = append(r.st.dash[:0], pattern...)
	r.st.dashOffset = offset
}

func (r *Raster) source() image.Image {
	if r.st.gradient != nil {
		return r.st.gradient
	}
	return image.NewUniform(r.st.color.NRGBA())
}

// Fill paints the interior of the current path with nonzero winding and
// clears the path.
func (r *Raster) Fill() {
	z := r.rasterizer()
	for _, sp := range r.path {
		if len(sp.pts) < 3 {
			continue
		}
		polygon(z, sp.pts)
	}
	r.paint(z)
	r.NewPath()
}

// Stroke outlines the current path at the line width (device pixels) with
// round joins and caps, applying the dash pattern, and clears the path.
func (r *Raster) Stroke() {
	if r.st.width <= 0 {
		r.NewPath()
		return
	}
	z := r.rasterizer()
	for _, sp := range r.path {
		line := sp.pts
		if sp.closed && len(line) > 1 {
			line = append(append([]f64.Vec2(nil), line...), line[0])
		}
		for _, piece := range dashPolyline(line, r.st.dash, r.st.dashOffset) {
			strokePolyline(z, piece, r.st.width/2)
		}
	}
	r.paint(z)
	r.NewPath()
}

func (r *Raster) rasterizer() *vector.Rasterizer {
	w, h := r.Size()
	return vector.NewRasterizer(w, h)
}

func (r *Raster) paint(z *vector.Rasterizer) {
	z.Draw(r.img, r.img.Bounds(), r.source(), image.Point{})
}

func polygon(z *vector.Rasterizer, pts []f64.Vec2) {
	z.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, p := range pts[1:] {
		z.LineTo(float32(p[0]), float32(p[1]))
	}
	z.ClosePath()
}

func (r *Raster) Clear(c canvas.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
}

// NewSurface returns a transparent raster sharing this raster's fonts.
func (r *Raster) NewSurface(w, h int) canvas.Surface {
	return newRaster(image.NewRGBA(image.Rect(0, 0, w, h)), r.fonts)
}

// Composite draws src over the raster, scaled by the alpha of mask when
// mask is set.
func (r *Raster) Composite(src, mask canvas.Surface) {
	b := r.img.Bounds()
	if mask == nil {
		draw.Draw(r.img, b, src.Image(), image.Point{}, draw.Over)
		return
	}
	draw.DrawMask(r.img, b, src.Image(), image.Point{}, mask.Image(), image.Point{}, draw.Over)
}

// DrawImage maps img onto the user-space rectangle with lower-left corner
// (x, y); the image's top row lands on the rectangle's top edge.
func (r *Raster) DrawImage(img image.Image, x, y, w, h, alpha float64) {
	sb := img.Bounds()
	if sb.Empty() || w == 0 || h == 0 || alpha <= 0 {
		return
	}
	sx, sy := w/float64(sb.Dx()), h/float64(sb.Dy())
	toUser := f64.Aff3{
		sx, 0, x - float64(sb.Min.X)*sx,
		0, -sy, y + h + float64(sb.Min.Y)*sy,
	}
	var opts *draw.Options
	if alpha < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})}
	}
	draw.BiLinear.Transform(r.img, mul(r.st.ctm, toUser), img, sb, draw.Over, opts)
}

var _ canvas.Surface = (*Raster)(nil)
