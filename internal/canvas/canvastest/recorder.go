// Package canvastest provides a canvas that records drawing calls.
package canvastest

import (
	"fmt"
	"image"
	"strings"

	"github.com/ivlev/scene2video/internal/canvas"
)

// Recorder implements canvas.Canvas by logging every call. Text is measured
// at CharWidth per rune. Calls on surfaces land in the log of the recorder
// that created them, prefixed with "@".
type Recorder struct {
	W, H      int
	CharWidth float64
	Ops       []string
	img       *image.RGBA
	prefix    string
	root      *Recorder
}

// New returns a recorder of the given device size.
func New(w, h int) *Recorder {
	return &Recorder{W: w, H: h, CharWidth: 0.5}
}

func (r *Recorder) log(format string, args ...any) {
	root := r
	if r.root != nil {
		root = r.root
	}
	root.Ops = append(root.Ops, r.prefix+fmt.Sprintf(format, args...))
}

// Count returns how many recorded calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, op := range r.Ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

// Filter returns the recorded calls starting with prefix.
func (r *Recorder) Filter(prefix string) []string {
	var out []string
	for _, op := range r.Ops {
		if strings.HasPrefix(op, prefix) {
			out = append(out, op)
		}
	}
	return out
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }

func (r *Recorder) Save()                  { r.log("save") }
func (r *Recorder) Restore()               { r.log("restore") }
func (r *Recorder) Translate(x, y float64) { r.log("translate %g %g", x, y) }
func (r *Recorder) Scale(sx, sy float64)   { r.log("scale %g %g", sx, sy) }
func (r *Recorder) Rotate(theta float64)   { r.log("rotate %g", theta) }

func (r *Recorder) NewPath()            { r.log("newpath") }
func (r *Recorder) MoveTo(x, y float64) { r.log("moveto %g %g", x, y) }
func (r *Recorder) LineTo(x, y float64) { r.log("lineto %g %g", x, y) }
func (r *Recorder) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	r.log("curveto %g %g %g %g %g %g", x1, y1, x2, y2, x3, y3)
}
func (r *Recorder) ClosePath() { r.log("closepath") }

func (r *Recorder) SetColor(c canvas.Color)       { r.log("color %s", c.Hex()) }
func (r *Recorder) SetGradient(g *canvas.Gradient) { r.log("gradient %d", len(g.Stops)) }
func (r *Recorder) SetLineWidth(w float64)         { r.log("linewidth %g", w) }
func (r *Recorder) SetDash(p []float64, off float64) {
	r.log("dash %v %g", p, off)
}
func (r *Recorder) Fill()   { r.log("fill") }
func (r *Recorder) Stroke() { r.log("stroke") }

func (r *Recorder) DrawImage(img image.Image, x, y, w, h, alpha float64) {
	r.log("image %g %g %g %g %g", x, y, w, h, alpha)
}

func (r *Recorder) DrawText(text string, x, y, size float64, c canvas.Color) {
	r.log("text %q %g %g %g", text, x, y, size)
}

func (r *Recorder) Clear(c canvas.Color) { r.log("clear %s", c.Hex()) }

func (r *Recorder) NewSurface(w, h int) canvas.Surface {
	r.log("surface %d %d", w, h)
	root := r
	if r.root != nil {
		root = r.root
	}
	return &Recorder{W: w, H: h, CharWidth: r.CharWidth, prefix: r.prefix + "@", root: root}
}

func (r *Recorder) Composite(src, mask canvas.Surface) {
	if mask == nil {
		r.log("composite")
		return
	}
	r.log("composite masked")
}

func (r *Recorder) TextExtent(text string, size float64) (float64, float64) {
	return float64(len([]rune(text))) * r.CharWidth * size, size
}

func (r *Recorder) Image() *image.RGBA {
	if r.img == nil {
		r.img = image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	}
	return r.img
}
