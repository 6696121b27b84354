// Package canvas is the contract between figures and a drawing backend.
//
// Coordinates passed to path, text and image operations are user-space and go
// through the current affine transform. Line widths and text sizes are in
// device pixels.
package canvas

import "image"

// Canvas is a 2D vector drawing context.
type Canvas interface {
	// Size reports the device size in pixels.
	Size() (w, h int)

	Save()
	Restore()
	Translate(x, y float64)
	Scale(sx, sy float64)
	Rotate(theta float64)

	NewPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	ClosePath()

	SetColor(c Color)
	SetGradient(g *Gradient)
	SetLineWidth(w float64)
	SetDash(pattern []float64, offset float64)
	Fill()
	Stroke()

	// DrawImage draws img stretched over the user-space rectangle with
	// lower-left corner (x, y) and size (w, h).
	DrawImage(img image.Image, x, y, w, h, alpha float64)
	DrawText(text string, x, y, size float64, c Color)

	Clear(c Color)
	NewSurface(w, h int) Surface
	// Composite draws src onto the canvas, clipped by the alpha of mask.
	Composite(src, mask Surface)

	Measurer
}

// Surface is an off-screen canvas whose pixels can be read back.
type Surface interface {
	Canvas
	Image() *image.RGBA
}

// Measurer answers text layout queries.
type Measurer interface {
	// TextExtent reports the advance width and line height of text at size,
	// in user units under the current transform.
	TextExtent(text string, size float64) (w, h float64)
}
