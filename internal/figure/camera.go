package figure

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scene2video/internal/canvas"
)

// Camera is the figure a layer's camera actor animates. View is the visible
// world window {xmin, xmax, ymin, ymax}; Orientation and Focus place the
// orthographic projection used for 3D points.
type Camera struct {
	Props
	View        [4]float64
	Orientation mgl64.Mat3
	Focus       mgl64.Vec3
}

// NewCamera returns a camera looking down the z axis at the given window.
func NewCamera(xmin, xmax, ymin, ymax float64) *Camera {
	return &Camera{
		View:        [4]float64{xmin, xmax, ymin, ymax},
		Orientation: mgl64.Ident3(),
	}
}

func (c *Camera) Fields() []Field {
	return []Field{
		{Name: "view", Kind: Numeric, Ptr: &c.View},
		{Name: "orientation", Kind: Numeric, Ptr: &c.Orientation},
		{Name: "focus", Kind: Numeric, Ptr: &c.Focus},
	}
}

func (c *Camera) Copy() Figure {
	cp := *c
	return &cp
}

// Draw is a no-op; cameras are consumed by their layer.
func (c *Camera) Draw(*Camera, canvas.Canvas) error { return nil }

func (c *Camera) Width() float64  { return c.View[1] - c.View[0] }
func (c *Camera) Height() float64 { return c.View[3] - c.View[2] }

// Center returns the middle of the view window.
func (c *Camera) Center() complex128 {
	return complex((c.View[0]+c.View[1])/2, (c.View[2]+c.View[3])/2)
}

// Zoom scales the window about its center; factors above 1 zoom in.
func (c *Camera) Zoom(factor float64) {
	cx, cy := real(c.Center()), imag(c.Center())
	hw, hh := c.Width()/2/factor, c.Height()/2/factor
	c.View = [4]float64{cx - hw, cx + hw, cy - hh, cy + hh}
}

// Pan moves the window by d.
func (c *Camera) Pan(d complex128) {
	c.View[0] += real(d)
	c.View[1] += real(d)
	c.View[2] += imag(d)
	c.View[3] += imag(d)
}

// Project maps a 3D point to the view plane. Focus lands on the window
// center; the camera axes are the columns of Orientation.
func (c *Camera) Project(v mgl64.Vec3) complex128 {
	r := c.Orientation.Transpose().Mul3x1(v.Sub(c.Focus))
	return c.Center() + complex(r.X(), r.Y())
}
