package shape

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/figure"
)

// Point is a filled dot.
type Point struct {
	figure.Props
	Pos    complex128
	Radius float64
	Color  canvas.Color
	Alpha  float64
}

// NewPoint returns a white dot of radius r at pos.
func NewPoint(pos complex128, r float64) *Point {
	return &Point{Pos: pos, Radius: r, Color: canvas.White, Alpha: 1}
}

func (p *Point) Fields() []figure.Field {
	return []figure.Field{
		{Name: "pos", Kind: figure.Numeric, Ptr: &p.Pos},
		{Name: "radius", Kind: figure.Numeric, Ptr: &p.Radius},
		{Name: "color", Kind: figure.Numeric, Ptr: &p.Color},
		{Name: "alpha", Kind: figure.Numeric, Ptr: &p.Alpha},
	}
}

func (p *Point) Copy() figure.Figure {
	c := *p
	return &c
}

func (p *Point) Draw(_ *figure.Camera, c canvas.Canvas) error {
	if p.Hidden || p.Radius <= 0 {
		return nil
	}
	dot(c, p.Pos, p.Radius, p.Color.WithAlpha(p.Alpha))
	return nil
}

// SpacePoint is a dot positioned in 3D and projected through the camera.
type SpacePoint struct {
	figure.Props
	Pos    mgl64.Vec3
	Radius float64
	Color  canvas.Color
	Alpha  float64
}

// NewSpacePoint returns a white dot of radius r at pos.
func NewSpacePoint(pos mgl64.Vec3, r float64) *SpacePoint {
	return &SpacePoint{Pos: pos, Radius: r, Color: canvas.White, Alpha: 1}
}

func (p *SpacePoint) Fields() []figure.Field {
	return []figure.Field{
		{Name: "pos", Kind: figure.Numeric, Ptr: &p.Pos},
		{Name: "radius", Kind: figure.Numeric, Ptr: &p.Radius},
		{Name: "color", Kind: figure.Numeric, Ptr: &p.Color},
		{Name: "alpha", Kind: figure.Numeric, Ptr: &p.Alpha},
	}
}

func (p *SpacePoint) Copy() figure.Figure {
	c := *p
	return &c
}

func (p *SpacePoint) Draw(cam *figure.Camera, c canvas.Canvas) error {
	if p.Hidden || p.Radius <= 0 {
		return nil
	}
	pos := complex(p.Pos.X(), p.Pos.Y())
	if cam != nil {
		pos = cam.Project(p.Pos)
	}
	dot(c, pos, p.Radius, p.Color.WithAlpha(p.Alpha))
	return nil
}

func dot(c canvas.Canvas, pos complex128, r float64, col canvas.Color) {
	s := Circle(pos, r)
	c.NewPath()
	pts := s.Flatten()
	c.MoveTo(real(pts[0]), imag(pts[0]))
	for _, q := range pts[1:] {
		c.LineTo(real(q), imag(q))
	}
	c.ClosePath()
	c.SetColor(col)
	c.Fill()
}
