package shape

import (
	"fmt"
	"image"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/figure"
	"github.com/ivlev/scene2video/internal/source"
)

// Picture draws a raster image into a world rectangle.
type Picture struct {
	figure.Props
	Image    image.Image
	Pos      complex128 // lower-left corner
	Width    float64
	Height   float64
	Alpha    float64
	Rotation float64
}

// NewPicture places img at pos with the given width, keeping its aspect.
func NewPicture(img image.Image, pos complex128, width float64) *Picture {
	b := img.Bounds()
	h := width
	if b.Dx() > 0 {
		h = width * float64(b.Dy()) / float64(b.Dx())
	}
	return &Picture{Image: img, Pos: pos, Width: width, Height: h, Alpha: 1}
}

// PictureFromSource renders one page of src.
func PictureFromSource(src source.Source, page, dpi int, pos complex128, width float64) (*Picture, error) {
	if page < 0 || page >= src.PageCount() {
		return nil, fmt.Errorf("page %d out of range [0,%d)", page, src.PageCount())
	}
	img, err := src.RenderPage(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return NewPicture(img, pos, width), nil
}

func (p *Picture) Fields() []figure.Field {
	return []figure.Field{
		{Name: "image", Kind: figure.Discrete, Ptr: &p.Image},
		{Name: "pos", Kind: figure.Numeric, Ptr: &p.Pos},
		{Name: "width", Kind: figure.Numeric, Ptr: &p.Width},
		{Name: "height", Kind: figure.Numeric, Ptr: &p.Height},
		{Name: "alpha", Kind: figure.Numeric, Ptr: &p.Alpha},
		{Name: "rotation", Kind: figure.Numeric, Ptr: &p.Rotation},
	}
}

// Copy shares the pixels, which are never written.
func (p *Picture) Copy() figure.Figure {
	c := *p
	return &c
}

func (p *Picture) Draw(_ *figure.Camera, c canvas.Canvas) error {
	if p.Hidden || p.Image == nil || p.Alpha <= 0 {
		return nil
	}
	c.Save()
	defer c.Restore()
	c.Translate(real(p.Pos), imag(p.Pos))
	if p.Rotation != 0 {
		c.Rotate(p.Rotation)
	}
	c.DrawImage(p.Image, 0, 0, p.Width, p.Height, p.Alpha)
	return nil
}
