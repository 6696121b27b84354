package shape

import (
	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/figure"
)

// Anchor values for Text.
const (
	AnchorLeft   = "left"
	AnchorCenter = "center"
	AnchorRight  = "right"
)

// Text is a single line of text. Pos is the baseline point selected by
// Anchor.
type Text struct {
	figure.Props
	Text   string
	Anchor string
	Pos    complex128
	Size   float64
	Color  canvas.Color
	Alpha  float64
}

// NewText returns left-anchored white text.
func NewText(s string, pos complex128, size float64) *Text {
	return &Text{Text: s, Anchor: AnchorLeft, Pos: pos, Size: size, Color: canvas.White, Alpha: 1}
}

func (t *Text) Fields() []figure.Field {
	return []figure.Field{
		{Name: "text", Kind: figure.Discrete, Ptr: &t.Text},
		{Name: "anchor", Kind: figure.Discrete, Ptr: &t.Anchor},
		{Name: "pos", Kind: figure.Numeric, Ptr: &t.Pos},
		{Name: "size", Kind: figure.Numeric, Ptr: &t.Size},
		{Name: "color", Kind: figure.Numeric, Ptr: &t.Color},
		{Name: "alpha", Kind: figure.Numeric, Ptr: &t.Alpha},
	}
}

func (t *Text) Copy() figure.Figure {
	c := *t
	return &c
}

func (t *Text) Draw(_ *figure.Camera, c canvas.Canvas) error {
	if t.Hidden || t.Text == "" || t.Size <= 0 {
		return nil
	}
	x, y := real(t.Pos), imag(t.Pos)
	switch t.Anchor {
	case AnchorCenter:
		w, _ := c.TextExtent(t.Text, t.Size)
		x -= w / 2
	case AnchorRight:
		w, _ := c.TextExtent(t.Text, t.Size)
		x -= w
	}
	c.DrawText(t.Text, x, y, t.Size, t.Color.WithAlpha(t.Alpha))
	return nil
}

// Glyphs lays text out one character per sub-figure so each glyph can be
// animated on its own.
func Glyphs(s string, pos complex128, size float64, m canvas.Measurer) *figure.MultiFigure {
	mf := figure.NewMulti()
	runes := []rune(s)
	for i, r := range runes {
		w, _ := m.TextExtent(string(runes[:i]), size)
		g := NewText(string(r), pos+complex(w, 0), size)
		mf.Add(g, "")
	}
	return mf
}
