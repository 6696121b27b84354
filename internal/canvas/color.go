package canvas

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a straight (non-premultiplied) RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Transparent = Color{}
)

// RGB returns an opaque color.
func RGB(r, g, b float64) Color { return Color{r, g, b, 1} }

// ParseColor accepts "#rgb", "#rrggbb", "#rrggbbaa" and "none".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "none" || s == "transparent" {
		return Transparent, nil
	}
	alpha := 1.0
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{c.R, c.G, c.B, alpha}, nil
}

// Hex formats c as "#rrggbb" or "#rrggbbaa" when not opaque.
func (c Color) Hex() string {
	h := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}.Hex()
	if c.A >= 1 {
		return h
	}
	return fmt.Sprintf("%s%02x", h, uint8(clamp01(c.A)*255+0.5))
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// NRGBA converts c to an 8-bit image color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// Lerp blends component-wise. The endpoints are reproduced exactly.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: mix(c.R, o.R, t),
		G: mix(c.G, o.G, t),
		B: mix(c.B, o.B, t),
		A: mix(c.A, o.A, t),
	}
}

// LerpLab blends in CIE L*a*b* space, which keeps intermediate colors from
// going muddy. Alpha is blended linearly.
func (c Color) LerpLab(o Color, t float64) Color {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return o
	}
	a := colorful.Color{R: c.R, G: c.G, B: c.B}
	b := colorful.Color{R: o.R, G: o.G, B: o.B}
	m := a.BlendLab(b, t).Clamped()
	return Color{m.R, m.G, m.B, mix(c.A, o.A, t)}
}

// Close reports whether every component differs by at most tol.
func (c Color) Close(o Color, tol float64) bool {
	return near(c.R, o.R, tol) && near(c.G, o.G, tol) && near(c.B, o.B, tol) && near(c.A, o.A, tol)
}

func mix(a, b, t float64) float64 { return a*(1-t) + b*t }

func near(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
