package renderer

import (
	"image"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/scene2video/internal/canvas"
)

// fontCache holds Go Regular faces keyed by pixel size. Faces are not safe
// for concurrent use; a raster and its surfaces share one cache.
type fontCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

func newFontCache() *fontCache {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		// The embedded font always parses.
		panic(err)
	}
	return &fontCache{font: f, faces: map[float64]font.Face{}}
}

func (fc *fontCache) face(size float64) font.Face {
	size = math.Round(size*4) / 4
	if f, ok := fc.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(fc.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		log.Warn().Err(err).Float64("size", size).Msg("font face")
		return nil
	}
	fc.faces[size] = f
	return f
}

// DrawText draws text upright at size device pixels with its baseline
// starting at user point (x, y).
func (r *Raster) DrawText(text string, x, y, size float64, c canvas.Color) {
	if text == "" || size <= 0 {
		return
	}
	face := r.fonts.face(size)
	if face == nil {
		return
	}
	p := apply(r.st.ctm, x, y)
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c.NRGBA()),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(p[0] * 64), Y: fixed.Int26_6(p[1] * 64)},
	}
	d.DrawString(text)
}

// TextExtent measures text at size device pixels and converts the result to
// user units along x.
func (r *Raster) TextExtent(text string, size float64) (float64, float64) {
	face := r.fonts.face(size)
	if face == nil {
		return 0, 0
	}
	w := float64(font.MeasureString(face, text)) / 64
	h := float64(face.Metrics().Height) / 64
	if s := r.scaleX(); s > 0 {
		return w / s, h / s
	}
	return w, h
}
