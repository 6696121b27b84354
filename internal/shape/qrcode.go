package shape

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/figure"
)

// QRCode encodes content as a multi-figure of filled rectangles, one per
// horizontal run of dark modules. origin is the lower-left corner and module
// the edge length of one module; the quiet zone is not included.
func QRCode(content string, origin complex128, module float64) (*figure.MultiFigure, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qrcode: %w", err)
	}
	q.DisableBorder = true
	bits := q.Bitmap()
	n := len(bits)
	mf := figure.NewMulti()
	for row, line := range bits {
		y := imag(origin) + float64(n-1-row)*module
		for col := 0; col < len(line); {
			if !line[col] {
				col++
				continue
			}
			start := col
			for col < len(line) && line[col] {
				col++
			}
			x0 := real(origin) + float64(start)*module
			x1 := real(origin) + float64(col)*module
			r := Rect(complex(x0, y), complex(x1, y+module))
			r.Width = 0
			r.Fill = canvas.Solid(canvas.Black)
			mf.Add(r, "")
		}
	}
	return mf, nil
}
