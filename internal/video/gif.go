package video

import (
	"context"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	"github.com/ivlev/scene2video/internal/config"
)

// GIFEncoder writes an animated GIF with the Plan 9 palette and
// Floyd-Steinberg dithering. Frame delays are in hundredths of a second, so
// holds are rounded on the running total rather than per frame.
type GIFEncoder struct {
	// LoopCount is passed to gif.GIF: 0 loops forever, -1 plays once.
	LoopCount int
}

func (e *GIFEncoder) Encode(ctx context.Context, frames <-chan Frame, path string, p config.StreamParams) error {
	defer drain(frames)

	out := &gif.GIF{LoopCount: e.LoopCount}
	elapsed, shown := 0, 0
	for f := range frames {
		if err := ctx.Err(); err != nil {
			f.release()
			return err
		}
		elapsed += f.Hold
		delay := centis(elapsed, p.FPS) - shown
		if delay <= 0 {
			// Короче, чем формат способен показать
			f.release()
			continue
		}
		shown += delay
		out.Image = append(out.Image, quantize(f.Image))
		out.Delay = append(out.Delay, delay)
		f.release()
	}
	if len(out.Image) == 0 {
		return fmt.Errorf("no frames to write to %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(file, out); err != nil {
		file.Close()
		return fmt.Errorf("encode gif: %w", err)
	}
	log.Debug().Int("frames", len(out.Image)).Str("path", path).Msg("gif written")
	return file.Close()
}

// centis переводит число кадров в сотые доли секунды с округлением.
func centis(frames, fps int) int {
	if fps <= 0 {
		return 0
	}
	return (frames*100 + fps/2) / fps
}

func quantize(img *image.RGBA) *image.Paletted {
	b := img.Bounds()
	pal := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(pal, b, img, b.Min)
	return pal
}
