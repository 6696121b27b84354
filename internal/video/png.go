package video

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scene2video/internal/config"
)

// ConcatList is the name of the ffconcat script written next to the frames.
const ConcatList = "frames.ffconcat"

// PNGSequence writes each distinct frame to its own PNG file inside a
// directory, plus an ffconcat list carrying the hold durations so ffmpeg can
// rebuild the timing.
type PNGSequence struct{}

// FrameName возвращает имя файла n-го записанного кадра.
func FrameName(n int) string { return fmt.Sprintf("frame_%05d.png", n) }

func (e *PNGSequence) Encode(ctx context.Context, frames <-chan Frame, dir string, p config.StreamParams) error {
	defer drain(frames)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var list strings.Builder
	list.WriteString("ffconcat version 1.0\n")
	n := 0
	for f := range frames {
		if gctx.Err() != nil {
			f.release()
			break
		}
		name := FrameName(n)
		fmt.Fprintf(&list, "file '%s'\nduration %.6f\n", name, float64(f.Hold)/float64(p.FPS))
		n++

		g.Go(func() error {
			defer f.release()
			return writePNG(filepath.Join(dir, name), f)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if n > 0 {
		// ffconcat игнорирует длительность последней записи, если ее не повторить
		fmt.Fprintf(&list, "file '%s'\n", FrameName(n-1))
	}
	if err := os.WriteFile(filepath.Join(dir, ConcatList), []byte(list.String()), 0644); err != nil {
		return err
	}
	log.Debug().Int("files", n).Str("dir", dir).Msg("png sequence written")
	return nil
}

func writePNG(path string, f Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, f.Image); err != nil {
		file.Close()
		return fmt.Errorf("frame %d: %w", f.Index, err)
	}
	return file.Close()
}
