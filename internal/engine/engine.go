// Package engine exports animations: it checks the timeline, renders every
// frame of the playback plan and streams the images to an encoder.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scene2video/internal/animation"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/renderer"
	"github.com/ivlev/scene2video/internal/system"
	"github.com/ivlev/scene2video/internal/video"
)

// Project связывает анимацию с конфигурацией и энкодером.
type Project struct {
	Config  *config.Config
	Anim    *animation.Animation
	Encoder video.Encoder

	// Finitize replaces infinite delays by Config.FinalDelay frames instead
	// of failing the precheck.
	Finitize bool
	// BenchmarkLog получает по строке на запуск, если включен Config.ShowStats.
	BenchmarkLog string
}

// Stats описывает завершенный экспорт.
type Stats struct {
	Steps  int // distinct rendered frames
	Frames int // frames in the output, holds included
	Width  int
	Height int
	Render time.Duration
	Total  time.Duration
}

// FPS - фактическая скорость рендеринга.
func (s *Stats) FPS() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Steps) / s.Total.Seconds()
}

// NewProject returns a project for anim. A nil cfg falls back to the
// animation's config, then to config.Default.
func NewProject(cfg *config.Config, anim *animation.Animation, enc video.Encoder) *Project {
	if cfg == nil {
		cfg = anim.Config()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Project{Config: cfg, Anim: anim, Encoder: enc}
}

// Export renders anim to path, picking the encoder from the extension, at
// scale times the configured size.
func Export(ctx context.Context, anim *animation.Animation, path string, scale float64) error {
	enc, err := video.ForPath(path)
	if err != nil {
		return err
	}
	_, err = NewProject(nil, anim, enc).Run(ctx, path, scale)
	return err
}

// Run exports the animation. Frames are resolved and drawn in order on one
// goroutine; only encoding overlaps it.
func (p *Project) Run(ctx context.Context, path string, scale float64) (*Stats, error) {
	startTime := time.Now()

	if err := p.Anim.SanityCheck(); err != nil {
		return nil, fmt.Errorf("sanity check: %w", err)
	}
	if p.Finitize {
		p.Anim.Finitize(p.Config.FinalDelay)
	}
	steps, err := p.Anim.Plan()
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("animation has no frames")
	}
	p.Anim.ClearCache()

	stream := p.Config.Stream(scale)
	stream.FPS = p.Anim.FPS
	stats := &Stats{Steps: len(steps), Width: stream.Width, Height: stream.Height}
	for _, s := range steps {
		stats.Frames += s.Hold
	}

	log.Info().
		Str("output", path).
		Int("width", stream.Width).Int("height", stream.Height).
		Int("fps", stream.FPS).Int("frames", stats.Frames).
		Msg("export started")

	// Кадры в полёте ограничены свободной памятью
	inFlight := system.FrameBudget(stream.Width*stream.Height*4, 2, 64)
	frames := make(chan video.Frame, inFlight)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(frames)
		renderStart := time.Now()
		defer func() { stats.Render = time.Since(renderStart) }()
		return p.render(gctx, steps, stream, frames)
	})
	g.Go(func() error {
		return p.Encoder.Encode(gctx, frames, path, stream)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Total = time.Since(startTime)
	log.Info().
		Dur("total", stats.Total).Dur("render", stats.Render).
		Float64("effective_fps", stats.FPS()).
		Msg("export finished")
	if p.Config.ShowStats {
		p.report(path, stats)
	}
	return stats, nil
}

func (p *Project) render(ctx context.Context, steps []animation.Step, stream config.StreamParams, out chan<- video.Frame) error {
	var r *renderer.Raster
	for i, s := range steps {
		img := system.GetImage(stream.Width, stream.Height)
		if r == nil {
			r = renderer.Wrap(img)
		} else {
			r.Reset(img)
		}
		if err := p.Anim.Draw(s.Frame, r); err != nil {
			system.PutImage(img)
			return fmt.Errorf("frame %d: %w", s.Frame, err)
		}
		select {
		case out <- video.Frame{Index: s.Frame, Image: img, Hold: s.Hold}:
		case <-ctx.Done():
			system.PutImage(img)
			return ctx.Err()
		}
		if (i+1)%100 == 0 {
			log.Debug().Int("done", i+1).Int("total", len(steps)).Msg("rendering")
		}
	}
	return nil
}

func (p *Project) report(path string, s *Stats) {
	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Output: %s (%dx%d)\n"+
			"Frames: %d rendered, %d written\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, path, s.Width, s.Height, s.Steps, s.Frames,
		s.Total.Seconds(), s.Render.Seconds(), s.FPS(),
	)

	if p.BenchmarkLog == "" {
		return
	}
	logEntry := fmt.Sprintf("[%s] Build: %s | Output: %s | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(path),
		s.Steps,
		s.Total.Seconds(),
		s.Render.Seconds(),
		s.FPS(),
	)
	f, err := os.OpenFile(p.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warn().Err(err).Str("path", p.BenchmarkLog).Msg("не удалось записать benchmark log")
		return
	}
	defer f.Close()
	if _, err := f.WriteString(logEntry); err != nil {
		log.Warn().Err(err).Msg("benchmark log write")
	}
}
