package engine

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/animation"
	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/shape"
	"github.com/ivlev/scene2video/internal/video"
)

func redScreen(t *testing.T, cfg *config.Config) *animation.Animation {
	t.Helper()
	r := shape.Rect(0, complex(float64(cfg.Width), float64(cfg.Height)))
	r.Fill = canvas.Solid(canvas.RGB(1, 0, 0))
	a := actor.Empty(actor.WithName("bg"))
	_, err := a.NewKeyframe(0, r)
	require.NoError(t, err)
	moved := r.Copy().(*shape.Path)
	moved.Origin = 10
	_, err = a.NewKeyframe(4, moved)
	require.NoError(t, err)

	anim, err := animation.Wrap(a, animation.WithConfig(cfg))
	require.NoError(t, err)
	return anim
}

func TestRunPNGSequence(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 2
	anim := redScreen(t, cfg)
	anim.WaitAt(2, 3)

	dir := filepath.Join(t.TempDir(), "out")
	stats, err := NewProject(cfg, anim, &video.PNGSequence{}).Run(context.Background(), dir, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Steps)
	assert.Equal(t, 8, stats.Frames)
	assert.Equal(t, 64, stats.Width)
	assert.Equal(t, 36, stats.Height)

	f, err := os.Open(filepath.Join(dir, video.FrameName(0)))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	r, g, b, _ := img.At(32, 18).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestExportPicksEncoder(t *testing.T) {
	cfg := config.Default()
	anim := redScreen(t, cfg)
	path := filepath.Join(t.TempDir(), "out.gif")
	require.NoError(t, Export(context.Background(), anim, path, 0.05))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, Export(context.Background(), anim, "out.avi", 1))
}

func TestRunRejectsInfiniteDelay(t *testing.T) {
	cfg := config.Default()
	cfg.FinalDelay = 2
	anim := redScreen(t, cfg)
	anim.PauseAt(4)

	p := NewProject(cfg, anim, &video.PNGSequence{})
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "a"), 0.05)
	assert.ErrorIs(t, err, errs.ErrExportPrecheck)

	p.Finitize = true
	stats, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "b"), 0.05)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Frames)
}

func TestRunSanityCheck(t *testing.T) {
	cfg := config.Default()
	anim := redScreen(t, cfg)
	anim.FPS = 0
	_, err := NewProject(cfg, anim, &video.PNGSequence{}).Run(context.Background(), t.TempDir(), 1)
	assert.ErrorIs(t, err, errs.ErrStructural)
}

type failingEncoder struct{ err error }

func (e failingEncoder) Encode(ctx context.Context, frames <-chan video.Frame, path string, p config.StreamParams) error {
	<-frames
	return e.err
}

func TestRunEncoderFailureStopsRendering(t *testing.T) {
	cfg := config.Default()
	anim := redScreen(t, cfg)
	boom := errors.New("boom")
	_, err := NewProject(cfg, anim, failingEncoder{boom}).Run(context.Background(), "x", 0.05)
	assert.ErrorIs(t, err, boom)
}

func TestReportWritesBenchmarkLog(t *testing.T) {
	cfg := config.Default()
	cfg.ShowStats = true
	cfg.BuildVersion = "test"
	anim := redScreen(t, cfg)
	p := NewProject(cfg, anim, &video.PNGSequence{})
	p.BenchmarkLog = filepath.Join(t.TempDir(), "benchmark.log")
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "seq"), 0.05)
	require.NoError(t, err)

	data, err := os.ReadFile(p.BenchmarkLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Build: test | Output: seq | Frames: 5")
}
