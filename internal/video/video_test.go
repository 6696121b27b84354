package video

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/config"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func feed(frames ...Frame) <-chan Frame {
	ch := make(chan Frame, len(frames))
	for _, f := range frames {
		ch <- f
	}
	close(ch)
	return ch
}

func params() config.StreamParams {
	return config.StreamParams{Width: 4, Height: 2, FPS: 10, Encoder: "libx264", Quality: 23, Workers: 2}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want Encoder
	}{
		{"out.mp4", &FFmpegEncoder{}},
		{"out.MOV", &FFmpegEncoder{}},
		{"out.gif", &GIFEncoder{}},
		{"frames", &PNGSequence{}},
	}
	for _, tt := range tests {
		got, err := ForPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.IsType(t, tt.want, got, tt.path)
	}
	_, err := ForPath("out.avi")
	assert.Error(t, err)
}

func TestBuildFFmpegArgs(t *testing.T) {
	e := &FFmpegEncoder{}
	p := params()
	args := e.buildFFmpegArgs("out.mp4", p)
	assert.Equal(t, "out.mp4", args[len(args)-1])
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-video_size 4x2")
	assert.Contains(t, joined, "-framerate 10")
	assert.Contains(t, joined, "-crf 23 -preset medium")

	p.Encoder = "h264_nvenc"
	assert.Contains(t, strings.Join(e.buildFFmpegArgs("o.mp4", p), " "), "-cq 23")
	p.Encoder = "h264_videotoolbox"
	assert.Contains(t, strings.Join(e.buildFFmpegArgs("o.mp4", p), " "), "-b:v 2300k")
}

func TestWriteRawRGBARepacks(t *testing.T) {
	e := &FFmpegEncoder{}
	big := solid(6, 4, color.RGBA{1, 2, 3, 255})
	sub := big.SubImage(image.Rect(1, 1, 5, 3)).(*image.RGBA)

	var buf bytes.Buffer
	require.NoError(t, e.writeRawRGBA(&buf, sub, 4, 2))
	assert.Equal(t, 4*2*4, buf.Len())
	assert.Equal(t, []byte{1, 2, 3, 255}, buf.Bytes()[:4])
}

func TestFFmpegEncode(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	path := filepath.Join(t.TempDir(), "out.mp4")
	frames := feed(
		Frame{Index: 0, Image: solid(4, 2, color.RGBA{255, 0, 0, 255}), Hold: 2},
		Frame{Index: 1, Image: solid(4, 2, color.RGBA{0, 0, 255, 255}), Hold: 1},
	)
	require.NoError(t, (&FFmpegEncoder{}).Encode(context.Background(), frames, path, params()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCentis(t *testing.T) {
	assert.Equal(t, 0, centis(0, 30))
	assert.Equal(t, 3, centis(1, 30))
	assert.Equal(t, 7, centis(2, 30))
	assert.Equal(t, 100, centis(30, 30))
	assert.Equal(t, 0, centis(5, 0))
}

func TestGIFEncoderDelays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	frames := feed(
		Frame{Index: 0, Image: solid(4, 2, color.RGBA{255, 0, 0, 255}), Hold: 1},
		Frame{Index: 1, Image: solid(4, 2, color.RGBA{0, 255, 0, 255}), Hold: 3},
		Frame{Index: 2, Image: solid(4, 2, color.RGBA{0, 0, 255, 255}), Hold: 1},
	)
	require.NoError(t, (&GIFEncoder{}).Encode(context.Background(), frames, path, params()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	if diff := cmp.Diff([]int{10, 30, 10}, g.Delay); diff != "" {
		t.Errorf("delays (-want +got):\n%s", diff)
	}
	r, _, _, _ := g.Image[0].At(1, 1).RGBA()
	assert.Greater(t, r, uint32(0xf000))
}

func TestGIFEncoderDropsSubCentisecondFrames(t *testing.T) {
	p := params()
	p.FPS = 300
	path := filepath.Join(t.TempDir(), "fast.gif")
	frames := feed(
		Frame{Index: 0, Image: solid(4, 2, color.RGBA{255, 0, 0, 255}), Hold: 1},
		Frame{Index: 1, Image: solid(4, 2, color.RGBA{0, 255, 0, 255}), Hold: 1},
		Frame{Index: 2, Image: solid(4, 2, color.RGBA{0, 0, 255, 255}), Hold: 1},
	)
	require.NoError(t, (&GIFEncoder{}).Encode(context.Background(), frames, path, p))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, g.Delay)

	assert.Error(t, (&GIFEncoder{}).Encode(context.Background(), feed(), path, p))
}

func TestPNGSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seq")
	frames := feed(
		Frame{Index: 0, Image: solid(4, 2, color.RGBA{255, 0, 0, 255}), Hold: 1},
		Frame{Index: 1, Image: solid(4, 2, color.RGBA{0, 0, 255, 255}), Hold: 5},
	)
	require.NoError(t, (&PNGSequence{}).Encode(context.Background(), frames, dir, params()))

	for _, name := range []string{FrameName(0), FrameName(1)} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	list, err := os.ReadFile(filepath.Join(dir, ConcatList))
	require.NoError(t, err)
	want := "ffconcat version 1.0\n" +
		"file 'frame_00000.png'\nduration 0.100000\n" +
		"file 'frame_00001.png'\nduration 0.500000\n" +
		"file 'frame_00001.png'\n"
	assert.Equal(t, want, string(list))
}

func TestPNGSequenceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	frames := feed(Frame{Image: solid(4, 2, color.RGBA{}), Hold: 1})
	err := (&PNGSequence{}).Encode(ctx, frames, filepath.Join(t.TempDir(), "seq"), params())
	assert.ErrorIs(t, err, context.Canceled)
}
