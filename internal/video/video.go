// Package video encodes rendered frame sequences into files.
package video

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/system"
)

// Frame is one rendered image shown for Hold consecutive frames. Encoders
// own Image once they receive it and hand it back to the system pool.
type Frame struct {
	Index int
	Image *image.RGBA
	Hold  int
}

func (f Frame) release() { system.PutImage(f.Image) }

// Encoder consumes frames in order until the channel is closed.
type Encoder interface {
	Encode(ctx context.Context, frames <-chan Frame, path string, p config.StreamParams) error
}

// ForPath picks an encoder from the output extension. Paths without one are
// treated as PNG sequence directories.
func ForPath(path string) (Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".mkv", ".webm":
		return &FFmpegEncoder{}, nil
	case ".gif":
		return &GIFEncoder{}, nil
	case "":
		return &PNGSequence{}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q", filepath.Ext(path))
}

// drain возвращает в пул кадры, оставшиеся после досрочного выхода.
func drain(frames <-chan Frame) {
	for f := range frames {
		f.release()
	}
}

// FFmpegEncoder передает сырые RGBA кадры в ffmpeg через stdin.
type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Encode(ctx context.Context, frames <-chan Frame, path string, p config.StreamParams) error {
	defer drain(frames)

	ffmpeg := p.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	args := e.buildFFmpegArgs(path, p)
	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}
	log.Debug().Strs("args", args).Msg("ffmpeg started")

	written := 0
	for f := range frames {
		// Удержание кадра: один и тот же кадр пишется Hold раз
		for i := 0; i < f.Hold; i++ {
			if err := e.writeRawRGBA(stdin, f.Image, p.Width, p.Height); err != nil {
				f.release()
				stdin.Close()
				_ = cmd.Wait()
				return fmt.Errorf("write raw error at frame %d: %w: %s", f.Index, err, out.String())
			}
			written++
		}
		f.release()
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, out.String())
	}
	log.Debug().Int("frames", written).Str("path", path).Msg("ffmpeg finished")
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(videoPath string, p config.StreamParams) []string {
	encoderName := p.Encoder
	if encoderName == "" {
		encoderName = "libx264"
	}
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}

	// Качество в зависимости от энкодера
	switch encoderName {
	case "h264_videotoolbox":
		bitrate := p.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", p.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", p.Quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

// writeRawRGBA пишет img как плотный RGBA буфер w×h, копируя кадр,
// если раскладка или размер отличаются.
func (e *FFmpegEncoder) writeRawRGBA(w io.Writer, img *image.RGBA, width, height int) error {
	bounds := img.Bounds()
	if img.Stride != width*4 || bounds != image.Rect(0, 0, width, height) {
		packed := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}
