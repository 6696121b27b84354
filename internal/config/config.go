package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/scene2video/internal/transition"
)

// Config is built once at startup and passed by pointer to whatever needs it.
// Nothing in the library mutates it after construction.
type Config struct {
	InputPath         string  `yaml:"input"`
	OutputPath        string  `yaml:"output"`
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	FPS               int     `yaml:"fps"`
	Scale             float64 `yaml:"scale"`
	Workers           int     `yaml:"workers"`
	Background        string  `yaml:"background"`
	DefaultTransition string  `yaml:"default_transition"`
	FontSize          float64 `yaml:"font_size"`
	FFmpegPath        string  `yaml:"ffmpeg_path"`
	VideoEncoder      string  `yaml:"video_encoder"`
	Quality           int     `yaml:"quality"`
	FinalDelay        int     `yaml:"final_delay"` // frames substituted for infinite delays on export
	Debug             bool    `yaml:"debug"`
	ShowStats         bool    `yaml:"show_stats"`
	BuildVersion      string  `yaml:"-"`

	transition transition.Func
}

// StreamParams describes one encoded output stream.
type StreamParams struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
	FFmpegPath    string
	Workers       int
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{
		Width:             640,
		Height:            360,
		FPS:               30,
		Scale:             1,
		Workers:           runtime.NumCPU(),
		Background:        "#000000",
		DefaultTransition: "linear",
		FontSize:          24,
		FFmpegPath:        "ffmpeg",
		VideoEncoder:      "libx264",
		Quality:           23,
		FinalDelay:        30,
	}
	c.transition = transition.Linear
	return c
}

// Load reads a YAML config file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Finalize(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Save writes c as YAML.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Finalize validates the fields and resolves the default transition. It must
// be called after fields are set by hand and before the config is shared.
func (c *Config) Finalize() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", c.FPS)
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.FinalDelay < 0 {
		return fmt.Errorf("invalid final delay %d", c.FinalDelay)
	}
	tr, err := transition.Named(c.DefaultTransition)
	if err != nil {
		return err
	}
	c.transition = tr
	return nil
}

// Transition returns the default transition for keyfigures without their own.
func (c *Config) Transition() transition.Func {
	if c == nil || c.transition == nil {
		return transition.Linear
	}
	return c.transition
}

// Stream returns encoder parameters for output scaled by scale.
func (c *Config) Stream(scale float64) StreamParams {
	if scale <= 0 {
		scale = 1
	}
	w := evenDim(float64(c.Width) * scale)
	h := evenDim(float64(c.Height) * scale)
	return StreamParams{
		Width:      w,
		Height:     h,
		FPS:        c.FPS,
		Encoder:    c.VideoEncoder,
		Quality:    c.Quality,
		FFmpegPath: c.FFmpegPath,
		Workers:    c.Workers,
	}
}

// yuv420p needs even dimensions.
func evenDim(v float64) int {
	n := int(v + 0.5)
	if n < 2 {
		n = 2
	}
	if n%2 != 0 {
		n++
	}
	return n
}
