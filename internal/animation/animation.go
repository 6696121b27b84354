// Package animation composes layers on one global timeline with a frame
// rate and a sparse map of pauses.
package animation

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
	"github.com/ivlev/scene2video/internal/layer"
)

// Forever pauses a frame indefinitely.
const Forever = figure.Forever

// Animation owns its layers, drawn back to front in slice order. Delays maps
// a global frame to the number of extra frames it is held.
type Animation struct {
	Layers     []*layer.Layer
	FPS        int
	Delays     map[int]int
	Background canvas.Color

	// FirstOverride and LastOverride, when set, replace the computed
	// timeline bounds.
	FirstOverride *int
	LastOverride  *int

	name string
	cfg  *config.Config
}

// Option configures an Animation.
type Option func(*Animation)

// WithConfig takes frame rate and background from cfg and hands cfg to every
// layer.
func WithConfig(cfg *config.Config) Option {
	return func(a *Animation) {
		a.cfg = cfg
		a.FPS = cfg.FPS
		if bg, err := canvas.ParseColor(cfg.Background); err == nil {
			a.Background = bg
		}
	}
}

// WithFPS overrides the frame rate.
func WithFPS(fps int) Option {
	return func(a *Animation) { a.FPS = fps }
}

// WithName names the animation.
func WithName(name string) Option {
	return func(a *Animation) { a.name = name }
}

// New returns an empty animation at 30 fps on black.
func New(opts ...Option) *Animation {
	a := &Animation{FPS: 30, Delays: map[int]int{}, Background: canvas.Black}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Wrap turns a figure.Figure, *actor.Actor, *layer.Layer or *Animation into
// an Animation. An Animation is returned as is.
func Wrap(x any, opts ...Option) (*Animation, error) {
	switch v := x.(type) {
	case *Animation:
		return v, nil
	case *layer.Layer:
		a := New(opts...)
		a.AddLayer(v)
		return a, nil
	case *actor.Actor:
		a := New(opts...)
		a.AddLayer(layer.Wrap(v, layer.WithConfig(a.cfg)))
		return a, nil
	case figure.Figure:
		a := New(opts...)
		a.AddLayer(layer.Wrap(actor.New(v), layer.WithConfig(a.cfg)))
		return a, nil
	}
	return nil, fmt.Errorf("cannot wrap %T in an animation", x)
}

func (a *Animation) Name() string           { return a.name }
func (a *Animation) Config() *config.Config { return a.cfg }

// AddLayer appends layers in front of the existing ones.
func (a *Animation) AddLayer(layers ...*layer.Layer) {
	for _, l := range layers {
		if a.cfg != nil {
			l.SetConfig(a.cfg)
		}
		a.Layers = append(a.Layers, l)
	}
}

// Layer returns the first layer called name.
func (a *Animation) Layer(name string) (*layer.Layer, bool) {
	for _, l := range a.Layers {
		if l.Name() == name {
			return l, true
		}
	}
	return nil, false
}

// closure returns the layers and every mask they reach.
func (a *Animation) closure() ([]*layer.Layer, error) {
	return layer.Closure(a.Layers)
}

// FirstID returns the first global keyframe index over every layer and mask.
func (a *Animation) FirstID() (int, error) {
	if a.FirstOverride != nil {
		return *a.FirstOverride, nil
	}
	return a.bound(func(l *layer.Layer) (int, error) {
		return l.FirstID(layer.IDOptions{Global: true, WithMask: true})
	}, func(x, y int) bool { return x < y })
}

// LastID returns the last global keyframe index over every layer and mask.
func (a *Animation) LastID() (int, error) {
	if a.LastOverride != nil {
		return *a.LastOverride, nil
	}
	return a.bound(func(l *layer.Layer) (int, error) {
		return l.LastID(layer.IDOptions{Global: true, WithMask: true})
	}, func(x, y int) bool { return x > y })
}

func (a *Animation) bound(id func(*layer.Layer) (int, error), better func(x, y int) bool) (int, error) {
	best := 0
	for i, l := range a.Layers {
		v, err := id(l)
		if err != nil {
			return 0, err
		}
		if i == 0 || better(v, best) {
			best = v
		}
	}
	return best, nil
}

// Merge splices other, converted with Wrap, into the animation. A different
// frame rate is resampled first. Incoming layers move by atFrame and are
// inserted before layer index before (negative appends); incoming delays move
// likewise and add to delays already at the same frame. other is consumed.
func (a *Animation) Merge(other any, atFrame, before int) error {
	o, err := a.adopt(other)
	if err != nil {
		return err
	}
	return a.merge(o, atFrame, before)
}

// Append merges other so that its first frame lands gap frames after the
// current last frame.
func (a *Animation) Append(other any, gap int) error {
	o, err := a.adopt(other)
	if err != nil {
		return err
	}
	last, err := a.LastID()
	if err != nil {
		return err
	}
	first, err := o.FirstID()
	if err != nil {
		return err
	}
	if len(a.Layers) == 0 {
		last, gap = 0, 0
	}
	return a.merge(o, last+gap-first, -1)
}

// adopt wraps other and resamples it to the animation's frame rate.
func (a *Animation) adopt(other any) (*Animation, error) {
	o, err := Wrap(other, WithFPS(a.FPS))
	if err != nil {
		return nil, err
	}
	if o == a {
		return nil, errs.New(errs.ErrStructural, "animation %q merged into itself", a.name)
	}
	if o.FPS != a.FPS {
		log.Debug().Str("animation", a.name).Int("from", o.FPS).Int("to", a.FPS).Msg("resampling merged animation")
		if err := o.NewFrameRate(a.FPS); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (a *Animation) merge(o *Animation, atFrame, before int) error {
	if err := layer.ShiftAll(o.Layers, atFrame); err != nil {
		return err
	}
	if a.Delays == nil {
		a.Delays = map[int]int{}
	}
	for f, d := range o.Delays {
		a.Delays[f+atFrame] = addDelay(a.Delays[f+atFrame], d)
	}
	if before < 0 || before > len(a.Layers) {
		before = len(a.Layers)
	}
	for _, l := range o.Layers {
		if a.cfg != nil {
			l.SetConfig(a.cfg)
		}
	}
	layers := make([]*layer.Layer, 0, len(a.Layers)+len(o.Layers))
	layers = append(layers, a.Layers[:before]...)
	layers = append(layers, o.Layers...)
	layers = append(layers, a.Layers[before:]...)
	a.Layers = layers
	o.Layers = nil
	o.Delays = map[int]int{}
	return nil
}

// addDelay sums two holds; an infinite hold absorbs any other.
func addDelay(x, y int) int {
	if x == Forever || y == Forever {
		return Forever
	}
	return x + y
}

// Flatten commits every layer offset so actor indices become global.
func (a *Animation) Flatten() error {
	all, err := a.closure()
	if err != nil {
		return err
	}
	for _, l := range all {
		l.CommitOffset()
	}
	return nil
}

// Pretween normalizes every keyfigure.
func (a *Animation) Pretween() error {
	for _, l := range a.Layers {
		if err := l.Pretween(); err != nil {
			return err
		}
	}
	return nil
}

// ClearCache drops every actor's resolution cache. Call it before rendering
// after the timeline was mutated.
func (a *Animation) ClearCache() {
	for _, l := range a.Layers {
		l.ClearCache()
	}
}

// SanityCheck verifies strictly increasing keyframes on every actor, acyclic
// mask chains and non-negative delays.
func (a *Animation) SanityCheck() error {
	if a.FPS <= 0 {
		return errs.New(errs.ErrStructural, "invalid frame rate %d", a.FPS)
	}
	for _, l := range a.Layers {
		if err := l.SanityCheck(); err != nil {
			return err
		}
	}
	for f, d := range a.Delays {
		if d < 0 {
			return errs.New(errs.ErrStructural, "negative delay %d", d).AtFrame(f)
		}
	}
	return nil
}

// Draw clears c to the background and draws every layer at global frame.
func (a *Animation) Draw(frame int, c canvas.Canvas) error {
	c.Clear(a.Background)
	for _, l := range a.Layers {
		if err := l.Draw(frame, c); err != nil {
			return err
		}
	}
	return nil
}
