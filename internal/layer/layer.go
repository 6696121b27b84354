// Package layer groups actors that share a camera, a time offset and an
// optional mask.
package layer

import (
	"fmt"
	"math"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
)

// Layer holds actors in local time. Global frame g shows local frame
// g-Offset. Start and End bound, in global frames, when the layer is drawn.
type Layer struct {
	Actors []*actor.Actor
	Camera *actor.Actor
	Offset int
	Start  int
	End    int
	Hidden bool
	// Mask, when set and visible, clips the layer by its alpha. The mask
	// layer is referenced, not owned.
	Mask *Layer

	name string
	cfg  *config.Config

	selfSurf canvas.Surface
	maskSurf canvas.Surface
}

// Option configures a Layer.
type Option func(*Layer)

// WithConfig sets the configuration handed to the layer's actors.
func WithConfig(cfg *config.Config) Option {
	return func(l *Layer) { l.cfg = cfg }
}

// WithName names the layer.
func WithName(name string) Option {
	return func(l *Layer) { l.name = name }
}

// WithCamera replaces the default camera.
func WithCamera(cam *figure.Camera) Option {
	return func(l *Layer) { l.Camera = actor.New(cam, actor.WithName("camera")) }
}

// New returns an empty, always visible layer. The default camera shows the
// configured frame size in world units with the origin at the lower left.
func New(opts ...Option) *Layer {
	l := &Layer{Start: math.MinInt, End: math.MaxInt}
	for _, opt := range opts {
		opt(l)
	}
	if l.Camera == nil {
		w, h := 640.0, 360.0
		if l.cfg != nil {
			w, h = float64(l.cfg.Width), float64(l.cfg.Height)
		}
		l.Camera = actor.New(figure.NewCamera(0, w, 0, h), actor.WithName("camera"))
	}
	l.Camera.SetOwner(l)
	l.Camera.SetConfig(l.cfg)
	return l
}

// Wrap returns a layer holding a.
func Wrap(a *actor.Actor, opts ...Option) *Layer {
	l := New(opts...)
	l.Add(a)
	return l
}

func (l *Layer) Name() string        { return l.name }
func (l *Layer) SetName(name string) { l.name = name }

func (l *Layer) Config() *config.Config { return l.cfg }

// SetConfig hands cfg to the layer and every actor it owns.
func (l *Layer) SetConfig(cfg *config.Config) {
	l.cfg = cfg
	for _, a := range l.Actors {
		a.SetConfig(cfg)
	}
	l.Camera.SetConfig(cfg)
}

// Add appends actors, taking ownership.
func (l *Layer) Add(actors ...*actor.Actor) {
	for _, a := range actors {
		a.SetOwner(l)
		if l.cfg != nil {
			a.SetConfig(l.cfg)
		}
		l.Actors = append(l.Actors, a)
	}
}

// Actor returns the first actor called name.
func (l *Layer) Actor(name string) (*actor.Actor, bool) {
	for _, a := range l.Actors {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// MaskChain returns the layers reached by following Mask pointers, or
// ErrMaskCycle when the chain loops.
func (l *Layer) MaskChain() ([]*Layer, error) {
	seen := map[*Layer]bool{l: true}
	var chain []*Layer
	for m := l.Mask; m != nil; m = m.Mask {
		if seen[m] {
			return nil, errs.New(errs.ErrMaskCycle, "mask %q is reached twice", m.name).InLayer(l.name)
		}
		seen[m] = true
		chain = append(chain, m)
	}
	return chain, nil
}

// IDOptions select what FirstID and LastID take into account.
type IDOptions struct {
	// Global adds the layer offset, giving global frame indices.
	Global bool
	// WithMask includes the mask chain.
	WithMask bool
}

// FirstID returns the smallest keyframe index over the timed actors.
func (l *Layer) FirstID(opts IDOptions) (int, error) {
	return l.extremeID(opts, func(a *actor.Actor) int { return a.FirstID() }, func(x, y int) bool { return x < y })
}

// LastID returns the largest keyframe index over the timed actors.
func (l *Layer) LastID(opts IDOptions) (int, error) {
	return l.extremeID(opts, func(a *actor.Actor) int { return a.LastID() }, func(x, y int) bool { return x > y })
}

func (l *Layer) extremeID(opts IDOptions, id func(*actor.Actor) int, better func(x, y int) bool) (int, error) {
	layers := []*Layer{l}
	if opts.WithMask {
		chain, err := l.MaskChain()
		if err != nil {
			return 0, err
		}
		layers = append(layers, chain...)
	}
	best, found := 0, false
	for _, ly := range layers {
		for _, a := range ly.timed() {
			v := id(a)
			if opts.Global || ly != l {
				// Mask layers are compared in this layer's time base.
				v += ly.Offset
				if !opts.Global {
					v -= l.Offset
				}
			}
			if !found || better(v, best) {
				best, found = v, true
			}
		}
	}
	if !found && opts.Global {
		return l.Offset, nil
	}
	return best, nil
}

// timed returns the actors that bound the layer's timeline: every actor
// with keyframes, plus the camera once it is animated.
func (l *Layer) timed() []*actor.Actor {
	var out []*actor.Actor
	for _, a := range l.Actors {
		if a.Len() > 0 {
			out = append(out, a)
		}
	}
	if l.Camera != nil && l.Camera.Len() > 1 {
		out = append(out, l.Camera)
	}
	return out
}

func (l *Layer) all() []*actor.Actor {
	out := append([]*actor.Actor(nil), l.Actors...)
	if l.Camera != nil {
		out = append(out, l.Camera)
	}
	return out
}

// Visible reports whether the layer is drawn at global frame.
func (l *Layer) Visible(frame int) bool {
	return !l.Hidden && frame >= l.Start && frame <= l.End
}

// Time resolves every visible actor at local frame into one Frame. Named
// actors are reachable by name.
func (l *Layer) Time(frame int) (*figure.Frame, error) {
	f := figure.NewFrame()
	for _, a := range l.Actors {
		if !a.Visible() || a.Len() == 0 {
			continue
		}
		fig, err := a.Resolve(frame)
		if err != nil {
			return nil, errs.Locate(err, l.name, a.Name())
		}
		f.Add(fig, a.Name())
	}
	return f, nil
}

// CameraAt resolves the camera at local frame.
func (l *Layer) CameraAt(frame int) (*figure.Camera, error) {
	fig, err := l.Camera.Resolve(frame)
	if err != nil {
		return nil, errs.Locate(err, l.name, "camera")
	}
	cam, ok := fig.(*figure.Camera)
	if !ok {
		return nil, errs.New(errs.ErrIncompatibleTween, "camera actor holds %T", fig).InLayer(l.name)
	}
	return cam, nil
}

// Merge splices a *Layer or *actor.Actor into this layer. The incoming
// content is copied; its local frame 0 lands on local frame atFrame (plus
// the incoming layer's own offset). Actors are inserted before index before;
// a negative or out-of-range index appends.
func (l *Layer) Merge(other any, atFrame, before int) error {
	var incoming []*actor.Actor
	switch o := other.(type) {
	case *actor.Actor:
		c := o.Copy()
		c.Shift(atFrame)
		incoming = append(incoming, c)
	case *Layer:
		mask, err := mergeMask(l, o)
		if err != nil {
			return err
		}
		for _, a := range o.Actors {
			c := a.Copy()
			c.Shift(atFrame + o.Offset)
			incoming = append(incoming, c)
		}
		l.Mask = mask
	default:
		return fmt.Errorf("layer %q: cannot merge %T", l.name, other)
	}
	for _, a := range incoming {
		a.SetOwner(l)
		if l.cfg != nil {
			a.SetConfig(l.cfg)
		}
	}
	if before < 0 || before > len(l.Actors) {
		before = len(l.Actors)
	}
	merged := make([]*actor.Actor, 0, len(l.Actors)+len(incoming))
	merged = append(merged, l.Actors[:before]...)
	merged = append(merged, incoming...)
	merged = append(merged, l.Actors[before:]...)
	l.Actors = merged
	return nil
}

// mergeMask applies the mask rule for merging b into a: a mask pointing
// outside the pair is external; two external masks conflict, one is
// inherited, none leaves the result unmasked.
func mergeMask(a, b *Layer) (*Layer, error) {
	extA := a.Mask != nil && a.Mask != b
	extB := b.Mask != nil && b.Mask != a
	switch {
	case extA && extB && a.Mask != b.Mask:
		return nil, errs.New(errs.ErrMergeConflict, "both layers carry external masks (%q, %q)", a.Mask.name, b.Mask.name).InLayer(a.name)
	case extA:
		return a.Mask, nil
	case extB:
		return b.Mask, nil
	}
	return nil, nil
}

// Closure returns layers followed by every mask they reach, each layer once.
func Closure(layers []*Layer) ([]*Layer, error) {
	seen := map[*Layer]bool{}
	var out []*Layer
	for _, l := range layers {
		chain, err := l.MaskChain()
		if err != nil {
			return nil, err
		}
		for _, ly := range append([]*Layer{l}, chain...) {
			if !seen[ly] {
				seen[ly] = true
				out = append(out, ly)
			}
		}
	}
	return out, nil
}

func (l *Layer) group() ([]*Layer, error) { return Closure([]*Layer{l}) }

// Shift moves the layer and its mask chain by delta frames.
func (l *Layer) Shift(delta int) error { return ShiftAll([]*Layer{l}, delta) }

// ShiftAll moves layers and their masks by delta frames. The visibility
// window moves with the offset.
func ShiftAll(layers []*Layer, delta int) error {
	group, err := Closure(layers)
	if err != nil {
		return err
	}
	for _, ly := range group {
		ly.Offset += delta
		if ly.Start != math.MinInt {
			ly.Start += delta
		}
		if ly.End != math.MaxInt {
			ly.End += delta
		}
	}
	return nil
}

// SpeedUp rescales the layer and its mask chain about global frame center.
func (l *Layer) SpeedUp(factor, center float64) error {
	return SpeedUpAll([]*Layer{l}, factor, center)
}

// CheckSpeedUp reports whether SpeedUpAll would succeed without changing
// anything.
func CheckSpeedUp(layers []*Layer, factor float64) error {
	group, err := Closure(layers)
	if err != nil {
		return err
	}
	for _, ly := range group {
		for _, a := range ly.all() {
			if _, err := a.PlanSpeedUp(factor, 0); err != nil {
				return errs.Locate(err, ly.name, a.Name())
			}
		}
	}
	return nil
}

// SpeedUpAll rescales layers and their masks. Offsets map to
// round((offset-center)/factor + center) and actor indices scale about local
// 0. Nothing changes if any actor would merge keyframes.
func SpeedUpAll(layers []*Layer, factor, center float64) error {
	if err := CheckSpeedUp(layers, factor); err != nil {
		return err
	}
	group, _ := Closure(layers)
	for _, ly := range group {
		ly.Offset = actor.ScaleIndex(ly.Offset, factor, center)
		if ly.Start != math.MinInt {
			ly.Start = actor.ScaleIndex(ly.Start, factor, center)
		}
		if ly.End != math.MaxInt {
			ly.End = actor.ScaleIndex(ly.End, factor, center)
		}
		for _, a := range ly.all() {
			if err := a.SpeedUp(factor, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// CommitOffset moves the offset into every actor's keyframe indices.
func (l *Layer) CommitOffset() {
	if l.Offset == 0 {
		return
	}
	for _, a := range l.all() {
		a.Shift(l.Offset)
	}
	l.Offset = 0
}

// Pretween normalizes the keyfigures of the layer and its mask chain.
func (l *Layer) Pretween() error {
	group, err := l.group()
	if err != nil {
		return err
	}
	for _, ly := range group {
		for _, a := range ly.all() {
			if err := a.Pretween(); err != nil {
				return errs.Locate(err, ly.name, a.Name())
			}
		}
	}
	return nil
}

// ClearCache drops the resolution caches of the layer and its mask chain.
func (l *Layer) ClearCache() {
	group, err := l.group()
	if err != nil {
		group = []*Layer{l}
	}
	for _, ly := range group {
		for _, a := range ly.all() {
			a.ClearCache()
		}
	}
}

// SanityCheck verifies the mask chain and every actor.
func (l *Layer) SanityCheck() error {
	group, err := l.group()
	if err != nil {
		return err
	}
	for _, ly := range group {
		for _, a := range ly.all() {
			if err := a.SanityCheck(); err != nil {
				return errs.Locate(err, ly.name, a.Name())
			}
		}
	}
	return nil
}

// Copy returns a layer with copied actors sharing the mask reference.
func (l *Layer) Copy() *Layer {
	c := &Layer{
		Offset: l.Offset,
		Start:  l.Start,
		End:    l.End,
		Hidden: l.Hidden,
		Mask:   l.Mask,
		name:   l.name,
		cfg:    l.cfg,
		Camera: l.Camera.Copy(),
	}
	c.Camera.SetOwner(c)
	for _, a := range l.Actors {
		ac := a.Copy()
		ac.SetOwner(c)
		c.Actors = append(c.Actors, ac)
	}
	return c
}
