// Package actor implements the keyframe timeline of a single animated figure.
package actor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
	"github.com/ivlev/scene2video/internal/transition"
)

// Keyframe pins a keyfigure to a frame index.
type Keyframe struct {
	Index  int
	Figure figure.Figure
}

// Owner is the non-owning back reference from an actor to its container.
type Owner interface {
	Name() string
}

// Actor is an ordered timeline of keyframes for one figure. Indices are
// strictly increasing. Resolved figures are cached until ClearCache or the
// next mutation.
type Actor struct {
	Hidden bool

	name  string
	keys  []Keyframe
	sig   string
	cfg   *config.Config
	owner Owner
	cache map[int]figure.Figure
}

// Option configures an Actor.
type Option func(*Actor)

// WithConfig sets the configuration supplying the default transition.
func WithConfig(cfg *config.Config) Option {
	return func(a *Actor) { a.cfg = cfg }
}

// WithName names the actor for error messages and lookups.
func WithName(name string) Option {
	return func(a *Actor) { a.name = name }
}

// Empty returns an actor without keyframes.
func Empty(opts ...Option) *Actor {
	a := &Actor{cache: map[int]figure.Figure{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// New returns an actor whose first keyframe holds fig at index 0.
func New(fig figure.Figure, opts ...Option) *Actor {
	a := Empty(opts...)
	a.sig = figure.Signature(fig)
	a.keys = []Keyframe{{Index: 0, Figure: fig}}
	return a
}

func (a *Actor) Name() string        { return a.name }
func (a *Actor) SetName(name string) { a.name = name }

// Owner returns the container the actor reports to, if any.
func (a *Actor) Owner() Owner         { return a.owner }
func (a *Actor) SetOwner(owner Owner) { a.owner = owner }

func (a *Actor) Config() *config.Config { return a.cfg }

// SetConfig replaces the configuration; cached results are dropped.
func (a *Actor) SetConfig(cfg *config.Config) {
	a.cfg = cfg
	a.ClearCache()
}

// Visible reports whether the actor is drawn.
func (a *Actor) Visible() bool { return !a.Hidden }

// Len returns the number of keyframes.
func (a *Actor) Len() int { return len(a.keys) }

// Keyframes returns the timeline. The keyfigures are shared.
func (a *Actor) Keyframes() []Keyframe {
	return append([]Keyframe(nil), a.keys...)
}

// Keyfigure returns the keyfigure at index. Mutating it changes the timeline;
// call ClearCache afterwards.
func (a *Actor) Keyfigure(index int) (figure.Figure, bool) {
	i, ok := a.find(index)
	if !ok {
		return nil, false
	}
	return a.keys[i].Figure, true
}

// FirstID returns the first keyframe index, or 0 for an empty actor.
func (a *Actor) FirstID() int {
	if len(a.keys) == 0 {
		return 0
	}
	return a.keys[0].Index
}

// LastID returns the last keyframe index, or 0 for an empty actor.
func (a *Actor) LastID() int {
	if len(a.keys) == 0 {
		return 0
	}
	return a.keys[len(a.keys)-1].Index
}

// find returns the position of index, or where it would be inserted.
func (a *Actor) find(index int) (int, bool) {
	i := sort.Search(len(a.keys), func(i int) bool { return a.keys[i].Index >= index })
	return i, i < len(a.keys) && a.keys[i].Index == index
}

func (a *Actor) locate(e *errs.Error) error {
	layer := ""
	if a.owner != nil {
		layer = a.owner.Name()
	}
	return errs.Locate(e.InActor(a.name), layer, a.name)
}

func (a *Actor) checkType(fig figure.Figure) error {
	sig := figure.Signature(fig)
	if a.sig == "" {
		a.sig = sig
		return nil
	}
	if sig != a.sig {
		return a.locate(errs.New(errs.ErrIncompatibleTween, "keyfigure %s does not match %s", sig, a.sig))
	}
	return nil
}

// NewKeyframe inserts a keyframe at index and returns its keyfigure. A nil
// fig clones the nearest preceding keyfigure, or the first one when index
// comes before every keyframe.
func (a *Actor) NewKeyframe(index int, fig figure.Figure) (figure.Figure, error) {
	i, exists := a.find(index)
	if exists {
		return nil, a.locate(errs.New(errs.ErrStructural, "keyframe already exists, use Replace").AtFrame(index))
	}
	if fig == nil {
		if len(a.keys) == 0 {
			return nil, a.locate(errs.New(errs.ErrTimelineRange, "no keyframe to clone").AtFrame(index))
		}
		src := i - 1
		if src < 0 {
			src = 0
		}
		fig = a.keys[src].Figure.Copy()
	}
	if err := a.checkType(fig); err != nil {
		return nil, err
	}
	a.keys = append(a.keys, Keyframe{})
	copy(a.keys[i+1:], a.keys[i:])
	a.keys[i] = Keyframe{Index: index, Figure: fig}
	a.ClearCache()
	return fig, nil
}

// NewKeyframeAtEnd inserts a keyframe duration frames after the last one.
func (a *Actor) NewKeyframeAtEnd(duration int, fig figure.Figure) (figure.Figure, error) {
	if duration <= 0 && len(a.keys) > 0 {
		return nil, a.locate(errs.New(errs.ErrStructural, "non-positive duration %d", duration))
	}
	return a.NewKeyframe(a.LastID()+duration, fig)
}

// Replace swaps the keyfigure at an existing index.
func (a *Actor) Replace(index int, fig figure.Figure) error {
	i, exists := a.find(index)
	if !exists {
		return a.locate(errs.New(errs.ErrTimelineRange, "no keyframe to replace").AtFrame(index))
	}
	if err := a.checkType(fig); err != nil {
		return err
	}
	a.keys[i].Figure = fig
	a.ClearCache()
	return nil
}

// Put inserts or replaces the keyframe at index.
func (a *Actor) Put(index int, fig figure.Figure) error {
	if _, exists := a.find(index); exists {
		return a.Replace(index, fig)
	}
	_, err := a.NewKeyframe(index, fig)
	return err
}

// DeleteKeyframe removes the keyframe at index.
func (a *Actor) DeleteKeyframe(index int) error {
	i, exists := a.find(index)
	if !exists {
		return a.locate(errs.New(errs.ErrTimelineRange, "no keyframe to delete").AtFrame(index))
	}
	a.keys = append(a.keys[:i], a.keys[i+1:]...)
	a.ClearCache()
	return nil
}

// ClearCache drops every memoized resolution.
func (a *Actor) ClearCache() {
	a.cache = map[int]figure.Figure{}
}

func (a *Actor) transitionOf(fig figure.Figure) transition.Func {
	if tr := fig.Properties().Transition; tr != nil {
		return tr
	}
	return a.cfg.Transition()
}

// Resolve returns the figure shown at frame. Callers must not modify it.
func (a *Actor) Resolve(frame int) (figure.Figure, error) {
	if fig, ok := a.cache[frame]; ok {
		return fig, nil
	}
	fig, err := a.resolve(frame)
	if err != nil {
		return nil, err
	}
	if a.cache == nil {
		a.cache = map[int]figure.Figure{}
	}
	a.cache[frame] = fig
	return fig, nil
}

func (a *Actor) resolve(frame int) (figure.Figure, error) {
	n := len(a.keys)
	if n == 0 {
		return nil, a.locate(errs.New(errs.ErrTimelineRange, "actor has no keyframes").AtFrame(frame))
	}
	if frame <= a.keys[0].Index {
		return a.keys[0].Figure.Copy(), nil
	}
	if frame >= a.keys[n-1].Index {
		return a.keys[n-1].Figure.Copy(), nil
	}
	i, exact := a.find(frame)
	if exact {
		return a.keys[i].Figure.Copy(), nil
	}
	k0, k1 := a.keys[i-1], a.keys[i]
	p := k0.Figure.Properties()
	span := k1.Index - k0.Index
	if p.Static || frame-k0.Index < p.Delay || span <= p.Delay {
		return k0.Figure.Copy(), nil
	}
	t := float64(frame-k0.Index-p.Delay) / float64(span-p.Delay)
	t = a.transitionOf(k0.Figure)(transition.Clamp(t))
	fig, err := figure.Tween(k0.Figure, k1.Figure, t)
	if err != nil {
		return nil, a.wrap(err, frame)
	}
	return fig, nil
}

// wrap locates err at frame of this actor.
func (a *Actor) wrap(err error, frame int) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		return fmt.Errorf("actor %q frame %d: %w", a.name, frame, err)
	}
	if !e.HasFrame() {
		e.AtFrame(frame)
	}
	layer := ""
	if a.owner != nil {
		layer = a.owner.Name()
	}
	return errs.Locate(err, layer, a.name)
}

// SanityCheck verifies the timeline invariants.
func (a *Actor) SanityCheck() error {
	for i, k := range a.keys {
		if k.Figure == nil {
			return a.locate(errs.New(errs.ErrStructural, "nil keyfigure").AtFrame(k.Index))
		}
		if k.Figure.Properties().Delay < 0 {
			return a.locate(errs.New(errs.ErrStructural, "negative delay").AtFrame(k.Index))
		}
		if figure.Signature(k.Figure) != a.sig {
			return a.locate(errs.New(errs.ErrIncompatibleTween, "keyfigure type changed").AtFrame(k.Index))
		}
		if i > 0 && k.Index <= a.keys[i-1].Index {
			return a.locate(errs.New(errs.ErrStructural, "keyframe indices not strictly increasing (%d after %d)", k.Index, a.keys[i-1].Index).AtFrame(k.Index))
		}
	}
	return nil
}

// Pretween normalizes every keyfigure before playback.
func (a *Actor) Pretween() error {
	for _, k := range a.keys {
		if p, ok := k.Figure.(figure.Pretweener); ok {
			if err := p.Pretween(); err != nil {
				return a.wrap(err, k.Index)
			}
		}
	}
	a.ClearCache()
	return nil
}

// Copy returns an independent actor with copied keyfigures and no owner.
func (a *Actor) Copy() *Actor {
	c := &Actor{Hidden: a.Hidden, name: a.name, sig: a.sig, cfg: a.cfg, cache: map[int]figure.Figure{}}
	c.keys = make([]Keyframe, len(a.keys))
	for i, k := range a.keys {
		c.keys[i] = Keyframe{Index: k.Index, Figure: k.Figure.Copy()}
	}
	return c
}

func (a *Actor) logEvent(event string) {
	log.Debug().Str("actor", a.name).Int("keyframes", len(a.keys)).Msg(event)
}
