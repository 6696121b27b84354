// Package effects holds reusable timeline edits: fades, moves, turns, camera
// zooms and staggered application over the parts of a composite.
package effects

import (
	"fmt"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
)

// Effect edits an actor's timeline over the frames [at, at+duration].
type Effect interface {
	Apply(a *actor.Actor, at, duration int) error
}

// span pins the figures shown at at and at+duration as keyframes and returns
// them. What the actor shows elsewhere does not change.
func span(a *actor.Actor, at, duration int) (from, to figure.Figure, err error) {
	if duration <= 0 {
		return nil, nil, errs.New(errs.ErrTimelineRange, "effect duration %d", duration).InActor(a.Name()).AtFrame(at)
	}
	if to, err = a.SplitAt(at + duration); err != nil {
		return nil, nil, err
	}
	if from, err = a.SplitAt(at); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// FadeIn keeps the actor transparent up to at and raises alpha to its own
// value by at+duration.
type FadeIn struct{}

func (FadeIn) Apply(a *actor.Actor, at, duration int) error {
	if _, _, err := span(a, at, duration); err != nil {
		return err
	}
	return edit(a, func(idx int) bool { return idx <= at }, func(f figure.Figure) error { return setAlpha(f, 0) })
}

// FadeOut drops alpha to zero by at+duration; the actor stays transparent
// afterwards.
type FadeOut struct{}

func (FadeOut) Apply(a *actor.Actor, at, duration int) error {
	if _, _, err := span(a, at, duration); err != nil {
		return err
	}
	return edit(a, func(idx int) bool { return idx >= at+duration }, func(f figure.Figure) error { return setAlpha(f, 0) })
}

func setAlpha(f figure.Figure, v float64) error {
	done := false
	for _, name := range []string{"alpha", "fillalpha"} {
		if err := figure.Set(f, name, v); err == nil {
			done = true
		}
	}
	if !done {
		return fmt.Errorf("%T has no alpha", f)
	}
	return nil
}

// MoveBy translates the actor by Delta over the span and keeps it there:
// every later keyframe moves too.
type MoveBy struct {
	Delta complex128
}

func (m MoveBy) Apply(a *actor.Actor, at, duration int) error {
	return after(a, at, duration, func(f figure.Figure) error { return translate(f, m.Delta) })
}

// Turn rotates the actor by Angle radians over the span; later keyframes
// keep the extra rotation.
type Turn struct {
	Angle float64
}

func (t Turn) Apply(a *actor.Actor, at, duration int) error {
	return after(a, at, duration, func(f figure.Figure) error { return rotate(f, t.Angle) })
}

// after applies fn to every keyfigure from at+duration on.
func after(a *actor.Actor, at, duration int, fn func(figure.Figure) error) error {
	if _, _, err := span(a, at, duration); err != nil {
		return err
	}
	return edit(a, func(idx int) bool { return idx >= at+duration }, fn)
}

func edit(a *actor.Actor, match func(int) bool, fn func(figure.Figure) error) error {
	for _, k := range a.Keyframes() {
		if !match(k.Index) {
			continue
		}
		if err := fn(k.Figure); err != nil {
			return fmt.Errorf("actor %q frame %d: %w", a.Name(), k.Index, err)
		}
	}
	a.ClearCache()
	return nil
}

func translate(f figure.Figure, d complex128) error {
	for _, name := range []string{"origin", "pos"} {
		if fd, ok := figure.Lookup(f, name); ok {
			if v, ok := fd.Value().(complex128); ok {
				return fd.Set(v + d)
			}
		}
	}
	if c, ok := f.(figure.Composite); ok {
		for _, s := range c.Subfigures() {
			if err := translate(s, d); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%T cannot be moved", f)
}

func rotate(f figure.Figure, angle float64) error {
	if fd, ok := figure.Lookup(f, "rotation"); ok {
		if v, ok := fd.Value().(float64); ok {
			return fd.Set(v + angle)
		}
	}
	if c, ok := f.(figure.Composite); ok {
		for _, s := range c.Subfigures() {
			if err := rotate(s, angle); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%T cannot be rotated", f)
}
