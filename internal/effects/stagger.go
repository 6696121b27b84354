package effects

import (
	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
)

// Stagger applies Effect to each part of a composite actor in turn, part i
// starting Lag frames after part i-1. Every keyfigure must have the same
// number of parts.
type Stagger struct {
	Effect Effect
	Lag    int
}

func (s Stagger) Apply(a *actor.Actor, at, duration int) error {
	keys := a.Keyframes()
	if len(keys) == 0 {
		return errs.New(errs.ErrTimelineRange, "actor has no keyframes").InActor(a.Name())
	}
	first, ok := keys[0].Figure.(figure.Composite)
	if !ok {
		return errs.New(errs.ErrIncompatibleTween, "stagger needs a composite, got %T", keys[0].Figure).InActor(a.Name())
	}
	n := len(first.Subfigures())

	parts := make([]*actor.Actor, n)
	for i := range parts {
		parts[i] = actor.Empty(actor.WithConfig(a.Config()))
	}
	for _, k := range keys {
		c := k.Figure.(figure.Composite)
		subs := c.Subfigures()
		if len(subs) != n {
			return errs.New(errs.ErrIncompatibleTween, "keyframe has %d parts, want %d", len(subs), n).InActor(a.Name()).AtFrame(k.Index)
		}
		p := c.Properties()
		for i, sub := range subs {
			part := sub.Copy()
			pp := part.Properties()
			pp.Delay = p.Delay
			if pp.Transition == nil {
				pp.Transition = p.Transition
			}
			if _, err := parts[i].NewKeyframe(k.Index, part); err != nil {
				return errs.Locate(err, "", a.Name())
			}
		}
	}

	for i, part := range parts {
		if err := s.Effect.Apply(part, at+i*s.Lag, duration); err != nil {
			return errs.Locate(err, "", a.Name())
		}
	}

	orig := a.Copy()
	zipped, err := actor.ZipFunc(parts, func(idx int) (figure.Composite, error) {
		f, err := orig.Resolve(idx)
		if err != nil {
			return nil, err
		}
		return f.(figure.Composite), nil
	}, actor.WithConfig(a.Config()))
	if err != nil {
		return errs.Locate(err, "", a.Name())
	}
	for _, k := range keys {
		if err := a.DeleteKeyframe(k.Index); err != nil {
			return err
		}
	}
	for _, k := range zipped.Keyframes() {
		if _, err := a.NewKeyframe(k.Index, k.Figure); err != nil {
			return err
		}
	}
	return nil
}
