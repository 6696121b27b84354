package actor

import (
	"sort"

	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
	"github.com/ivlev/scene2video/internal/transition"
)

// SplitAt makes frame a keyframe without changing what any frame resolves
// to, and returns its keyfigure. Inside a tween the surrounding transition
// and tween method are split so both halves retrace the original segment.
func (a *Actor) SplitAt(frame int) (figure.Figure, error) {
	n := len(a.keys)
	if n == 0 {
		return nil, a.locate(errs.New(errs.ErrTimelineRange, "actor has no keyframes").AtFrame(frame))
	}
	i, exact := a.find(frame)
	if exact {
		return a.keys[i].Figure, nil
	}
	if i == 0 || i == n {
		src := a.keys[0].Figure
		if i == n {
			src = a.keys[n-1].Figure
		}
		fig := src.Copy()
		fig.Properties().Delay = 0
		return a.NewKeyframe(frame, fig)
	}

	k0, k1 := a.keys[i-1], a.keys[i]
	p := k0.Figure.Properties()
	span := k1.Index - k0.Index
	elapsed := frame - k0.Index
	if p.Static || elapsed < p.Delay || span <= p.Delay {
		// Inside the hold: the new keyframe holds for what is left of it.
		fig := k0.Figure.Copy()
		if p.Delay != figure.Forever {
			fig.Properties().Delay = p.Delay - elapsed
			p.Delay = elapsed
		}
		return a.NewKeyframe(frame, fig)
	}

	s := float64(elapsed-p.Delay) / float64(span-p.Delay)
	tr := a.transitionOf(k0.Figure)
	ts := tr(s)
	mid, err := figure.Tween(k0.Figure, k1.Figure, ts)
	if err != nil {
		return nil, a.wrap(err, frame)
	}
	mp := mid.Properties()
	mp.Method = p.Method
	mp.Static = false
	mp.Delay = 0
	if err := figure.Split(ts, k0.Figure, mid, k1.Figure); err != nil {
		return nil, a.wrap(err, frame)
	}
	p.Transition, mp.Transition = transition.Split(tr, s)
	return a.NewKeyframe(frame, mid)
}

// Segment returns a new actor holding copies of the keyframes in
// [start, end]. With rezero the copies are shifted so start becomes 0.
func (a *Actor) Segment(start, end int, rezero bool) (*Actor, error) {
	if end < start {
		return nil, a.locate(errs.New(errs.ErrTimelineRange, "segment [%d,%d] is empty", start, end))
	}
	seg := &Actor{Hidden: a.Hidden, name: a.name, sig: a.sig, cfg: a.cfg, cache: map[int]figure.Figure{}}
	for _, k := range a.keys {
		if k.Index < start || k.Index > end {
			continue
		}
		idx := k.Index
		if rezero {
			idx -= start
		}
		seg.keys = append(seg.keys, Keyframe{Index: idx, Figure: k.Figure.Copy()})
	}
	return seg, nil
}

// Zip combines parallel actors, one per sub-figure, into one actor of
// composites built from template. Every input is split at the union of all
// keyframe indices and hold ends, so each zipped segment tweens every
// sub-figure exactly as its own actor did.
func Zip(actors []*Actor, template figure.Composite, opts ...Option) (*Actor, error) {
	return ZipFunc(actors, func(int) (figure.Composite, error) { return template, nil }, opts...)
}

// ZipFunc is Zip with the composite attributes taken per keyframe index from
// template.
func ZipFunc(actors []*Actor, template func(idx int) (figure.Composite, error), opts ...Option) (*Actor, error) {
	if len(actors) == 0 {
		return nil, errs.New(errs.ErrTimelineRange, "nothing to zip")
	}
	union := map[int]bool{}
	for _, in := range actors {
		if in.Len() == 0 {
			return nil, in.locate(errs.New(errs.ErrTimelineRange, "cannot zip an actor without keyframes"))
		}
		for j, k := range in.keys {
			union[k.Index] = true
			d := k.Figure.Properties().Delay
			if d > 0 && d != figure.Forever && j < len(in.keys)-1 && k.Index+d < in.keys[j+1].Index {
				union[k.Index+d] = true
			}
		}
	}
	indices := make([]int, 0, len(union))
	for idx := range union {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	split := make([]*Actor, len(actors))
	for i, in := range actors {
		split[i] = in.Copy()
		for _, idx := range indices {
			if _, err := split[i].SplitAt(idx); err != nil {
				return nil, err
			}
		}
	}

	out := Empty(opts...)
	for _, idx := range indices {
		base, err := template(idx)
		if err != nil {
			return nil, err
		}
		frame := base.Copy().(figure.Composite)
		fp := frame.Properties()
		fp.Delay = 0
		fp.Static = false
		fp.Method = figure.Linear
		fp.Transition = transition.Linear
		subs := make([]figure.Figure, len(split))
		for i, in := range split {
			kf, _ := in.Keyfigure(idx)
			sub := kf.Copy()
			sub.Properties().Delay = 0
			if sub.Properties().Transition == nil {
				sub.Properties().Transition = in.transitionOf(kf)
			}
			subs[i] = sub
		}
		frame.SetSubfigures(subs)
		if _, err := out.NewKeyframe(idx, frame); err != nil {
			return nil, err
		}
	}
	out.logEvent("zipped")
	return out, nil
}
