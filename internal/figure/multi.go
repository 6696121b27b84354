package figure

import (
	"github.com/ivlev/scene2video/internal/errs"
)

// MultiFigure is a frame whose sub-figure count may differ between keyframes.
// Before tweening, the side with fewer sub-figures is padded by duplicating
// members of Subpool (all indices when empty).
type MultiFigure struct {
	Frame
	Subpool []int
}

// NewMulti returns a multi-figure holding figs.
func NewMulti(figs ...Figure) *MultiFigure {
	return &MultiFigure{Frame: *NewFrame(figs...)}
}

func (m *MultiFigure) Copy() Figure {
	return &MultiFigure{Frame: *m.Frame.deepCopy(), Subpool: append([]int(nil), m.Subpool...)}
}

func (m *MultiFigure) Morph(b Figure, t float64, rule Rule) (Figure, error) {
	bm := b.(*MultiFigure)
	n := max(len(m.Figures), len(bm.Figures))
	if n == 0 {
		return nil, errs.New(errs.ErrIncompatibleTween, "cannot tween two empty multi-figures")
	}
	as, err := Pad(m.Figures, m.Subpool, n)
	if err != nil {
		return nil, err
	}
	bs, err := Pad(bm.Figures, bm.Subpool, n)
	if err != nil {
		return nil, err
	}
	c := &MultiFigure{Frame: *m.Frame.ShallowCopy(), Subpool: append([]int(nil), m.Subpool...)}
	if n > len(m.Figures) {
		c.Names = padNames(m.Names, m.Figures, m.Subpool, n)
	}
	if err := morphSubs(c, m, bm, as, bs, t, rule); err != nil {
		return nil, err
	}
	return c, nil
}

// Pad returns subs extended to n entries. The extra entries are copies of
// pool members chosen uniformly across the pool; each copy follows its
// source directly.
func Pad(subs []Figure, pool []int, n int) ([]Figure, error) {
	k := n - len(subs)
	if k <= 0 {
		return append([]Figure(nil), subs...), nil
	}
	if len(subs) == 0 {
		return nil, errs.New(errs.ErrIncompatibleTween, "cannot pad an empty multi-figure to %d", n)
	}
	for _, src := range pool {
		if src < 0 || src >= len(subs) {
			return nil, errs.New(errs.ErrIncompatibleTween, "sub-pool index %d out of range", src)
		}
	}
	extra := padCopies(len(subs), pool, n)
	out := make([]Figure, 0, n)
	for i, s := range subs {
		out = append(out, s)
		for e := 0; e < extra[i]; e++ {
			out = append(out, s.Copy())
		}
	}
	return out, nil
}

// padNames shifts name indices past the copies Pad inserts before them.
func padNames(names map[string]int, subs []Figure, pool []int, n int) map[string]int {
	extra := padCopies(len(subs), pool, n)
	pos := make([]int, len(subs))
	next := 0
	for i := range subs {
		pos[i] = next
		next += 1 + extra[i]
	}
	out := make(map[string]int, len(names))
	for k, v := range names {
		if v >= 0 && v < len(pos) {
			out[k] = pos[v]
		}
	}
	return out
}

// padCopies returns how many copies of each sub-figure Pad appends.
func padCopies(count int, pool []int, n int) []int {
	extra := make([]int, count)
	k := n - count
	if k <= 0 || count == 0 {
		return extra
	}
	if len(pool) == 0 {
		pool = make([]int, count)
		for i := range pool {
			pool[i] = i
		}
	}
	for j := 0; j < k; j++ {
		if src := pool[(2*j+1)*len(pool)/(2*k)]; src >= 0 && src < count {
			extra[src]++
		}
	}
	return extra
}
