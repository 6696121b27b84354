package figure

import (
	"fmt"
	"sort"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/errs"
)

// Frame is an ordered collection of sub-figures drawn relative to Origin.
// Names maps labels to indices into Figures.
type Frame struct {
	Props
	Figures []Figure
	Origin  complex128
	Names   map[string]int
}

// NewFrame returns a frame holding figs.
func NewFrame(figs ...Figure) *Frame {
	return &Frame{Figures: figs, Names: map[string]int{}}
}

func (f *Frame) Fields() []Field {
	return []Field{{Name: "origin", Kind: Numeric, Ptr: &f.Origin}}
}

func (f *Frame) Copy() Figure { return f.deepCopy() }

func (f *Frame) deepCopy() *Frame {
	c := f.ShallowCopy()
	for i, s := range c.Figures {
		c.Figures[i] = s.Copy()
	}
	return c
}

// ShallowCopy copies the frame and its name table but shares sub-figures.
func (f *Frame) ShallowCopy() *Frame {
	c := *f
	c.Figures = append([]Figure(nil), f.Figures...)
	c.Names = make(map[string]int, len(f.Names))
	for k, v := range f.Names {
		c.Names[k] = v
	}
	return &c
}

func (f *Frame) Subfigures() []Figure        { return f.Figures }
func (f *Frame) SetSubfigures(figs []Figure) { f.Figures = figs }

// Add appends fig, labelling it when name is not empty.
func (f *Frame) Add(fig Figure, name string) int {
	f.Figures = append(f.Figures, fig)
	i := len(f.Figures) - 1
	if name != "" {
		if f.Names == nil {
			f.Names = map[string]int{}
		}
		f.Names[name] = i
	}
	return i
}

// Get returns the sub-figure labelled name.
func (f *Frame) Get(name string) (Figure, bool) {
	i, ok := f.Names[name]
	if !ok || i < 0 || i >= len(f.Figures) {
		return nil, false
	}
	return f.Figures[i], true
}

// SetName labels the sub-figure at index i.
func (f *Frame) SetName(name string, i int) error {
	if i < 0 || i >= len(f.Figures) {
		return fmt.Errorf("frame: index %d out of range [0,%d)", i, len(f.Figures))
	}
	if f.Names == nil {
		f.Names = map[string]int{}
	}
	f.Names[name] = i
	return nil
}

// Merge appends copies of other's sub-figures. Incoming names are shifted by
// the previous length; names already present here win.
func (f *Frame) Merge(other *Frame) {
	n := len(f.Figures)
	for _, s := range other.Figures {
		f.Figures = append(f.Figures, s.Copy())
	}
	if f.Names == nil {
		f.Names = map[string]int{}
	}
	for name, i := range other.Names {
		if _, taken := f.Names[name]; !taken {
			f.Names[name] = i + n
		}
	}
}

// CommonAttr returns the value of attribute name shared by every sub-figure.
func (f *Frame) CommonAttr(name string) (any, error) {
	if len(f.Figures) == 0 {
		return nil, errs.New(errs.ErrAmbiguousValue, "%s: frame has no sub-figures", name)
	}
	var first any
	for i, s := range f.Figures {
		v, err := Get(s, name)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = v
			continue
		}
		if !valueEqual(first, v, 0) {
			return nil, errs.New(errs.ErrAmbiguousValue, "%s differs between sub-figures 0 and %d", name, i)
		}
	}
	return first, nil
}

// SetCommonAttr assigns attribute name on every sub-figure.
func (f *Frame) SetCommonAttr(name string, v any) error {
	for _, s := range f.Figures {
		if err := Set(s, name, v); err != nil {
			return err
		}
	}
	return nil
}

// Draw draws visible sub-figures by ascending Z, ties in insertion order.
func (f *Frame) Draw(cam *Camera, c canvas.Canvas) error {
	if f.Hidden {
		return nil
	}
	c.Save()
	defer c.Restore()
	c.Translate(real(f.Origin), imag(f.Origin))
	for _, s := range ByDepth(f.Figures) {
		if err := s.Draw(cam, c); err != nil {
			return err
		}
	}
	return nil
}

// Pretween normalizes every sub-figure that supports it.
func (f *Frame) Pretween() error {
	for _, s := range f.Figures {
		if p, ok := s.(Pretweener); ok {
			if err := p.Pretween(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Frame) Morph(b Figure, t float64, rule Rule) (Figure, error) {
	bf := b.(*Frame)
	c := f.ShallowCopy()
	if err := morphSubs(c, f, bf, f.Figures, bf.Figures, t, rule); err != nil {
		return nil, err
	}
	return c, nil
}

// morphSubs blends the frame attributes into dst and tweens each pair of
// sub-figures with the sub-figure's own method and transition. Static
// sub-figures keep a's state.
func morphSubs(dst Composite, a, b Figure, as, bs []Figure, t float64, rule Rule) error {
	if len(as) != len(bs) {
		return errs.New(errs.ErrIncompatibleTween, "%T: %d sub-figures against %d", a, len(as), len(bs))
	}
	if err := Blend(dst, a, b, t, rule); err != nil {
		return err
	}
	subs := make([]Figure, len(as))
	for i := range as {
		p := as[i].Properties()
		if p.Static {
			subs[i] = as[i].Copy()
			continue
		}
		ts := t
		if p.Transition != nil {
			ts = p.Transition(t)
		}
		s, err := Tween(as[i], bs[i], ts)
		if err != nil {
			return fmt.Errorf("sub-figure %d: %w", i, err)
		}
		subs[i] = s
	}
	dst.SetSubfigures(subs)
	return nil
}

// ByDepth returns the visible figures of figs ordered by ascending Z, ties
// in their original order.
func ByDepth(figs []Figure) []Figure {
	visible := make([]Figure, 0, len(figs))
	for _, s := range figs {
		if !s.Properties().Hidden {
			visible = append(visible, s)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Properties().Z < visible[j].Properties().Z
	})
	return visible
}
