package shape

import (
	"fmt"
	"math/cmplx"
	"sort"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
)

// Path is a polyline. A deadend at index i breaks the outline between node
// i and node i+1, so one Path can hold several disjoint pieces.
type Path struct {
	figure.Props
	Nodes    []complex128
	Deadends []int
	Closed   bool
	Style
}

// NewPath returns an open path through nodes.
func NewPath(nodes ...complex128) *Path {
	return &Path{Nodes: nodes, Style: DefaultStyle()}
}

func (p *Path) Fields() []figure.Field {
	return append([]figure.Field{
		{Name: "nodes", Kind: figure.Numeric, Ptr: &p.Nodes},
		{Name: "deadends", Kind: figure.Discrete, Ptr: &p.Deadends},
		{Name: "closed", Kind: figure.Discrete, Ptr: &p.Closed},
	}, p.Style.fields()...)
}

func (p *Path) Copy() figure.Figure { return p.clone() }

func (p *Path) clone() *Path {
	c := *p
	c.Nodes = append([]complex128(nil), p.Nodes...)
	c.Deadends = append([]int(nil), p.Deadends...)
	c.Style = p.Style.copy()
	return &c
}

func (p *Path) runs() []run {
	var out []run
	for _, piece := range p.pieces() {
		out = append(out, run{pts: piece.Nodes, closed: p.Closed && len(p.Deadends) == 0})
	}
	return out
}

func (p *Path) Draw(_ *figure.Camera, c canvas.Canvas) error {
	if p.Hidden || len(p.Nodes) == 0 {
		return nil
	}
	drawRuns(c, &p.Style, p.runs())
	return nil
}

// Pretween sorts the deadends and drops the ones that break nothing.
func (p *Path) Pretween() error {
	for _, n := range p.Nodes {
		if cmplx.IsNaN(n) {
			return errs.New(errs.ErrStructural, "path node is NaN")
		}
	}
	sort.Ints(p.Deadends)
	var kept []int
	for _, d := range p.Deadends {
		if d < 0 || d >= len(p.Nodes)-1 || (len(kept) > 0 && d == kept[len(kept)-1]) {
			continue
		}
		kept = append(kept, d)
	}
	p.Deadends = kept
	return nil
}

// Length returns the arc length of the drawn outline.
func (p *Path) Length() float64 {
	var l float64
	for _, r := range p.runs() {
		l += r.length()
	}
	return l
}

// morphStage reconciles the structure of two paths before they are blended.
// A stage may finish the tween itself by returning a non-nil figure.
type morphStage struct {
	name string
	run  func(a, b *Path, t float64, rule figure.Rule) (*Path, *Path, figure.Figure, error)
}

var morphStages = []morphStage{
	{name: "deadends", run: splitDeadends},
	{name: "nodes", run: matchNodeCount},
}

// Morph runs the reconciliation stages, then blends field by field. Dash
// patterns and paints are reconciled by the blend itself.
func (p *Path) Morph(other figure.Figure, t float64, rule figure.Rule) (figure.Figure, error) {
	a, b := p, other.(*Path)
	for _, st := range morphStages {
		na, nb, done, err := st.run(a, b, t, rule)
		if err != nil {
			return nil, fmt.Errorf("path %s stage: %w", st.name, err)
		}
		if done != nil {
			return done, nil
		}
		a, b = na, nb
	}
	c := a.clone()
	if err := figure.Blend(c, a, b, t, rule); err != nil {
		return nil, err
	}
	c.Props = p.Props
	return c, nil
}

func matchNodeCount(a, b *Path, _ float64, _ figure.Rule) (*Path, *Path, figure.Figure, error) {
	na, nb := len(a.Nodes), len(b.Nodes)
	if na == nb {
		return a, b, nil, nil
	}
	if na == 0 || nb == 0 {
		return nil, nil, nil, errs.New(errs.ErrIncompatibleTween, "cannot tween an empty path")
	}
	if na < nb {
		a = a.clone()
		a.Nodes = InsertNodes(a.Nodes, a.Closed, nb)
	} else {
		b = b.clone()
		b.Nodes = InsertNodes(b.Nodes, b.Closed, na)
	}
	return a, b, nil, nil
}

// splitDeadends tweens broken paths piece by piece, padding the side with
// fewer pieces, and rejoins the result.
func splitDeadends(a, b *Path, t float64, rule figure.Rule) (*Path, *Path, figure.Figure, error) {
	if len(a.Deadends) == 0 && len(b.Deadends) == 0 {
		return a, b, nil, nil
	}
	ma, mb := figure.NewMulti(), figure.NewMulti()
	for _, piece := range a.pieces() {
		ma.Figures = append(ma.Figures, piece)
	}
	for _, piece := range b.pieces() {
		mb.Figures = append(mb.Figures, piece)
	}
	r, err := ma.Morph(mb, t, rule)
	if err != nil {
		return nil, nil, nil, err
	}
	subs := r.(*figure.MultiFigure).Figures
	out := subs[0].(*Path).clone()
	out.Props = a.Props
	out.Closed = a.Closed
	if t >= 1 {
		out.Closed = b.Closed
	}
	out.Nodes, out.Deadends = nil, nil
	for i, s := range subs {
		out.Nodes = append(out.Nodes, s.(*Path).Nodes...)
		if i < len(subs)-1 {
			out.Deadends = append(out.Deadends, len(out.Nodes)-1)
		}
	}
	return nil, nil, out, nil
}

// pieces splits the path at its deadends. Pieces are open paths sharing the
// style of p. They carry no timing: the caller has already eased t.
func (p *Path) pieces() []*Path {
	mk := func(nodes []complex128) *Path {
		q := &Path{Props: figure.Props{Hidden: p.Hidden, Z: p.Z, Method: p.Method}, Nodes: append([]complex128(nil), nodes...), Style: p.Style.copy()}
		q.Closed = p.Closed && len(p.Deadends) == 0
		return q
	}
	var out []*Path
	start := 0
	for _, d := range p.Deadends {
		if d < start || d >= len(p.Nodes)-1 {
			continue
		}
		out = append(out, mk(p.Nodes[start:d+1]))
		start = d + 1
	}
	return append(out, mk(p.Nodes[start:]))
}

// InsertNodes returns nodes with n-len(nodes) extra nodes placed along the
// outline, longest segments first, so the drawn shape is unchanged. The
// closing segment of a closed path takes part.
func InsertNodes(nodes []complex128, closed bool, n int) []complex128 {
	k := n - len(nodes)
	if k <= 0 || len(nodes) == 0 {
		return append([]complex128(nil), nodes...)
	}
	segs := len(nodes) - 1
	if closed {
		segs++
	}
	if segs == 0 {
		out := append([]complex128(nil), nodes...)
		for i := 0; i < k; i++ {
			out = append(out, nodes[0])
		}
		return out
	}
	end := func(i int) complex128 { return nodes[(i+1)%len(nodes)] }
	lengths := make([]float64, segs)
	for i := range lengths {
		lengths[i] = cmplx.Abs(end(i) - nodes[i])
	}
	cuts := make([]int, segs)
	for j := 0; j < k; j++ {
		best := 0
		for i := 1; i < segs; i++ {
			if lengths[i]/float64(cuts[i]+1) > lengths[best]/float64(cuts[best]+1) {
				best = i
			}
		}
		cuts[best]++
	}
	out := make([]complex128, 0, n)
	for i, a := range nodes {
		out = append(out, a)
		if i >= segs {
			continue
		}
		b := end(i)
		for c := 1; c <= cuts[i]; c++ {
			u := float64(c) / float64(cuts[i]+1)
			out = append(out, a+(b-a)*complex(u, 0))
		}
	}
	return out
}
