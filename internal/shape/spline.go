package shape

import (
	"math"
	"math/cmplx"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
)

// Placeholder marks a missing spline handle. A missing handle draws as its
// node and, when tweened against a real handle, starts out as its node.
var Placeholder = cmplx.Inf()

const flattenSteps = 16

// Spline is a cubic Bézier path. Segment i runs from Nodes[i] to Nodes[i+1]
// with control points Out[i] and In[i+1].
type Spline struct {
	figure.Props
	Nodes  []complex128
	In     []complex128
	Out    []complex128
	Closed bool
	Style
}

// NewSpline returns a spline through nodes with every handle missing.
func NewSpline(nodes ...complex128) *Spline {
	s := &Spline{Nodes: nodes, Style: DefaultStyle()}
	s.In = make([]complex128, len(nodes))
	s.Out = make([]complex128, len(nodes))
	for i := range nodes {
		s.In[i], s.Out[i] = Placeholder, Placeholder
	}
	return s
}

// Circle approximates a circle with four cubic arcs.
func Circle(center complex128, r float64) *Spline {
	const kappa = 0.5522847498
	s := &Spline{Closed: true, Style: DefaultStyle()}
	for i := 0; i < 4; i++ {
		dir := cmplx.Rect(1, float64(i)*math.Pi/2)
		tangent := dir * 1i
		n := center + dir*complex(r, 0)
		s.Nodes = append(s.Nodes, n)
		s.In = append(s.In, n-tangent*complex(kappa*r, 0))
		s.Out = append(s.Out, n+tangent*complex(kappa*r, 0))
	}
	return s
}

func (s *Spline) Fields() []figure.Field {
	return append([]figure.Field{
		{Name: "nodes", Kind: figure.Numeric, Ptr: &s.Nodes},
		{Name: "in", Kind: figure.Numeric, Ptr: &s.In},
		{Name: "out", Kind: figure.Numeric, Ptr: &s.Out},
		{Name: "closed", Kind: figure.Discrete, Ptr: &s.Closed},
	}, s.Style.fields()...)
}

func (s *Spline) Copy() figure.Figure { return s.clone() }

func (s *Spline) clone() *Spline {
	c := *s
	c.Nodes = append([]complex128(nil), s.Nodes...)
	c.In = append([]complex128(nil), s.In...)
	c.Out = append([]complex128(nil), s.Out...)
	c.Style = s.Style.copy()
	return &c
}

// Pretween checks that every node has both handle slots.
func (s *Spline) Pretween() error {
	if len(s.In) != len(s.Nodes) || len(s.Out) != len(s.Nodes) {
		return errs.New(errs.ErrStructural, "spline has %d nodes, %d in and %d out handles", len(s.Nodes), len(s.In), len(s.Out))
	}
	return nil
}

// Morph resolves placeholders facing real handles, then blends.
func (s *Spline) Morph(other figure.Figure, t float64, rule figure.Rule) (figure.Figure, error) {
	b := other.(*Spline)
	if len(s.Nodes) != len(b.Nodes) {
		return nil, errs.New(errs.ErrIncompatibleTween, "spline: %d nodes against %d", len(s.Nodes), len(b.Nodes))
	}
	a := s.clone()
	b = b.clone()
	if err := a.Pretween(); err != nil {
		return nil, err
	}
	if err := b.Pretween(); err != nil {
		return nil, err
	}
	for i := range a.Nodes {
		resolve(&a.In[i], &b.In[i], a.Nodes[i], b.Nodes[i])
		resolve(&a.Out[i], &b.Out[i], a.Nodes[i], b.Nodes[i])
	}
	c := a.clone()
	if err := figure.Blend(c, a, b, t, rule); err != nil {
		return nil, err
	}
	return c, nil
}

func resolve(ha, hb *complex128, na, nb complex128) {
	switch ia, ib := cmplx.IsInf(*ha), cmplx.IsInf(*hb); {
	case ia && !ib:
		*ha = na
	case ib && !ia:
		*hb = nb
	}
}

func handle(h, node complex128) complex128 {
	if cmplx.IsInf(h) {
		return node
	}
	return h
}

// Flatten samples the outline as a polyline.
func (s *Spline) Flatten() []complex128 {
	n := len(s.Nodes)
	if n == 0 {
		return nil
	}
	segs := n - 1
	if s.Closed {
		segs = n
	}
	out := []complex128{s.Nodes[0]}
	for i := 0; i < segs; i++ {
		j := (i + 1) % n
		p0, p3 := s.Nodes[i], s.Nodes[j]
		p1, p2 := handle(s.Out[i], p0), handle(s.In[j], p3)
		for k := 1; k <= flattenSteps; k++ {
			u := float64(k) / flattenSteps
			out = append(out, bezier(p0, p1, p2, p3, u))
		}
	}
	if s.Closed && len(out) > 1 {
		out = out[:len(out)-1]
	}
	return out
}

func bezier(p0, p1, p2, p3 complex128, u float64) complex128 {
	v := 1 - u
	return complex(v*v*v, 0)*p0 + complex(3*v*v*u, 0)*p1 + complex(3*v*u*u, 0)*p2 + complex(u*u*u, 0)*p3
}

func (s *Spline) Draw(_ *figure.Camera, c canvas.Canvas) error {
	if s.Hidden || len(s.Nodes) == 0 {
		return nil
	}
	drawRuns(c, &s.Style, []run{{pts: s.Flatten(), closed: s.Closed}})
	return nil
}
