package figure

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/transition"
)

type dot struct {
	Props
	Pos   complex128
	Size  float64
	Color canvas.Color
	Label string
}

func (d *dot) Fields() []Field {
	return []Field{
		{Name: "pos", Kind: Numeric, Ptr: &d.Pos},
		{Name: "size", Kind: Numeric, Ptr: &d.Size},
		{Name: "color", Kind: Numeric, Ptr: &d.Color},
		{Name: "label", Kind: Discrete, Ptr: &d.Label},
	}
}

func (d *dot) Copy() Figure {
	c := *d
	return &c
}

func (d *dot) Draw(*Camera, canvas.Canvas) error { return nil }

type other struct{ dot }

func (o *other) Copy() Figure {
	c := *o
	return &c
}

func newDot(pos complex128, size float64) *dot {
	return &dot{Pos: pos, Size: size, Color: canvas.White, Label: "d"}
}

func mustTween(t *testing.T, a, b Figure, at float64) Figure {
	t.Helper()
	f, err := Tween(a, b, at)
	require.NoError(t, err)
	return f
}

func TestTweenEndpoints(t *testing.T) {
	a := newDot(0, 1)
	b := &dot{Pos: 10 + 10i, Size: 3, Color: canvas.Black, Label: "e"}
	assert.True(t, Equal(mustTween(t, a, b, 0), a, 0))
	assert.True(t, Equal(mustTween(t, a, b, 1), b, 0))

	mid := mustTween(t, a, b, 0.5).(*dot)
	assert.Equal(t, 5+5i, mid.Pos)
	assert.Equal(t, 2.0, mid.Size)
	assert.Equal(t, "d", mid.Label)

	near := mustTween(t, a, b, 0.999).(*dot)
	assert.Equal(t, "d", near.Label)

	// The inputs are untouched.
	assert.Equal(t, complex128(0), a.Pos)
}

func TestTweenIncompatible(t *testing.T) {
	_, err := Tween(newDot(0, 1), &other{}, 0.5)
	assert.True(t, errors.Is(err, errs.ErrIncompatibleTween))
}

func TestInfinitePlaceholderSnaps(t *testing.T) {
	a := newDot(complex(math.Inf(1), 0), 1)
	b := newDot(4, 1)
	mid := mustTween(t, a, b, 0.5).(*dot)
	assert.True(t, cmplx.IsInf(mid.Pos))
}

func TestSpiral(t *testing.T) {
	a := newDot(1, 1)
	a.Method = Spiral
	b := newDot(1i, 1)
	mid := mustTween(t, a, b, 0.5).(*dot)
	assert.InDelta(t, 0, cmplx.Abs(mid.Pos-cmplx.Exp(complex(0, math.Pi/4))), 1e-12)

	// A zero endpoint falls back to a straight line.
	z := newDot(0, 1)
	z.Method = Spiral
	assert.Equal(t, 0.5i, mustTween(t, z, b, 0.5).(*dot).Pos)
}

func TestPivotAndSplit(t *testing.T) {
	beg := newDot(1, 1)
	beg.Method = Pivot(math.Pi)
	fin := newDot(-1, 1)

	mid := mustTween(t, beg, fin, 0.5).(*dot)
	assert.InDelta(t, 0, cmplx.Abs(mid.Pos-1i), 1e-12)
	quarter := mustTween(t, beg, fin, 0.25).(*dot)

	require.NoError(t, Split(0.5, beg, mid, fin))
	assert.InDelta(t, math.Pi/2, beg.Method.Rule.(pivotRule).angle, 1e-12)
	assert.InDelta(t, math.Pi/2, mid.Method.Rule.(pivotRule).angle, 1e-12)

	again := mustTween(t, beg, mid, 0.5)
	assert.True(t, Equal(again, quarter, 1e-9))
}

func TestPerceptualKeepsEndpoints(t *testing.T) {
	a := newDot(0, 1)
	a.Method = Perceptual
	a.Color = canvas.RGB(1, 0, 0)
	b := newDot(0, 1)
	b.Color = canvas.RGB(0, 0, 1)
	mid := mustTween(t, a, b, 0.5).(*dot)
	assert.NotEqual(t, canvas.RGB(1, 0, 0).Lerp(canvas.RGB(0, 0, 1), 0.5), mid.Color)
	assert.Equal(t, b.Color, mustTween(t, a, b, 1).(*dot).Color)
}

func TestCameraOrientationSlerp(t *testing.T) {
	a := NewCamera(-1, 1, -1, 1)
	b := NewCamera(-1, 1, -1, 1)
	b.Orientation = mgl64.Rotate3DZ(math.Pi / 2)
	mid := mustTween(t, a, b, 0.5).(*Camera)
	assert.True(t, mid.Orientation.ApproxEqualThreshold(mgl64.Rotate3DZ(math.Pi/4), 1e-9))
}

func TestCameraProject(t *testing.T) {
	c := NewCamera(0, 10, 0, 10)
	c.Focus = mgl64.Vec3{1, 1, 5}
	assert.Equal(t, 6+4i, c.Project(mgl64.Vec3{2, 0, 0}))

	c.Zoom(2)
	assert.Equal(t, [4]float64{2.5, 7.5, 2.5, 7.5}, c.View)
}

func TestFrameTween(t *testing.T) {
	a := NewFrame(newDot(0, 1), newDot(1, 1))
	b := NewFrame(newDot(2, 1), newDot(3, 1))
	b.Origin = 10i

	mid := mustTween(t, a, b, 0.5).(*Frame)
	assert.Equal(t, 5i, mid.Origin)
	assert.Equal(t, complex128(1), mid.Figures[0].(*dot).Pos)
	assert.Equal(t, complex128(2), mid.Figures[1].(*dot).Pos)

	short := NewFrame(newDot(0, 1))
	_, err := Tween(a, short, 0.5)
	assert.True(t, errors.Is(err, errs.ErrIncompatibleTween))
}

func TestFrameSubTransitionAndStatic(t *testing.T) {
	eased := newDot(0, 1)
	eased.Transition = transition.QuadIn
	fixed := newDot(0, 1)
	fixed.Static = true
	a := NewFrame(eased, fixed)
	b := NewFrame(newDot(4, 1), newDot(4, 1))

	mid := mustTween(t, a, b, 0.5).(*Frame)
	assert.Equal(t, complex128(1), mid.Figures[0].(*dot).Pos)
	assert.Equal(t, complex128(0), mid.Figures[1].(*dot).Pos)
}

func TestFrameSplitSubTransitions(t *testing.T) {
	sub := newDot(0, 1)
	sub.Transition = transition.Smooth
	beg := NewFrame(sub)
	fin := NewFrame(newDot(8, 1))
	want := mustTween(t, beg, fin, 0.75)

	mid := mustTween(t, beg, fin, 0.5)
	require.NoError(t, Split(0.5, beg, mid, fin))
	got := mustTween(t, mid, fin, 0.5)
	assert.True(t, Equal(got, want, 1e-9))
}

func TestMultiFigurePadding(t *testing.T) {
	a := NewMulti(newDot(0, 1), newDot(1, 1), newDot(2, 1))
	b := NewMulti(newDot(10, 1), newDot(20, 1))

	mid := mustTween(t, a, b, 0.5).(*MultiFigure)
	require.Len(t, mid.Figures, 3)
	assert.Equal(t, complex128(5), mid.Figures[0].(*dot).Pos)
	assert.Equal(t, 10.5+0i, mid.Figures[1].(*dot).Pos)
	assert.Equal(t, complex128(11), mid.Figures[2].(*dot).Pos)

	// Padding is transient.
	assert.Len(t, b.Figures, 2)

	_, err := Tween(NewMulti(), NewMulti(), 0.5)
	assert.ErrorIs(t, err, errs.ErrIncompatibleTween)
}

func TestMultiFigurePaddingKeepsNames(t *testing.T) {
	a := NewMulti(newDot(0, 1), newDot(5, 1))
	require.NoError(t, a.SetName("b", 1))
	b := NewMulti(newDot(0, 1), newDot(0, 1), newDot(5, 1), newDot(5, 1))

	mid := mustTween(t, a, b, 0.5).(*MultiFigure)
	require.Len(t, mid.Figures, 4)
	assert.Equal(t, 2, mid.Names["b"])
	assert.Equal(t, complex128(5), mid.Figures[mid.Names["b"]].(*dot).Pos)
	assert.Equal(t, 1, a.Names["b"])
}

func TestPad(t *testing.T) {
	subs := []Figure{newDot(0, 1), newDot(1, 1)}
	out, err := Pad(subs, nil, 6)
	require.NoError(t, err)
	require.Len(t, out, 6)
	var pos []complex128
	for _, s := range out {
		pos = append(pos, s.(*dot).Pos)
	}
	assert.Equal(t, []complex128{0, 0, 0, 1, 1, 1}, pos)

	out, err = Pad(subs, []int{1}, 4)
	require.NoError(t, err)
	assert.Equal(t, complex128(0), out[0].(*dot).Pos)
	assert.Equal(t, complex128(1), out[3].(*dot).Pos)

	_, err = Pad(nil, nil, 2)
	assert.Error(t, err)
}

func TestFrameMergeNames(t *testing.T) {
	a := NewFrame(newDot(0, 1))
	require.NoError(t, a.SetName("x", 0))
	b := NewFrame(newDot(1, 1), newDot(2, 1))
	require.NoError(t, b.SetName("x", 0))
	require.NoError(t, b.SetName("y", 1))

	a.Merge(b)
	require.Len(t, a.Figures, 3)
	assert.Equal(t, map[string]int{"x": 0, "y": 2}, a.Names)

	y, ok := a.Get("y")
	require.True(t, ok)
	assert.Equal(t, complex128(2), y.(*dot).Pos)
	assert.Error(t, a.SetName("z", 3))
}

func TestCommonAttr(t *testing.T) {
	f := NewFrame(newDot(0, 2), newDot(1, 2))
	v, err := Get(f, "size")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	require.NoError(t, Set(f, "size", 3))
	assert.Equal(t, 3.0, f.Figures[1].(*dot).Size)

	f.Figures[0].(*dot).Size = 1
	_, err = f.CommonAttr("size")
	assert.True(t, errors.Is(err, errs.ErrAmbiguousValue))

	_, err = Get(f, "missing")
	assert.Error(t, err)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, Signature(newDot(0, 1)), Signature(newDot(5, 2)))
	assert.NotEqual(t, Signature(newDot(0, 1)), Signature(&other{}))
}

func TestMethodNamed(t *testing.T) {
	m, err := MethodNamed("", 0)
	require.NoError(t, err)
	assert.Equal(t, Linear, m)
	m, err = MethodNamed("pivot", 1)
	require.NoError(t, err)
	assert.Equal(t, "pivot", m.Name)
	_, err = MethodNamed("zigzag", 0)
	assert.Error(t, err)
}
