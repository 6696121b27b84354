package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
	"github.com/ivlev/scene2video/internal/shape"
)

func dot(t *testing.T, last int) *actor.Actor {
	t.Helper()
	a := actor.Empty(actor.WithName("dot"))
	_, err := a.NewKeyframe(0, shape.NewPoint(0, 1))
	require.NoError(t, err)
	_, err = a.NewKeyframe(last, nil)
	require.NoError(t, err)
	return a
}

func alphaAt(t *testing.T, a *actor.Actor, frame int) float64 {
	t.Helper()
	f, err := a.Resolve(frame)
	require.NoError(t, err)
	return f.(*shape.Point).Alpha
}

func TestFadeIn(t *testing.T) {
	a := dot(t, 20)
	require.NoError(t, FadeIn{}.Apply(a, 5, 10))
	assert.Equal(t, 0.0, alphaAt(t, a, 0))
	assert.Equal(t, 0.0, alphaAt(t, a, 5))
	assert.InDelta(t, 0.5, alphaAt(t, a, 10), 1e-9)
	assert.Equal(t, 1.0, alphaAt(t, a, 15))
	assert.Equal(t, 1.0, alphaAt(t, a, 20))
}

func TestFadeOut(t *testing.T) {
	a := dot(t, 20)
	require.NoError(t, FadeOut{}.Apply(a, 0, 4))
	assert.Equal(t, 1.0, alphaAt(t, a, 0))
	assert.InDelta(t, 0.75, alphaAt(t, a, 1), 1e-9)
	assert.Equal(t, 0.0, alphaAt(t, a, 4))
	assert.Equal(t, 0.0, alphaAt(t, a, 20))
}

func TestEffectNeedsDuration(t *testing.T) {
	a := dot(t, 20)
	assert.ErrorIs(t, FadeIn{}.Apply(a, 5, 0), errs.ErrTimelineRange)
	assert.Error(t, FadeIn{}.Apply(actor.New(figure.NewCamera(0, 1, 0, 1)), 0, 5))
}

func TestMoveByKeepsLaterKeyframesMoved(t *testing.T) {
	a := actor.Empty(actor.WithName("box"))
	_, err := a.NewKeyframe(0, shape.Rect(0, 1+1i))
	require.NoError(t, err)
	_, err = a.NewKeyframe(30, nil)
	require.NoError(t, err)

	require.NoError(t, MoveBy{Delta: 10 + 4i}.Apply(a, 0, 10))
	at := func(frame int) complex128 {
		f, err := a.Resolve(frame)
		require.NoError(t, err)
		return f.(*shape.Path).Origin
	}
	assert.Equal(t, complex128(0), at(0))
	assert.InDelta(t, 5, real(at(5)), 1e-9)
	assert.InDelta(t, 2, imag(at(5)), 1e-9)
	assert.Equal(t, 10+4i, at(10))
	assert.Equal(t, 10+4i, at(30))
}

func TestMoveComposite(t *testing.T) {
	a := actor.New(figure.NewMulti(shape.NewPoint(0, 1), shape.NewPoint(1, 1)))
	require.NoError(t, MoveBy{Delta: 3}.Apply(a, 0, 2))
	f, err := a.Resolve(2)
	require.NoError(t, err)
	assert.Equal(t, complex128(3), f.(*figure.MultiFigure).Origin)

	p := actor.New(shape.NewSpacePoint([3]float64{}, 1))
	assert.Error(t, MoveBy{Delta: 1}.Apply(p, 0, 2))
}

func TestTurn(t *testing.T) {
	a := actor.New(shape.Rect(0, 1+1i))
	require.NoError(t, Turn{Angle: 1}.Apply(a, 0, 4))
	f, err := a.Resolve(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f.(*shape.Path).Rotation, 1e-9)

	txt := actor.New(shape.NewText("x", 0, 10))
	assert.Error(t, Turn{Angle: 1}.Apply(txt, 0, 4))
}

func view(t *testing.T, a *actor.Actor, frame int) [4]float64 {
	t.Helper()
	f, err := a.Resolve(frame)
	require.NoError(t, err)
	return f.(*figure.Camera).View
}

func TestZoom(t *testing.T) {
	cam := actor.New(figure.NewCamera(0, 100, 0, 50))
	require.NoError(t, Zoom{Mode: "top-left", Peak: 2, Outro: 4}.Apply(cam, 0, 10))
	assert.Equal(t, [4]float64{0, 100, 0, 50}, view(t, cam, 0))
	assert.Equal(t, [4]float64{0, 50, 25, 50}, view(t, cam, 6))
	assert.Equal(t, [4]float64{0, 100, 0, 50}, view(t, cam, 10))
	mid := view(t, cam, 3)
	assert.InDelta(t, 75, mid[1], 1e-9)
	assert.InDelta(t, 12.5, mid[2], 1e-9)
}

func TestZoomModes(t *testing.T) {
	v := [4]float64{0, 100, 0, 50}
	tests := []struct {
		mode string
		want [4]float64
	}{
		{"center", [4]float64{25, 75, 12.5, 37.5}},
		{"top-right", [4]float64{50, 100, 25, 50}},
		{"bottom-left", [4]float64{0, 50, 0, 25}},
		{"bottom-right", [4]float64{50, 100, 0, 25}},
	}
	for _, tt := range tests {
		got, err := zoomed(v, 2, tt.mode)
		require.NoError(t, err, tt.mode)
		assert.Equal(t, tt.want, got, tt.mode)
	}
	_, err := zoomed(v, 2, "sideways")
	assert.Error(t, err)

	cam := actor.New(figure.NewCamera(0, 100, 0, 50))
	require.NoError(t, Zoom{Mode: "random", Peak: 2, Seed: 7}.Apply(cam, 0, 10))
	end := view(t, cam, 10)
	assert.InDelta(t, 50, end[1]-end[0], 1e-9)
	assert.InDelta(t, 25, end[3]-end[2], 1e-9)

	assert.Error(t, Zoom{Outro: 10}.Apply(cam, 0, 10))
	assert.Error(t, Zoom{}.Apply(dot(t, 5), 0, 5))
}

func TestStaggerFadeIn(t *testing.T) {
	a := actor.Empty(actor.WithName("word"))
	_, err := a.NewKeyframe(0, figure.NewMulti(shape.NewPoint(0, 1), shape.NewPoint(1, 1), shape.NewPoint(2, 1)))
	require.NoError(t, err)
	_, err = a.NewKeyframe(30, nil)
	require.NoError(t, err)

	require.NoError(t, Stagger{Effect: FadeIn{}, Lag: 5}.Apply(a, 0, 10))

	alphas := func(frame int) []float64 {
		f, err := a.Resolve(frame)
		require.NoError(t, err)
		var out []float64
		for _, s := range f.(*figure.MultiFigure).Subfigures() {
			out = append(out, s.(*shape.Point).Alpha)
		}
		return out
	}
	got := alphas(5)
	assert.InDelta(t, 0.5, got[0], 1e-9)
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 0.0, got[2])
	assert.Equal(t, []float64{1, 1, 1}, alphas(30))
	assert.Equal(t, "word", a.Name())
}

func TestStaggerKeepsFrameMotion(t *testing.T) {
	a := actor.Empty(actor.WithName("group"))
	_, err := a.NewKeyframe(0, figure.NewFrame(shape.NewPoint(0, 1), shape.NewPoint(1, 1)))
	require.NoError(t, err)
	_, err = a.NewKeyframe(30, nil)
	require.NoError(t, err)
	end, ok := a.Keyfigure(30)
	require.True(t, ok)
	end.(*figure.Frame).Origin = 100
	a.ClearCache()

	origin := func(act *actor.Actor, frame int) complex128 {
		f, err := act.Resolve(frame)
		require.NoError(t, err)
		return f.(*figure.Frame).Origin
	}
	before := a.Copy()

	require.NoError(t, Stagger{Effect: FadeIn{}, Lag: 2}.Apply(a, 0, 10))
	for _, frame := range []int{0, 10, 30} {
		assert.InDelta(t, real(origin(before, frame)), real(origin(a, frame)), 1e-9, "frame %d", frame)
	}
	assert.Equal(t, complex128(100), origin(a, 30))
}

func TestStaggerNeedsComposite(t *testing.T) {
	assert.ErrorIs(t, Stagger{Effect: FadeIn{}}.Apply(dot(t, 5), 0, 5), errs.ErrIncompatibleTween)
	assert.ErrorIs(t, Stagger{Effect: FadeIn{}}.Apply(actor.Empty(), 0, 5), errs.ErrTimelineRange)
}

func TestNewEffect(t *testing.T) {
	e, err := NewEffect("fade-in", Params{})
	require.NoError(t, err)
	assert.Equal(t, FadeIn{}, e)

	e, err = NewEffect("stagger", Params{Inner: "move", Delta: 2, Lag: 3})
	require.NoError(t, err)
	assert.Equal(t, Stagger{Effect: MoveBy{Delta: 2}, Lag: 3}, e)

	_, err = NewEffect("stagger", Params{Inner: "stagger"})
	assert.Error(t, err)
	_, err = NewEffect("explode", Params{})
	assert.Error(t, err)
}
