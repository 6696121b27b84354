package layer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/canvas/canvastest"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
	"github.com/ivlev/scene2video/internal/shape"
)

func dotActor(t *testing.T, name string, keys map[int]complex128) *actor.Actor {
	t.Helper()
	a := actor.Empty(actor.WithName(name))
	for idx, pos := range keys {
		_, err := a.NewKeyframe(idx, shape.NewPoint(pos, 1))
		require.NoError(t, err)
	}
	return a
}

func centered() Option { return WithCamera(figure.NewCamera(-32, 32, -18, 18)) }

func TestTimeNamesActors(t *testing.T) {
	l := New()
	l.Add(dotActor(t, "a", map[int]complex128{0: 0, 10: 10}), dotActor(t, "b", map[int]complex128{0: 5i}))
	hidden := dotActor(t, "c", map[int]complex128{0: 1})
	hidden.Hidden = true
	l.Add(hidden)

	f, err := l.Time(5)
	require.NoError(t, err)
	require.Len(t, f.Figures, 2)
	a, ok := f.Get("a")
	require.True(t, ok)
	assert.Equal(t, complex128(5), a.(*shape.Point).Pos)
	_, ok = f.Get("c")
	assert.False(t, ok)
}

func TestDrawCameraTransformAndDepth(t *testing.T) {
	l := New(centered())
	front := shape.NewPoint(0, 1)
	front.Color = canvas.RGB(1, 0, 0)
	front.Z = 1
	back := shape.NewPoint(0, 1)
	back.Color = canvas.RGB(0, 0, 1)
	l.Add(actor.New(front, actor.WithName("front")), actor.New(back, actor.WithName("back")))

	rec := canvastest.New(64, 36)
	require.NoError(t, l.Draw(0, rec))
	assert.Equal(t, []string{"scale 1 -1"}, rec.Filter("scale"))
	assert.Equal(t, []string{"translate 32 -18"}, rec.Filter("translate"))
	assert.Equal(t, []string{"color #0000ff", "color #ff0000"}, rec.Filter("color"))
	assert.Equal(t, rec.Count("save"), rec.Count("restore"))
}

func TestDrawSkipsHiddenCameraAndWindow(t *testing.T) {
	l := New(centered())
	l.Add(actor.New(shape.NewPoint(0, 1)))

	cam, ok := l.Camera.Keyfigure(0)
	require.True(t, ok)
	cam.Properties().Hidden = true
	l.Camera.ClearCache()
	rec := canvastest.New(64, 36)
	require.NoError(t, l.Draw(0, rec))
	assert.Empty(t, rec.Ops)

	cam.Properties().Hidden = false
	l.Camera.ClearCache()
	l.Start, l.End = 5, 10
	require.NoError(t, l.Draw(3, rec))
	assert.Empty(t, rec.Ops)
	require.NoError(t, l.Draw(5, rec))
	assert.Equal(t, 1, rec.Count("fill"))
}

func TestDrawMaskReusesSurfaces(t *testing.T) {
	l := New(centered(), WithName("fg"))
	l.Add(actor.New(shape.NewPoint(0, 1)))
	m := New(centered(), WithName("mask"))
	m.Add(actor.New(shape.NewPoint(3, 2)))
	l.Mask = m

	rec := canvastest.New(64, 36)
	require.NoError(t, l.Draw(0, rec))
	assert.Equal(t, 2, rec.Count("surface 64 36"))
	assert.Equal(t, 1, rec.Count("composite masked"))
	assert.Equal(t, 2, rec.Count("@fill"))
	assert.Equal(t, 0, rec.Count("@clear"))

	require.NoError(t, l.Draw(1, rec))
	assert.Equal(t, 2, rec.Count("surface"))
	assert.Equal(t, 2, rec.Count("@clear"))
	assert.Equal(t, 2, rec.Count("composite masked"))

	m.Hidden = true
	rec = canvastest.New(64, 36)
	require.NoError(t, l.Draw(2, rec))
	assert.Equal(t, 0, rec.Count("composite"))
	assert.Equal(t, 1, rec.Count("fill"))
}

func TestMaskCycle(t *testing.T) {
	a, b := New(WithName("a")), New(WithName("b"))
	a.Mask, b.Mask = b, a

	err := a.Draw(0, canvastest.New(8, 8))
	assert.True(t, errors.Is(err, errs.ErrMaskCycle))
	assert.True(t, errors.Is(err, errs.ErrStructural))
	assert.ErrorIs(t, a.Shift(3), errs.ErrMaskCycle)
	assert.Equal(t, 0, a.Offset)
	assert.ErrorIs(t, a.SanityCheck(), errs.ErrMaskCycle)
	_, err = a.FirstID(IDOptions{WithMask: true})
	assert.ErrorIs(t, err, errs.ErrMaskCycle)
}

func TestFirstLastID(t *testing.T) {
	l := New()
	l.Add(dotActor(t, "a", map[int]complex128{2: 0, 30: 1}))
	l.Offset = 10

	first, err := l.FirstID(IDOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, first)
	last, err := l.LastID(IDOptions{Global: true})
	require.NoError(t, err)
	assert.Equal(t, 40, last)

	m := New()
	m.Add(dotActor(t, "m", map[int]complex128{50: 0}))
	l.Mask = m
	last, err = l.LastID(IDOptions{WithMask: true})
	require.NoError(t, err)
	assert.Equal(t, 40, last)
	last, err = l.LastID(IDOptions{WithMask: true, Global: true})
	require.NoError(t, err)
	assert.Equal(t, 50, last)

	_, err = l.Camera.NewKeyframe(-4, nil)
	require.NoError(t, err)
	first, err = l.FirstID(IDOptions{Global: true})
	require.NoError(t, err)
	assert.Equal(t, 6, first)
}

func TestMergeMaskRules(t *testing.T) {
	ext1, ext2 := New(WithName("m1")), New(WithName("m2"))
	tests := []struct {
		name    string
		setup   func(a, b *Layer)
		want    func(a, b *Layer) *Layer
		wantErr error
	}{
		{
			name:  "none",
			setup: func(a, b *Layer) {},
			want:  func(a, b *Layer) *Layer { return nil },
		},
		{
			name:  "mutual masks are dropped",
			setup: func(a, b *Layer) { a.Mask = b },
			want:  func(a, b *Layer) *Layer { return nil },
		},
		{
			name:  "inherit from target",
			setup: func(a, b *Layer) { a.Mask = ext1 },
			want:  func(a, b *Layer) *Layer { return ext1 },
		},
		{
			name:  "inherit from source",
			setup: func(a, b *Layer) { b.Mask = ext2 },
			want:  func(a, b *Layer) *Layer { return ext2 },
		},
		{
			name:    "two external masks",
			setup:   func(a, b *Layer) { a.Mask, b.Mask = ext1, ext2 },
			wantErr: errs.ErrMergeConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := New(WithName("a")), New(WithName("b"))
			tt.setup(a, b)
			err := a.Merge(b, 0, -1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want(a, b), a.Mask)
		})
	}
}

func TestMergeSplicesActors(t *testing.T) {
	l := New(WithName("main"))
	l.Add(dotActor(t, "first", map[int]complex128{0: 0}))

	require.NoError(t, l.Merge(dotActor(t, "inserted", map[int]complex128{0: 0, 10: 1}), 5, 0))
	require.Len(t, l.Actors, 2)
	assert.Equal(t, "inserted", l.Actors[0].Name())
	assert.Equal(t, 5, l.Actors[0].FirstID())
	assert.Equal(t, 15, l.Actors[0].LastID())
	assert.Same(t, l, l.Actors[0].Owner())

	other := New()
	other.Offset = 3
	src := dotActor(t, "moved", map[int]complex128{0: 0})
	other.Add(src)
	require.NoError(t, l.Merge(other, 10, -1))
	require.Len(t, l.Actors, 3)
	assert.Equal(t, 13, l.Actors[2].FirstID())
	assert.Equal(t, 0, src.FirstID())

	assert.Error(t, l.Merge("nope", 0, 0))
}

func TestSpeedUpIsAtomic(t *testing.T) {
	l := New()
	l.Offset = 10
	fast := dotActor(t, "fast", map[int]complex128{0: 0, 1: 1})
	slow := dotActor(t, "slow", map[int]complex128{0: 0, 10: 1})
	l.Add(slow, fast)

	assert.ErrorIs(t, l.SpeedUp(4, 0), errs.ErrStructural)
	assert.Equal(t, 10, l.Offset)
	assert.Equal(t, 10, slow.LastID())

	require.NoError(t, l.SpeedUp(0.5, 0))
	assert.Equal(t, 20, l.Offset)
	assert.Equal(t, 20, slow.LastID())
	assert.Equal(t, 2, fast.LastID())
}

func TestCommitOffset(t *testing.T) {
	l := New()
	a := dotActor(t, "a", map[int]complex128{0: 0, 10: 10})
	l.Add(a)
	l.Offset = 7

	before, err := l.Time(12 - l.Offset)
	require.NoError(t, err)
	l.CommitOffset()
	assert.Equal(t, 0, l.Offset)
	assert.Equal(t, 7, a.FirstID())
	assert.Equal(t, 7, l.Camera.FirstID())
	after, err := l.Time(12)
	require.NoError(t, err)
	assert.True(t, figure.Equal(before, after, 1e-9))
}

func TestCopyIsIndependent(t *testing.T) {
	l := New(WithName("orig"))
	l.Add(dotActor(t, "a", map[int]complex128{0: 0}))
	c := l.Copy()
	c.Actors[0].Shift(5)
	assert.Equal(t, 0, l.Actors[0].FirstID())
	assert.Same(t, c, c.Actors[0].Owner())
	assert.Equal(t, "orig", c.Name())
}

func TestShiftAllMovesSharedMaskOnce(t *testing.T) {
	m := New(WithName("mask"))
	a, b := New(WithName("a")), New(WithName("b"))
	a.Mask, b.Mask = m, m
	b.Start, b.End = 0, 10

	group, err := Closure([]*Layer{a, b})
	require.NoError(t, err)
	assert.Len(t, group, 3)

	require.NoError(t, ShiftAll([]*Layer{a, b}, 4))
	assert.Equal(t, 4, m.Offset)
	assert.Equal(t, 4, a.Offset)
	assert.Equal(t, 4, b.Start)
	assert.Equal(t, 14, b.End)

	require.NoError(t, SpeedUpAll([]*Layer{a, b}, 2, 0))
	assert.Equal(t, 2, m.Offset)
	assert.Equal(t, 7, b.End)
}
