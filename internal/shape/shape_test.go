package shape

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/canvas/canvastest"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
	"github.com/ivlev/scene2video/internal/transition"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestInsertNodes(t *testing.T) {
	tests := []struct {
		name   string
		nodes  []complex128
		closed bool
		n      int
		want   []complex128
	}{
		{"open midpoint", []complex128{0, 2}, false, 3, []complex128{0, 1, 2}},
		{"longest first", []complex128{0, 1, 4}, false, 4, []complex128{0, 1, 2.5, 4}},
		{"closing segment", []complex128{0, 2, 2 + 2i}, true, 4, []complex128{0, 2, 2 + 2i, 1 + 1i}},
		{"single node", []complex128{5}, false, 3, []complex128{5, 5, 5}},
		{"no change", []complex128{0, 1}, false, 2, []complex128{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InsertNodes(tt.nodes, tt.closed, tt.n)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPathNodeCountMorph(t *testing.T) {
	tri := Polygon(0, 4, 4i)
	sq := Rect(0, 4+4i)
	mid, err := figure.Tween(tri, sq, 0.5)
	require.NoError(t, err)
	assert.Len(t, mid.(*Path).Nodes, 4)

	// The inserted node sits on the outline, so the shape starts unchanged.
	start, err := figure.Tween(tri, sq, 1e-12)
	require.NoError(t, err)
	nodes := start.(*Path).Nodes
	assert.InDelta(t, 0, cmplx.Abs(nodes[2]-(2+2i)), 1e-9)

	// The keyfigures are untouched.
	assert.Len(t, tri.Nodes, 3)
}

func TestPathDeadendEasedOnce(t *testing.T) {
	for _, deadends := range [][]int{nil, {1}} {
		a := NewPath(0, 1, 10, 11)
		a.Deadends = deadends
		a.Transition = transition.QuadIn
		b := NewPath(100, 101, 110, 111)
		b.Deadends = deadends

		act := actor.Empty()
		_, err := act.NewKeyframe(0, a)
		require.NoError(t, err)
		_, err = act.NewKeyframe(10, b)
		require.NoError(t, err)

		mid, err := act.Resolve(5)
		require.NoError(t, err)
		nodes := mid.(*Path).Nodes
		assert.InDelta(t, 25, real(nodes[0]), 1e-9, "deadends %v", deadends)
		assert.InDelta(t, 36, real(nodes[3]), 1e-9, "deadends %v", deadends)
	}
}

func TestPathDeadendMorph(t *testing.T) {
	a := NewPath(0, 1, 10, 11)
	a.Deadends = []int{1}
	b := NewPath(0, 2)

	mid, err := figure.Tween(a, b, 0.5)
	require.NoError(t, err)
	p := mid.(*Path)
	assert.Equal(t, []int{1}, p.Deadends)
	assert.Len(t, p.Nodes, 4)

	pieces := p.pieces()
	require.Len(t, pieces, 2)
	if diff := cmp.Diff([]complex128{0, 1.5}, pieces[0].Nodes, approx); diff != "" {
		t.Errorf("first piece (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]complex128{5, 6.5}, pieces[1].Nodes, approx); diff != "" {
		t.Errorf("second piece (-want +got):\n%s", diff)
	}
}

func TestPathPretween(t *testing.T) {
	p := NewPath(0, 1, 2, 3)
	p.Deadends = []int{2, 0, 2, 3, -1}
	require.NoError(t, p.Pretween())
	assert.Equal(t, []int{0, 2}, p.Deadends)
}

func TestPathDashAndFillMorph(t *testing.T) {
	a := Rect(0, 1+1i)
	b := Rect(0, 1+1i)
	b.Dash = []float64{2, 2}
	b.Fill = canvas.Paint{Gradient: &canvas.Gradient{End: 1, Stops: []canvas.Stop{{Offset: 0, Color: canvas.Black}, {Offset: 1, Color: canvas.White}}}}
	mid, err := figure.Tween(a, b, 0.5)
	require.NoError(t, err)
	p := mid.(*Path)
	assert.Equal(t, []float64{3, 1}, p.Dash)
	require.NotNil(t, p.Fill.Gradient)
	assert.Len(t, p.Fill.Gradient.Stops, 2)
}

func TestPathDrawTrim(t *testing.T) {
	p := NewPath(0, 10)
	p.End = 0.5
	rec := canvastest.New(100, 100)
	require.NoError(t, p.Draw(nil, rec))
	assert.Equal(t, []string{"moveto 0 0"}, rec.Filter("moveto"))
	assert.Equal(t, []string{"lineto 5 0"}, rec.Filter("lineto"))
	assert.Equal(t, 1, rec.Count("stroke"))
	assert.Equal(t, 0, rec.Count("fill"))
}

func TestPathDrawDeadends(t *testing.T) {
	p := NewPath(0, 1, 5, 6)
	p.Deadends = []int{1}
	rec := canvastest.New(100, 100)
	require.NoError(t, p.Draw(nil, rec))
	assert.Equal(t, 2, rec.Count("moveto"))

	p.Hidden = true
	rec = canvastest.New(100, 100)
	require.NoError(t, p.Draw(nil, rec))
	assert.Empty(t, rec.Ops)
}

func TestSplinePlaceholders(t *testing.T) {
	a := NewSpline(0, 4)
	b := NewSpline(0, 4)
	b.Out[0] = 2 + 2i

	mid, err := figure.Tween(a, b, 0.5)
	require.NoError(t, err)
	s := mid.(*Spline)
	assert.Equal(t, 1+1i, s.Out[0])
	assert.True(t, cmplx.IsInf(s.In[1]))

	_, err = figure.Tween(a, NewSpline(0, 1, 2), 0.5)
	assert.True(t, errors.Is(err, errs.ErrIncompatibleTween))
}

func TestCircleFlatten(t *testing.T) {
	pts := Circle(0, 2).Flatten()
	require.Len(t, pts, 4*flattenSteps)
	for _, p := range pts {
		assert.InDelta(t, 2, cmplx.Abs(p), 0.01)
	}
}

func TestGlyphs(t *testing.T) {
	rec := canvastest.New(10, 10)
	mf := Glyphs("abc", 1i, 2, rec)
	require.Len(t, mf.Figures, 3)
	var pos []complex128
	for _, g := range mf.Figures {
		pos = append(pos, g.(*Text).Pos)
	}
	assert.Equal(t, []complex128{1i, 1 + 1i, 2 + 1i}, pos)
	assert.Equal(t, "b", mf.Figures[1].(*Text).Text)
}

func TestTextAnchor(t *testing.T) {
	txt := NewText("abcd", 10, 2)
	txt.Anchor = AnchorCenter
	rec := canvastest.New(10, 10)
	require.NoError(t, txt.Draw(nil, rec))
	assert.Equal(t, []string{`text "abcd" 8 0 2`}, rec.Filter("text"))
}

func TestTextTweenSnapsString(t *testing.T) {
	a := NewText("one", 0, 10)
	b := NewText("two", 10, 20)
	mid, err := figure.Tween(a, b, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "one", mid.(*Text).Text)
	assert.Equal(t, 15.0, mid.(*Text).Size)
}

func TestQRCode(t *testing.T) {
	mf, err := QRCode("https://example.com", 0, 1)
	require.NoError(t, err)
	require.NotEmpty(t, mf.Figures)
	for _, f := range mf.Figures {
		p := f.(*Path)
		assert.True(t, p.Closed)
		assert.Len(t, p.Nodes, 4)
	}
}

func TestSpacePointProjection(t *testing.T) {
	cam := figure.NewCamera(0, 10, 0, 10)
	p := NewSpacePoint([3]float64{1, 2, 3}, 0.5)
	rec := canvastest.New(10, 10)
	require.NoError(t, p.Draw(cam, rec))
	assert.Equal(t, 1, rec.Count("fill"))
	assert.Equal(t, []string{"moveto 6.5 7"}, rec.Filter("moveto"))
}

func TestPictureDraw(t *testing.T) {
	rec := canvastest.New(10, 10)
	pic := &Picture{Image: rec.Image(), Pos: 1 + 2i, Width: 3, Height: 4, Alpha: 1}
	require.NoError(t, pic.Draw(nil, rec))
	assert.Equal(t, []string{"image 0 0 3 4 1"}, rec.Filter("image"))
	assert.Equal(t, []string{"translate 1 2"}, rec.Filter("translate"))
}
