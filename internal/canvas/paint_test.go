package canvas

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.True(t, c.Close(Color{1, 128.0 / 255, 0, 1}, 1e-9))

	c, err = ParseColor("#00000080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, c.A, 1e-9)

	c, err = ParseColor("none")
	require.NoError(t, err)
	assert.Equal(t, Transparent, c)

	_, err = ParseColor("orange")
	assert.Error(t, err)

	assert.Equal(t, "#ff8000", Color{1, 128.0 / 255, 0, 1}.Hex())
}

func TestColorLerpEndpoints(t *testing.T) {
	a := Color{0.1, 0.7, 0.3, 1}
	b := Color{0.9, 0.2, 0.6, 0.5}
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
	assert.Equal(t, b, a.LerpLab(b, 1))
	assert.True(t, a.Lerp(b, 0.5).Close(Color{0.5, 0.45, 0.45, 0.75}, 1e-12))
}

func TestDegenerateGradient(t *testing.T) {
	red := RGB(1, 0, 0)
	grad := &Gradient{Start: 0, End: 1, Stops: []Stop{{0, Black}, {0.5, White}, {1, Black}}}
	a, b := NormalizePaints(Solid(red), Paint{Gradient: grad})
	require.NotNil(t, a.Gradient)
	assert.Len(t, a.Gradient.Stops, 3)
	for _, s := range a.Gradient.Stops {
		assert.Equal(t, red, s.Color)
	}
	assert.Equal(t, grad, b.Gradient)

	mid := LerpPaint(Solid(red), Paint{Gradient: grad}, 0.5, nil)
	require.NotNil(t, mid.Gradient)
	assert.True(t, mid.Gradient.Stops[1].Color.Close(Color{1, 0.5, 0.5, 1}, 1e-12))

	// The endpoints keep their original representation.
	assert.Nil(t, LerpPaint(Solid(red), Paint{Gradient: grad}, 0, nil).Gradient)
}

func TestGradientResampling(t *testing.T) {
	a := &Gradient{Stops: []Stop{{0, Black}, {1, White}}}
	b := &Gradient{Stops: []Stop{{0, White}, {0.5, Black}, {1, White}}}
	na, nb := NormalizePaints(Paint{Gradient: a}, Paint{Gradient: b})
	assert.Len(t, na.Gradient.Stops, 3)
	assert.Len(t, nb.Gradient.Stops, 3)
	assert.True(t, na.Gradient.Stops[1].Color.Close(Color{0.5, 0.5, 0.5, 1}, 1e-12))
}

func TestNormalizeDashes(t *testing.T) {
	tests := []struct {
		name         string
		a, b         []float64
		wantA, wantB []float64
	}{
		{"both solid", nil, nil, nil, nil},
		{"lcm", []float64{1, 2}, []float64{3, 4, 5, 6, 7, 8}, []float64{1, 2, 1, 2, 1, 2}, []float64{3, 4, 5, 6, 7, 8}},
		{"odd doubled", []float64{2}, []float64{1, 1}, []float64{2, 2}, []float64{1, 1}},
		{"solid left", nil, []float64{3, 1}, []float64{4, 0}, []float64{3, 1}},
		{"solid right", []float64{2, 2, 1, 3}, nil, []float64{2, 2, 1, 3}, []float64{4, 0, 4, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := NormalizeDashes(tt.a, tt.b)
			if diff := cmp.Diff(tt.wantA, a); diff != "" {
				t.Errorf("a mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantB, b); diff != "" {
				t.Errorf("b mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLerpDash(t *testing.T) {
	assert.Nil(t, LerpDash(nil, []float64{2, 2}, 0))
	assert.Equal(t, []float64{2, 2}, LerpDash(nil, []float64{2, 2}, 1))
	assert.Equal(t, []float64{3, 1}, LerpDash(nil, []float64{2, 2}, 0.5))
}
