package analyzer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(w, h int, blocks ...image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for _, r := range blocks {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestContrastDetector(t *testing.T) {
	img := page(200, 200, image.Rect(50, 50, 150, 150))

	regions, err := NewContrastDetector().Detect(img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0].Rect
	assert.InDelta(t, 50, r.Min.X, 6)
	assert.InDelta(t, 50, r.Min.Y, 6)
	assert.InDelta(t, 150, r.Max.X, 6)
	assert.InDelta(t, 150, r.Max.Y, 6)
	assert.Greater(t, regions[0].Density, 0.0)
	assert.Less(t, regions[0].Density, 1.0)
}

func TestDetectReadingOrderAndOffset(t *testing.T) {
	img := page(300, 200,
		image.Rect(180, 30, 260, 80), // top right
		image.Rect(20, 40, 100, 90),  // top left, same row
		image.Rect(20, 130, 120, 180),
	)
	sub := img.SubImage(image.Rect(0, 0, 300, 200))

	regions, err := NewContrastDetector().Detect(sub)
	require.NoError(t, err)
	require.Len(t, regions, 3)
	assert.Less(t, regions[0].Rect.Min.X, 40)
	assert.Greater(t, regions[1].Rect.Min.X, 150)
	assert.Greater(t, regions[2].Rect.Min.Y, 110)

	shifted := image.NewGray(image.Rect(100, 100, 400, 300))
	for y := 0; y < 200; y++ {
		copy(shifted.Pix[y*shifted.Stride:], img.Pix[y*img.Stride:y*img.Stride+300])
	}
	moved, err := NewContrastDetector().Detect(shifted)
	require.NoError(t, err)
	require.Len(t, moved, 3)
	assert.Equal(t, regions[0].Rect.Add(image.Pt(100, 100)), moved[0].Rect)
}

func TestMaxRegionsKeepsDensest(t *testing.T) {
	img := page(300, 200,
		image.Rect(20, 20, 60, 60),
		image.Rect(100, 20, 280, 180),
	)
	d := NewContrastDetector()
	d.MaxRegions = 1
	regions, err := d.Detect(img)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Less(t, regions[0].Rect.Min.X, 30, "the small block has the higher edge density")
}

func TestReadingOrder(t *testing.T) {
	regions := []Region{
		{Rect: image.Rect(100, 105, 120, 120)},
		{Rect: image.Rect(0, 300, 10, 310)},
		{Rect: image.Rect(10, 100, 20, 120)},
	}
	ReadingOrder(regions, 20)
	assert.Equal(t, 10, regions[0].Rect.Min.X)
	assert.Equal(t, 100, regions[1].Rect.Min.X)
	assert.Equal(t, 300, regions[2].Rect.Min.Y)
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contrast", false},
		{"", false}, // default
		{"fine", false},
		{"coarse", false},
		{"ocr", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, detector)
		})
	}
}

func TestCoarseMergesNeighbours(t *testing.T) {
	img := page(300, 200,
		image.Rect(40, 40, 100, 100),
		image.Rect(116, 40, 170, 100),
	)
	fine, err := NewDetector("fine")
	require.NoError(t, err)
	regions, err := fine.Detect(img)
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	coarse, err := NewDetector("coarse")
	require.NoError(t, err)
	regions, err = coarse.Detect(img)
	require.NoError(t, err)
	assert.Len(t, regions, 1)
}
