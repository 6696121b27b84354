package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 2)
	writePNG(t, filepath.Join(dir, "a.PNG"), 8, 6)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, 2, src.PageCount())

	w, h, err := src.GetPageDimensions(0)
	require.NoError(t, err)
	assert.Equal(t, 8.0, w)
	assert.Equal(t, 6.0, h)

	img, err := src.RenderPage(1, 72)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	again, err := src.RenderPage(1, 72)
	require.NoError(t, err)
	assert.Same(t, img, again)

	_, err = src.RenderPage(2, 72)
	assert.Error(t, err)
	_, _, err = src.GetPageDimensions(-1)
	assert.Error(t, err)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	_, err = Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
