package analyzer

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// ContrastDetector finds regions by Sobel edge detection, dilation to join
// nearby edges and connected components.
type ContrastDetector struct {
	MinArea       int     // minimum bounding box area, px²
	EdgeThreshold float64 // gradient magnitude threshold
	Radius        int     // dilation radius
	Iterations    int     // dilation passes
	MaxRegions    int     // keep the densest regions; 0 keeps all
	RowTolerance  int     // see ReadingOrder
}

// NewContrastDetector creates a new contrast-based detector with default settings
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinArea:       500,
		EdgeThreshold: 30,
		Radius:        2,
		Iterations:    2,
		RowTolerance:  20,
	}
}

// Detect returns regions in reading order.
func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Rect, img, b.Min, draw.Src)

	edges := sobel(gray, d.EdgeThreshold)
	grown := edges
	for i := 0; i < d.Iterations; i++ {
		grown = dilate(grown, gray.Rect.Dx(), gray.Rect.Dy(), d.Radius)
	}

	var regions []Region
	for _, c := range components(grown, edges, gray.Rect.Dx(), gray.Rect.Dy()) {
		area := c.rect.Dx() * c.rect.Dy()
		if area < d.MinArea {
			continue
		}
		regions = append(regions, Region{
			Rect:    c.rect.Add(b.Min),
			Density: float64(c.edges) / float64(area),
		})
	}
	if d.MaxRegions > 0 && len(regions) > d.MaxRegions {
		sort.SliceStable(regions, func(i, j int) bool { return regions[i].Density > regions[j].Density })
		regions = regions[:d.MaxRegions]
	}
	ReadingOrder(regions, d.RowTolerance)
	return regions, nil
}

// sobel marks pixels whose gradient magnitude exceeds threshold.
func sobel(gray *image.Gray, threshold float64) []bool {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := make([]bool, w*h)
	px := func(x, y int) float64 { return float64(gray.Pix[y*gray.Stride+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) - px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			gy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) - px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			out[y*w+x] = math.Hypot(gx, gy) > threshold
		}
	}
	return out
}

// dilate grows the mask by r pixels in both axes, one axis at a time.
func dilate(mask []bool, w, h, r int) []bool {
	if r <= 0 {
		return mask
	}
	horiz := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for k := max(0, x-r); k <= min(w-1, x+r); k++ {
				horiz[y*w+k] = true
			}
		}
	}
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !horiz[y*w+x] {
				continue
			}
			for k := max(0, y-r); k <= min(h-1, y+r); k++ {
				out[k*w+x] = true
			}
		}
	}
	return out
}

type component struct {
	rect  image.Rectangle
	edges int
}

// components flood-fills the 4-connected regions of mask, counting the
// original edge pixels inside each.
func components(mask, edges []bool, w, h int) []component {
	seen := make([]bool, len(mask))
	var out []component
	var stack []int
	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		c := component{rect: image.Rect(w, h, -1, -1)}
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			c.rect.Min.X = min(c.rect.Min.X, x)
			c.rect.Min.Y = min(c.rect.Min.Y, y)
			c.rect.Max.X = max(c.rect.Max.X, x+1)
			c.rect.Max.Y = max(c.rect.Max.Y, y+1)
			if edges[i] {
				c.edges++
			}
			for _, n := range [4]int{i - 1, i + 1, i - w, i + w} {
				if n < 0 || n >= len(mask) || seen[n] || !mask[n] {
					continue
				}
				if (n == i-1 && x == 0) || (n == i+1 && x == w-1) {
					continue
				}
				seen[n] = true
				stack = append(stack, n)
			}
		}
		out = append(out, c)
	}
	return out
}
