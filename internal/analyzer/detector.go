// Package analyzer finds regions of interest in raster pictures; the
// director turns them into camera tours.
package analyzer

import (
	"image"
	"sort"
)

// Region is a detected area of interest. Density is the share of its pixels
// lying on an edge.
type Region struct {
	Rect    image.Rectangle
	Density float64
}

// Detector is the interface for image analysis strategies
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}

// ReadingOrder sorts regions top-to-bottom, left-to-right. Regions whose tops
// differ by at most tolerance pixels count as one row.
func ReadingOrder(regions []Region, tolerance int) {
	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i].Rect.Min, regions[j].Rect.Min
		if abs(a.Y-b.Y) > tolerance {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
