package analyzer

import "fmt"

// Variants lists the names NewDetector accepts besides the empty default.
var Variants = []string{"contrast", "fine", "coarse"}

// NewDetector creates a detector based on the specified variant. fine keeps
// small blocks such as single lines apart; coarse merges a page into a few
// large areas.
func NewDetector(variant string) (Detector, error) {
	d := NewContrastDetector()
	switch variant {
	case "contrast", "":
	case "fine":
		d.MinArea = 200
		d.Radius = 1
		d.RowTolerance = 10
	case "coarse":
		d.MinArea = 2000
		d.Radius = 4
		d.Iterations = 3
		d.RowTolerance = 40
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
	return d, nil
}
