// Package director builds animations from YAML scenario documents and
// plans camera tours over the regions an analyzer finds in a picture.
package director

import (
	"fmt"
	"math"
)

// Director plans camera tours for a viewport of the given world size.
type Director struct {
	ViewportWidth  float64
	ViewportHeight float64
	MinDwell       float64 // Minimum time per region (seconds)
	MaxDwell       float64 // Maximum time per region (seconds)
	MaxZoom        float64
}

// NewDirector creates a new Director with default settings
func NewDirector(viewportWidth, viewportHeight float64) *Director {
	return &Director{
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		MinDwell:       1.0,
		MaxDwell:       3.0,
		MaxZoom:        3.0,
	}
}

// GenerateTour plans a tour over regions, given in reading order, starting
// and ending on full, the whole viewport. The last keyframe may land after
// totalDuration when dwell clamping requires it.
func (d *Director) GenerateTour(regions []Rectangle, full Rectangle, totalDuration float64) ([]Keyframe, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions detected")
	}

	dwellTime := d.calculateDwellTime(totalDuration, len(regions))

	// Начинаем с общего плана
	keyframes := []Keyframe{{Time: 0.0, Focus: "full_view", Rect: full, Zoom: 1.0}}

	currentTime := 1.0 // 1s intro
	for i, r := range regions {
		keyframes = append(keyframes, Keyframe{
			Time:  currentTime,
			Focus: fmt.Sprintf("region_%d", i+1),
			Rect:  r,
			Zoom:  d.calculateZoom(r),
		})
		currentTime += dwellTime
	}

	// Заканчиваем общим планом
	keyframes = append(keyframes, Keyframe{Time: currentTime, Focus: "full_view", Rect: full, Zoom: 1.0})
	return keyframes, nil
}

// calculateDwellTime determines how long to show each region
func (d *Director) calculateDwellTime(totalDuration float64, count int) float64 {
	// Резервируем время на вступление и финал (общий план)
	introOutroDuration := 2.0 // 1s intro + 1s outro
	availableDuration := totalDuration - introOutroDuration

	if availableDuration <= 0 {
		availableDuration = totalDuration
	}

	dwellTime := availableDuration / float64(count)
	return math.Max(d.MinDwell, math.Min(d.MaxDwell, dwellTime))
}

// calculateZoom determines zoom level to fit a region in the viewport
func (d *Director) calculateZoom(r Rectangle) float64 {
	padding := 0.9 // Use 90% of viewport

	if r.W <= 0 || r.H <= 0 {
		return 1.0
	}

	// Use the smaller scale to ensure the region fits
	zoom := math.Min(d.ViewportWidth*padding/r.W, d.ViewportHeight*padding/r.H)
	return math.Max(1.0, math.Min(d.MaxZoom, zoom))
}

// View returns the camera window {xmin, xmax, ymin, ymax} showing k: the
// viewport scaled down by the zoom and centered on the focus rectangle.
func (d *Director) View(k Keyframe) [4]float64 {
	c := k.Rect.center()
	hw, hh := d.ViewportWidth/2/k.Zoom, d.ViewportHeight/2/k.Zoom
	return [4]float64{real(c) - hw, real(c) + hw, imag(c) - hh, imag(c) + hh}
}
