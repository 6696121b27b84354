package effects

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/figure"
)

// ZoomModes are the anchors a camera zoom can close in on.
var ZoomModes = []string{"center", "top-left", "top-right", "bottom-left", "bottom-right"}

// Zoom closes a camera actor's view in on an anchor until it is Peak times
// magnified, then returns to the original view over the last Outro frames.
// Mode "random" picks an anchor from Seed.
type Zoom struct {
	Mode  string
	Peak  float64
	Outro int
	Seed  int64
}

func (z Zoom) Apply(a *actor.Actor, at, duration int) error {
	if z.Outro < 0 || z.Outro >= duration {
		return fmt.Errorf("zoom outro %d does not fit in %d frames", z.Outro, duration)
	}
	peak := z.Peak
	if peak <= 1 {
		peak = 1.5
	}
	mode := strings.ToLower(z.Mode)
	if mode == "random" {
		r := rand.New(rand.NewSource(z.Seed))
		mode = ZoomModes[r.Intn(len(ZoomModes))]
	}

	from, _, err := span(a, at, duration)
	if err != nil {
		return err
	}
	cam, ok := from.(*figure.Camera)
	if !ok {
		return fmt.Errorf("zoom needs a camera actor, %q holds %T", a.Name(), from)
	}
	view, err := zoomed(cam.View, peak, mode)
	if err != nil {
		return err
	}

	peakAt := at + duration - z.Outro
	if z.Outro > 0 {
		// Back to the original view at the end.
		end := cam.Copy().(*figure.Camera)
		end.Delay = 0
		if err := a.Put(at+duration, end); err != nil {
			return err
		}
	}
	top, err := a.SplitAt(peakAt)
	if err != nil {
		return err
	}
	top.(*figure.Camera).View = view
	a.ClearCache()
	return nil
}

// zoomed shrinks view by peak keeping the anchor fixed. The y axis points up.
func zoomed(view [4]float64, peak float64, mode string) ([4]float64, error) {
	xmin, xmax, ymin, ymax := view[0], view[1], view[2], view[3]
	w, h := (xmax-xmin)/peak, (ymax-ymin)/peak
	switch mode {
	case "top-left":
		return [4]float64{xmin, xmin + w, ymax - h, ymax}, nil
	case "top-right":
		return [4]float64{xmax - w, xmax, ymax - h, ymax}, nil
	case "bottom-left":
		return [4]float64{xmin, xmin + w, ymin, ymin + h}, nil
	case "bottom-right":
		return [4]float64{xmax - w, xmax, ymin, ymin + h}, nil
	case "center", "":
		cx, cy := (xmin+xmax)/2, (ymin+ymax)/2
		return [4]float64{cx - w/2, cx + w/2, cy - h/2, cy + h/2}, nil
	}
	return view, fmt.Errorf("unknown zoom mode %q", mode)
}
