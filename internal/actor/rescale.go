package actor

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
)

// ScaleIndex maps a frame index under a speed change by factor about center:
// round((i-center)/factor + center).
func ScaleIndex[T constraints.Integer](i T, factor, center float64) T {
	return T(math.Round((float64(i)-center)/factor + center))
}

// ScaleDelay maps a hold length under a speed change. Infinite holds stay
// infinite.
func ScaleDelay[T constraints.Integer](d T, factor float64) T {
	if int(d) == figure.Forever {
		return d
	}
	return max(0, T(math.Round(float64(d)/factor)))
}

// Shift moves every keyframe by delta frames.
func (a *Actor) Shift(delta int) {
	if delta == 0 {
		return
	}
	for i := range a.keys {
		a.keys[i].Index += delta
	}
	a.ClearCache()
}

// SpeedUp rekeys every keyframe to round((index-center)/factor + center) and
// scales the keyframe delays. When two keyframes would land on the same
// index the actor is left unchanged and a structural error is returned.
func (a *Actor) SpeedUp(factor, center float64) error {
	next, err := a.PlanSpeedUp(factor, center)
	if err != nil {
		return err
	}
	for i := range a.keys {
		a.keys[i].Index = next[i]
		p := a.keys[i].Figure.Properties()
		p.Delay = ScaleDelay(p.Delay, factor)
	}
	a.ClearCache()
	a.logEvent("speed changed")
	return nil
}

// PlanSpeedUp returns the indices SpeedUp would assign without applying them.
func (a *Actor) PlanSpeedUp(factor, center float64) ([]int, error) {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return nil, a.locate(errs.New(errs.ErrStructural, "invalid speed factor %g", factor))
	}
	next := make([]int, len(a.keys))
	for i, k := range a.keys {
		next[i] = ScaleIndex(k.Index, factor, center)
		if i > 0 && next[i] <= next[i-1] {
			return nil, a.locate(errs.New(errs.ErrStructural,
				"speed factor %g merges keyframes %d and %d", factor, a.keys[i-1].Index, k.Index).AtFrame(k.Index))
		}
	}
	return next, nil
}

// SlowDown is SpeedUp by 1/factor.
func (a *Actor) SlowDown(factor, center float64) error {
	if factor <= 0 {
		return a.locate(errs.New(errs.ErrStructural, "invalid slow-down factor %g", factor))
	}
	return a.SpeedUp(1/factor, center)
}

// Rescale converts the timeline to a frame rate ratio times the current one.
func (a *Actor) Rescale(ratio float64) error {
	if ratio <= 0 {
		return a.locate(errs.New(errs.ErrStructural, "invalid frame-rate ratio %g", ratio))
	}
	return a.SpeedUp(1/ratio, 0)
}
