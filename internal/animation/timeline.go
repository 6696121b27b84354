package animation

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/layer"
)

// delayFrames returns the delayed frames in ascending order.
func (a *Animation) delayFrames() []int {
	keys := make([]int, 0, len(a.Delays))
	for f := range a.Delays {
		keys = append(keys, f)
	}
	sort.Ints(keys)
	return keys
}

// Length returns the duration in frames between the first and last index,
// finite delays inside that range included. Infinite delays do not count.
func (a *Animation) Length() (int, error) {
	first, err := a.FirstID()
	if err != nil {
		return 0, err
	}
	last, err := a.LastID()
	if err != nil {
		return 0, err
	}
	n := last - first
	for f, d := range a.Delays {
		if f >= first && f <= last && d != Forever {
			n += d
		}
	}
	return n, nil
}

// Seconds returns Length in seconds.
func (a *Animation) Seconds() (float64, error) {
	n, err := a.Length()
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(a.FPS), nil
}

// Wait holds the last frame for frames more frames, replacing any delay
// already there. A non-positive count removes the delay.
func (a *Animation) Wait(frames int) error {
	last, err := a.LastID()
	if err != nil {
		return err
	}
	a.WaitAt(last, frames)
	return nil
}

// WaitAt sets the delay at frame.
func (a *Animation) WaitAt(frame, frames int) {
	if a.Delays == nil {
		a.Delays = map[int]int{}
	}
	if frames <= 0 {
		delete(a.Delays, frame)
		return
	}
	a.Delays[frame] = frames
}

// WaitSeconds is Wait with a duration rounded to whole frames.
func (a *Animation) WaitSeconds(s float64) error {
	return a.Wait(int(math.Round(s * float64(a.FPS))))
}

// WaitUntil extends the hold on the last frame by target minus the last
// index, adding to any delay already there. It fails when target comes
// before the last frame or the last frame is already paused indefinitely.
func (a *Animation) WaitUntil(target int) error {
	last, err := a.LastID()
	if err != nil {
		return err
	}
	if target < last {
		return errs.New(errs.ErrTimelineRange, "cannot wait until frame %d before the last frame %d", target, last).AtFrame(target)
	}
	cur := a.Delays[last]
	if cur == Forever {
		return errs.New(errs.ErrTimelineRange, "last frame is paused indefinitely").AtFrame(last)
	}
	a.WaitAt(last, cur+target-last)
	return nil
}

// Pause holds the last frame indefinitely.
func (a *Animation) Pause() error {
	last, err := a.LastID()
	if err != nil {
		return err
	}
	a.PauseAt(last)
	return nil
}

// PauseAt holds frame indefinitely.
func (a *Animation) PauseAt(frame int) {
	a.WaitAt(frame, Forever)
}

// Finitize replaces every infinite delay with frames. A non-positive count
// drops them.
func (a *Animation) Finitize(frames int) {
	for f, d := range a.Delays {
		if d != Forever {
			continue
		}
		a.WaitAt(f, frames)
	}
}

// TimelineCoord maps seconds of playback since the first frame to a frame
// coordinate. Time spent inside a delay window resolves to the held frame.
func (a *Animation) TimelineCoord(seconds float64) (float64, error) {
	if seconds < 0 {
		return 0, errs.New(errs.ErrTimelineRange, "negative time %g", seconds)
	}
	first, err := a.FirstID()
	if err != nil {
		return 0, err
	}
	remaining := seconds * float64(a.FPS)
	pos := first
	for _, f := range a.delayFrames() {
		if f < first {
			continue
		}
		step := float64(f - pos)
		if remaining <= step {
			return float64(pos) + remaining, nil
		}
		remaining -= step
		pos = f
		d := a.Delays[f]
		if d == Forever || remaining <= float64(d) {
			return float64(f), nil
		}
		remaining -= float64(d)
	}
	return float64(pos) + remaining, nil
}

// SpeedUp rescales every layer about global frame center along with the
// delay map. Nothing changes if any actor would merge keyframes.
func (a *Animation) SpeedUp(factor, center float64) error {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return errs.New(errs.ErrStructural, "invalid speed factor %g", factor)
	}
	if err := layer.SpeedUpAll(a.Layers, factor, center); err != nil {
		return err
	}
	a.Delays = resampleDelays(a.Delays, factor, center)
	for _, p := range []*int{a.FirstOverride, a.LastOverride} {
		if p != nil {
			*p = actor.ScaleIndex(*p, factor, center)
		}
	}
	return nil
}

// SlowDown is SpeedUp by 1/factor.
func (a *Animation) SlowDown(factor, center float64) error {
	if factor <= 0 {
		return errs.New(errs.ErrStructural, "invalid slow-down factor %g", factor)
	}
	return a.SpeedUp(1/factor, center)
}

// NewFrameRate resamples the timeline so real-time playback is unchanged at
// fps frames per second.
func (a *Animation) NewFrameRate(fps int) error {
	if fps <= 0 {
		return errs.New(errs.ErrStructural, "invalid frame rate %d", fps)
	}
	if fps == a.FPS {
		return nil
	}
	if err := a.SpeedUp(float64(a.FPS)/float64(fps), 0); err != nil {
		return err
	}
	log.Debug().Str("animation", a.name).Int("from", a.FPS).Int("to", fps).Msg("frame rate changed")
	a.FPS = fps
	return nil
}

// resampleDelays moves and scales every delay under a speed change. Rounding
// drift is carried across entries in frame order and corrected by one frame
// once it passes half a frame. Entries that round to zero are dropped and
// entries landing on the same frame add up.
func resampleDelays(delays map[int]int, factor, center float64) map[int]int {
	keys := make([]int, 0, len(delays))
	for f := range delays {
		keys = append(keys, f)
	}
	sort.Ints(keys)
	out := make(map[int]int, len(delays))
	drift := 0.0
	for _, f := range keys {
		d := delays[f]
		nf := actor.ScaleIndex(f, factor, center)
		if d == Forever {
			out[nf] = Forever
			continue
		}
		exact := float64(d) / factor
		r := math.Round(exact)
		drift += r - exact
		switch {
		case drift > 0.5:
			r--
			drift--
		case drift < -0.5:
			r++
			drift++
		}
		if r <= 0 {
			continue
		}
		out[nf] = addDelay(out[nf], int(r))
	}
	return out
}

// Step is one frame of the playback schedule shown for Hold frames.
type Step struct {
	Frame int
	Hold  int
}

// Schedule lists every frame from first to last with its display count. A
// frame paused indefinitely has Hold == Forever.
func (a *Animation) Schedule() ([]Step, error) {
	first, err := a.FirstID()
	if err != nil {
		return nil, err
	}
	last, err := a.LastID()
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, last-first+1)
	for f := first; f <= last; f++ {
		hold := 1
		if d := a.Delays[f]; d == Forever {
			hold = Forever
		} else {
			hold += d
		}
		steps = append(steps, Step{Frame: f, Hold: hold})
	}
	return steps, nil
}

// Plan is the export schedule. An infinite delay in range fails the
// precheck; Finitize first.
func (a *Animation) Plan() ([]Step, error) {
	steps, err := a.Schedule()
	if err != nil {
		return nil, err
	}
	for _, s := range steps {
		if s.Hold == Forever {
			return nil, errs.New(errs.ErrExportPrecheck, "infinite delay must be finitized before export").AtFrame(s.Frame)
		}
	}
	return steps, nil
}
