package figure

import "github.com/ivlev/scene2video/internal/transition"

// Split prepares the keyfigures around a newly inserted keyframe. beg and fin
// were adjacent; mid is the tween between them at progress tmid. Afterwards
// tweening beg toward mid and mid toward fin retraces the original trajectory.
// Sub-figures of composites are split recursively with their own transitions.
func Split(tmid float64, beg, mid, fin Figure) error {
	if m := MethodOf(beg); m.Split != nil {
		if err := m.Split(tmid, beg, mid, fin); err != nil {
			return err
		}
	}
	cb, ok := beg.(Composite)
	if !ok {
		return nil
	}
	cm, ok1 := mid.(Composite)
	cf, ok2 := fin.(Composite)
	if !ok1 || !ok2 {
		return nil
	}
	bs, ms, fs := cb.Subfigures(), cm.Subfigures(), cf.Subfigures()
	if len(bs) != len(ms) || len(ms) != len(fs) {
		// Padded on the fly; the duplicates carry their source's methods.
		return nil
	}
	for i := range bs {
		p := bs[i].Properties()
		if p.Static {
			continue
		}
		ts := tmid
		if tr := p.Transition; tr != nil {
			ts = tr(tmid)
			p.Transition, ms[i].Properties().Transition = transition.Split(tr, tmid)
		}
		if err := Split(ts, bs[i], ms[i], fs[i]); err != nil {
			return err
		}
	}
	return nil
}
