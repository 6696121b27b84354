package layer

import (
	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/figure"
)

// Draw renders the layer at global frame onto c. A visible mask layer is
// rendered to a second surface and used to clip this one; both surfaces are
// kept between calls and reallocated only when the canvas size changes.
func (l *Layer) Draw(frame int, c canvas.Canvas) error {
	if _, err := l.MaskChain(); err != nil {
		return err
	}
	return l.draw(frame, c)
}

func (l *Layer) draw(frame int, c canvas.Canvas) error {
	if !l.Visible(frame) {
		return nil
	}
	local := frame - l.Offset
	cam, err := l.CameraAt(local)
	if err != nil {
		return err
	}
	if !cam.Visible() {
		return nil
	}
	scene, err := l.Time(local)
	if err != nil {
		return err
	}

	if l.Mask == nil || !l.Mask.Visible(frame) {
		return paint(c, cam, scene.Figures)
	}
	w, h := c.Size()
	l.selfSurf = reuse(c, l.selfSurf, w, h)
	l.maskSurf = reuse(c, l.maskSurf, w, h)
	if err := paint(l.selfSurf, cam, scene.Figures); err != nil {
		return err
	}
	if err := l.Mask.draw(frame, l.maskSurf); err != nil {
		return err
	}
	c.Composite(l.selfSurf, l.maskSurf)
	return nil
}

// reuse returns s cleared, or a fresh surface when s is missing or sized
// differently.
func reuse(c canvas.Canvas, s canvas.Surface, w, h int) canvas.Surface {
	if s != nil {
		if sw, sh := s.Size(); sw == w && sh == h {
			s.Clear(canvas.Transparent)
			return s
		}
	}
	return c.NewSurface(w, h)
}

// paint draws figs in depth order through the camera's view transform, which
// maps the view rectangle onto the device with y pointing up.
func paint(c canvas.Canvas, cam *figure.Camera, figs []figure.Figure) error {
	w, h := c.Size()
	xmin, ymax := cam.View[0], cam.View[3]
	c.Save()
	defer c.Restore()
	c.Scale(float64(w)/cam.Width(), -float64(h)/cam.Height())
	c.Translate(-xmin, -ymax)
	for _, fig := range figure.ByDepth(figs) {
		if err := fig.Draw(cam, c); err != nil {
			return err
		}
	}
	return nil
}
