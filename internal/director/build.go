package director

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/scene2video/internal/actor"
	"github.com/ivlev/scene2video/internal/analyzer"
	"github.com/ivlev/scene2video/internal/animation"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/effects"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/figure"
	"github.com/ivlev/scene2video/internal/layer"
	"github.com/ivlev/scene2video/internal/renderer"
	"github.com/ivlev/scene2video/internal/shape"
	"github.com/ivlev/scene2video/internal/source"
	"github.com/ivlev/scene2video/internal/transition"
)

type builder struct {
	dir    string
	cfg    *config.Config
	layers map[string]*layer.Layer
}

// Build turns sc into an animation. cfg supplies whatever the scenario
// leaves out and is not modified; nil means config.Default. Relative picture
// sources resolve against dir.
func Build(sc *Scenario, dir string, cfg *config.Config) (*animation.Animation, error) {
	if sc.Version != "" && !strings.HasPrefix(sc.Version, "1") {
		return nil, fmt.Errorf("unsupported scenario version %q", sc.Version)
	}
	c, err := scenarioConfig(sc, cfg)
	if err != nil {
		return nil, err
	}
	b := &builder{dir: dir, cfg: c, layers: map[string]*layer.Layer{}}

	for _, spec := range sc.Masks {
		if _, err := b.layer(spec); err != nil {
			return nil, err
		}
	}
	a := animation.New(animation.WithConfig(c))
	for _, spec := range sc.Layers {
		l, err := b.layer(spec)
		if err != nil {
			return nil, err
		}
		a.AddLayer(l)
	}
	for _, spec := range append(append([]Layer(nil), sc.Masks...), sc.Layers...) {
		if spec.Mask == "" {
			continue
		}
		m, ok := b.layers[spec.Mask]
		if !ok {
			return nil, errs.New(errs.ErrStructural, "unknown mask %q", spec.Mask).InLayer(spec.Name)
		}
		b.layers[spec.Name].Mask = m
	}

	for _, d := range sc.Delays {
		if d.Forever {
			a.PauseAt(d.Frame)
			continue
		}
		a.WaitAt(d.Frame, d.Frames+b.frames(d.Seconds))
	}

	log.Debug().Int("layers", len(a.Layers)).Int("masks", len(sc.Masks)).Int("fps", a.FPS).Msg("scenario built")
	return a, nil
}

func scenarioConfig(sc *Scenario, base *config.Config) (*config.Config, error) {
	if base == nil {
		base = config.Default()
	}
	c := *base
	if sc.FPS > 0 {
		c.FPS = sc.FPS
	}
	if sc.Width > 0 {
		c.Width = sc.Width
	}
	if sc.Height > 0 {
		c.Height = sc.Height
	}
	if sc.Background != "" {
		c.Background = sc.Background
	}
	if sc.Transition != "" {
		c.DefaultTransition = sc.Transition
	}
	if err := c.Finalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (b *builder) frames(seconds float64) int {
	return int(math.Round(seconds * float64(b.cfg.FPS)))
}

func (b *builder) layer(spec Layer) (*layer.Layer, error) {
	if _, dup := b.layers[spec.Name]; dup {
		return nil, errs.New(errs.ErrStructural, "duplicate layer name").InLayer(spec.Name)
	}
	l := layer.New(layer.WithName(spec.Name), layer.WithConfig(b.cfg))
	l.Offset = spec.Offset
	l.Hidden = spec.Hidden
	if spec.Start != nil {
		l.Start = *spec.Start
	}
	if spec.End != nil {
		l.End = *spec.End
	}

	for _, as := range spec.Actors {
		a, err := b.actor(as)
		if err != nil {
			return nil, errs.Locate(fmt.Errorf("layer %q: %w", spec.Name, err), spec.Name, as.Name)
		}
		l.Add(a)
	}
	if err := b.keys(l.Camera, spec.Camera); err != nil {
		return nil, errs.Locate(fmt.Errorf("layer %q camera: %w", spec.Name, err), spec.Name, "camera")
	}
	if spec.Tour != nil {
		if err := b.tour(l, spec.Tour); err != nil {
			return nil, errs.Locate(fmt.Errorf("layer %q tour: %w", spec.Name, err), spec.Name, "camera")
		}
	}
	if err := b.effects(l.Camera, spec.Effects); err != nil {
		return nil, errs.Locate(fmt.Errorf("layer %q camera: %w", spec.Name, err), spec.Name, "camera")
	}
	b.layers[spec.Name] = l
	return l, nil
}

func (b *builder) actor(spec Actor) (*actor.Actor, error) {
	fig, err := b.shape(spec.Shape)
	if err != nil {
		return nil, fmt.Errorf("actor %q: %w", spec.Name, err)
	}
	a := actor.New(fig, actor.WithName(spec.Name), actor.WithConfig(b.cfg))
	a.Hidden = spec.Hidden
	if err := b.keys(a, spec.Keys); err != nil {
		return nil, fmt.Errorf("actor %q: %w", spec.Name, err)
	}
	if err := b.effects(a, spec.Effects); err != nil {
		return nil, fmt.Errorf("actor %q: %w", spec.Name, err)
	}
	return a, nil
}

func nodes(pts []Point) []complex128 {
	out := make([]complex128, len(pts))
	for i, p := range pts {
		out[i] = p.complex()
	}
	return out
}

func (b *builder) shape(s Shape) (figure.Figure, error) {
	var f figure.Figure
	switch s.Type {
	case "rect":
		f = shape.Rect(s.A.complex(), s.B.complex())
	case "polygon":
		f = shape.Polygon(nodes(s.Nodes)...)
	case "path":
		p := shape.NewPath(nodes(s.Nodes)...)
		p.Closed = s.Closed
		f = p
	case "spline":
		sp := shape.NewSpline(nodes(s.Nodes)...)
		sp.Closed = s.Closed
		f = sp
	case "circle":
		f = shape.Circle(s.Pos.complex(), s.Radius)
	case "regular":
		if s.Sides < 3 {
			return nil, fmt.Errorf("regular polygon needs at least 3 sides, got %d", s.Sides)
		}
		f = shape.RegularPolygon(s.Pos.complex(), s.Radius, s.Sides, s.Phase)
	case "point":
		f = shape.NewPoint(s.Pos.complex(), orDefault(s.Radius, 1))
	case "space-point":
		f = shape.NewSpacePoint(mgl64.Vec3(s.Pos3), orDefault(s.Radius, 1))
	case "text":
		f = shape.NewText(s.Text, s.Pos.complex(), orDefault(s.Size, b.cfg.FontSize))
	case "glyphs":
		f = shape.Glyphs(s.Text, s.Pos.complex(), orDefault(s.Size, b.cfg.FontSize), renderer.New(1, 1))
	case "qrcode":
		qr, err := shape.QRCode(s.Content, s.Pos.complex(), orDefault(s.Module, 4))
		if err != nil {
			return nil, err
		}
		f = qr
	case "picture":
		p, err := b.picture(s)
		if err != nil {
			return nil, err
		}
		f = p
	default:
		return nil, fmt.Errorf("unknown shape type %q", s.Type)
	}
	props := f.Properties()
	props.Z = s.Z
	props.Static = s.Static
	if err := assign(f, s.Set); err != nil {
		return nil, err
	}
	return f, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func (b *builder) picture(s Shape) (*shape.Picture, error) {
	path := s.Source
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.dir, path)
	}
	src, err := source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("picture source: %w", err)
	}
	defer src.Close()
	dpi := s.DPI
	if dpi <= 0 {
		dpi = 72
	}
	return shape.PictureFromSource(src, s.Page, dpi, s.Pos.complex(), orDefault(s.Width, float64(b.cfg.Width)))
}

// keys applies keys in order. A key at a new frame starts from a copy of the
// keyfigure before it.
func (b *builder) keys(a *actor.Actor, keys []Key) error {
	for _, k := range keys {
		idx := k.Frame
		if k.Time != nil {
			idx = b.frames(*k.Time)
		}
		fig, exists := a.Keyfigure(idx)
		var err error
		if exists {
			fig = fig.Copy()
		} else if fig, err = a.NewKeyframe(idx, nil); err != nil {
			return err
		}
		if err := assign(fig, k.Set); err != nil {
			return errs.Locate(err, "", a.Name())
		}
		if err := setTiming(fig, k); err != nil {
			return err
		}
		if exists {
			if err := a.Replace(idx, fig); err != nil {
				return err
			}
		} else {
			a.ClearCache()
		}
	}
	return nil
}

func setTiming(fig figure.Figure, k Key) error {
	p := fig.Properties()
	p.Delay = k.Delay
	if k.Forever {
		p.Delay = figure.Forever
	}
	p.Transition = nil
	if k.Transition != "" {
		tr, err := transition.Named(k.Transition)
		if err != nil {
			return err
		}
		p.Transition = tr
	}
	p.Method = nil
	if k.Method != "" {
		m, err := figure.MethodNamed(k.Method, k.Angle)
		if err != nil {
			return err
		}
		p.Method = m
	}
	return nil
}

func (b *builder) effects(a *actor.Actor, list []Effect) error {
	for _, e := range list {
		eff, err := effects.NewEffect(e.Type, effects.Params{
			Delta: e.Delta.complex(),
			Angle: e.Angle,
			Mode:  e.Mode,
			Peak:  e.Peak,
			Outro: e.Outro,
			Seed:  e.Seed,
			Lag:   e.Lag,
			Inner: e.Inner,
		})
		if err != nil {
			return err
		}
		if err := eff.Apply(a, e.At, e.Duration); err != nil {
			return fmt.Errorf("effect %s: %w", e.Type, err)
		}
	}
	return nil
}

// tour moves the layer camera over the regions found in a picture actor.
func (b *builder) tour(l *layer.Layer, t *Tour) error {
	act, ok := l.Actor(t.Picture)
	if !ok {
		return errs.New(errs.ErrStructural, "no actor %q to tour", t.Picture)
	}
	fig, _ := act.Keyfigure(act.FirstID())
	pic, ok := fig.(*shape.Picture)
	if !ok {
		return errs.New(errs.ErrStructural, "actor %q is a %T, not a picture", t.Picture, fig)
	}
	camFig, _ := l.Camera.Keyfigure(l.Camera.FirstID())
	cam, ok := camFig.(*figure.Camera)
	if !ok {
		return errs.New(errs.ErrStructural, "layer camera is a %T", camFig)
	}

	det, err := analyzer.NewDetector(t.Detector)
	if err != nil {
		return err
	}
	if cd, ok := det.(*analyzer.ContrastDetector); ok && t.MaxRegions > 0 {
		cd.MaxRegions = t.MaxRegions
	}
	regions, err := det.Detect(pic.Image)
	if err != nil {
		return err
	}

	d := NewDirector(cam.Width(), cam.Height())
	full := Rectangle{X: cam.View[0], Y: cam.View[2], W: cam.Width(), H: cam.Height()}
	stops, err := d.GenerateTour(worldRects(regions, pic), full, t.Duration)
	if err != nil {
		return err
	}

	at := make([]int, len(stops))
	for i, s := range stops {
		at[i] = t.At + b.frames(s.Time)
	}
	for i, s := range stops {
		c := cam.Copy().(*figure.Camera)
		c.View = d.View(s)
		c.Delay = 0
		if i > 0 && i < len(stops)-1 {
			// Задерживаемся на регионе половину его слота
			c.Delay = (at[i+1] - at[i]) / 2
		}
		if err := l.Camera.Put(at[i], c); err != nil {
			return err
		}
	}
	log.Debug().Str("layer", l.Name()).Int("regions", len(regions)).Int("frames", at[len(at)-1]-at[0]).Msg("camera tour planned")
	return nil
}

// worldRects maps pixel regions of pic's image into world space.
func worldRects(regions []analyzer.Region, pic *shape.Picture) []Rectangle {
	ib := pic.Image.Bounds()
	sx := pic.Width / float64(ib.Dx())
	sy := pic.Height / float64(ib.Dy())
	out := make([]Rectangle, len(regions))
	for i, r := range regions {
		out[i] = Rectangle{
			X: real(pic.Pos) + float64(r.Rect.Min.X-ib.Min.X)*sx,
			Y: imag(pic.Pos) + pic.Height - float64(r.Rect.Max.Y-ib.Min.Y)*sy,
			W: float64(r.Rect.Dx()) * sx,
			H: float64(r.Rect.Dy()) * sy,
		}
	}
	return out
}
