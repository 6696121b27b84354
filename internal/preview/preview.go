package preview

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/scene2video/internal/animation"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/system"
)

// Options configures Play.
type Options struct {
	Scale  float64
	Loop   bool
	HUD    bool
	Title  string
	Reload ReloadFunc
	// Watch lists files or directories whose scenario changes trigger Reload.
	Watch []string
}

var keys = map[ebiten.Key]Command{
	ebiten.KeySpace:      TogglePause,
	ebiten.KeyArrowRight: Next,
	ebiten.KeyArrowLeft:  Prev,
	ebiten.KeyHome:       Restart,
	ebiten.KeyR:          Reload,
	ebiten.KeyQ:          Quit,
	ebiten.KeyEscape:     Quit,
}

type game struct {
	player  *Player
	changes <-chan string
	frame   *ebiten.Image
	fresh   bool
	hud     bool
}

func (g *game) Update() error {
	select {
	case path, ok := <-g.changes:
		if ok {
			log.Debug().Str("path", path).Msg("scenario changed")
			_ = g.player.Reload()
		}
	default:
	}

	for key, cmd := range keys {
		if inpututil.IsKeyJustPressed(key) {
			if err := g.player.Apply(cmd); errors.Is(err, ErrQuit) {
				return ebiten.Termination
			}
		}
	}
	g.player.Tick()

	changed, err := g.player.Render()
	if err != nil {
		return err
	}
	g.fresh = g.fresh || changed
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	img := g.player.Image()
	if g.frame == nil {
		g.frame = ebiten.NewImage(img.Rect.Dx(), img.Rect.Dy())
		g.fresh = true
	}
	if g.fresh {
		g.frame.WritePixels(img.Pix)
		g.fresh = false
	}
	screen.DrawImage(g.frame, nil)
	if g.hud {
		state := ""
		if g.player.Paused() {
			state = "  [paused]"
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Frame: %d    FPS: %.2f%s", g.player.Frame(), ebiten.ActualFPS(), state))
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.player.Image().Rect
	return b.Dx(), b.Dy()
}

// Play opens a window and plays anim at its frame rate until the window is
// closed or Quit is pressed.
func Play(anim *animation.Animation, cfg *config.Config, opts Options) error {
	if cfg == nil {
		cfg = anim.Config()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	stream := cfg.Stream(opts.Scale)
	player, err := NewPlayer(anim, stream.Width, stream.Height, opts.Loop, opts.Reload)
	if err != nil {
		return err
	}
	g := &game{player: player, hud: opts.HUD}

	if len(opts.Watch) > 0 && opts.Reload != nil {
		w, err := system.NewWatcher(opts.Watch, ".yaml", ".yml")
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		defer w.Close()
		g.changes = w.Events
		go func() {
			for err := range w.Errors {
				log.Warn().Err(err).Msg("watcher")
			}
		}()
	}

	title := opts.Title
	if title == "" {
		title = "scene2video"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(stream.Width, stream.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(anim.FPS)

	log.Info().Int("fps", anim.FPS).Int("width", stream.Width).Int("height", stream.Height).Msg("preview started")
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
