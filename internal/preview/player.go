// Package preview plays an animation in a window, one timeline frame per
// tick, and reloads it when its source changes.
package preview

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scene2video/internal/animation"
	"github.com/ivlev/scene2video/internal/renderer"
)

// Command is a user action on the player.
type Command int

const (
	None Command = iota
	TogglePause
	Next
	Prev
	Restart
	Reload
	Quit
)

// ReloadFunc rebuilds the animation, typically from its scenario file.
type ReloadFunc func() (*animation.Animation, error)

// Player walks the animation's schedule. It is driven by ticks and commands
// and draws into its own RGBA image; the ebiten game only uploads that image.
type Player struct {
	anim   *animation.Animation
	steps  []animation.Step
	idx    int
	shown  int
	paused bool
	loop   bool
	dirty  bool

	img    *image.RGBA
	raster *renderer.Raster
	reload ReloadFunc
}

// NewPlayer checks anim and prepares a w×h player.
func NewPlayer(anim *animation.Animation, w, h int, loop bool, reload ReloadFunc) (*Player, error) {
	p := &Player{loop: loop, reload: reload}
	p.img = image.NewRGBA(image.Rect(0, 0, w, h))
	p.raster = renderer.Wrap(p.img)
	if err := p.load(anim); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Player) load(anim *animation.Animation) error {
	if err := anim.SanityCheck(); err != nil {
		return fmt.Errorf("sanity check: %w", err)
	}
	steps, err := anim.Schedule()
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("animation has no frames")
	}
	anim.ClearCache()

	// Keep showing the same timeline frame when possible.
	idx := 0
	if p.steps != nil {
		cur := p.steps[p.idx].Frame
		for i, s := range steps {
			if s.Frame <= cur {
				idx = i
			}
		}
	}
	p.anim, p.steps, p.idx, p.shown, p.dirty = anim, steps, idx, 0, true
	return nil
}

// Frame is the timeline frame currently shown.
func (p *Player) Frame() int { return p.steps[p.idx].Frame }

// Paused reports whether playback is stopped.
func (p *Player) Paused() bool { return p.paused }

// Image is the last rendered frame.
func (p *Player) Image() *image.RGBA { return p.img }

// Tick advances playback by one frame interval.
func (p *Player) Tick() {
	if p.paused {
		return
	}
	p.shown++
	hold := p.steps[p.idx].Hold
	if hold == animation.Forever || p.shown < hold {
		return
	}
	p.advance()
}

func (p *Player) advance() {
	p.shown = 0
	p.dirty = true
	if p.idx+1 < len(p.steps) {
		p.idx++
		return
	}
	if p.loop {
		p.idx = 0
		return
	}
	p.paused = true
}

// ErrQuit is returned by Apply for Quit.
var ErrQuit = errors.New("quit")

// Apply runs a command. A failed reload is logged and not returned.
func (p *Player) Apply(cmd Command) error {
	switch cmd {
	case TogglePause:
		// Resuming on an infinite pause moves past it.
		if !p.paused && p.steps[p.idx].Hold == animation.Forever {
			p.advance()
			return nil
		}
		p.paused = !p.paused
	case Next:
		p.paused = true
		if p.idx+1 < len(p.steps) {
			p.idx++
			p.shown, p.dirty = 0, true
		}
	case Prev:
		p.paused = true
		if p.idx > 0 {
			p.idx--
			p.shown, p.dirty = 0, true
		}
	case Restart:
		p.idx, p.shown, p.paused, p.dirty = 0, 0, false, true
	case Reload:
		_ = p.Reload()
	case Quit:
		return ErrQuit
	}
	return nil
}

// Reload rebuilds the animation. On failure the current one stays.
func (p *Player) Reload() error {
	if p.reload == nil {
		return nil
	}
	anim, err := p.reload()
	if err == nil {
		err = p.load(anim)
	}
	if err != nil {
		log.Warn().Err(err).Msg("reload failed, keeping previous animation")
		return err
	}
	log.Info().Int("frame", p.Frame()).Msg("animation reloaded")
	return nil
}

// Render draws the current frame if it changed and reports whether it did.
func (p *Player) Render() (bool, error) {
	if !p.dirty {
		return false, nil
	}
	p.raster.Reset(p.img)
	if err := p.anim.Draw(p.Frame(), p.raster); err != nil {
		return false, err
	}
	p.dirty = false
	return true, nil
}
