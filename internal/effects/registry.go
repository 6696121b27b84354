package effects

import "fmt"

// Params carries the settings of every effect; each variant reads its own.
type Params struct {
	Delta complex128
	Angle float64
	Mode  string
	Peak  float64
	Outro int
	Seed  int64
	Lag   int
	// Inner names the effect Stagger applies.
	Inner string
}

// NewEffect creates an effect based on the specified variant
func NewEffect(variant string, p Params) (Effect, error) {
	switch variant {
	case "fade-in", "fade_in":
		return FadeIn{}, nil
	case "fade-out", "fade_out":
		return FadeOut{}, nil
	case "move":
		return MoveBy{Delta: p.Delta}, nil
	case "turn":
		return Turn{Angle: p.Angle}, nil
	case "zoom":
		return Zoom{Mode: p.Mode, Peak: p.Peak, Outro: p.Outro, Seed: p.Seed}, nil
	case "stagger":
		if p.Inner == "stagger" {
			return nil, fmt.Errorf("stagger cannot nest")
		}
		inner, err := NewEffect(p.Inner, p)
		if err != nil {
			return nil, fmt.Errorf("stagger: %w", err)
		}
		return Stagger{Effect: inner, Lag: p.Lag}, nil
	default:
		return nil, fmt.Errorf("unknown effect variant: %s", variant)
	}
}
