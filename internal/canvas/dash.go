package canvas

// Dash patterns are cyclic on/off length lists. An empty pattern is a solid
// line; an odd-length pattern repeats twice to complete its period, as in SVG.

// EvenDash returns pattern with an even number of entries.
func EvenDash(pattern []float64) []float64 {
	if len(pattern)%2 == 0 {
		return append([]float64(nil), pattern...)
	}
	out := make([]float64, 0, 2*len(pattern))
	out = append(out, pattern...)
	return append(out, pattern...)
}

// SolidDash returns an all-on pattern with the same length and period as like.
func SolidDash(like []float64) []float64 {
	like = EvenDash(like)
	out := make([]float64, len(like))
	for i := 0; i+1 < len(like); i += 2 {
		out[i] = like[i] + like[i+1]
	}
	return out
}

// NormalizeDashes replicates both patterns to the least common multiple of
// their lengths. A missing pattern becomes a solid pattern with the period of
// the other one, so dashing fades in and out instead of popping.
func NormalizeDashes(a, b []float64) ([]float64, []float64) {
	switch {
	case len(a) == 0 && len(b) == 0:
		return nil, nil
	case len(a) == 0:
		b = EvenDash(b)
		return SolidDash(b), b
	case len(b) == 0:
		a = EvenDash(a)
		return a, SolidDash(a)
	}
	a, b = EvenDash(a), EvenDash(b)
	n := lcm(len(a), len(b))
	return repeat(a, n), repeat(b, n)
}

// LerpDash blends two dash patterns. The endpoints return copies of a and b.
func LerpDash(a, b []float64, t float64) []float64 {
	if t <= 0 {
		return append([]float64(nil), a...)
	}
	if t >= 1 {
		return append([]float64(nil), b...)
	}
	a, b = NormalizeDashes(a, b)
	out := make([]float64, len(a))
	for i := range out {
		out[i] = mix(a[i], b[i], t)
	}
	return out
}

func repeat(p []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p[i%len(p)]
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int { return a / gcd(a, b) * b }
