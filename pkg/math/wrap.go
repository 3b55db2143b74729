package math

import gomath "math"

// Wrap maps v into [lo, hi) by repeating the span. A non-positive span
// collapses to lo.
func Wrap(v, lo, hi float32) float32 {
	span := hi - lo
	if span <= 0 {
		return lo
	}
	r := mod(v-lo, span)
	if r < 0 {
		r += span
	}
	return lo + r
}

// Mirror maps v into [lo, hi] by reflecting at both bounds (ping-pong).
// A non-positive span collapses to lo.
func Mirror(v, lo, hi float32) float32 {
	span := hi - lo
	if span <= 0 {
		return lo
	}
	p := mod(v-lo, 2*span)
	if p < 0 {
		p += 2 * span
	}
	if p <= span {
		return lo + p
	}
	return lo + 2*span - p
}

// Pass returns which span of [lo, hi) v falls in: 0 inside the range, 1 for
// the span above it, -1 for the span below. Under Mirror an odd pass runs
// backwards. A non-positive span is always pass 0.
func Pass(v, lo, hi float32) int {
	span := hi - lo
	if span <= 0 {
		return 0
	}
	return int(gomath.Floor(float64((v - lo) / span)))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
