package browser

import (
	"math"
	"math/rand"
	"time"
)

// Typing cadence. A single bulk input event is an automation tell; values
// are typed rune by rune with an irregular rhythm instead.

// gaussianDelay draws from a normal distribution clamped to mean +/- 3
// stddev, never negative.
func gaussianDelay(mean, stddev time.Duration) time.Duration {
	u1, u2 := rand.Float64(), rand.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	d := time.Duration(float64(mean) + z*float64(stddev))
	if lo := mean - 3*stddev; d < lo {
		d = lo
	}
	if hi := mean + 3*stddev; d > hi {
		d = hi
	}
	if d < 0 {
		d = 0
	}
	return d
}

// keystrokeDelay slows down at the start of a field, at punctuation and
// right after a space, the way people actually type.
func keystrokeDelay(prev, cur rune, pos int) time.Duration {
	mean := 25 * time.Millisecond
	switch {
	case pos < 10:
		mean = 40 * time.Millisecond
	case cur == ' ' || cur == ',' || cur == '.':
		mean = 60 * time.Millisecond
	case prev == ' ':
		mean = 35 * time.Millisecond
	}
	return gaussianDelay(mean, 20*time.Millisecond)
}
