package simulation

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/math/f32"
)

// ScalarRange is a closed interval that spawn parameters are drawn from.
type ScalarRange struct {
	Min, Max float32
}

// Sample draws a uniformly distributed value from the range.
//
// Parameters:
//   - rng: the pool's random source
//
// Returns:
//   - float32: a value in [Min, Max]
func (r ScalarRange) Sample(rng *rand.Rand) float32 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float32()*(r.Max-r.Min)
}

// ColorRange draws spawn colors by blending between two endpoint colors in HSV
// space, which keeps intermediate colors saturated instead of passing through
// muddy RGB midpoints. Alpha interpolates linearly.
type ColorRange struct {
	From, To f32.Vec4
}

// Sample draws a color at a uniformly random blend position between the endpoints.
//
// Parameters:
//   - rng: the pool's random source
//
// Returns:
//   - f32.Vec4: the sampled RGBA color
func (r ColorRange) Sample(rng *rand.Rand) f32.Vec4 {
	return r.At(rng.Float32())
}

// At returns the blended color at position t in [0, 1].
//
// Parameters:
//   - t: blend position, 0 = From, 1 = To
//
// Returns:
//   - f32.Vec4: the blended RGBA color
func (r ColorRange) At(t float32) f32.Vec4 {
	from := colorful.Color{R: float64(r.From[0]), G: float64(r.From[1]), B: float64(r.From[2])}
	to := colorful.Color{R: float64(r.To[0]), G: float64(r.To[1]), B: float64(r.To[2])}
	blended := from.BlendHsv(to, float64(t)).Clamped()
	alpha := r.From[3] + (r.To[3]-r.From[3])*t
	return f32.Vec4{float32(blended.R), float32(blended.G), float32(blended.B), alpha}
}

// Solid returns a ColorRange that always samples the given color.
func Solid(c f32.Vec4) ColorRange {
	return ColorRange{From: c, To: c}
}
