package common

import (
	"math"
	"unsafe"

	"golang.org/x/image/math/f32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Clamp constrains v to the inclusive range [lo, hi].
//
// Parameters:
//   - v: the value to constrain
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: v clamped into [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Saturate constrains v to the inclusive range [0, 1].
//
// Parameters:
//   - v: the value to constrain
//
// Returns:
//   - float32: v clamped into [0, 1]
func Saturate(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Lerp linearly interpolates between a and b by t. t is not clamped.
//
// Parameters:
//   - a: start value (t = 0)
//   - b: end value (t = 1)
//   - t: interpolation factor
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// SmoothStep performs Hermite interpolation between 0 and 1 as v moves across
// the [edge0, edge1] range. Matches the WGSL smoothstep builtin so CPU-side
// fade curves agree with their shader counterparts.
//
// Parameters:
//   - edge0: lower edge of the transition
//   - edge1: upper edge of the transition
//   - v: the input value
//
// Returns:
//   - float32: 0 below edge0, 1 above edge1, smooth in between
func SmoothStep(edge0, edge1, v float32) float32 {
	t := Saturate((v - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Length2 returns the Euclidean length of a 2D vector.
//
// Parameters:
//   - v: the vector
//
// Returns:
//   - float32: the length of v
func Length2(v f32.Vec2) float32 {
	return float32(math.Hypot(float64(v[0]), float64(v[1])))
}

// Sub2 returns a - b component-wise.
func Sub2(a, b f32.Vec2) f32.Vec2 {
	return f32.Vec2{a[0] - b[0], a[1] - b[1]}
}

// Add2 returns a + b component-wise.
func Add2(a, b f32.Vec2) f32.Vec2 {
	return f32.Vec2{a[0] + b[0], a[1] + b[1]}
}

// Scale2 returns v scaled by s.
func Scale2(v f32.Vec2, s float32) f32.Vec2 {
	return f32.Vec2{v[0] * s, v[1] * s}
}

// Normalize2 returns v scaled to unit length. The zero vector is returned unchanged.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - f32.Vec2: a unit-length vector in the direction of v, or the zero vector
func Normalize2(v f32.Vec2) f32.Vec2 {
	l := Length2(v)
	if l == 0 {
		return v
	}
	return Scale2(v, 1/l)
}

// Perp2 returns the counter-clockwise perpendicular of v. Used for tangential
// (orbital) force directions around an attraction point.
func Perp2(v f32.Vec2) f32.Vec2 {
	return f32.Vec2{-v[1], v[0]}
}
