package imaging

import "math"

// Pixel is the set of element types an Image may store.
//
// Integer types carry their natural bit depth (8 or 16). Floating point
// images use the 8-bit value domain [0, 255] for histograms and inversion
// but are stored without clamping, so intermediate filter results keep
// their sign and fractional part.
type Pixel interface {
	uint8 | uint16 | float32 | float64
}

// NaturalDepth returns the bit depth implied by the element type.
func NaturalDepth[T Pixel]() int {
	var zero T
	switch any(zero).(type) {
	case uint16:
		return 16
	default:
		return 8
	}
}

// MaxDepth returns the largest bit depth T can represent exactly. Float
// images may carry a 16-bit domain after conversion from 16-bit samples.
func MaxDepth[T Pixel]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 8
	default:
		return 16
	}
}

// IsFloat reports whether T is a floating point element type.
func IsFloat[T Pixel]() bool {
	var zero T
	switch any(zero).(type) {
	case float32, float64:
		return true
	}
	return false
}

// FromFloat converts v into T. Integer targets are rounded half away from
// zero and clamped into [0, maxValue]; float targets are stored as is.
func FromFloat[T Pixel](v float64, maxValue int) T {
	if IsFloat[T]() {
		return T(v)
	}
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	r := math.Round(v)
	if r >= float64(maxValue) {
		return T(maxValue)
	}
	return T(r)
}

// Bucket maps a pixel value to a histogram bucket in [0, domain).
// Float values are truncated toward zero; everything is clamped.
func Bucket[T Pixel](v T, domain int) int {
	f := float64(v)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	b := int(f)
	if b >= domain {
		return domain - 1
	}
	return b
}
