package common

// Coalesce picks the first non-zero value from values, falling back to the
// type's zero value. Staging structs use it to apply defaults for fields the
// caller left unset, e.g. sampler filter modes.
//
// Parameters:
//   - values: candidate values, checked in order
//
// Returns:
//   - T: the first non-zero value, or the zero value when every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
