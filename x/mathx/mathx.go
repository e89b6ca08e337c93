package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DigitCount returns the number of decimal digits in v (1 for zero).
func DigitCount[T constraints.Unsigned](v T) int {
	n := 1
	for v >= 10 {
		v /= 10
		n++
	}
	return n
}
