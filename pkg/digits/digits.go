// Package digits converts between non-negative integers and fixed-length
// digit sequences in an arbitrary base.
//
// Digit sequences are ordered least-significant first, so index i of a
// sequence is the coefficient of base^i. This matches how rulesets index
// their windows: digit 0 of a rule number is the update value of window 0.
//
//	digits.FromInt(6, 2, 3)         // [0 1 1]
//	digits.ToInt([]int{0, 1, 1}, 2) // 6
package digits

import "math"

// FromInt returns exactly length digits of n in the given base, least
// significant first. Digits above length are dropped without error; callers
// size length to their domain (3 for a window, states^3 for a rule).
// n must be non-negative and base at least 2.
func FromInt(n, base, length int) []int {
	out := make([]int, length)
	for i := range out {
		out[i] = n % base
		n /= base
	}
	return out
}

// ToInt reconstructs the integer sum of d[i]*base^i. Digits are not checked
// against base; the caller guarantees each digit is below it.
func ToInt(d []int, base int) int {
	n := 0
	for i := len(d) - 1; i >= 0; i-- {
		n = n*base + d[i]
	}
	return n
}

// Pow returns base^exp computed exactly. ok is false if the result does not
// fit in an int.
func Pow(base, exp int) (n int, ok bool) {
	n = 1
	for range exp {
		if base != 0 && n > math.MaxInt/base {
			return 0, false
		}
		n *= base
	}
	return n, true
}

// Fits reports whether n can be written with at most length digits in base,
// that is n < base^length. The comparison is exact and never overflows, so
// it is safe for lengths where base^length exceeds the int range.
func Fits(n, base, length int) bool {
	if n < 0 {
		return false
	}
	limit := 1
	for range length {
		// limit*base > n, so every further power is larger still.
		if limit > n/base {
			return true
		}
		limit *= base
	}
	return n < limit
}

// Len returns the number of base digits needed to write n. Zero needs no
// digits.
func Len(n, base int) int {
	l := 0
	for n > 0 {
		n /= base
		l++
	}
	return l
}
