package model

import "math/bits"

// CheckedMul multiplies two base-unit amounts. ok is false on u64 overflow;
// callers must treat that as fatal to the settlement step, never saturate.
func CheckedMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

// CheckedAdd adds two base-unit amounts with overflow detection.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, false
	}
	return sum, true
}
