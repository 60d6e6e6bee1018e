// Package safe provides overflow-checked arithmetic for token amounts.
package safe

import (
	"fmt"
	"math"
)

// Add returns a+b or an error if the sum overflows uint64.
func Add(a, b uint64) (uint64, error) {
	if b > math.MaxUint64-a {
		return 0, fmt.Errorf("sum of %d and %d overflows uint64", a, b)
	}
	return a + b, nil
}

// Mul returns a*b or an error if the product overflows uint64.
func Mul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint64/b {
		return 0, fmt.Errorf("product of %d and %d overflows uint64", a, b)
	}
	return a * b, nil
}

// Uint64 converts signed integers to uint64 while guarding against negatives.
func Uint64[T ~int | ~int32 | ~int64](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range", v)
	}
	return uint64(v), nil
}
