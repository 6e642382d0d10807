package util

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Epsilon is the tolerance used when comparing beat lengths.
const Epsilon = 1e-6

func Clamp[A constraints.Ordered](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Min[A constraints.Ordered](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

// Round rounds v to the nearest multiple of step.
func Round(v, step float64) float64 {
	return math.Round(v/step) * step
}

func Near(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

func NearWithin(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}
