package ladder

import "math"

// Solve distributes total across stepCount terms of a geometric progression
// with ratio coefficient, so that the unrounded terms sum to total.
//
// Each emitted term is rounded to decimalPlaces on its own; the next term is
// derived from the unrounded running value, so rounding error never
// compounds from one step to the next.
//
// Solve returns nil outside its domain (stepCount <= 0, coefficient <= 1 or
// a non-finite total). Callers are expected to validate first.
func Solve(total float64, stepCount int, coefficient float64, decimalPlaces int) []float64 {
	terms := series(total, stepCount, coefficient)
	for i, v := range terms {
		terms[i] = Round(v, decimalPlaces)
	}
	return terms
}

// series returns the unrounded terms a, a*c, ..., a*c^(n-1).
func series(total float64, stepCount int, coefficient float64) []float64 {
	if stepCount <= 0 || !(coefficient > 1) || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil
	}

	terms := make([]float64, stepCount)
	current := FirstTerm(total, stepCount, coefficient)

	for i := range terms {
		terms[i] = current
		current *= coefficient
	}

	return terms
}

// FirstTerm returns a = T / ((c^n - 1) / (c - 1)).
func FirstTerm(total float64, stepCount int, coefficient float64) float64 {
	return total / seriesFactor(stepCount, coefficient)
}

// seriesFactor is the sum of c^0..c^(n-1).
func seriesFactor(stepCount int, coefficient float64) float64 {
	return (math.Pow(coefficient, float64(stepCount)) - 1) / (coefficient - 1)
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, decimalPlaces int) float64 {
	multiplier := math.Pow10(decimalPlaces)
	return math.Round(v*multiplier) / multiplier
}
