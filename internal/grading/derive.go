package grading

import (
	"math"
	"strconv"
)

const (
	percentageOffset = 0.75
	percentageScale  = 10
)

// thresholds are evaluated high to low; the first match wins.
var classificationThresholds = []struct {
	min   float64
	label Classification
}{
	{7.5, Distinction},
	{6.0, FirstClass},
	{5.0, SecondClass},
}

// Percentage converts a grade point average to a percentage, clamped at zero.
func Percentage(v float64) float64 {
	return clip((v-percentageOffset)*percentageScale, 0, math.Inf(1))
}

// Classify maps an unrounded CGPA onto its classification label.
func Classify(v float64) Classification {
	for _, t := range classificationThresholds {
		if v >= t.min {
			return t.label
		}
	}
	return NotEligible
}

// Derive bundles a value with its percentage and classification.
func Derive(v float64) AggregateResult {
	return AggregateResult{
		Value:          v,
		Percentage:     Percentage(v),
		Classification: Classify(v),
	}
}

// FormatScore renders a value with two decimals. This is the only place
// results are rounded; callers must not feed its output back into a
// calculation.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
