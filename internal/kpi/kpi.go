// Package kpi holds the derived-metric arithmetic the dashboard shows:
// percentages and order-preserving groupings over snapshot slices. Nothing
// here caches; every call recomputes from its input.
package kpi

import (
	"math"
	"strconv"

	"github.com/complyhub/complyhub/internal/domain"
)

// Percentage returns value/total*100 rounded to decimals places. A zero
// total yields 0.
func Percentage(value, total float64, decimals int) float64 {
	if total == 0 {
		return 0
	}
	return Round(value/total*100, decimals)
}

// Round rounds x half away from zero to decimals places.
func Round(x float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// FormatNumber prints f with the shortest representation, so 97.3 stays
// "97.3" and 95.0 becomes "95".
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Accuracy is the share of valid records, one decimal.
func Accuracy(v domain.ValidationSummary) float64 {
	return Percentage(float64(v.ValidRecords), float64(v.TotalRecords), 1)
}

// ScorePercent renders a [0,1] score as a whole percentage, e.g. 0.89 -> "89%".
func ScorePercent(score float64) string {
	return strconv.FormatFloat(Round(score*100, 0), 'f', 0, 64) + "%"
}

// Mean returns the arithmetic mean of vs rounded to decimals places, or 0
// for an empty slice.
func Mean(vs []float64, decimals int) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return Round(sum/float64(len(vs)), decimals)
}
