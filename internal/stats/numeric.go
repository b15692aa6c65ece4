package stats

import (
	"math"
	"slices"
)

// Number is the element type accepted by the numeric helpers.
type Number interface {
	~int | ~float64
}

// Mean returns the arithmetic mean of values, or 0 when empty.
func Mean[T Number](values []T) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

// Variance returns the population variance of values.
// Fewer than two values yield 0.
func Variance[T Number](values []T) float64 {
	if len(values) < 2 {
		return 0
	}
	return varianceAround(values, Mean(values))
}

// StdDev returns the population standard deviation of values.
func StdDev[T Number](values []T) float64 {
	return math.Sqrt(Variance(values))
}

// varianceAround divides the squared deviations from center by len(values).
func varianceAround[T Number](values []T, center float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := float64(v) - center
		sum += d * d
	}
	return sum / float64(len(values))
}

// Median returns the median of values, sorting a copy.
//
// The single-element branch is kept even though the odd-count branch always
// overwrites it; the even-count branch is only reached with a non-empty,
// even-length series.
func Median(values []int) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	var median float64
	switch n {
	case 0:
		median = 0
	case 1:
		median = float64(sorted[0])
	}
	if n%2 != 0 {
		median = float64(sorted[n/2])
	} else if n > 0 {
		median = float64(sorted[n/2-1]+sorted[n/2]) / 2.0
	}
	return median
}

// Mode returns the most frequent value in values when it occurs more than
// once, or -1. Ties go to the value seen first.
func Mode(values []int) int {
	freq := newTally[int]()
	for _, v := range values {
		freq.add(v, 1)
	}

	best, bestCount := -1, 0
	for _, v := range freq.keys {
		if c := freq.counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	if bestCount > 1 {
		return best
	}
	return -1
}
