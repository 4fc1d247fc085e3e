package normalize

import (
	"math"
	"sort"
)

type sampleStats struct {
	min, max, mean, std, median, iqr float64
	percentiles                      map[int]float64
}

// computeStats computes the summary statistics used by Fit: min, max, mean,
// population standard deviation, median, interquartile range, and the
// 5/10/25/50/75/90/95 percentiles.
func computeStats(samples []float64) sampleStats {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / n

	var sumSq float64
	for _, v := range sorted {
		d := v - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / n)

	pcts := map[int]float64{}
	for _, p := range []int{5, 10, 25, 50, 75, 90, 95} {
		pcts[p] = percentileOf(sorted, float64(p))
	}

	return sampleStats{
		min:         sorted[0],
		max:         sorted[len(sorted)-1],
		mean:        mean,
		std:         std,
		median:      pcts[50],
		iqr:         pcts[75] - pcts[25],
		percentiles: pcts,
	}
}

// percentileOf computes the p-th percentile (linear interpolation, the
// default used by numpy.percentile) of an already-sorted slice.
func percentileOf(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := (p / 100.0) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
