package skills

import (
	"cmp"
	"slices"
)

// Aggregate turns bucketed peaks into one scalar: peaks <= 0 are dropped,
// the rest are stable-sorted descending and summed with geometric weights
// 1, w, w², ... The input slice is not modified.
//
// NaN peaks are kept (they sort last) so a diverging strain propagates into
// the result instead of being hidden.
func Aggregate(peaks []float64, decayWeight float64) float64 {
	ranked := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		if p <= 0 {
			continue
		}
		ranked = append(ranked, p)
	}

	slices.SortStableFunc(ranked, func(a, b float64) int {
		return cmp.Compare(b, a)
	})

	difficulty := 0.0
	weight := 1.0
	for _, p := range ranked {
		difficulty += p * weight
		weight *= decayWeight
	}
	return difficulty
}
