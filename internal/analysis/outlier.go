package analysis

import (
	"math"
	"sort"

	"github.com/riftlab/riftrank/internal/model"
)

// bounds holds the IQR fences for one lane's adjusted win rate distribution.
type bounds struct {
	lower float64
	upper float64
}

// quantile computes the p-quantile of ascending-sorted values using midpoint
// interpolation: for rank (n-1)*p, a fractional rank averages the two
// bracketing values, an integral rank takes that value exactly.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	rank := float64(n-1) * p
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return (sorted[lo] + sorted[hi]) / 2
}

// iqrBounds computes Q1/Q3 of the adjusted win rates and returns the
// 1.5*IQR fences. With a single champion the fences collapse to its own
// score, which is an edge case rather than an error: the lone champion is
// never below its own lower bound.
func iqrBounds(rated []model.RatedChampion) bounds {
	scores := make([]float64, len(rated))
	for i, rc := range rated {
		scores[i] = rc.AdjustedWinRate
	}
	sort.Float64s(scores)

	q1 := quantile(scores, 0.25)
	q3 := quantile(scores, 0.75)
	iqr := q3 - q1
	return bounds{
		lower: q1 - 1.5*iqr,
		upper: q3 + 1.5*iqr,
	}
}

// filterLowOutliers drops champions strictly below the lower fence,
// preserving relative order. Champions above the upper fence are retained:
// they become S+ candidates during tier assignment, not discards.
func filterLowOutliers(rated []model.RatedChampion, lower float64) ([]model.RatedChampion, error) {
	kept := rated[:0:len(rated)]
	for _, rc := range rated {
		if rc.AdjustedWinRate >= lower {
			kept = append(kept, rc)
		}
	}

	if len(kept) == 0 {
		return nil, ErrGroupEliminated
	}
	return kept, nil
}
