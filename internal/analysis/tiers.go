package analysis

import (
	"math"

	"github.com/riftlab/riftrank/internal/model"
)

// tierParams holds the scalars tier assignment needs for one lane.
type tierParams struct {
	maxInRange float64
	spread     float64
}

// tierSpread derives the per-tier score band from the filtered lane.
// maxInRange is the highest adjusted win rate at or below the upper fence;
// when every survivor sits above the fence, the whole filtered lane is
// treated as in-range. That fallback mirrors the original behavior and lets
// extreme outliers set the top boundary; it is a documented policy, not
// verified statistics. The spread divides the distance down to the lane
// minimum evenly across tierCount lettered tiers.
func tierSpread(filtered []model.RatedChampion, upper float64, tierCount int) (tierParams, error) {
	// filtered is sorted descending, so the first in-range element is the
	// in-range maximum and the last element is the overall minimum.
	maxInRange := filtered[0].AdjustedWinRate
	for _, rc := range filtered {
		if rc.AdjustedWinRate <= upper {
			maxInRange = rc.AdjustedWinRate
			break
		}
	}
	minOverall := filtered[len(filtered)-1].AdjustedWinRate

	spread := (maxInRange - minOverall) / float64(tierCount)
	if math.IsNaN(spread) || math.IsInf(spread, 0) {
		return tierParams{}, ErrNonFiniteSpread
	}
	return tierParams{maxInRange: maxInRange, spread: spread}, nil
}

// assignTiers maps every survivor's adjusted win rate to a tier. Assignment
// is a pure threshold comparison per champion: above the upper fence is S+,
// then each lettered tier claims one spread-wide band below maxInRange.
// Every comparison is strict, so a score exactly on a threshold falls to the
// lower tier.
func assignTiers(filtered []model.RatedChampion, upper float64, p tierParams, tierCount int) {
	for i := range filtered {
		filtered[i].Tier = tierFor(filtered[i].AdjustedWinRate, upper, p, tierCount)
	}
}

func tierFor(score, upper float64, p tierParams, tierCount int) model.Tier {
	if score > upper {
		return model.TierSPlus
	}
	if p.spread == 0 {
		// Zero spread collapses every lettered threshold onto maxInRange:
		// a lone champion, or a lane whose in-range survivors all share one
		// score. The degenerate band maps to the top lettered tier instead
		// of falling through the strict comparisons to the catch-all.
		return model.LetteredTier(0)
	}
	for k := 1; k < tierCount; k++ {
		if score > p.maxInRange-float64(k)*p.spread {
			return model.LetteredTier(k - 1)
		}
	}
	return model.LetteredTier(tierCount - 1)
}
