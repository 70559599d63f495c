package analysis

import (
	"sort"

	"github.com/riftlab/riftrank/internal/model"
)

// adjustmentFactor computes the lane's win rate correction scalar:
// (minWR - maxWR) / (4 * maxPR). The factor is non-positive, so applying it
// subtracts a penalty proportional to pick rate, flattening the extreme
// scores that low-sample champions show. It is computed per lane so the
// correction strength adapts to each lane's own spread.
func adjustmentFactor(group []model.ChampionStats) (float64, error) {
	maxWR := group[0].WinRate
	minWR := group[0].WinRate
	maxPR := group[0].PickRate
	for _, c := range group[1:] {
		if c.WinRate > maxWR {
			maxWR = c.WinRate
		}
		if c.WinRate < minWR {
			minWR = c.WinRate
		}
		if c.PickRate > maxPR {
			maxPR = c.PickRate
		}
	}

	if maxPR == 0 {
		return 0, ErrZeroPickRateSpread
	}
	return (minWR - maxWR) / (4 * maxPR), nil
}

// applyAdjustment wraps each champion in a RatedChampion carrying
// winRate - factor*pickRate. The adjusted score is computed exactly once,
// before sorting and filtering, and never recomputed.
func applyAdjustment(group []model.ChampionStats, factor float64) []model.RatedChampion {
	rated := make([]model.RatedChampion, len(group))
	for i, c := range group {
		rated[i] = model.RatedChampion{
			ChampionStats:   c,
			AdjustedWinRate: c.WinRate - factor*c.PickRate,
		}
	}
	return rated
}

// sortByAdjusted orders champions descending by adjusted win rate. The sort
// is stable so tie-break scenarios reproduce across runs.
func sortByAdjusted(rated []model.RatedChampion) {
	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].AdjustedWinRate > rated[j].AdjustedWinRate
	})
}
