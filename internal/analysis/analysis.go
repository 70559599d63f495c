// Package analysis implements the champion tiering core: per-lane bias
// correction of raw win rates, IQR outlier removal, and adaptive tier
// boundary computation. The whole package is a deterministic in-memory
// transformation; fetching, translation, and output live elsewhere.
package analysis

import (
	"context"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riftlab/riftrank/internal/model"
)

// Analyze runs the full tiering chain for a single lane: adjustment factor,
// adjusted scores, descending sort, IQR fences, lower-outlier removal, tier
// spread, and tier assignment. tierCount is the number of lettered tiers
// below S+ and must be in [2, model.MaxTierCount].
func Analyze(lane model.Lane, group []model.ChampionStats, tierCount int) ([]model.RatedChampion, error) {
	if len(group) == 0 {
		return nil, eris.Wrapf(ErrNoChampions, "analysis: lane %s", lane)
	}
	if tierCount < 2 || tierCount > model.MaxTierCount {
		return nil, eris.Errorf("analysis: tier count %d out of range [2,%d]", tierCount, model.MaxTierCount)
	}

	factor, err := adjustmentFactor(group)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: lane %s", lane)
	}

	rated := applyAdjustment(group, factor)
	sortByAdjusted(rated)

	b := iqrBounds(rated)
	filtered, err := filterLowOutliers(rated, b.lower)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: lane %s", lane)
	}

	params, err := tierSpread(filtered, b.upper, tierCount)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: lane %s", lane)
	}
	assignTiers(filtered, b.upper, params, tierCount)

	zap.L().Debug("analysis: lane complete",
		zap.String("lane", string(lane)),
		zap.Int("champions", len(group)),
		zap.Int("survivors", len(filtered)),
		zap.Float64("adjustment_factor", factor),
		zap.Float64("lower_bound", b.lower),
		zap.Float64("upper_bound", b.upper),
		zap.Float64("spread_per_tier", params.spread),
	)
	return filtered, nil
}

// Run groups champions by lane and analyzes every lane. Lanes are fully
// independent after grouping, so each one runs on its own goroutine; the
// first failing lane aborts the batch. The output is flattened in fixed lane
// order, each lane internally descending by adjusted win rate.
func Run(ctx context.Context, stats []model.ChampionStats, tierCount int) ([]model.RatedChampion, error) {
	groups, err := GroupByLane(stats)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[model.Lane][]model.RatedChampion, len(groups))

	g, gCtx := errgroup.WithContext(ctx)
	for lane, group := range groups {
		g.Go(func() error {
			// Cancellation applies per lane, never mid-formula.
			if err := gCtx.Err(); err != nil {
				return err
			}
			rated, err := Analyze(lane, group, tierCount)
			if err != nil {
				return err
			}
			mu.Lock()
			results[lane] = rated
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return flatten(results), nil
}

// RunPartial analyzes every lane like Run but isolates failures: lanes that
// succeed are returned alongside a per-lane error map for those that did
// not. Intended for integrators who prefer partial results over aborting
// the batch.
func RunPartial(ctx context.Context, stats []model.ChampionStats, tierCount int) ([]model.RatedChampion, map[model.Lane]error, error) {
	groups, err := GroupByLane(stats)
	if err != nil {
		return nil, nil, err
	}

	var mu sync.Mutex
	results := make(map[model.Lane][]model.RatedChampion, len(groups))
	failures := make(map[model.Lane]error)

	g, gCtx := errgroup.WithContext(ctx)
	for lane, group := range groups {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rated, err := Analyze(lane, group, tierCount)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[lane] = err
				return nil
			}
			results[lane] = rated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for lane, laneErr := range failures {
		zap.L().Warn("analysis: lane failed",
			zap.String("lane", string(lane)),
			zap.Error(laneErr),
		)
	}
	return flatten(results), failures, nil
}

// flatten concatenates per-lane results in fixed lane order so the same
// input always yields the same output ordering. Lanes outside the known set
// are appended afterwards in sorted order.
func flatten(results map[model.Lane][]model.RatedChampion) []model.RatedChampion {
	var out []model.RatedChampion
	seen := make(map[model.Lane]bool, len(model.Lanes))
	for _, lane := range model.Lanes {
		out = append(out, results[lane]...)
		seen[lane] = true
	}

	var extra []model.Lane
	for lane := range results {
		if !seen[lane] {
			extra = append(extra, lane)
		}
	}
	slices.Sort(extra)
	for _, lane := range extra {
		out = append(out, results[lane]...)
	}
	return out
}
