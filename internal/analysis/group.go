package analysis

import (
	"github.com/rotisserie/eris"

	"github.com/riftlab/riftrank/internal/model"
)

// GroupByLane partitions champions into per-lane groups. Every input record
// lands in exactly one group, input order within a lane is preserved, and no
// empty groups are emitted. Groups are materialized eagerly so downstream
// stages can make multiple passes over the same slice.
func GroupByLane(stats []model.ChampionStats) (map[model.Lane][]model.ChampionStats, error) {
	if len(stats) == 0 {
		return nil, eris.Wrap(ErrNoChampions, "analysis: group by lane")
	}

	groups := make(map[model.Lane][]model.ChampionStats)
	for _, c := range stats {
		groups[c.Lane] = append(groups[c.Lane], c)
	}
	return groups, nil
}
