package model

import "time"

// Lane is the map position a champion's statistics were recorded for.
// All tiering math runs independently per lane.
type Lane string

const (
	LaneTop     Lane = "Top"
	LaneJungle  Lane = "Jungle"
	LaneMid     Lane = "Mid"
	LaneDuo     Lane = "Duo"
	LaneSupport Lane = "Support"
)

// Lanes lists all lanes in display order.
var Lanes = []Lane{LaneTop, LaneJungle, LaneMid, LaneDuo, LaneSupport}

// Valid reports whether l is a known lane.
func (l Lane) Valid() bool {
	for _, known := range Lanes {
		if l == known {
			return true
		}
	}
	return false
}

// Bracket is the rank segment a stats page was sampled from. Brackets are
// orthogonal to the computed skill tier: each bracket is fetched and
// analyzed as a separate dataset.
type Bracket string

const (
	BracketDiamond    Bracket = "Diamond"
	BracketMaster     Bracket = "Master"
	BracketChallenger Bracket = "Challenger"
	BracketLegendary  Bracket = "Legendary"
)

// Brackets lists all rank brackets in ascending rank order.
var Brackets = []Bracket{BracketDiamond, BracketMaster, BracketChallenger, BracketLegendary}

// Valid reports whether b is a known bracket.
func (b Bracket) Valid() bool {
	for _, known := range Brackets {
		if b == known {
			return true
		}
	}
	return false
}

// ChampionStats is one champion's raw performance measurements in a single
// lane, as produced by the fetcher. All rates are fractions in [0,1].
// The analysis never mutates a ChampionStats; computed values live on
// RatedChampion.
type ChampionStats struct {
	Lane     Lane    `json:"lane"`
	Name     string  `json:"name"`
	WinRate  float64 `json:"win_rate"`
	PickRate float64 `json:"pick_rate"`
	BanRate  float64 `json:"ban_rate"`
}

// RatedChampion pairs a champion's raw stats with the analysis results.
// Tier is the zero value until assignment completes; a finished pipeline
// never returns an unassigned RatedChampion.
type RatedChampion struct {
	ChampionStats
	AdjustedWinRate float64 `json:"adjusted_win_rate"`
	Tier            Tier    `json:"tier"`
}

// RunStatus is the lifecycle state of an analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one invocation of the analysis pipeline.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	TierCount int       `json:"tier_count"`
	Status    RunStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is the persisted result set for one bracket within a run.
type Snapshot struct {
	ID        string          `json:"id"`
	RunID     string          `json:"run_id"`
	Bracket   Bracket         `json:"bracket"`
	Champions []RatedChampion `json:"champions"`
	CreatedAt time.Time       `json:"created_at"`
}
