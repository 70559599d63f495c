package model

// Tier is the discrete classification assigned to a champion based on where
// its adjusted win rate falls relative to lane-specific thresholds. TierSPlus
// is reserved for upper outliers; the lettered tiers below it are spread
// evenly across the in-range score band.
type Tier string

const (
	TierSPlus Tier = "S+"
	TierS     Tier = "S"
	TierA     Tier = "A"
	TierB     Tier = "B"
	TierC     Tier = "C"
	TierD     Tier = "D"
)

// letteredTiers orders the tiers below S+ from best to worst.
var letteredTiers = []Tier{TierS, TierA, TierB, TierC, TierD}

// MaxTierCount is the number of lettered tiers available below S+.
var MaxTierCount = len(letteredTiers)

// LetteredTier returns the i-th tier below S+ (0 = S). It panics on an
// out-of-range index; callers validate tier_count against MaxTierCount
// before analysis starts.
func LetteredTier(i int) Tier {
	return letteredTiers[i]
}

// Better reports whether t ranks strictly above other. Unassigned tiers
// (zero value) rank below everything.
func (t Tier) Better(other Tier) bool {
	return t.rank() > other.rank()
}

func (t Tier) rank() int {
	if t == TierSPlus {
		return MaxTierCount + 1
	}
	for i, lt := range letteredTiers {
		if t == lt {
			return MaxTierCount - i
		}
	}
	return 0
}
