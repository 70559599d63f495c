package analysis

import "github.com/rotisserie/eris"

// Sentinel errors for the two failure classes of the analysis: input that
// cannot be analyzed, and arithmetic that is undefined for the given group.
// Callers match with errors.Is; the wrapped message carries the lane key.
var (
	// ErrNoChampions is returned when there is nothing to group or a lane
	// arrives empty.
	ErrNoChampions = eris.New("no champions to analyze")

	// ErrGroupEliminated is returned when the outlier filter removes every
	// champion in a lane. Possible for degenerate inputs with fewer than
	// two distinct scores; surfaced rather than producing an empty result.
	ErrGroupEliminated = eris.New("lane fully eliminated by outlier filter")

	// ErrZeroPickRateSpread is returned when a lane's maximum pick rate is
	// zero, leaving the adjustment factor undefined.
	ErrZeroPickRateSpread = eris.New("degenerate lane: zero pick rate spread")

	// ErrNonFiniteSpread is returned when the per-tier spread computes to
	// NaN or Inf, typically from non-finite rates upstream.
	ErrNonFiniteSpread = eris.New("non-finite tier spread")
)
