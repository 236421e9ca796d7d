package fuel

import (
	"sort"

	"github.com/tyrelab/tyredeg/pkg/config"
	"github.com/tyrelab/tyredeg/pkg/model"
)

// Correct applies the fuel burn-off estimate to every row. The true fuel
// load is unobservable, so the starting load is assumed to be the stint
// length plus a fixed margin, in lap-equivalents. Lap time improves
// linearly as fuel burns off and the penalty reaches zero at the point
// the fuel is assumed exhausted.
//
// Both correction variants are computed: CorrectedZero removes the full
// remaining-fuel penalty, CorrectedBaseline normalizes against the median
// starting fuel load across all rows so stints of different lengths yield
// comparable values.
func Correct(in []model.LapRow, params config.Parameters) []model.CorrectedLapRow {
	if len(in) == 0 {
		return []model.CorrectedLapRow{}
	}
	startFuels := make([]int, 0, len(in))
	for i := range in {
		startFuels = append(startFuels, in[i].StintLength+params.FuelMarginLaps)
	}
	baselineStart := medianInt(startFuels)

	ret := make([]model.CorrectedLapRow, 0, len(in))
	for i := range in {
		r := in[i]
		startFuel := r.StintLength + params.FuelMarginLaps
		remaining := max(0, startFuel-r.LapsDone())
		penalty := float64(remaining) * params.FuelSecondsPerLap

		baselineRemaining := max(0, baselineStart-r.LapsDone())
		baselinePenalty := float64(baselineRemaining) * params.FuelSecondsPerLap

		ret = append(ret, model.CorrectedLapRow{
			LapRow:            r,
			StartFuelLaps:     startFuel,
			RemainingFuelLaps: remaining,
			PenaltySeconds:    penalty,
			CorrectedZero:     r.LapTime - penalty,
			CorrectedBaseline: r.LapTime - (penalty - baselinePenalty),
		})
	}
	return ret
}

// median of the assumed starting fuel loads, truncated to whole laps
func medianInt(xs []int) int {
	sorted := make([]int, len(xs))
	copy(sorted, xs)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return int((float64(sorted[mid-1]) + float64(sorted[mid])) / 2)
}
