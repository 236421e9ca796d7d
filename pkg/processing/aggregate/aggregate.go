package aggregate

import (
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/tyrelab/tyredeg/pkg/model"
)

// Value selects the column to aggregate over.
type Value func(*model.CorrectedLapRow) float64

func Zero(r *model.CorrectedLapRow) float64     { return r.CorrectedZero }
func Baseline(r *model.CorrectedLapRow) float64 { return r.CorrectedBaseline }

// ByTyreAge groups the rows by exact integer tyre age and computes the
// arithmetic mean of the selected column plus the sample count per age.
// The result is sorted by ascending age; ages without rows are absent.
func ByTyreAge(in []model.CorrectedLapRow, value Value) []model.AggregatePoint {
	if value == nil {
		value = Zero
	}
	groups := lo.GroupBy(in, func(r model.CorrectedLapRow) int { return r.TyreAge })
	ret := make([]model.AggregatePoint, 0, len(groups))
	for age, group := range groups {
		values := make([]float64, 0, len(group))
		for i := range group {
			values = append(values, value(&group[i]))
		}
		ret = append(ret, model.AggregatePoint{
			TyreAge:  age,
			MeanTime: stat.Mean(values, nil),
			Count:    len(group),
		})
	}
	slices.SortFunc(ret, func(a, b model.AggregatePoint) int {
		return a.TyreAge - b.TyreAge
	})
	return ret
}
