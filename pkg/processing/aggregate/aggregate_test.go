package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tyrelab/tyredeg/pkg/model"
)

func row(age int, correctedZero float64) model.CorrectedLapRow {
	return model.CorrectedLapRow{
		LapRow:            model.LapRow{TyreAge: age},
		CorrectedZero:     correctedZero,
		CorrectedBaseline: correctedZero + 1,
	}
}

func TestByTyreAge(t *testing.T) {
	in := []model.CorrectedLapRow{
		row(3, 95),
		row(2, 90),
		row(2, 92),
	}
	want := []model.AggregatePoint{
		{TyreAge: 2, MeanTime: 91, Count: 2},
		{TyreAge: 3, MeanTime: 95, Count: 1},
	}
	got := ByTyreAge(in, Zero)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByTyreAge() mismatch (-want +got):\n%s", diff)
	}
}

func TestByTyreAge_baselineColumn(t *testing.T) {
	in := []model.CorrectedLapRow{row(2, 90), row(2, 92)}
	got := ByTyreAge(in, Baseline)
	if got[0].MeanTime != 92 {
		t.Errorf("baseline mean = %v, want 92", got[0].MeanTime)
	}
}

func TestByTyreAge_empty(t *testing.T) {
	got := ByTyreAge([]model.CorrectedLapRow{}, nil)
	if len(got) != 0 {
		t.Errorf("expected no aggregate points, got %v", got)
	}
}
