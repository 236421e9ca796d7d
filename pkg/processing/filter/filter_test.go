//nolint:funlen // ok for tests
package filter

import (
	"testing"

	"github.com/tyrelab/tyredeg/pkg/config"
	"github.com/tyrelab/tyredeg/pkg/model"
)

func row(lapNumber int, lapTime float64) model.LapRow {
	return model.LapRow{
		LapTime:     lapTime,
		Driver:      1,
		SessionKey:  9222,
		LapNumber:   lapNumber,
		StintStart:  10,
		StintEnd:    30,
		StintLength: 20,
		StintNumber: 1,
		TyreAge:     lapNumber - 10,
	}
}

func corrected(age int, correctedZero, lapTime float64) model.CorrectedLapRow {
	return model.CorrectedLapRow{
		LapRow:        model.LapRow{LapTime: lapTime, TyreAge: age},
		CorrectedZero: correctedZero,
	}
}

func lapTimes(rows []model.LapRow) []float64 {
	ret := make([]float64, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.LapTime)
	}
	return ret
}

func TestChain_PushLapFilter(t *testing.T) {
	tests := []struct {
		name string
		in   []model.LapRow
		want []float64
	}{
		{
			// median of [90,91,89,150] is 90.5; cutoff 89.0; nothing
			// here is fast enough to be a push lap, the slow outlier
			// is left for the anomaly filter
			name: "slow outlier survives the push lap filter",
			in: []model.LapRow{
				row(11, 90), row(12, 91), row(13, 89), row(14, 150),
			},
			want: []float64{90, 91, 89, 150},
		},
		{
			// median of [95,95.2,95.1,90] is 95.05; the lap at 90 is
			// below 93.55 and dropped as a push lap
			name: "push lap dropped",
			in: []model.LapRow{
				row(11, 95), row(12, 95.2), row(13, 95.1), row(14, 90),
			},
			want: []float64{95, 95.2, 95.1},
		},
		{
			// median of [92,90.5,93,94] is 92.5;
			// 92.5-1.5 == 91.0... the row at 90.5 is below and dropped
			name: "boundary lap is retained",
			in: []model.LapRow{
				row(11, 92), row(12, 91.0), row(13, 93), row(14, 94),
			},
			// median
			want: []float64{92, 91.0, 93, 94},
		},
		{
			name: "first lap of stint always dropped",
			in: []model.LapRow{
				row(10, 90), row(11, 90), row(12, 90), row(13, 90),
			},
			want: []float64{90, 90, 90},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChain()
			got := lapTimes(c.PushLapFilter(tt.in))
			if len(got) != len(tt.want) {
				t.Fatalf("PushLapFilter() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("PushLapFilter() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestChain_PushLapFilter_exactBoundary(t *testing.T) {
	// median of [90,91,89,150] is 90.5; a lap at exactly 89.0 sits on
	// median-1.5 and must be retained (non-strict comparison)
	in := []model.LapRow{
		row(11, 90), row(12, 91), row(13, 89), row(14, 150),
	}
	got := lapTimes(NewChain().PushLapFilter(in))
	found := false
	for _, v := range got {
		if v == 89.0 {
			found = true
		}
	}
	if !found {
		t.Errorf("lap on exact boundary was dropped, got %v", got)
	}
}

func TestChain_AnomalyFilter(t *testing.T) {
	// best lap 90 => ceiling 103.5
	in := []model.CorrectedLapRow{
		corrected(1, 89, 90),
		corrected(2, 102, 103.5),
		corrected(3, 103, 103.6),
	}
	got := NewChain().AnomalyFilter(in)
	if len(got) != 2 {
		t.Fatalf("AnomalyFilter() kept %d rows, want 2", len(got))
	}
	if got[1].LapTime != 103.5 {
		t.Errorf("row on ceiling must be retained, got %v", got[1].LapTime)
	}
}

func TestChain_SequentialFilter(t *testing.T) {
	tests := []struct {
		name string
		in   []model.CorrectedLapRow
		want []float64
	}{
		{
			// 101 <= 103, 104 <= 101*1.03 = 104.03 (boundary),
			// 99 <= 104*1.03
			name: "inclusive boundary accepted",
			in: []model.CorrectedLapRow{
				corrected(1, 100, 100),
				corrected(2, 101, 101),
				corrected(3, 104, 104),
				corrected(4, 99, 99),
			},
			want: []float64{100, 101, 104, 99},
		},
		{
			name: "sharp jump rejected, reference unchanged",
			in: []model.CorrectedLapRow{
				corrected(1, 100, 100),
				corrected(2, 110, 110),
				corrected(3, 102, 102),
			},
			want: []float64{100, 102},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewChain().SequentialFilter(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("SequentialFilter() kept %d rows, want %d",
					len(got), len(tt.want))
			}
			for i := range got {
				if got[i].CorrectedZero != tt.want[i] {
					t.Errorf("row %d: got %v, want %v",
						i, got[i].CorrectedZero, tt.want[i])
				}
			}
		})
	}
}

func TestChain_Apply_usesConfiguredStrategy(t *testing.T) {
	in := []model.CorrectedLapRow{
		corrected(1, 100, 100),
		corrected(2, 110, 110),
	}
	seq := NewChain(WithStrategy(StrategySequential)).Apply(in)
	if len(seq) != 1 {
		t.Errorf("sequential strategy kept %d rows, want 1", len(seq))
	}
	anom := NewChain(WithStrategy(StrategyAnomaly)).Apply(in)
	if len(anom) != 2 {
		t.Errorf("anomaly strategy kept %d rows, want 2", len(anom))
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy("sequential"); err != nil || s != StrategySequential {
		t.Errorf("ParseStrategy(sequential) = %v, %v", s, err)
	}
	if s, err := ParseStrategy("anomaly"); err != nil || s != StrategyAnomaly {
		t.Errorf("ParseStrategy(anomaly) = %v, %v", s, err)
	}
	if _, err := ParseStrategy("bogus"); err == nil {
		t.Errorf("ParseStrategy(bogus) expected error")
	}
}

func TestChain_customParameters(t *testing.T) {
	params := config.DefaultParameters()
	params.SequentialFilterRatio = 1.10
	in := []model.CorrectedLapRow{
		corrected(1, 100, 100),
		corrected(2, 110, 110),
	}
	got := NewChain(
		WithParameters(params),
		WithStrategy(StrategySequential)).Apply(in)
	if len(got) != 2 {
		t.Errorf("ratio 1.10 should keep both rows, kept %d", len(got))
	}
}
