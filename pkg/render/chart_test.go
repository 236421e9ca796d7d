package render

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyrelab/tyredeg/pkg/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func sampleResult(compound string, converged bool) model.CompoundResult {
	rows := make([]model.CorrectedLapRow, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, model.CorrectedLapRow{
			LapRow: model.LapRow{
				Driver:    44,
				LapNumber: 10 + i,
				TyreAge:   i,
				LapTime:   90 + 0.1*float64(i),
			},
			CorrectedZero: 89 + 0.12*float64(i),
		})
	}
	points := []model.AggregatePoint{
		{TyreAge: 0, MeanTime: 89.0, Count: 1},
		{TyreAge: 4, MeanTime: 89.5, Count: 1},
		{TyreAge: 9, MeanTime: 90.1, Count: 1},
	}
	fit := model.NoFit(model.ModelExp)
	if converged {
		fit = model.FitResult{
			Model: model.ModelExp,
			A:     89, B: 0.002,
			AgeMin: 0, AgeMax: 9,
			Converged: true,
		}
	}
	return model.CompoundResult{
		Compound: compound,
		Rows:     rows,
		Points:   points,
		Fit:      fit,
	}
}

func TestCompoundChartPNG(t *testing.T) {
	r := NewRenderer()
	for _, converged := range []bool{true, false} {
		res := sampleResult("SOFT", converged)
		data, err := r.compoundChartPNG(&res)
		require.NoError(t, err)
		assert.Equal(t, pngMagic, data[:4])
	}
}

func TestCombinedChartPNG(t *testing.T) {
	r := NewRenderer()
	results := []model.CompoundResult{
		sampleResult("SOFT", true),
		sampleResult("MEDIUM", true),
		sampleResult("HARD", false), // not converged, left out
	}
	data, err := r.combinedChartPNG(results)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, data[:4])
}

func TestCombinedChartNoFits(t *testing.T) {
	r := NewRenderer()
	results := []model.CompoundResult{sampleResult("SOFT", false)}
	_, err := r.combinedChartPNG(results)
	assert.Error(t, err)
}

func TestOverlayChartPNG(t *testing.T) {
	r := NewRenderer()
	results := []model.CompoundResult{
		sampleResult("SOFT", true),
		sampleResult("MEDIUM", false),
	}
	data, err := r.overlayChartPNG(results)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, data[:4])
}

func TestCompoundChartWritesFile(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(WithOutputDir(dir))
	res := sampleResult("SOFT", true)
	require.NoError(t, r.CompoundChart(&res))

	data, err := os.ReadFile(filepath.Join(dir, "SOFT_exp_fit_fuel_zero.png"))
	require.NoError(t, err)
	assert.Equal(t, pngMagic, data[:4])
}

func TestMovingAverage(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6}
	ys := []float64{10, 20, 30, 40, 50, 60}
	sx, sy := movingAverage(xs, ys, 3)
	require.Len(t, sx, 4)
	assert.InDelta(t, 1.0, sx[0], 1e-9)
	assert.InDelta(t, 20.0, sy[0], 1e-9)
	assert.InDelta(t, 50.0, sy[3], 1e-9)
}

func TestMovingAverageShortSeries(t *testing.T) {
	xs := []float64{1, 2}
	ys := []float64{10, 20}
	sx, sy := movingAverage(xs, ys, 5)
	assert.Equal(t, xs, sx)
	assert.Equal(t, ys, sy)
}

func TestSampleFitSpansAgeRange(t *testing.T) {
	fit := model.FitResult{
		Model: model.ModelExp,
		A:     90, B: 0.01,
		AgeMin: 2, AgeMax: 20,
		Converged: true,
	}
	xs, ys := sampleFit(&fit)
	require.NotEmpty(t, xs)
	assert.InDelta(t, 2.0, xs[0], 1e-9)
	assert.InDelta(t, 20.0, xs[len(xs)-1], 1e-9)
	for i := range ys {
		assert.False(t, math.IsNaN(ys[i]))
	}
}
