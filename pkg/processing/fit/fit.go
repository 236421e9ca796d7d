package fit

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/model"
)

type (
	Option func(*Fitter)
	Fitter struct {
		model   model.FitModel
		maxIter int
		l       *log.Logger
	}
)

func WithModel(m model.FitModel) Option {
	return func(f *Fitter) {
		f.model = m
	}
}

// WithMaxIterations sets the optimizer iteration budget. Exceeding it
// yields the "no fit" result.
func WithMaxIterations(n int) Option {
	return func(f *Fitter) {
		f.maxIter = n
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(f *Fitter) {
		f.l = arg
	}
}

func NewFitter(opts ...Option) *Fitter {
	ret := &Fitter{
		model:   model.ModelExp,
		maxIter: 2000,
		l:       log.Default().Named("fit"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Fit computes the degradation curve over the aggregated points via
// weighted nonlinear least squares (weights = count/maxCount). The
// optimizer start is deterministic, so fitting the same series twice
// yields identical parameters. A series with too few distinct ages or a
// non-converging optimization yields FitResult{Converged: false} with
// NaN parameters; this is a value, not an error.
func (f *Fitter) Fit(points []model.AggregatePoint) model.FitResult {
	minPoints := 2
	if f.model == model.ModelExpOffset {
		minPoints = 3
	}
	if len(points) < minPoints {
		f.l.Debug("not enough points for fit", log.Int("points", len(points)))
		return model.NoFit(f.model)
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ws := make([]float64, len(points))
	maxCount := 0
	for i, p := range points {
		xs[i] = float64(p.TyreAge)
		ys[i] = p.MeanTime
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}
	for i, p := range points {
		ws[i] = float64(p.Count) / float64(maxCount)
	}

	eval := f.modelFunc()
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			sum := 0.0
			for i := range xs {
				r := ys[i] - eval(params, xs[i])
				sum += ws[i] * r * r
			}
			return sum
		},
	}

	// a0 = y at the smallest age, b0 small positive, c0 = min(y)
	initial := []float64{ys[0], 0.01}
	if f.model == model.ModelExpOffset {
		minY := ys[0]
		for _, y := range ys[1:] {
			minY = math.Min(minY, y)
		}
		initial = []float64{ys[0], 0.01, minY}
	}

	settings := &optimize.Settings{
		MajorIterations: f.maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 100,
		},
	}
	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if err != nil || result == nil ||
		result.Status == optimize.IterationLimit ||
		result.Status == optimize.Failure ||
		!finite(result.X) {
		f.l.Debug("fit did not converge", log.ErrorField(err))
		return model.NoFit(f.model)
	}

	ret := model.FitResult{
		Model:     f.model,
		A:         result.X[0],
		B:         result.X[1],
		AgeMin:    points[0].TyreAge,
		AgeMax:    points[len(points)-1].TyreAge,
		Converged: true,
	}
	if f.model == model.ModelExpOffset {
		ret.C = result.X[2]
	} else {
		ret.C = 0
	}
	f.l.Debug("fit",
		log.String("model", f.model.String()),
		log.Float64("a", ret.A),
		log.Float64("b", ret.B),
		log.Float64("c", ret.C),
		log.Float64("residual", result.F))
	return ret
}

func (f *Fitter) modelFunc() func(params []float64, x float64) float64 {
	if f.model == model.ModelExpOffset {
		return func(params []float64, x float64) float64 {
			return params[2] + params[0]*math.Exp(params[1]*x)
		}
	}
	return func(params []float64, x float64) float64 {
		return params[0] * math.Exp(params[1]*x)
	}
}

func finite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
