package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/model"
)

const (
	chartWidth  = 1000
	chartHeight = 600
	fitSamples  = 200
)

type (
	Option   func(*Renderer)
	Renderer struct {
		outputDir string
		l         *log.Logger
	}
)

func WithOutputDir(dir string) Option {
	return func(r *Renderer) {
		r.outputDir = dir
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(r *Renderer) {
		r.l = arg
	}
}

func NewRenderer(opts ...Option) *Renderer {
	ret := &Renderer{
		outputDir: "plots",
		l:         log.Default().Named("render"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

var compoundColors = map[string]drawing.Color{
	"SOFT":   chart.ColorRed,
	"MEDIUM": chart.ColorYellow,
	"HARD":   chart.ColorAlternateGray,
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    3,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// CompoundChart writes the per-compound diagnostic chart: corrected lap
// scatter, mean per tyre age and, when available, the fitted curve. With
// no converged fit only the points are plotted.
func (r *Renderer) CompoundChart(res *model.CompoundResult) error {
	data, err := r.compoundChartPNG(res)
	if err != nil {
		return err
	}
	fname := fmt.Sprintf("%s_exp_fit_fuel_zero.png", res.Compound)
	return r.writeFile(fname, data)
}

func (r *Renderer) compoundChartPNG(res *model.CompoundResult) ([]byte, error) {
	series := []chart.Series{}

	scatterX := make([]float64, 0, len(res.Rows))
	scatterY := make([]float64, 0, len(res.Rows))
	for i := range res.Rows {
		scatterX = append(scatterX, float64(res.Rows[i].TyreAge))
		scatterY = append(scatterY, res.Rows[i].CorrectedZero)
	}
	// go-chart needs ascending x values per series
	sort.Sort(byX{scatterX, scatterY})
	series = append(series, chart.ContinuousSeries{
		Name:    "Fuel-corrected laps",
		XValues: scatterX,
		YValues: scatterY,
		Style:   pointStyle(chart.ColorBlue),
	})

	meanX := make([]float64, 0, len(res.Points))
	meanY := make([]float64, 0, len(res.Points))
	for _, p := range res.Points {
		meanX = append(meanX, float64(p.TyreAge))
		meanY = append(meanY, p.MeanTime)
	}
	series = append(series, chart.ContinuousSeries{
		Name:    "Mean per tyre age",
		XValues: meanX,
		YValues: meanY,
		Style:   lineStyle(chart.ColorGreen),
	})

	if res.Fit.Converged {
		fitX, fitY := sampleFit(&res.Fit)
		series = append(series, chart.ContinuousSeries{
			Name: fmt.Sprintf("Exp fit: y = %.3f*e^(%.3fx)",
				res.Fit.A, res.Fit.B),
			XValues: fitX,
			YValues: fitY,
			Style:   lineStyle(chart.ColorRed),
		})
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("%s Lap Times vs Tyre Age (Fuel-corrected)", res.Compound),
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: "Tyre age (laps)"},
		YAxis:      chart.YAxis{Name: "Lap time (s)"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CombinedChart overlays the fitted curves of all compounds. Compounds
// without a converged fit are left out.
func (r *Renderer) CombinedChart(results []model.CompoundResult) error {
	data, err := r.combinedChartPNG(results)
	if err != nil {
		return err
	}
	return r.writeFile("Combined_Compounds_Comparison.png", data)
}

func (r *Renderer) combinedChartPNG(results []model.CompoundResult) ([]byte, error) {
	series := []chart.Series{}
	for i := range results {
		res := &results[i]
		if !res.Fit.Converged {
			continue
		}
		fitX, fitY := sampleFit(&res.Fit)
		series = append(series, chart.ContinuousSeries{
			Name:    res.Compound,
			XValues: fitX,
			YValues: fitY,
			Style:   lineStyle(colorFor(res.Compound)),
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no converged fits to render")
	}

	ch := chart.Chart{
		Title:      "Tyre Degradation Comparison (Fuel-corrected)",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: "Tyre age (laps)"},
		YAxis:      chart.YAxis{Name: "Lap time (s)"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OverlayChart draws a moving average of the raw lap times per compound
// against the lap number. Smoothing window is 5 laps.
func (r *Renderer) OverlayChart(results []model.CompoundResult) error {
	data, err := r.overlayChartPNG(results)
	if err != nil {
		return err
	}
	return r.writeFile("overlay_tyres.png", data)
}

func (r *Renderer) overlayChartPNG(results []model.CompoundResult) ([]byte, error) {
	series := []chart.Series{}
	for i := range results {
		res := &results[i]
		if len(res.Rows) == 0 {
			continue
		}
		xs := make([]float64, 0, len(res.Rows))
		ys := make([]float64, 0, len(res.Rows))
		for j := range res.Rows {
			xs = append(xs, float64(res.Rows[j].LapNumber))
			ys = append(ys, res.Rows[j].LapTime)
		}
		sort.Sort(byX{xs, ys})
		sx, sy := movingAverage(xs, ys, 5)
		series = append(series, chart.ContinuousSeries{
			Name:    res.Compound,
			XValues: sx,
			YValues: sy,
			Style:   lineStyle(colorFor(res.Compound)),
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no rows to render")
	}

	ch := chart.Chart{
		Title:      "Overlayed Tyre Degradation Curves (All Compounds)",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: "Lap number"},
		YAxis:      chart.YAxis{Name: "Lap time (s)"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) writeFile(fname string, data []byte) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(r.outputDir, fname)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	r.l.Info("chart written", log.String("path", path))
	return nil
}

func colorFor(compound string) drawing.Color {
	if col, ok := compoundColors[compound]; ok {
		return col
	}
	return chart.ColorBlack
}

func sampleFit(fit *model.FitResult) ([]float64, []float64) {
	lo := float64(fit.AgeMin)
	hi := float64(fit.AgeMax)
	xs := make([]float64, fitSamples)
	ys := make([]float64, fitSamples)
	step := (hi - lo) / float64(fitSamples-1)
	for i := 0; i < fitSamples; i++ {
		x := lo + float64(i)*step
		xs[i] = x
		ys[i] = fit.Eval(x)
	}
	return xs, ys
}

// movingAverage smooths y over a fixed window; inputs must be sorted by x.
// Series shorter than the window are returned unchanged.
func movingAverage(xs, ys []float64, window int) ([]float64, []float64) {
	if len(ys) < window {
		return xs, ys
	}
	outLen := len(ys) - window + 1
	sx := make([]float64, outLen)
	sy := make([]float64, outLen)
	for i := 0; i < outLen; i++ {
		sum := 0.0
		for j := 0; j < window; j++ {
			sum += ys[i+j]
		}
		sx[i] = xs[i]
		sy[i] = sum / float64(window)
	}
	return sx, sy
}

// byX sorts two parallel slices by the first one.
type byX struct {
	xs []float64
	ys []float64
}

func (s byX) Len() int           { return len(s.xs) }
func (s byX) Less(i, j int) bool { return s.xs[i] < s.xs[j] }
func (s byX) Swap(i, j int) {
	s.xs[i], s.xs[j] = s.xs[j], s.xs[i]
	s.ys[i], s.ys[j] = s.ys[j], s.ys[i]
}
