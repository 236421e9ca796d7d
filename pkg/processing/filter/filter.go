package filter

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/samber/lo"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/config"
	"github.com/tyrelab/tyredeg/pkg/model"
)

// Strategy selects which outlier filter runs after the fuel correction.
// Exactly one of them is active per run.
type Strategy int

const (
	// ceiling relative to the best observed lap
	StrategyAnomaly Strategy = iota
	// greedy walk enforcing near-monotonic degradation
	StrategySequential
)

func (s Strategy) String() string {
	switch s {
	case StrategySequential:
		return "sequential"
	default:
		return "anomaly"
	}
}

func ParseStrategy(arg string) (Strategy, error) {
	switch arg {
	case "anomaly":
		return StrategyAnomaly, nil
	case "sequential":
		return StrategySequential, nil
	default:
		return StrategyAnomaly, fmt.Errorf("unknown filter strategy: %s", arg)
	}
}

type (
	Option func(*Chain)
	Chain  struct {
		params   config.Parameters
		strategy Strategy
		l        *log.Logger
	}
	groupKey struct {
		driver  int
		session int
		stint   int
	}
)

func WithParameters(params config.Parameters) Option {
	return func(c *Chain) {
		c.params = params
	}
}

func WithStrategy(strategy Strategy) Option {
	return func(c *Chain) {
		c.strategy = strategy
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(c *Chain) {
		c.l = arg
	}
}

func NewChain(opts ...Option) *Chain {
	ret := &Chain{
		params:   config.DefaultParameters(),
		strategy: StrategyAnomaly,
		l:        log.Default().Named("filter"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// PushLapFilter drops the first lap of every stint and any lap faster
// than the group median minus the push-lap margin. Groups are
// (driver, session, stint). A lap exactly on the boundary is retained.
func (c *Chain) PushLapFilter(in []model.LapRow) []model.LapRow {
	groups := lo.GroupBy(in, func(r model.LapRow) groupKey {
		return groupKey{driver: r.Driver, session: r.SessionKey, stint: r.StintNumber}
	})
	ret := make([]model.LapRow, 0, len(in))
	for _, group := range groups {
		times := lo.Map(group, func(r model.LapRow, _ int) float64 { return r.LapTime })
		medianTime := median(times)
		for _, r := range group {
			if r.LapNumber == r.StintStart {
				continue // out-lap effects
			}
			if r.LapTime >= medianTime-c.params.PushLapMarginSeconds {
				ret = append(ret, r)
			}
		}
	}
	// grouping does not preserve input order
	slices.SortStableFunc(ret, func(a, b model.LapRow) int {
		if a.SessionKey != b.SessionKey {
			return a.SessionKey - b.SessionKey
		}
		if a.Driver != b.Driver {
			return a.Driver - b.Driver
		}
		return a.LapNumber - b.LapNumber
	})
	c.l.Debug("push lap filter", log.Int("in", len(in)), log.Int("out", len(ret)))
	return ret
}

// Apply runs the configured outlier strategy over the corrected rows.
func (c *Chain) Apply(in []model.CorrectedLapRow) []model.CorrectedLapRow {
	if c.strategy == StrategySequential {
		return c.SequentialFilter(in)
	}
	return c.AnomalyFilter(in)
}

// AnomalyFilter drops rows whose raw lap time exceeds a ceiling relative
// to the best lap of the compound. Removes laps affected by incidents,
// traffic or red flags.
func (c *Chain) AnomalyFilter(in []model.CorrectedLapRow) []model.CorrectedLapRow {
	best := math.Inf(1)
	for i := range in {
		if in[i].LapTime < best {
			best = in[i].LapTime
		}
	}
	ceiling := best * c.params.AnomalyCeilingMultiplier
	ret := lo.Filter(in, func(r model.CorrectedLapRow, _ int) bool {
		return r.LapTime <= ceiling && !math.IsInf(r.LapTime, 0) && !math.IsNaN(r.LapTime)
	})
	c.l.Debug("anomaly filter",
		log.Float64("ceiling", ceiling),
		log.Int("in", len(in)),
		log.Int("out", len(ret)))
	return ret
}

// SequentialFilter walks the rows in tyre-age order and accepts a row only
// while its corrected time stays within the configured ratio of the last
// accepted one. Single pass, no lookahead; rejected rows do not move the
// reference.
func (c *Chain) SequentialFilter(in []model.CorrectedLapRow) []model.CorrectedLapRow {
	rows := slices.Clone(in)
	slices.SortStableFunc(rows, func(a, b model.CorrectedLapRow) int {
		return a.TyreAge - b.TyreAge
	})
	ret := make([]model.CorrectedLapRow, 0, len(rows))
	lastAccepted := math.NaN()
	for _, r := range rows {
		if math.IsNaN(lastAccepted) {
			lastAccepted = r.CorrectedZero
			ret = append(ret, r)
			continue
		}
		if r.CorrectedZero <= lastAccepted*c.params.SequentialFilterRatio {
			lastAccepted = r.CorrectedZero
			ret = append(ret, r)
		}
	}
	c.l.Debug("sequential filter", log.Int("in", len(in)), log.Int("out", len(ret)))
	return ret
}

// median with linear interpolation between the two middle values
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
