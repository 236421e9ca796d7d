package rows

import (
	"strings"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/model"
)

type (
	Option  func(*Builder)
	Builder struct {
		minStintLength int
		l              *log.Logger
	}
)

// WithMinStintLength sets the stint length at or below which a stint is
// treated as a warm-up/installation stint and skipped entirely.
func WithMinStintLength(length int) Option {
	return func(b *Builder) {
		b.minStintLength = length
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(b *Builder) {
		b.l = arg
	}
}

func NewBuilder(opts ...Option) *Builder {
	ret := &Builder{
		minStintLength: 5,
		l:              log.Default().Named("rows"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Build joins the stints of one session with their lap records and emits
// one LapRow per analyzable lap of the given compound (case-insensitive
// match). Laps that are missing, flagged as pit-out, or lack a sector
// duration are skipped silently. Overlapping stints are not deduplicated.
//
//nolint:whitespace // can't make both editor and linter happy
func (b *Builder) Build(
	stints []model.StintRecord,
	laps []model.LapRecord,
	compound string,
) []model.LapRow {
	lapsByDriver := make(map[int]map[int]*model.LapRecord)
	for i := range laps {
		lap := &laps[i]
		byLap, ok := lapsByDriver[lap.DriverNumber]
		if !ok {
			byLap = make(map[int]*model.LapRecord)
			lapsByDriver[lap.DriverNumber] = byLap
		}
		byLap[lap.LapNumber] = lap
	}

	ret := make([]model.LapRow, 0)
	for i := range stints {
		stint := &stints[i]
		if !strings.EqualFold(stint.Compound, compound) || stint.Compound == "" {
			continue
		}
		if stint.Length() <= b.minStintLength {
			continue
		}
		driverLaps := lapsByDriver[stint.DriverNumber]
		for ln := stint.LapStart; ln < stint.LapEnd; ln++ {
			lap, ok := driverLaps[ln]
			if !ok || lap.PitOutLap {
				continue
			}
			lapTime, ok := lap.LapTime()
			if !ok {
				continue
			}
			ret = append(ret, model.LapRow{
				LapTime:        lapTime,
				TyreAge:        stint.TyreAgeAtStart + (ln - stint.LapStart),
				Driver:         stint.DriverNumber,
				SessionKey:     stint.SessionKey,
				LapNumber:      ln,
				StintStart:     stint.LapStart,
				StintEnd:       stint.LapEnd,
				StintLength:    stint.Length(),
				TyreAgeAtStart: stint.TyreAgeAtStart,
				StintNumber:    stint.StintNumber,
			})
		}
	}
	b.l.Debug("built rows",
		log.String("compound", compound),
		log.Int("rows", len(ret)))
	return ret
}
