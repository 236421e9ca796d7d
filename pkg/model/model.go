package model

import "math"

// Session describes a timed session of a race weekend as delivered by the
// OpenF1 sessions endpoint.
type Session struct {
	SessionKey  int    `json:"session_key"`
	SessionType string `json:"session_type"`
	CountryName string `json:"country_name"`
	Year        int    `json:"year"`
}

// StintRecord describes a continuous run of laps on one tyre set.
// LapEnd is exclusive.
type StintRecord struct {
	SessionKey     int    `json:"session_key"`
	DriverNumber   int    `json:"driver_number"`
	Compound       string `json:"compound"`
	LapStart       int    `json:"lap_start"`
	LapEnd         int    `json:"lap_end"`
	TyreAgeAtStart int    `json:"tyre_age_at_start"`
	StintNumber    int    `json:"stint_number"`
}

// Length returns the number of laps covered by the stint.
func (s *StintRecord) Length() int {
	if s.LapEnd < s.LapStart {
		return 0
	}
	return s.LapEnd - s.LapStart
}

// LapRecord is one timed lap of one driver. Sector durations are nil when
// the timing source did not deliver them. Unique per (driver, lap) within
// a session.
type LapRecord struct {
	SessionKey   int      `json:"session_key"`
	DriverNumber int      `json:"driver_number"`
	LapNumber    int      `json:"lap_number"`
	Sector1      *float64 `json:"duration_sector_1"`
	Sector2      *float64 `json:"duration_sector_2"`
	Sector3      *float64 `json:"duration_sector_3"`
	PitOutLap    bool     `json:"is_pit_out_lap"`
}

// LapTime returns the sum of the sector durations and whether all three
// sectors were present.
func (l *LapRecord) LapTime() (float64, bool) {
	if l.Sector1 == nil || l.Sector2 == nil || l.Sector3 == nil {
		return 0, false
	}
	return *l.Sector1 + *l.Sector2 + *l.Sector3, true
}

// LapRow is one analyzable lap joined from a stint and its lap record.
type LapRow struct {
	LapTime        float64
	TyreAge        int
	Driver         int
	SessionKey     int
	LapNumber      int
	StintStart     int
	StintEnd       int
	StintLength    int
	TyreAgeAtStart int
	StintNumber    int
}

// LapsDone returns the laps completed in the stint before this lap.
func (r *LapRow) LapsDone() int {
	return r.LapNumber - r.StintStart
}

// CorrectedLapRow is a LapRow with the fuel burn-off estimate applied.
// Both correction variants are carried as separate columns.
type CorrectedLapRow struct {
	LapRow

	StartFuelLaps     int
	RemainingFuelLaps int
	PenaltySeconds    float64
	// lap time with the full remaining-fuel penalty removed
	CorrectedZero float64
	// like CorrectedZero, but normalized against the median starting
	// fuel load so stints of different lengths stay comparable
	CorrectedBaseline float64
}

// AggregatePoint is the mean corrected lap time of all rows sharing one
// tyre age.
type AggregatePoint struct {
	TyreAge  int
	MeanTime float64
	Count    int
}

// FitModel selects the parametric degradation model.
type FitModel int

const (
	// y = a * exp(b*x)
	ModelExp FitModel = iota
	// y = c + a * exp(b*x)
	ModelExpOffset
)

func (m FitModel) String() string {
	switch m {
	case ModelExpOffset:
		return "exp-offset"
	default:
		return "exp"
	}
}

// FitResult carries the fitted degradation curve. When the optimizer did
// not converge, Converged is false and the parameters are NaN; callers
// must check Converged before using the curve.
type FitResult struct {
	Model     FitModel
	A         float64
	B         float64
	C         float64
	AgeMin    int
	AgeMax    int
	Converged bool
}

// CompoundResult bundles the pipeline output of one tyre compound.
type CompoundResult struct {
	Compound string
	Rows     []CorrectedLapRow
	Points   []AggregatePoint
	Fit      FitResult
}

// NoFit returns the documented "no fit" result for the given model.
func NoFit(m FitModel) FitResult {
	return FitResult{
		Model: m,
		A:     math.NaN(),
		B:     math.NaN(),
		C:     math.NaN(),
	}
}

// Eval evaluates the fitted model at tyre age x.
func (f *FitResult) Eval(x float64) float64 {
	if !f.Converged {
		return math.NaN()
	}
	y := f.A * math.Exp(f.B*x)
	if f.Model == ModelExpOffset {
		y += f.C
	}
	return y
}
