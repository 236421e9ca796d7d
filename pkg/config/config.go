package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	APIBaseURL        string // base URL of the OpenF1 API
	CacheDir          string // directory for the raw fetch cache
	OutputDir         string // directory for rendered charts
	FetchTimeout      string // timeout for a single API request
	LogLevel          string // sets the log level (zap log level values)
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules (overrides log-level, console output)
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry

	Country        string   // country name of the event (e.g. Hungary)
	Year           int      // season year
	SessionType    string   // session type (e.g. Practice)
	Compounds      []string // tyre compounds to process
	MaxSessions    int      // number of sessions to process per event
	FilterStrategy string   // outlier filter strategy: anomaly or sequential
	OffsetModel    bool     // fit y=c+a*exp(b*x) instead of y=a*exp(b*x)
)

// Parameters holds the tunables of the cleaning and correction stages.
// They are passed explicitly into each pipeline stage.
type Parameters struct {
	FuelSecondsPerLap        float64 // lap time gained per lap of fuel burned
	FuelMarginLaps           int     // fuel load margin above observed stint length
	AnomalyCeilingMultiplier float64 // ceiling = multiplier * best lap
	PushLapMarginSeconds     float64 // laps faster than median-margin are dropped
	SequentialFilterRatio    float64 // max allowed jump above last accepted time
	MinStintLength           int     // stints of this length or shorter are ignored
}

// DefaultParameters returns the tunables with their calibrated defaults.
func DefaultParameters() Parameters {
	return Parameters{
		FuelSecondsPerLap:        0.045,
		FuelMarginLaps:           2,
		AnomalyCeilingMultiplier: 1.15,
		PushLapMarginSeconds:     1.5,
		SequentialFilterRatio:    1.03,
		MinStintLength:           5,
	}
}
