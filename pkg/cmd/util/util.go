package util

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/config"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the logger according to the log config values and
// installs it as package default.
func SetupLogger() *log.Logger {
	var logger *log.Logger
	switch {
	case config.LogFilter != "":
		logger = log.FilteredLogger(
			os.Stderr,
			config.LogFilter,
			log.WithCaller(true),
			log.AddCallerSkip(1))
	case config.LogFormat == "json":
		logger = log.New(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
	return logger
}

// FetchTimeout returns the configured request timeout with a 30s default.
func FetchTimeout() time.Duration {
	timeout, err := time.ParseDuration(config.FetchTimeout)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 30s", log.ErrorField(err))
		timeout = 30 * time.Second
	}
	return timeout
}

// AddEventFlags registers the flags selecting the event to process.
func AddEventFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&config.Country, "country",
		"Hungary",
		"country name of the event")
	cmd.Flags().IntVar(&config.Year, "year",
		2024,
		"season year")
	cmd.Flags().StringVar(&config.SessionType, "session-type",
		"Practice",
		"session type")
	cmd.Flags().IntVar(&config.MaxSessions, "max-sessions",
		3,
		"number of sessions to process")
	cmd.Flags().StringSliceVar(&config.Compounds, "compounds",
		[]string{"SOFT", "MEDIUM", "HARD"},
		"tyre compounds to process")
}
