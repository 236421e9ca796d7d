package curves

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/cmd/util"
	"github.com/tyrelab/tyredeg/pkg/config"
	"github.com/tyrelab/tyredeg/pkg/model"
	"github.com/tyrelab/tyredeg/pkg/openf1"
	"github.com/tyrelab/tyredeg/pkg/processing"
	"github.com/tyrelab/tyredeg/pkg/processing/filter"
	"github.com/tyrelab/tyredeg/pkg/render"
)

var params = config.DefaultParameters()

func NewCurvesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curves",
		Short: "derive tyre degradation curves and render charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurves()
		},
	}
	util.AddEventFlags(cmd)
	cmd.Flags().StringVar(&config.FilterStrategy, "filter-strategy",
		"anomaly",
		"outlier filter strategy (anomaly, sequential)")
	cmd.Flags().BoolVar(&config.OffsetModel, "offset-model",
		false,
		"fit y=c+a*exp(b*x) instead of y=a*exp(b*x)")
	cmd.Flags().Float64Var(&params.FuelSecondsPerLap, "fuel-seconds",
		params.FuelSecondsPerLap,
		"lap time gained per lap of fuel burned")
	cmd.Flags().IntVar(&params.FuelMarginLaps, "fuel-margin-laps",
		params.FuelMarginLaps,
		"fuel load margin above observed stint length")
	cmd.Flags().Float64Var(&params.AnomalyCeilingMultiplier, "anomaly-multiplier",
		params.AnomalyCeilingMultiplier,
		"anomaly ceiling as multiple of the best lap")
	cmd.Flags().Float64Var(&params.PushLapMarginSeconds, "push-margin",
		params.PushLapMarginSeconds,
		"push lap margin below the group median (seconds)")
	cmd.Flags().Float64Var(&params.SequentialFilterRatio, "sequential-ratio",
		params.SequentialFilterRatio,
		"max allowed jump above the last accepted corrected time")
	cmd.Flags().IntVar(&params.MinStintLength, "min-stint-length",
		params.MinStintLength,
		"stints of this length or shorter are ignored")
	return cmd
}

func runCurves() error {
	util.SetupLogger()
	ctx := context.Background()

	var telemetry *config.Telemetry
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(ctx); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
	}
	defer func() {
		if telemetry != nil {
			telemetry.Shutdown()
		}
	}()

	strategy, err := filter.ParseStrategy(config.FilterStrategy)
	if err != nil {
		return err
	}
	fitModel := model.ModelExp
	if config.OffsetModel {
		fitModel = model.ModelExpOffset
	}

	client := openf1.NewClient(
		openf1.WithBaseURL(config.APIBaseURL),
		openf1.WithCacheDir(config.CacheDir),
		openf1.WithTimeout(util.FetchTimeout()))
	proc := processing.NewProcessor(
		processing.WithClient(client),
		processing.WithParameters(params),
		processing.WithStrategy(strategy),
		processing.WithFitModel(fitModel),
		processing.WithMaxSessions(config.MaxSessions))

	results, err := proc.ProcessEvent(ctx,
		config.Country, config.SessionType, config.Year, config.Compounds)
	if err != nil {
		log.Error("pipeline failed", log.ErrorField(err))
		return err
	}
	if len(results) == 0 {
		log.Warn("no compound produced any data, nothing to render")
		return nil
	}

	renderer := render.NewRenderer(render.WithOutputDir(config.OutputDir))
	for i := range results {
		if err := renderer.CompoundChart(&results[i]); err != nil {
			return err
		}
	}
	if err := renderer.CombinedChart(results); err != nil {
		log.Warn("combined chart skipped", log.ErrorField(err))
	}
	if err := renderer.OverlayChart(results); err != nil {
		log.Warn("overlay chart skipped", log.ErrorField(err))
	}
	return nil
}
