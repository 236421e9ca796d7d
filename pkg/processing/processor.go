package processing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/config"
	"github.com/tyrelab/tyredeg/pkg/model"
	"github.com/tyrelab/tyredeg/pkg/openf1"
	"github.com/tyrelab/tyredeg/pkg/processing/aggregate"
	"github.com/tyrelab/tyredeg/pkg/processing/filter"
	"github.com/tyrelab/tyredeg/pkg/processing/fit"
	"github.com/tyrelab/tyredeg/pkg/processing/fuel"
	"github.com/tyrelab/tyredeg/pkg/processing/rows"
)

type (
	Processor struct {
		client      *openf1.Client
		params      config.Parameters
		strategy    filter.Strategy
		fitModel    model.FitModel
		maxSessions int
		tracer      trace.Tracer
		l           *log.Logger

		builder *rows.Builder
		chain   *filter.Chain
		fitter  *fit.Fitter
	}
	ProcessorOption func(proc *Processor)

	sessionData struct {
		stints []model.StintRecord
		laps   []model.LapRecord
	}
)

func WithClient(client *openf1.Client) ProcessorOption {
	return func(proc *Processor) {
		proc.client = client
	}
}

func WithParameters(params config.Parameters) ProcessorOption {
	return func(proc *Processor) {
		proc.params = params
	}
}

func WithStrategy(strategy filter.Strategy) ProcessorOption {
	return func(proc *Processor) {
		proc.strategy = strategy
	}
}

func WithFitModel(m model.FitModel) ProcessorOption {
	return func(proc *Processor) {
		proc.fitModel = m
	}
}

// WithMaxSessions limits how many of the matching sessions are processed.
func WithMaxSessions(n int) ProcessorOption {
	return func(proc *Processor) {
		proc.maxSessions = n
	}
}

func WithTracer(tracer trace.Tracer) ProcessorOption {
	return func(proc *Processor) {
		proc.tracer = tracer
	}
}

func WithLogger(arg *log.Logger) ProcessorOption {
	return func(proc *Processor) {
		proc.l = arg
	}
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	ret := &Processor{
		params:      config.DefaultParameters(),
		strategy:    filter.StrategyAnomaly,
		fitModel:    model.ModelExp,
		maxSessions: 3,
		l:           log.Default().Named("processing"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("tyredeg")
	}
	ret.builder = rows.NewBuilder(
		rows.WithMinStintLength(ret.params.MinStintLength),
		rows.WithLogger(ret.l.Named("rows")))
	ret.chain = filter.NewChain(
		filter.WithParameters(ret.params),
		filter.WithStrategy(ret.strategy),
		filter.WithLogger(ret.l.Named("filter")))
	ret.fitter = fit.NewFitter(
		fit.WithModel(ret.fitModel),
		fit.WithLogger(ret.l.Named("fit")))
	return ret
}

// ProcessEvent runs the pipeline for every compound over the practice
// sessions of one event. Compounds are processed independently; a
// compound with no surviving rows is skipped, the run continues. A fetch
// failure aborts the run.
//
//nolint:whitespace // can't make both editor and linter happy
func (p *Processor) ProcessEvent(
	ctx context.Context,
	country, sessionType string,
	year int,
	compounds []string,
) ([]model.CompoundResult, error) {
	ctx, span := p.tracer.Start(ctx, "processEvent")
	defer span.End()

	sessions, err := p.client.Sessions(ctx, country, sessionType, year)
	if err != nil {
		return nil, err
	}
	if len(sessions) > p.maxSessions {
		sessions = sessions[:p.maxSessions]
	}
	p.l.Info("sessions resolved",
		log.String("country", country),
		log.Int("year", year),
		log.Int("sessions", len(sessions)))

	data := make([]sessionData, 0, len(sessions))
	for _, session := range sessions {
		stints, err := p.client.Stints(ctx, session.SessionKey)
		if err != nil {
			return nil, err
		}
		laps, err := p.client.Laps(ctx, session.SessionKey)
		if err != nil {
			return nil, err
		}
		data = append(data, sessionData{stints: stints, laps: laps})
	}

	ret := make([]model.CompoundResult, 0, len(compounds))
	for _, compound := range compounds {
		res, ok := p.processCompound(ctx, data, compound)
		if !ok {
			p.l.Warn("no data for compound, skipping",
				log.String("compound", compound))
			continue
		}
		ret = append(ret, res)
	}
	return ret, nil
}

// ProcessCompound runs the cleaning, correction, aggregation and fit
// stages over prefetched session data. The second return value is false
// when no rows survive the filters.
//
//nolint:whitespace // can't make both editor and linter happy
func (p *Processor) processCompound(
	ctx context.Context,
	data []sessionData,
	compound string,
) (model.CompoundResult, bool) {
	_, span := p.tracer.Start(ctx, "processCompound")
	defer span.End()

	lapRows := make([]model.LapRow, 0)
	for i := range data {
		lapRows = append(lapRows,
			p.builder.Build(data[i].stints, data[i].laps, compound)...)
	}
	lapRows = p.chain.PushLapFilter(lapRows)
	corrected := fuel.Correct(lapRows, p.params)
	corrected = p.chain.Apply(corrected)
	if len(corrected) == 0 {
		return model.CompoundResult{}, false
	}

	points := aggregate.ByTyreAge(corrected, aggregate.Zero)
	fitResult := p.fitter.Fit(points)
	if !fitResult.Converged {
		p.l.Warn("fit did not converge", log.String("compound", compound))
	}
	p.l.Info("compound processed",
		log.String("compound", compound),
		log.Int("rows", len(corrected)),
		log.Int("ages", len(points)))

	return model.CompoundResult{
		Compound: compound,
		Rows:     corrected,
		Points:   points,
		Fit:      fitResult,
	}, true
}
