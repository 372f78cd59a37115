// Package pipeline orchestrates an extraction run over a target catalog: each issuer is
// validated, dispatched to its registered strategy, its sources are extracted in order, and
// the aggregated records are handed to a Store.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cerebro/internal/extraction"
	"github.com/jonathan/cerebro/internal/logger"
	"github.com/jonathan/cerebro/internal/types"
)

// DefaultSourceDelay is the pause before each source is extracted.
const DefaultSourceDelay = 1 * time.Second

// Store persists the records of one issuer. Saving is overwrite-by-issuer.
type Store interface {
	Save(ctx context.Context, issuerID string, records []types.BenefitRecord) error
}

// ProgressEvent represents a state transition during a run
type ProgressEvent struct {
	RunID    string `json:"run_id"`
	IssuerID string `json:"issuer_id,omitempty"`
	SourceID string `json:"source_id,omitempty"`
	State    string `json:"state"`
	Message  string `json:"message,omitempty"`
	Records  int    `json:"records,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for an Orchestrator
type Options struct {
	// Store receives each issuer's records. Nil disables persistence.
	Store       Store
	SourceDelay time.Duration
	Logger      logger.Logger
	OnProgress  ProgressCallback
	// RunID identifies the run; a random one is generated when nil.
	RunID       uuid.UUID
}

// SourceReport is the outcome of one source.
type SourceReport struct {
	SourceID   string      `json:"source_id"`
	URL        string      `json:"url"`
	State      SourceState `json:"state"`
	CardsFound int         `json:"cards_found"`
	Records    int         `json:"records"`
	Skipped    int         `json:"skipped"`
	Reason     string      `json:"reason,omitempty"`
}

// TargetReport is the outcome of one target.
type TargetReport struct {
	IssuerID string         `json:"issuer_id"`
	Strategy string         `json:"parser_strategy"`
	State    TargetState    `json:"state"`
	Records  int            `json:"records"`
	Reason   string         `json:"reason,omitempty"`
	Sources  []SourceReport `json:"sources,omitempty"`
}

// Summary describes a finished run.
type Summary struct {
	RunID    uuid.UUID             `json:"run_id"`
	Started  time.Time             `json:"started"`
	Duration time.Duration         `json:"duration"`
	Targets  []TargetReport        `json:"targets"`
	Records  []types.BenefitRecord `json:"-"`
	Total    int                   `json:"total"`
}

// Orchestrator runs catalogs against a strategy registry.
type Orchestrator struct {
	registry *extraction.Registry
	opts     Options
}

// New creates an Orchestrator.
func New(registry *extraction.Registry, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.SourceDelay < 0 {
		opts.SourceDelay = 0
	}
	return &Orchestrator{registry: registry, opts: opts}
}

// Run processes targets in catalog order. A single target or source failure
// never aborts the run; failures are logged and recorded in the Summary. The
// only error returned is the context's, with the partial summary so far.
func (o *Orchestrator) Run(ctx context.Context, targets []types.Target) (*Summary, error) {
	runID := o.opts.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	summary := &Summary{RunID: runID, Started: time.Now()}
	log := o.opts.Logger.With(logger.String("run_id", summary.RunID.String()))
	log.Info("run started", logger.Int("targets", len(targets)))

	for i := range targets {
		if err := ctx.Err(); err != nil {
			summary.finish()
			log.Warn("run cancelled", logger.Int("total_records", summary.Total), logger.Error(err))
			return summary, err
		}
		report, records := o.runTarget(ctx, summary.RunID, log, targets[i])
		summary.Targets = append(summary.Targets, report)
		summary.Records = append(summary.Records, records...)
	}

	summary.finish()
	log.Info("run finished",
		logger.Int("total_records", summary.Total),
		logger.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (s *Summary) finish() {
	s.Total = len(s.Records)
	s.Duration = time.Since(s.Started)
}

func (o *Orchestrator) runTarget(ctx context.Context, runID uuid.UUID, runLog logger.Logger, target types.Target) (TargetReport, []types.BenefitRecord) {
	report := TargetReport{IssuerID: target.IssuerID, Strategy: target.ParserStrategy, State: StatePending}
	log := runLog.With(logger.String("issuer_id", target.IssuerID))
	o.emit(runID, report.IssuerID, "", string(StatePending), "target queued", 0)

	transition := func(state TargetState, msg string) {
		report.State = state
		o.emit(runID, report.IssuerID, "", string(state), msg, report.Records)
	}
	skip := func(state TargetState, reason error) (TargetReport, []types.BenefitRecord) {
		report.Reason = reason.Error()
		log.Warn("target skipped", logger.String("state", string(state)), logger.Error(reason))
		transition(state, report.Reason)
		return report, nil
	}

	if err := target.Validate(); err != nil {
		return skip(StateSkippedInvalid, err)
	}
	transition(StateValidated, "target valid")

	extractor, err := o.registry.Lookup(target.ParserStrategy)
	if err != nil {
		return skip(StateSkippedUnknownStrategy, err)
	}
	transition(StateStrategyResolved, fmt.Sprintf("strategy %s", target.ParserStrategy))

	var records []types.BenefitRecord
	for _, source := range target.Sources {
		if ctx.Err() != nil {
			break
		}
		sr, recs := o.runSource(ctx, runID, log, target, source, extractor)
		report.Sources = append(report.Sources, sr)
		records = append(records, recs...)
	}
	report.Records = len(records)
	transition(StateSourcesProcessed, fmt.Sprintf("%d sources processed", len(report.Sources)))

	if len(records) == 0 {
		log.Warn("no records extracted, nothing to save")
		transition(StateSkippedEmpty, "no records")
		return report, nil
	}

	if o.opts.Store != nil {
		if err := o.opts.Store.Save(ctx, target.IssuerID, records); err != nil {
			report.Reason = err.Error()
			log.Error("failed to save records", logger.Int("records", len(records)), logger.Error(err))
			transition(StateSaveFailed, report.Reason)
			return report, records
		}
	}
	log.Info("records saved", logger.Int("records", len(records)))
	transition(StateSaved, fmt.Sprintf("%d records saved", len(records)))
	return report, records
}

func (o *Orchestrator) runSource(ctx context.Context, runID uuid.UUID, targetLog logger.Logger, target types.Target, source types.Source, extractor extraction.Extractor) (SourceReport, []types.BenefitRecord) {
	report := SourceReport{SourceID: source.SourceID, URL: source.URL, State: SourcePending}
	log := targetLog.With(logger.String("source_id", source.SourceID))
	o.emit(runID, target.IssuerID, source.SourceID, string(SourcePending), source.URL, 0)

	fail := func(reason error) (SourceReport, []types.BenefitRecord) {
		report.State = SourceFailed
		report.Reason = reason.Error()
		o.emit(runID, target.IssuerID, source.SourceID, string(SourceFailed), report.Reason, 0)
		return report, nil
	}

	if err := source.Validate(); err != nil {
		log.Warn("source skipped", logger.Error(err))
		return fail(err)
	}

	if err := sleep(ctx, o.opts.SourceDelay); err != nil {
		return fail(err)
	}

	report.State = SourceFetched
	o.emit(runID, target.IssuerID, source.SourceID, string(SourceFetched), source.URL, 0)

	result, err := extract(ctx, extractor, extraction.Request{
		IssuerID:     target.IssuerID,
		SourceID:     source.SourceID,
		SourceURL:    source.URL,
		CategoryHint: source.HintOrDefault(),
	})
	if err != nil {
		log.Error("source failed", logger.Error(err))
		return fail(err)
	}

	report.CardsFound = result.CardsFound
	report.Skipped = len(result.Skipped)
	if result.Reason != nil && len(result.Records) == 0 {
		log.Warn("source yielded no records", logger.Error(result.Reason))
		return fail(result.Reason)
	}
	if result.Reason != nil {
		report.Reason = result.Reason.Error()
	}

	report.State = SourceExtracted
	report.Records = len(result.Records)
	log.Info("source extracted",
		logger.Int("records", report.Records),
		logger.Int("skipped", report.Skipped),
	)
	o.emit(runID, target.IssuerID, source.SourceID, string(SourceExtracted), source.URL, report.Records)
	return report, result.Records
}

// extract calls the strategy, containing any panic to this source.
func extract(ctx context.Context, extractor extraction.Extractor, req extraction.Request) (result extraction.ListResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UnexpectedExtractorError{SourceID: req.SourceID, Value: r}
		}
	}()
	return extractor.ExtractList(ctx, req), nil
}

// emit calls the progress callback if configured
func (o *Orchestrator) emit(runID uuid.UUID, issuerID, sourceID, state, message string, records int) {
	if o.opts.OnProgress == nil {
		return
	}
	o.opts.OnProgress(ProgressEvent{
		RunID:    runID.String(),
		IssuerID: issuerID,
		SourceID: sourceID,
		State:    state,
		Message:  message,
		Records:  records,
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsSkipped reports whether the target ended without records being saved.
func (r TargetReport) IsSkipped() bool {
	return r.State == StateSkippedEmpty || r.State == StateSkippedInvalid || r.State == StateSkippedUnknownStrategy
}
