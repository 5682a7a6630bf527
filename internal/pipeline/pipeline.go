package pipeline

import (
	"time"

	"sales-analytics-pipeline/internal/model"
	"sales-analytics-pipeline/pkg/utils"
)

// State is the orchestrator's position in the run lifecycle.
type State string

const (
	StateIngested   State = "ingested"
	StateValidated  State = "validated"
	StateEnriched   State = "enriched"
	StateSegmented  State = "segmented"
	StateAggregated State = "aggregated"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Stage names, used in reports and error messages.
const (
	StageValidation   = "validation"
	StageEnrichment   = "enrichment"
	StageSegmentation = "segmentation"
	StageAggregation  = "aggregation"
)

// Orchestrator sequences the pipeline stages over one in-memory batch and
// owns every intermediate record set for the lifetime of the run. Stages
// must be invoked in order; anything else is a StateError.
type Orchestrator struct {
	runID         string
	cfg           model.PipelineConfig
	state         State
	referenceDate time.Time

	raw      []model.Transaction
	clean    []model.Transaction
	enriched []model.EnrichedTransaction
	profiles map[string]*model.CustomerProfile

	report model.RunReport
}

// NewOrchestrator validates the configuration and stages the raw batch.
// A bad config aborts here, before any stage executes.
func NewOrchestrator(runID string, raw []model.Transaction, cfg model.PipelineConfig) (*Orchestrator, error) {
	cfg = cfg.WithDefaults()
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		runID: runID,
		cfg:   cfg,
		state: StateIngested,
		raw:   raw,
		report: model.RunReport{
			RunID:     runID,
			State:     string(StateIngested),
			StartedAt: time.Now().UTC(),
		},
	}
	if cfg.ReferenceDate != "" {
		// Already checked by ValidateConfig.
		o.referenceDate, _ = utils.ParseDate(cfg.ReferenceDate)
	}
	return o, nil
}

func (o *Orchestrator) requireState(stage string, want State) error {
	if o.state != want {
		return &StateError{Stage: stage, State: o.state}
	}
	return nil
}

func (o *Orchestrator) track(stage string, in, out int, started time.Time) {
	o.report.Timings = append(o.report.Timings, model.StageTiming{
		Stage:      stage,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		RecordsIn:  in,
		RecordsOut: out,
	})
}

// Validate runs the data quality stage.
func (o *Orchestrator) Validate() error {
	if err := o.requireState(StageValidation, StateIngested); err != nil {
		return err
	}
	started := time.Now().UTC()

	clean, report := Validate(o.raw, o.referenceDate)
	o.clean = clean
	o.referenceDate = report.ReferenceDate
	o.report.Validation = &report

	o.track(StageValidation, len(o.raw), len(clean), started)
	o.state = StateValidated
	return nil
}

// Enrich runs the feature transformation stage.
func (o *Orchestrator) Enrich() error {
	if err := o.requireState(StageEnrichment, StateValidated); err != nil {
		return err
	}
	started := time.Now().UTC()

	enriched, profiles, err := Enrich(o.clean, o.referenceDate)
	if err != nil {
		return &StageError{Stage: StageEnrichment, Err: err}
	}
	o.enriched = enriched
	o.profiles = profiles

	o.track(StageEnrichment, len(o.clean), len(enriched), started)
	o.state = StateEnriched
	return nil
}

// Segment runs the customer segmentation stage.
func (o *Orchestrator) Segment() error {
	if err := o.requireState(StageSegmentation, StateEnriched); err != nil {
		return err
	}
	started := time.Now().UTC()

	if err := Segment(o.profiles, o.cfg); err != nil {
		return &StageError{Stage: StageSegmentation, Err: err}
	}

	o.track(StageSegmentation, len(o.profiles), len(o.profiles), started)
	o.state = StateSegmented
	return nil
}

// Aggregate runs the KPI stage.
func (o *Orchestrator) Aggregate() error {
	if err := o.requireState(StageAggregation, StateSegmented); err != nil {
		return err
	}
	started := time.Now().UTC()

	summary := Aggregate(o.enriched, o.profiles)
	o.report.KPIs = &summary

	o.track(StageAggregation, len(o.enriched), len(o.enriched), started)
	o.state = StateAggregated
	return nil
}

// Execute drives every stage in order. On an unrecoverable error the
// orchestrator halts in StateFailed and the report names the originating
// stage; per-record issues never reach here.
func (o *Orchestrator) Execute() error {
	steps := []struct {
		stage string
		run   func() error
	}{
		{StageValidation, o.Validate},
		{StageEnrichment, o.Enrich},
		{StageSegmentation, o.Segment},
		{StageAggregation, o.Aggregate},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			o.state = StateFailed
			o.report.State = string(StateFailed)
			o.report.FailedStage = step.stage
			o.report.FailureReason = err.Error()
			o.report.FinishedAt = time.Now().UTC()
			return err
		}
	}
	o.state = StateSucceeded
	o.report.State = string(StateSucceeded)
	o.report.FinishedAt = time.Now().UTC()
	return nil
}

// State returns the orchestrator's current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// Enriched returns the enriched, segmented record sequence.
func (o *Orchestrator) Enriched() []model.EnrichedTransaction { return o.enriched }

// Profiles returns the per-customer profiles keyed by customer id.
func (o *Orchestrator) Profiles() map[string]*model.CustomerProfile { return o.profiles }

// Report returns the accumulated run report.
func (o *Orchestrator) Report() model.RunReport { return o.report }
