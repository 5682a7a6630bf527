package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-analytics-pipeline/internal/model"
)

func scenarioBatch() []model.Transaction {
	return []model.Transaction{
		txn("TXN1", "CUST_00001", 50, "2026-06-20"),
		txn("TXN2", "CUST_00001", 50, "2026-05-21"),
		txn("TXN3", "CUST_00001", 50, "2026-03-22"),
		txn("TXN4", "CUST_00002", 900, "2026-06-29"),
		txn("TXN4", "CUST_00002", 900, "2026-06-29"), // duplicate id
		txn("TXN5", "CUST_00003", 20000, "2026-06-01"), // out of range
		{TransactionID: "TXN6"}, // missing fields
	}
}

func scenarioConfig() model.PipelineConfig {
	cfg := model.DefaultPipelineConfig()
	cfg.ReferenceDate = "2026-06-30"
	return cfg
}

func TestOrchestrator_Execute(t *testing.T) {
	orch, err := NewOrchestrator("run-1", scenarioBatch(), scenarioConfig())
	require.NoError(t, err)

	require.NoError(t, orch.Execute())
	assert.Equal(t, StateSucceeded, orch.State())

	report := orch.Report()
	assert.Equal(t, string(StateSucceeded), report.State)
	require.NotNil(t, report.Validation)
	require.NotNil(t, report.KPIs)

	assert.Equal(t, 7, report.Validation.TotalRecords)
	assert.Equal(t, 4, report.Validation.CleanRecords)
	assert.Equal(t, 1, report.Validation.DuplicateCount)
	assert.Equal(t, 1, report.Validation.OutOfRangeCount)
	assert.Equal(t, 1, report.Validation.MissingFieldCount)

	assert.Equal(t, 2, report.KPIs.CustomerCount)
	assert.InDelta(t, 1050.0, report.KPIs.TotalRevenue, 1e-9)

	// Spec scenario: CUST_00001 ends up 522 / Active.
	p := orch.Profiles()["CUST_00001"]
	require.NotNil(t, p)
	assert.Equal(t, "522", p.RFMScore)
	assert.Equal(t, model.SegmentActive, p.Segment)

	// Four stages, each tracked.
	assert.Len(t, report.Timings, 4)
}

func TestOrchestrator_Idempotent(t *testing.T) {
	run := func() (model.RunReport, []model.EnrichedTransaction) {
		orch, err := NewOrchestrator("run-x", scenarioBatch(), scenarioConfig())
		require.NoError(t, err)
		require.NoError(t, orch.Execute())
		return orch.Report(), orch.Enriched()
	}

	report1, enriched1 := run()
	report2, enriched2 := run()

	assert.Equal(t, report1.Validation, report2.Validation)
	assert.Equal(t, report1.KPIs, report2.KPIs)

	require.Equal(t, len(enriched1), len(enriched2))
	for i := range enriched1 {
		assert.Equal(t, enriched1[i].TransactionID, enriched2[i].TransactionID)
		assert.Equal(t, enriched1[i].Revenue, enriched2[i].Revenue)
		assert.Equal(t, enriched1[i].Quarter, enriched2[i].Quarter)
	}
}

func TestOrchestrator_StageOrderEnforced(t *testing.T) {
	orch, err := NewOrchestrator("run-2", scenarioBatch(), scenarioConfig())
	require.NoError(t, err)

	var stateErr *StateError

	require.ErrorAs(t, orch.Segment(), &stateErr)
	assert.Equal(t, StageSegmentation, stateErr.Stage)

	require.ErrorAs(t, orch.Enrich(), &stateErr)
	require.ErrorAs(t, orch.Aggregate(), &stateErr)

	// The proper order still works afterwards.
	require.NoError(t, orch.Validate())
	require.NoError(t, orch.Enrich())
	require.NoError(t, orch.Segment())
	require.NoError(t, orch.Aggregate())

	// Re-running a finished stage is also a state error.
	require.ErrorAs(t, orch.Validate(), &stateErr)
}

func TestNewOrchestrator_RejectsBadConfig(t *testing.T) {
	cfg := scenarioConfig()
	cfg.FrequencyBins = []float64{5, 2, 1}

	_, err := NewOrchestrator("run-3", scenarioBatch(), cfg)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "frequency_bins", cfgErr.Param)
}

func TestOrchestrator_EmptyBatch(t *testing.T) {
	orch, err := NewOrchestrator("run-4", nil, model.DefaultPipelineConfig())
	require.NoError(t, err)

	require.NoError(t, orch.Execute())
	assert.Equal(t, StateSucceeded, orch.State())

	report := orch.Report()
	assert.Equal(t, 1.0, report.Validation.QualityScore)
	assert.Equal(t, 0.0, report.KPIs.AverageOrderValue)
}
