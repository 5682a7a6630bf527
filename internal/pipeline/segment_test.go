package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-analytics-pipeline/internal/model"
)

func TestBinScore(t *testing.T) {
	edges := []float64{0, 30, 90, 180, 365}

	tests := []struct {
		value float64
		want  int
	}{
		{0, 1},
		{10, 1},
		{29.9, 1},
		{30, 2}, // boundary belongs to the bin it opens
		{90, 3},
		{179, 3},
		{180, 4},
		{365, 5},
		{1000, 5}, // last bin is open-ended
		{-5, 1},   // below the first edge clamps to 1
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, binScore(tt.value, edges), "value %v", tt.value)
	}
}

func TestRecencyScore_Inverted(t *testing.T) {
	edges := []float64{0, 30, 90, 180, 365}

	assert.Equal(t, 5, recencyScore(10, edges))
	assert.Equal(t, 4, recencyScore(45, edges))
	assert.Equal(t, 1, recencyScore(400, edges))
}

func TestSegment_ScenarioFromDefaults(t *testing.T) {
	// 3 purchases of 50 at 10/40/100 days before the reference date:
	// recency 10 → 5, frequency 3 → 2, monetary 150 → 2, segment Active.
	profiles := map[string]*model.CustomerProfile{
		"CUST_00001": {CustomerID: "CUST_00001", RecencyDays: 10, Frequency: 3, Monetary: 150},
	}

	require.NoError(t, Segment(profiles, model.DefaultPipelineConfig()))

	p := profiles["CUST_00001"]
	assert.Equal(t, "522", p.RFMScore)
	assert.Equal(t, model.SegmentActive, p.Segment)
}

func TestSegment_RulePriority(t *testing.T) {
	cfg := model.DefaultPipelineConfig()

	tests := []struct {
		name    string
		profile model.CustomerProfile
		want    string
	}{
		{
			name:    "at-risk wins over high value",
			profile: model.CustomerProfile{RecencyDays: 61, Frequency: 20, Monetary: 5000},
			want:    model.SegmentAtRisk,
		},
		{
			name:    "single recent purchase is new",
			profile: model.CustomerProfile{RecencyDays: 5, Frequency: 1, Monetary: 50},
			want:    model.SegmentNew,
		},
		{
			name:    "high value",
			profile: model.CustomerProfile{RecencyDays: 5, Frequency: 12, Monetary: 2500},
			want:    model.SegmentHighValue,
		},
		{
			name:    "churned single purchase",
			profile: model.CustomerProfile{RecencyDays: 130, Frequency: 1, Monetary: 50},
			want:    model.SegmentChurned,
		},
		{
			name:    "default active",
			profile: model.CustomerProfile{RecencyDays: 40, Frequency: 3, Monetary: 200},
			want:    model.SegmentActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			p.CustomerID = "CUST_00001"
			profiles := map[string]*model.CustomerProfile{p.CustomerID: &p}

			require.NoError(t, Segment(profiles, cfg))
			assert.Equal(t, tt.want, p.Segment)
			assert.Len(t, p.RFMScore, 3)
		})
	}
}

func TestSegment_EveryProfileGetsOneSegment(t *testing.T) {
	profiles := map[string]*model.CustomerProfile{
		"CUST_00001": {CustomerID: "CUST_00001", RecencyDays: 10, Frequency: 1, Monetary: 20},
		"CUST_00002": {CustomerID: "CUST_00002", RecencyDays: 300, Frequency: 4, Monetary: 900},
		"CUST_00003": {CustomerID: "CUST_00003", RecencyDays: 0, Frequency: 15, Monetary: 4000},
	}

	require.NoError(t, Segment(profiles, model.DefaultPipelineConfig()))

	known := make(map[string]bool)
	for _, seg := range model.Segments() {
		known[seg] = true
	}
	for _, p := range profiles {
		assert.True(t, known[p.Segment], "unknown segment %q", p.Segment)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *model.PipelineConfig)
		wantParam string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *model.PipelineConfig) {},
		},
		{
			name:      "non-ascending bins",
			mutate:    func(cfg *model.PipelineConfig) { cfg.RecencyBins = []float64{0, 30, 30, 180} },
			wantParam: "recency_bins",
		},
		{
			name:      "too few edges",
			mutate:    func(cfg *model.PipelineConfig) { cfg.MonetaryBins = []float64{0} },
			wantParam: "monetary_bins",
		},
		{
			name:      "threshold above 5",
			mutate:    func(cfg *model.PipelineConfig) { cfg.HighValueThreshold = 5.5 },
			wantParam: "high_value_threshold",
		},
		{
			name:      "negative at risk days",
			mutate:    func(cfg *model.PipelineConfig) { cfg.AtRiskDays = -1 },
			wantParam: "at_risk_days",
		},
		{
			name:      "garbage reference date",
			mutate:    func(cfg *model.PipelineConfig) { cfg.ReferenceDate = "yesterday" },
			wantParam: "reference_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultPipelineConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(cfg)
			if tt.wantParam == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantParam, cfgErr.Param)
		})
	}
}
