package model

// DateLayout is the calendar-date layout used across the pipeline.
// Timestamps with a time component use DateTimeLayout.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// PipelineConfig carries the tunable knobs for segmentation and recency math.
// Bin edge slices are ascending lower bounds: bin i is [edge_i, edge_i+1),
// the last bin is open-ended. Scores run 1..len(edges); recency is inverted
// so the most recent bucket scores highest.
type PipelineConfig struct {
	RecencyBins   []float64 `json:"recency_bins,omitempty"`
	FrequencyBins []float64 `json:"frequency_bins,omitempty"`
	MonetaryBins  []float64 `json:"monetary_bins,omitempty"`

	// HighValueThreshold is the minimum average RFM digit for "High Value".
	HighValueThreshold float64 `json:"high_value_threshold,omitempty"`

	// AtRiskDays is the recency threshold for "At-Risk"; twice this for "Churned".
	AtRiskDays int `json:"at_risk_days,omitempty"`

	// ReferenceDate ("2006-01-02") is the "now" recency is computed against.
	// Empty means: use the maximum transaction date in the batch.
	ReferenceDate string `json:"reference_date,omitempty"`
}

// DefaultPipelineConfig returns the stock configuration. The terminal "∞"
// edge of the frequency and monetary bins is implicit in the open-ended
// last bin.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		RecencyBins:        []float64{0, 30, 90, 180, 365},
		FrequencyBins:      []float64{1, 2, 5, 10},
		MonetaryBins:       []float64{0, 100, 500, 1000},
		HighValueThreshold: 4,
		AtRiskDays:         60,
	}
}

// WithDefaults fills any unset option from DefaultPipelineConfig.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	def := DefaultPipelineConfig()
	if len(c.RecencyBins) == 0 {
		c.RecencyBins = def.RecencyBins
	}
	if len(c.FrequencyBins) == 0 {
		c.FrequencyBins = def.FrequencyBins
	}
	if len(c.MonetaryBins) == 0 {
		c.MonetaryBins = def.MonetaryBins
	}
	if c.HighValueThreshold == 0 {
		c.HighValueThreshold = def.HighValueThreshold
	}
	if c.AtRiskDays == 0 {
		c.AtRiskDays = def.AtRiskDays
	}
	return c
}

// SourceSpec points at a transaction file to ingest (csv or json).
type SourceSpec struct {
	Type string `json:"type"` // csv, json
	Path string `json:"path"`
}

// GenerateSpec asks the run to synthesize its own input batch.
type GenerateSpec struct {
	Count     int     `json:"count"`
	Seed      int64   `json:"seed"`
	Customers int     `json:"customers,omitempty"` // size of the customer pool
	Days      int     `json:"days,omitempty"`      // trailing window for dates
	DirtyRate float64 `json:"dirty_rate,omitempty"`
}

// ExportSpec defines export targets, mirroring the run API payload.
type ExportSpec struct {
	File string `json:"file,omitempty"` // .csv or .json
	DB   string `json:"db,omitempty"`   // "sqlite" stores segments + KPIs in the run store
}

// RunSpec is the full payload for POST /api/v1/runs and for the CLI.
// Exactly one of Source or Generate supplies the input batch.
type RunSpec struct {
	Source   *SourceSpec    `json:"source,omitempty"`
	Generate *GenerateSpec  `json:"generate,omitempty"`
	Config   PipelineConfig `json:"config"`
	Export   *ExportSpec    `json:"export,omitempty"`
}
