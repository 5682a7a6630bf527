package pipeline

import (
	"fmt"

	"sales-analytics-pipeline/internal/model"
	"sales-analytics-pipeline/pkg/utils"
)

// segmentRule pairs a segment label with its predicate. Rules are evaluated
// in order and the first match wins, so At-Risk beats High Value for a
// customer matching both.
type segmentRule struct {
	Segment string
	Match   func(p *model.CustomerProfile, r, f, m int, cfg model.PipelineConfig) bool
}

var segmentRules = []segmentRule{
	{model.SegmentAtRisk, func(p *model.CustomerProfile, r, f, m int, cfg model.PipelineConfig) bool {
		return p.RecencyDays > cfg.AtRiskDays && p.Frequency >= 2
	}},
	{model.SegmentNew, func(p *model.CustomerProfile, r, f, m int, cfg model.PipelineConfig) bool {
		return p.Frequency == 1 && p.RecencyDays <= cfg.AtRiskDays
	}},
	{model.SegmentHighValue, func(p *model.CustomerProfile, r, f, m int, cfg model.PipelineConfig) bool {
		return float64(r+f+m)/3.0 >= cfg.HighValueThreshold
	}},
	{model.SegmentChurned, func(p *model.CustomerProfile, r, f, m int, cfg model.PipelineConfig) bool {
		return p.RecencyDays > 2*cfg.AtRiskDays
	}},
	{model.SegmentActive, func(p *model.CustomerProfile, r, f, m int, cfg model.PipelineConfig) bool {
		return true
	}},
}

// Segment scores every profile against the configured bins and assigns each
// one exactly one segment from the fixed set.
func Segment(profiles map[string]*model.CustomerProfile, cfg model.PipelineConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	counts := make(map[string]int, len(segmentRules))
	for _, p := range profiles {
		r := recencyScore(float64(p.RecencyDays), cfg.RecencyBins)
		f := binScore(float64(p.Frequency), cfg.FrequencyBins)
		m := binScore(p.Monetary, cfg.MonetaryBins)
		p.RFMScore = fmt.Sprintf("%d%d%d", r, f, m)

		for _, rule := range segmentRules {
			if rule.Match(p, r, f, m, cfg) {
				p.Segment = rule.Segment
				counts[rule.Segment]++
				break
			}
		}
	}

	fmt.Printf("👥 Segmentation Summary: %d profiles scored across %d segments\n",
		len(profiles), len(counts))

	return nil
}

// binScore maps a value onto 1-based ascending bins. Edges are lower bounds,
// a boundary value belongs to the bin it opens, and the last bin is
// open-ended. Values below the first edge score 1.
func binScore(v float64, edges []float64) int {
	score := 1
	for i, edge := range edges {
		if v >= edge {
			score = i + 1
		} else {
			break
		}
	}
	return score
}

// recencyScore inverts the bin score so the most recent bucket scores highest.
func recencyScore(v float64, edges []float64) int {
	return len(edges) + 1 - binScore(v, edges)
}

// ValidateConfig rejects a malformed pipeline configuration before any stage
// runs. The returned *ConfigurationError names the offending parameter.
func ValidateConfig(cfg model.PipelineConfig) error {
	bins := []struct {
		name  string
		edges []float64
	}{
		{"recency_bins", cfg.RecencyBins},
		{"frequency_bins", cfg.FrequencyBins},
		{"monetary_bins", cfg.MonetaryBins},
	}
	for _, b := range bins {
		if len(b.edges) < 2 {
			return &ConfigurationError{Param: b.name, Reason: "needs at least 2 ascending edges"}
		}
		if len(b.edges) > 9 {
			return &ConfigurationError{Param: b.name, Reason: "scores are single digits, at most 9 edges"}
		}
		for i := 1; i < len(b.edges); i++ {
			if b.edges[i] <= b.edges[i-1] {
				return &ConfigurationError{Param: b.name, Reason: fmt.Sprintf("edges not ascending at index %d", i)}
			}
		}
	}

	if cfg.HighValueThreshold < 0 || cfg.HighValueThreshold > 5 {
		return &ConfigurationError{Param: "high_value_threshold", Reason: "must be within [0, 5]"}
	}
	if cfg.AtRiskDays <= 0 {
		return &ConfigurationError{Param: "at_risk_days", Reason: "must be positive"}
	}
	if cfg.ReferenceDate != "" {
		if _, err := utils.ParseDate(cfg.ReferenceDate); err != nil {
			return &ConfigurationError{Param: "reference_date", Reason: err.Error()}
		}
	}
	return nil
}
