package model

import "time"

// ValidationReport summarizes the data quality checks for one run.
// Each dropped record is counted in exactly one bucket, so
// CleanRecords + MissingFieldCount + DuplicateCount + OutOfRangeCount == TotalRecords.
type ValidationReport struct {
	TotalRecords      int `json:"total_records"`
	CleanRecords      int `json:"clean_records"`
	MissingFieldCount int `json:"missing_field_count"`
	DuplicateCount    int `json:"duplicate_count"`
	OutOfRangeCount   int `json:"out_of_range_count"`

	// Breakdown of OutOfRangeCount by failing check.
	AmountInvalid     int `json:"amount_invalid"`
	CustomerIDInvalid int `json:"customer_id_invalid"`
	DateInvalid       int `json:"date_invalid"`

	// QualityScore is the fraction of records passing all checks.
	// Defined as 1.0 for an empty batch so downstream math stays finite.
	QualityScore  float64   `json:"quality_score"`
	ReferenceDate time.Time `json:"reference_date"`
}

// SegmentStats is the per-segment slice of the KPI summary.
type SegmentStats struct {
	Count        int     `json:"count"`
	Revenue      float64 `json:"revenue"`
	RevenueShare float64 `json:"revenue_share"`
}

// MonthlyStats aggregates one transaction_month.
type MonthlyStats struct {
	Revenue         float64 `json:"revenue"`
	Transactions    int     `json:"transactions"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	UniqueCustomers int     `json:"unique_customers"`
}

// KPISummary holds the business metrics for one run. Produced once per run,
// read-only afterwards.
type KPISummary struct {
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	TransactionCount  int     `json:"transaction_count"`
	CustomerCount     int     `json:"customer_count"`
	RetentionRate     float64 `json:"retention_rate"`

	Segments map[string]SegmentStats `json:"segments"`

	RevenueByCategory      map[string]float64      `json:"revenue_by_category"`
	RevenueByPaymentMethod map[string]float64      `json:"revenue_by_payment_method"`
	RevenueBySalesRep      map[string]float64      `json:"revenue_by_sales_rep"`
	MonthlySummary         map[string]MonthlyStats `json:"monthly_summary"`
	TopCategory            string                  `json:"top_category,omitempty"`
}

// StageTiming records when a pipeline stage started/finished and its record flow.
type StageTiming struct {
	Stage      string    `json:"stage"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	RecordsIn  int       `json:"records_in"`
	RecordsOut int       `json:"records_out"`
}

// RunReport accumulates everything a single pipeline run produced.
type RunReport struct {
	RunID      string    `json:"run_id"`
	State      string    `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Set only when State is "failed".
	FailedStage   string `json:"failed_stage,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`

	Validation *ValidationReport `json:"validation,omitempty"`
	KPIs       *KPISummary       `json:"kpis,omitempty"`
	Timings    []StageTiming     `json:"timings,omitempty"`
}
