package model

import "time"

// Transaction is a single raw sales transaction as ingested or generated.
// TransactionDate stays a string until validation has confirmed it parses;
// TransactionAmount is a pointer so a missing amount is distinguishable from zero.
type Transaction struct {
	TransactionID     string   `json:"transaction_id"`
	CustomerID        string   `json:"customer_id"`
	ProductCategory   string   `json:"product_category"`
	TransactionAmount *float64 `json:"transaction_amount"`
	TransactionDate   string   `json:"transaction_date"`
	PaymentMethod     string   `json:"payment_method"`
	SalesRep          string   `json:"sales_rep"`
}

// Amount returns the transaction amount, or 0 when the field is missing.
func (t Transaction) Amount() float64 {
	if t.TransactionAmount == nil {
		return 0
	}
	return *t.TransactionAmount
}

// EnrichedTransaction is a validated transaction plus derived time-based fields.
// Profile links (not owns) the customer-level aggregate built in the same run.
type EnrichedTransaction struct {
	Transaction
	Date             time.Time        `json:"date"`
	Revenue          float64          `json:"revenue"`
	TransactionMonth string           `json:"transaction_month"` // e.g. "2026-07"
	Quarter          string           `json:"quarter"`           // e.g. "Q3_2026"
	Profile          *CustomerProfile `json:"-"`
}

// CustomerProfile holds per-customer RFM aggregates for one run.
// Profiles are rebuilt fresh each run; nothing persists across runs.
type CustomerProfile struct {
	CustomerID   string    `json:"customer_id"`
	RecencyDays  int       `json:"recency_days"`
	Frequency    int       `json:"frequency"`
	Monetary     float64   `json:"monetary"`
	LastPurchase time.Time `json:"last_purchase"`
	RFMScore     string    `json:"rfm_score"`
	Segment      string    `json:"segment"`
}

// Customer segments. The set is closed: every profile gets exactly one of these.
const (
	SegmentHighValue = "High Value"
	SegmentActive    = "Active"
	SegmentAtRisk    = "At-Risk"
	SegmentChurned   = "Churned"
	SegmentNew       = "New"
)

// Segments lists all segments in reporting order. KPI output includes every
// segment, including those with zero members.
func Segments() []string {
	return []string{SegmentHighValue, SegmentActive, SegmentAtRisk, SegmentChurned, SegmentNew}
}
