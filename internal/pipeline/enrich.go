package pipeline

import (
	"fmt"
	"sort"
	"time"

	"sales-analytics-pipeline/internal/model"
	"sales-analytics-pipeline/pkg/utils"
)

// Enrich derives the time-based fields for every clean record and folds the
// per-customer RFM accumulators in a single pass. Output order follows input
// order; the aggregates themselves are order-independent.
//
// Clean records are expected to have passed Validate: an unparseable date
// here is an internal error, not a data problem.
func Enrich(clean []model.Transaction, referenceDate time.Time) ([]model.EnrichedTransaction, map[string]*model.CustomerProfile, error) {
	enriched := make([]model.EnrichedTransaction, 0, len(clean))
	profiles := make(map[string]*model.CustomerProfile)

	for _, rec := range clean {
		date, err := utils.ParseDate(rec.TransactionDate)
		if err != nil {
			return nil, nil, fmt.Errorf("unvalidated record %s: %w", rec.TransactionID, err)
		}

		e := model.EnrichedTransaction{
			Transaction:      rec,
			Date:             date,
			Revenue:          rec.Amount(),
			TransactionMonth: date.Format("2006-01"),
			Quarter:          quarterOf(date),
		}

		p, ok := profiles[rec.CustomerID]
		if !ok {
			p = &model.CustomerProfile{CustomerID: rec.CustomerID}
			profiles[rec.CustomerID] = p
		}
		p.Frequency++
		p.Monetary += e.Revenue
		if date.After(p.LastPurchase) {
			p.LastPurchase = date
		}

		e.Profile = p
		enriched = append(enriched, e)
	}

	for _, p := range profiles {
		days := utils.DaysBetween(p.LastPurchase, referenceDate)
		if days < 0 {
			days = 0
		}
		p.RecencyDays = days
	}

	fmt.Printf("⚙️ Enrichment Summary: %d records enriched, %d customer profiles built\n",
		len(enriched), len(profiles))

	return enriched, profiles, nil
}

// quarterOf formats a date as Q{1-4}_{year}.
func quarterOf(t time.Time) string {
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("Q%d_%d", q, t.Year())
}

// SortedProfiles returns the profiles ordered by customer id, for stable
// exports and reports.
func SortedProfiles(profiles map[string]*model.CustomerProfile) []*model.CustomerProfile {
	out := make([]*model.CustomerProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}
