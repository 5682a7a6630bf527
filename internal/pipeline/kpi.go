package pipeline

import (
	"fmt"

	"sales-analytics-pipeline/internal/model"
)

// Aggregate computes the business KPIs over an enriched, segmented batch.
// Pure aggregation: inputs are not mutated, and every fixed segment appears
// in the output even with zero members.
func Aggregate(enriched []model.EnrichedTransaction, profiles map[string]*model.CustomerProfile) model.KPISummary {
	summary := model.KPISummary{
		TransactionCount:       len(enriched),
		CustomerCount:          len(profiles),
		Segments:               make(map[string]model.SegmentStats, len(model.Segments())),
		RevenueByCategory:      make(map[string]float64),
		RevenueByPaymentMethod: make(map[string]float64),
		RevenueBySalesRep:      make(map[string]float64),
		MonthlySummary:         make(map[string]model.MonthlyStats),
	}

	monthlyCustomers := make(map[string]map[string]bool)
	for _, e := range enriched {
		summary.TotalRevenue += e.Revenue
		summary.RevenueByCategory[e.ProductCategory] += e.Revenue
		summary.RevenueByPaymentMethod[e.PaymentMethod] += e.Revenue
		summary.RevenueBySalesRep[e.SalesRep] += e.Revenue

		stats := summary.MonthlySummary[e.TransactionMonth]
		stats.Revenue += e.Revenue
		stats.Transactions++
		summary.MonthlySummary[e.TransactionMonth] = stats

		if monthlyCustomers[e.TransactionMonth] == nil {
			monthlyCustomers[e.TransactionMonth] = make(map[string]bool)
		}
		monthlyCustomers[e.TransactionMonth][e.CustomerID] = true
	}

	// AOV is defined as 0.0 on an empty batch.
	if summary.TransactionCount > 0 {
		summary.AverageOrderValue = summary.TotalRevenue / float64(summary.TransactionCount)
	}

	for month, stats := range summary.MonthlySummary {
		stats.UniqueCustomers = len(monthlyCustomers[month])
		if stats.Transactions > 0 {
			stats.AvgOrderValue = stats.Revenue / float64(stats.Transactions)
		}
		summary.MonthlySummary[month] = stats
	}

	repeat := 0
	segmentRevenue := make(map[string]float64)
	segmentCount := make(map[string]int)
	for _, p := range profiles {
		if p.Frequency > 1 {
			repeat++
		}
		segmentCount[p.Segment]++
		segmentRevenue[p.Segment] += p.Monetary
	}
	if summary.CustomerCount > 0 {
		summary.RetentionRate = float64(repeat) / float64(summary.CustomerCount)
	}

	for _, seg := range model.Segments() {
		stats := model.SegmentStats{
			Count:   segmentCount[seg],
			Revenue: segmentRevenue[seg],
		}
		if summary.TotalRevenue > 0 {
			stats.RevenueShare = stats.Revenue / summary.TotalRevenue
		}
		summary.Segments[seg] = stats
	}

	summary.TopCategory = topKey(summary.RevenueByCategory)

	fmt.Printf("📈 KPI Summary: revenue %.2f over %d transactions, %d customers, retention %.1f%%\n",
		summary.TotalRevenue, summary.TransactionCount, summary.CustomerCount, summary.RetentionRate*100)

	return summary
}

// topKey picks the key with the highest value, breaking ties by name so the
// result is stable across runs.
func topKey(m map[string]float64) string {
	var best string
	var bestVal float64
	for k, v := range m {
		if best == "" || v > bestVal || (v == bestVal && k < best) {
			best, bestVal = k, v
		}
	}
	return best
}
