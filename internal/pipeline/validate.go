package pipeline

import (
	"fmt"
	"regexp"
	"time"

	"sales-analytics-pipeline/internal/model"
	"sales-analytics-pipeline/pkg/utils"
)

// Range/format limits for a single transaction.
const (
	MaxTransactionAmount = 10000.0
	DateWindowDays       = 365
)

var customerIDPattern = regexp.MustCompile(`^CUST_\d{5}$`)

// Validate runs the data quality checks over a raw batch and returns the
// clean records plus a report. Invalid records are dropped, never repaired,
// and each one lands in exactly one report bucket (missing, duplicate, or
// out-of-range), checked in that order.
//
// referenceDate anchors the 365-day date window; pass the zero time to use
// the maximum parseable transaction date in the batch.
func Validate(records []model.Transaction, referenceDate time.Time) ([]model.Transaction, model.ValidationReport) {
	if referenceDate.IsZero() {
		referenceDate = maxTransactionDate(records)
	}

	report := model.ValidationReport{
		TotalRecords:  len(records),
		ReferenceDate: referenceDate,
	}

	clean := make([]model.Transaction, 0, len(records))
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		if hasMissingFields(rec) {
			report.MissingFieldCount++
			continue
		}

		// First occurrence of an id claims it, even if the record goes on to
		// fail the range check; every extra occurrence counts as a duplicate.
		if seen[rec.TransactionID] {
			report.DuplicateCount++
			continue
		}
		seen[rec.TransactionID] = true

		if err := checkRangeAndFormat(rec, referenceDate, &report); err != nil {
			report.OutOfRangeCount++
			continue
		}

		clean = append(clean, rec)
	}

	report.CleanRecords = len(clean)
	if report.TotalRecords == 0 {
		// Empty batch passes by convention, avoiding a zero division.
		report.QualityScore = 1.0
	} else {
		report.QualityScore = float64(report.CleanRecords) / float64(report.TotalRecords)
	}

	fmt.Printf("🔍 Validation Summary: %d clean, %d missing, %d duplicate, %d out-of-range (score %.3f)\n",
		report.CleanRecords, report.MissingFieldCount, report.DuplicateCount, report.OutOfRangeCount, report.QualityScore)

	return clean, report
}

func hasMissingFields(rec model.Transaction) bool {
	return rec.TransactionID == "" ||
		rec.CustomerID == "" ||
		rec.TransactionDate == "" ||
		rec.TransactionAmount == nil
}

// checkRangeAndFormat returns an error for the first failing check and bumps
// the matching breakdown counter on the report.
func checkRangeAndFormat(rec model.Transaction, referenceDate time.Time, report *model.ValidationReport) error {
	amount := rec.Amount()
	if amount <= 0 || amount > MaxTransactionAmount {
		report.AmountInvalid++
		return fmt.Errorf("transaction_amount %.2f outside (0, %.0f]", amount, MaxTransactionAmount)
	}

	if !customerIDPattern.MatchString(rec.CustomerID) {
		report.CustomerIDInvalid++
		return fmt.Errorf("customer_id %q does not match CUST_#####", rec.CustomerID)
	}

	date, err := utils.ParseDate(rec.TransactionDate)
	if err != nil {
		report.DateInvalid++
		return fmt.Errorf("transaction_date %q is not a calendar date", rec.TransactionDate)
	}
	day := utils.DateOnly(date)
	refDay := utils.DateOnly(referenceDate)
	if day.Before(refDay.AddDate(0, 0, -DateWindowDays)) || day.After(refDay) {
		report.DateInvalid++
		return fmt.Errorf("transaction_date %q outside the last %d days", rec.TransactionDate, DateWindowDays)
	}

	return nil
}

// maxTransactionDate scans the batch for the latest parseable date. Returns
// the zero time when nothing parses.
func maxTransactionDate(records []model.Transaction) time.Time {
	var max time.Time
	for _, rec := range records {
		date, err := utils.ParseDate(rec.TransactionDate)
		if err != nil {
			continue
		}
		if date.After(max) {
			max = date
		}
	}
	return max
}
