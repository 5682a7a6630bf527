package datagen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-analytics-pipeline/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
}

func TestGenerator_Deterministic(t *testing.T) {
	spec := model.GenerateSpec{Count: 100, Seed: 7}

	a := New(spec).Generate(fixedNow())
	b := New(spec).Generate(fixedNow())

	assert.Equal(t, a, b)
}

func TestGenerator_SeedChangesOutput(t *testing.T) {
	a := New(model.GenerateSpec{Count: 100, Seed: 1}).Generate(fixedNow())
	b := New(model.GenerateSpec{Count: 100, Seed: 2}).Generate(fixedNow())

	assert.NotEqual(t, a, b)
}

func TestGenerator_CleanBatchShape(t *testing.T) {
	records := New(model.GenerateSpec{Count: 250, Seed: 7, Customers: 50, Days: 30}).Generate(fixedNow())
	require.Len(t, records, 250)

	seen := make(map[string]bool)
	for _, rec := range records {
		assert.False(t, seen[rec.TransactionID], "duplicate id %s in clean batch", rec.TransactionID)
		seen[rec.TransactionID] = true

		assert.Regexp(t, `^CUST_\d{5}$`, rec.CustomerID)
		require.NotNil(t, rec.TransactionAmount)
		assert.Greater(t, *rec.TransactionAmount, 0.0)
		assert.LessOrEqual(t, *rec.TransactionAmount, 10000.0)

		date, err := time.Parse(model.DateTimeLayout, rec.TransactionDate)
		require.NoError(t, err)
		assert.False(t, date.After(fixedNow()))
		assert.False(t, date.Before(fixedNow().AddDate(0, 0, -30)))

		assert.NotEmpty(t, rec.ProductCategory)
		assert.NotEmpty(t, rec.PaymentMethod)
		assert.NotEmpty(t, rec.SalesRep)
	}
}

func TestGenerator_DirtyRateCorruptsRecords(t *testing.T) {
	records := New(model.GenerateSpec{Count: 500, Seed: 7, DirtyRate: 0.2}).Generate(fixedNow())

	dirty := 0
	seen := make(map[string]bool)
	for _, rec := range records {
		bad := rec.TransactionAmount == nil ||
			rec.CustomerID == "" ||
			seen[rec.TransactionID] ||
			(rec.TransactionAmount != nil && *rec.TransactionAmount > 10000) ||
			(rec.CustomerID != "" && len(rec.CustomerID) != len("CUST_00000"))
		if _, err := time.Parse(model.DateTimeLayout, rec.TransactionDate); err != nil {
			bad = true
		}
		if bad {
			dirty++
		}
		seen[rec.TransactionID] = true
	}

	// Roughly DirtyRate * Count records should be corrupted.
	assert.Greater(t, dirty, 50)
	assert.Less(t, dirty, 200)
}
