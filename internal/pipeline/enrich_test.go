package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-analytics-pipeline/internal/model"
)

func TestEnrich_TimeFields(t *testing.T) {
	ref := refDate(t, "2026-06-30")

	tests := []struct {
		date    string
		month   string
		quarter string
	}{
		{"2026-01-15", "2026-01", "Q1_2026"},
		{"2026-03-31", "2026-03", "Q1_2026"},
		{"2026-04-01", "2026-04", "Q2_2026"},
		{"2025-12-31 23:59:59", "2025-12", "Q4_2025"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			enriched, _, err := Enrich([]model.Transaction{
				txn("TXN1", "CUST_00001", 100, tt.date),
			}, ref)
			require.NoError(t, err)
			require.Len(t, enriched, 1)

			assert.Equal(t, tt.month, enriched[0].TransactionMonth)
			assert.Equal(t, tt.quarter, enriched[0].Quarter)
			assert.Equal(t, 100.0, enriched[0].Revenue)
		})
	}
}

func TestEnrich_CustomerProfiles(t *testing.T) {
	ref := refDate(t, "2026-06-30")

	records := []model.Transaction{
		txn("TXN1", "CUST_00001", 50, "2026-06-20"), // 10 days before ref
		txn("TXN2", "CUST_00001", 50, "2026-05-21"), // 40 days
		txn("TXN3", "CUST_00001", 50, "2026-03-22"), // 100 days
		txn("TXN4", "CUST_00002", 200, "2026-06-30"),
	}

	enriched, profiles, err := Enrich(records, ref)
	require.NoError(t, err)
	require.Len(t, enriched, 4)
	require.Len(t, profiles, 2)

	p1 := profiles["CUST_00001"]
	require.NotNil(t, p1)
	assert.Equal(t, 3, p1.Frequency)
	assert.Equal(t, 150.0, p1.Monetary)
	assert.Equal(t, 10, p1.RecencyDays)

	// A purchase on the reference date itself means recency 0.
	p2 := profiles["CUST_00002"]
	require.NotNil(t, p2)
	assert.Equal(t, 0, p2.RecencyDays)

	// Every record links to its customer's profile.
	for _, e := range enriched {
		require.NotNil(t, e.Profile)
		assert.Equal(t, e.CustomerID, e.Profile.CustomerID)
	}
}

func TestEnrich_OrderIndependentAggregates(t *testing.T) {
	ref := refDate(t, "2026-06-30")

	forward := []model.Transaction{
		txn("TXN1", "CUST_00001", 10, "2026-06-01"),
		txn("TXN2", "CUST_00001", 20, "2026-06-10"),
		txn("TXN3", "CUST_00001", 30, "2026-06-20"),
	}
	reversed := []model.Transaction{forward[2], forward[1], forward[0]}

	_, a, err := Enrich(forward, ref)
	require.NoError(t, err)
	_, b, err := Enrich(reversed, ref)
	require.NoError(t, err)

	assert.Equal(t, a["CUST_00001"].Frequency, b["CUST_00001"].Frequency)
	assert.Equal(t, a["CUST_00001"].Monetary, b["CUST_00001"].Monetary)
	assert.Equal(t, a["CUST_00001"].RecencyDays, b["CUST_00001"].RecencyDays)
}

func TestEnrich_EmptyInput(t *testing.T) {
	enriched, profiles, err := Enrich(nil, refDate(t, "2026-06-30"))
	require.NoError(t, err)
	assert.Empty(t, enriched)
	assert.Empty(t, profiles)
}

func TestSortedProfiles(t *testing.T) {
	profiles := map[string]*model.CustomerProfile{
		"CUST_00003": {CustomerID: "CUST_00003"},
		"CUST_00001": {CustomerID: "CUST_00001"},
		"CUST_00002": {CustomerID: "CUST_00002"},
	}

	sorted := SortedProfiles(profiles)
	require.Len(t, sorted, 3)
	assert.Equal(t, "CUST_00001", sorted[0].CustomerID)
	assert.Equal(t, "CUST_00002", sorted[1].CustomerID)
	assert.Equal(t, "CUST_00003", sorted[2].CustomerID)
}
