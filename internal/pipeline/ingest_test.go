package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-analytics-pipeline/internal/model"
)

func TestIngest_CSV(t *testing.T) {
	csvData := `transaction_id,customer_id,product_category,transaction_amount,transaction_date,payment_method,sales_rep
TXN1,CUST_00001,Electronics,199.99,2026-06-20 10:30:00,Credit Card,Alice Johnson
TXN2,CUST_00002,Audio,,2026-06-21,PayPal,Bob Smith
`
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0644))

	records, err := Ingest(model.SourceSpec{Type: "csv", Path: path})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "TXN1", records[0].TransactionID)
	assert.Equal(t, "CUST_00001", records[0].CustomerID)
	require.NotNil(t, records[0].TransactionAmount)
	assert.Equal(t, 199.99, *records[0].TransactionAmount)
	assert.Equal(t, "Credit Card", records[0].PaymentMethod)

	// A blank amount survives ingestion as missing so the validator counts it.
	assert.Nil(t, records[1].TransactionAmount)
}

func TestIngest_JSON(t *testing.T) {
	jsonData := `[
		{"transaction_id": "TXN1", "customer_id": "CUST_00001", "product_category": "Electronics",
		 "transaction_amount": 50.5, "transaction_date": "2026-06-20", "payment_method": "Cash", "sales_rep": "Carol Diaz"}
	]`
	path := filepath.Join(t.TempDir(), "transactions.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonData), 0644))

	records, err := Ingest(model.SourceSpec{Type: "json", Path: path})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].TransactionAmount)
	assert.Equal(t, 50.5, *records[0].TransactionAmount)
}

func TestIngest_UnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.xml")
	require.NoError(t, os.WriteFile(path, []byte("<x/>"), 0644))

	_, err := Ingest(model.SourceSpec{Type: "xml", Path: path})
	assert.Error(t, err)
}

func TestExportCSV_RoundTrip(t *testing.T) {
	records := []model.Transaction{
		txn("TXN1", "CUST_00001", 100, "2026-06-20"),
		txn("TXN2", "CUST_00002", 250, "2026-06-25"),
	}
	orch, err := NewOrchestrator("run-export", records, scenarioConfig())
	require.NoError(t, err)
	require.NoError(t, orch.Execute())

	path := filepath.Join(t.TempDir(), "out", "transactions.csv")
	em := &ExportManager{RunID: "run-export", Spec: &model.ExportSpec{File: path}}
	results := em.Export(orch.Enriched(), orch.Profiles(), orch.Report().KPIs)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, 2, results[0].RecordCount)

	back, err := Ingest(model.SourceSpec{Type: "csv", Path: path})
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "TXN1", back[0].TransactionID)
	require.NotNil(t, back[0].TransactionAmount)
	assert.Equal(t, 100.0, *back[0].TransactionAmount)
}
