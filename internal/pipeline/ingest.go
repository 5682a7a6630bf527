package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"sales-analytics-pipeline/internal/model"
	"sales-analytics-pipeline/pkg/utils"
)

// Ingest loads the raw transaction batch for a source (CSV or JSON, local
// path or URL). Malformed rows become transactions with missing fields so
// the validator counts them instead of the ingester dropping them silently.
func Ingest(source model.SourceSpec) ([]model.Transaction, error) {
	fmt.Printf("➡️ Starting ingestion for source: %s (%s)\n", source.Path, source.Type)

	reader, err := openSource(source.Path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	switch strings.ToLower(source.Type) {
	case "csv", "":
		return ingestCSV(reader, source.Path)
	case "json":
		return ingestJSON(reader, source.Path)
	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

func openSource(pathOrURL string) (io.ReadCloser, error) {
	if strings.HasPrefix(pathOrURL, "http") {
		resp, err := http.Get(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("failed to GET source: %w", err)
		}
		return resp.Body, nil
	}
	file, err := os.Open(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	return file, nil
}

func ingestCSV(r io.Reader, path string) ([]model.Transaction, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
	}

	var records []model.Transaction
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("CSV read error: %w", err)
		}

		var rec model.Transaction
		for i, h := range headers {
			if i >= len(row) {
				break
			}
			value := strings.TrimSpace(row[i])
			switch h {
			case "transaction_id":
				rec.TransactionID = value
			case "customer_id":
				rec.CustomerID = value
			case "product_category":
				rec.ProductCategory = value
			case "transaction_amount":
				rec.TransactionAmount = utils.ParseAmount(value)
			case "transaction_date":
				rec.TransactionDate = value
			case "payment_method":
				rec.PaymentMethod = value
			case "sales_rep":
				rec.SalesRep = value
			}
		}
		records = append(records, rec)
	}

	fmt.Printf("📄 CSV ingestion done: %d records read from %s\n", len(records), path)
	return records, nil
}

func ingestJSON(r io.Reader, path string) ([]model.Transaction, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON body: %w", err)
	}

	var records []model.Transaction
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	fmt.Printf("🌐 JSON ingestion done: %d records read from %s\n", len(records), path)
	return records, nil
}
