package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sales-analytics-pipeline/internal/model"
	"sales-analytics-pipeline/internal/store"
	"sales-analytics-pipeline/pkg/utils"
)

// ExportResult represents the outcome of one export operation.
type ExportResult struct {
	Type        string    `json:"type"` // "file", "database"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// ExportManager writes a finished run's outputs to the configured targets.
type ExportManager struct {
	RunID  string
	Spec   *model.ExportSpec
	Output *utils.OutputManager
}

// Export writes the enriched records, profiles, and KPI summary to every
// configured target. With no target configured the outputs go to a default
// per-run CSV under the output directory.
func (em *ExportManager) Export(enriched []model.EnrichedTransaction, profiles map[string]*model.CustomerProfile, summary *model.KPISummary) []ExportResult {
	var results []ExportResult

	spec := em.Spec
	if spec == nil {
		spec = &model.ExportSpec{}
	}

	file := spec.File
	if file == "" && spec.DB == "" {
		path, err := em.Output.RunFilePath(em.RunID, "transactions.csv")
		if err != nil {
			return append(results, ExportResult{Type: "file", Success: false, Error: err.Error(), ExportedAt: time.Now().UTC()})
		}
		file = path
	}

	if file != "" {
		results = append(results, em.exportToFile(file, enriched, profiles, summary))
	}
	if spec.DB != "" {
		results = append(results, em.exportToDatabase(profiles, summary))
	}

	for i, r := range results {
		if r.Success {
			fmt.Printf("✅ Export %d: %d records exported to %s (%s)\n", i+1, r.RecordCount, r.Path, r.Type)
		} else {
			fmt.Printf("❌ Export %d failed: %s\n", i+1, r.Error)
		}
	}
	return results
}

func (em *ExportManager) exportToFile(path string, enriched []model.EnrichedTransaction, profiles map[string]*model.CustomerProfile, summary *model.KPISummary) ExportResult {
	var count int
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		count, err = em.exportJSON(path, enriched, profiles, summary)
	default:
		count, err = em.exportCSV(path, enriched)
	}

	result := ExportResult{
		Type:        "file",
		Path:        path,
		RecordCount: count,
		Success:     err == nil,
		ExportedAt:  time.Now().UTC(),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

var enrichedCSVHeader = []string{
	"transaction_id", "customer_id", "product_category", "transaction_amount",
	"transaction_date", "payment_method", "sales_rep",
	"revenue", "transaction_month", "quarter", "rfm_score", "segment",
}

func (em *ExportManager) exportCSV(path string, enriched []model.EnrichedTransaction) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(enrichedCSVHeader); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	for _, e := range enriched {
		rfm, segment := "", ""
		if e.Profile != nil {
			rfm, segment = e.Profile.RFMScore, e.Profile.Segment
		}
		row := []string{
			e.TransactionID, e.CustomerID, e.ProductCategory,
			strconv.FormatFloat(e.Amount(), 'f', 2, 64),
			e.TransactionDate, e.PaymentMethod, e.SalesRep,
			strconv.FormatFloat(e.Revenue, 'f', 2, 64),
			e.TransactionMonth, e.Quarter, rfm, segment,
		}
		if err := writer.Write(row); err != nil {
			return count, fmt.Errorf("failed to write row: %w", err)
		}
		count++
	}
	return count, nil
}

func (em *ExportManager) exportJSON(path string, enriched []model.EnrichedTransaction, profiles map[string]*model.CustomerProfile, summary *model.KPISummary) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	payload := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":       em.RunID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(enriched),
		},
		"transactions":      enriched,
		"customer_profiles": SortedProfiles(profiles),
		"kpi_summary":       summary,
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(enriched), nil
}

func (em *ExportManager) exportToDatabase(profiles map[string]*model.CustomerProfile, summary *model.KPISummary) ExportResult {
	result := ExportResult{
		Type:       "database",
		Path:       "customer_segments",
		ExportedAt: time.Now().UTC(),
	}

	if err := store.SaveCustomerSegments(em.RunID, SortedProfiles(profiles)); err != nil {
		result.Error = err.Error()
		return result
	}
	if err := store.SaveKPISummary(em.RunID, summary); err != nil {
		result.Error = err.Error()
		return result
	}

	result.RecordCount = len(profiles)
	result.Success = true
	return result
}
