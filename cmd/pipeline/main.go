package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/google/uuid"

	"sales-analytics-pipeline/internal/model"
	"sales-analytics-pipeline/internal/pipeline"
	"sales-analytics-pipeline/internal/store"
)

func main() {
	var (
		specPath   = flag.String("spec", "", "path to a JSON run spec")
		input      = flag.String("input", "", "path or URL of a transaction file to ingest")
		sourceType = flag.String("type", "csv", "input format: csv or json")
		generate   = flag.Int("generate", 0, "generate N synthetic transactions instead of ingesting")
		seed       = flag.Int64("seed", 0, "generator seed (0 = default)")
		dirtyRate  = flag.Float64("dirty", 0, "fraction of generated records to corrupt")
		exportFile = flag.String("export", "", "export file (.csv or .json)")
		dbPath     = flag.String("db", "", "sqlite database for run tracking and DB export")
	)
	flag.Parse()

	if *dbPath != "" {
		if err := store.InitDB(*dbPath); err != nil {
			log.Fatalf("failed to open run store: %v", err)
		}
	}

	spec, err := buildSpec(*specPath, *input, *sourceType, *generate, *seed, *dirtyRate, *exportFile, *dbPath)
	if err != nil {
		log.Fatalf("invalid run spec: %v", err)
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, spec); err != nil {
		log.Fatalf("failed to save run: %v", err)
	}

	report, err := pipeline.Run(context.Background(), runID, spec)
	if err != nil {
		log.Fatalf("run %s failed in stage %s: %v", runID, report.FailedStage, err)
	}

	printReport(report)
}

func buildSpec(specPath, input, sourceType string, generate int, seed int64, dirtyRate float64, exportFile, dbPath string) (model.RunSpec, error) {
	var spec model.RunSpec
	if specPath != "" {
		data, err := os.ReadFile(specPath)
		if err != nil {
			return spec, err
		}
		if err := json.Unmarshal(data, &spec); err != nil {
			return spec, err
		}
		return spec, nil
	}

	if input != "" {
		spec.Source = &model.SourceSpec{Type: sourceType, Path: input}
	} else {
		spec.Generate = &model.GenerateSpec{Count: generate, Seed: seed, DirtyRate: dirtyRate}
	}
	if exportFile != "" || dbPath != "" {
		spec.Export = &model.ExportSpec{File: exportFile}
		if dbPath != "" {
			spec.Export.DB = "sqlite"
		}
	}
	return spec, nil
}

func printReport(report model.RunReport) {
	fmt.Println("\n🎯 KEY BUSINESS METRICS")
	fmt.Println("========================================")

	if v := report.Validation; v != nil {
		fmt.Printf("🔍 Data Quality Score: %.1f%% (%d of %d records clean)\n",
			v.QualityScore*100, v.CleanRecords, v.TotalRecords)
	}
	k := report.KPIs
	if k == nil {
		return
	}

	fmt.Printf("💰 Total Revenue: $%.2f\n", k.TotalRevenue)
	fmt.Printf("🛒 Total Transactions: %d\n", k.TransactionCount)
	fmt.Printf("📊 Average Order Value: $%.2f\n", k.AverageOrderValue)
	fmt.Printf("👥 Unique Customers: %d\n", k.CustomerCount)
	fmt.Printf("🔄 Customer Retention Rate: %.1f%%\n", k.RetentionRate*100)
	if k.TopCategory != "" {
		fmt.Printf("🏆 Top Category: %s ($%.2f)\n", k.TopCategory, k.RevenueByCategory[k.TopCategory])
	}

	fmt.Println("\n👥 CUSTOMER SEGMENTS")
	for _, seg := range model.Segments() {
		stats := k.Segments[seg]
		fmt.Printf("  %-10s %5d customers  $%11.2f  (%.1f%% of revenue)\n",
			seg, stats.Count, stats.Revenue, stats.RevenueShare*100)
	}

	if len(k.MonthlySummary) > 0 {
		months := make([]string, 0, len(k.MonthlySummary))
		for m := range k.MonthlySummary {
			months = append(months, m)
		}
		sort.Strings(months)

		fmt.Println("\n📅 MONTHLY SUMMARY")
		for _, m := range months {
			stats := k.MonthlySummary[m]
			fmt.Printf("  %s  $%11.2f  %5d txns  AOV $%8.2f  %4d customers\n",
				m, stats.Revenue, stats.Transactions, stats.AvgOrderValue, stats.UniqueCustomers)
		}
	}
}
