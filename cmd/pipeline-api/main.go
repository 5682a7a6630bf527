package main

import (
	"sales-analytics-pipeline/internal/api"
	"sales-analytics-pipeline/internal/store"
	"sales-analytics-pipeline/pkg/router"

	_ "sales-analytics-pipeline/docs"
)

// @title Sales Analytics Pipeline API
// @version 1.0
// @description Batch analytics pipeline over sales transactions: validation, RFM segmentation, and KPI aggregation.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Init DB
	if err := store.InitDB("pipeline.db"); err != nil {
		panic(err)
	}

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r)

	// Start server
	r.Start(":8080")
}
