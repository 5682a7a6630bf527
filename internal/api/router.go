package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"sales-analytics-pipeline/internal/api/handler"
	"sales-analytics-pipeline/pkg/router"
)

// RegisterRoutes wires the run API and the swagger UI.
func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/runs", handler.CreateRun)
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/report", handler.GetRunReport)
	r.GET("/api/v1/runs/*/kpis", handler.GetRunKPIs)
	r.GET("/api/v1/runs/*/segments", handler.GetRunSegments)
	r.GET("/api/v1/runs/*/errors", handler.GetRunErrors)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)

	r.GET("/swagger/*", func(w http.ResponseWriter, req *http.Request) {
		httpSwagger.WrapHandler.ServeHTTP(w, req)
	})
}
