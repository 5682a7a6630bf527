package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sales-analytics-pipeline/internal/model"
	"sales-analytics-pipeline/internal/pipeline"
	"sales-analytics-pipeline/internal/store"
)

// CreateRun creates a new analytics pipeline run
// @Summary Create a new run
// @Description Submit a run spec (input source or generation, config, export) and start the pipeline
// @Tags runs
// @Accept json
// @Produce json
// @Param run body model.RunSpec true "Run configuration"
// @Success 200 {object} map[string]interface{} "Run created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [post]
func CreateRun(w http.ResponseWriter, r *http.Request) {
	var spec model.RunSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// Reject a bad configuration up front; the pipeline would refuse it anyway.
	if err := pipeline.ValidateConfig(spec.Config.WithDefaults()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if spec.Source != nil && spec.Generate != nil {
		http.Error(w, "Configure either source or generate, not both", http.StatusBadRequest)
		return
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, spec); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	go func() {
		pipeline.Run(context.Background(), runID, spec)
	}()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Run created successfully!",
		"runID":     runID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	})
}

// ListRuns retrieves all pipeline runs
// @Summary List all runs
// @Description Get every run with its current status
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun retrieves a specific run
// @Summary Get run
// @Description Retrieve a run's spec and status
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "")
	if !ok {
		return
	}
	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetRunReport retrieves the full run report
// @Summary Get run report
// @Description Retrieve the validation report, KPI summary, and stage timings for a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.RunReport "Run report"
// @Failure 404 {object} map[string]interface{} "Report not found"
// @Router /runs/{id}/report [get]
func GetRunReport(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/report")
	if !ok {
		return
	}
	report, err := store.GetRunReport(runID)
	if err != nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// GetRunKPIs retrieves a run's KPI summary
// @Summary Get run KPIs
// @Description Retrieve the KPI summary for a completed run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.KPISummary "KPI summary"
// @Failure 404 {object} map[string]interface{} "KPIs not found"
// @Router /runs/{id}/kpis [get]
func GetRunKPIs(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/kpis")
	if !ok {
		return
	}
	report, err := store.GetRunReport(runID)
	if err != nil || report.KPIs == nil {
		http.Error(w, "KPIs not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report.KPIs)
}

// GetRunSegments retrieves the exported customer segments for a run
// @Summary Get run segments
// @Description Retrieve the segmented customer profiles stored by a DB export
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Customer segments"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/segments [get]
func GetRunSegments(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/segments")
	if !ok {
		return
	}
	segments, err := store.GetCustomerSegments(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve segments", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":   runID,
		"segments": segments,
		"count":    len(segments),
	})
}

// GetRunErrors retrieves errors for a run
// @Summary Get run errors
// @Description Retrieve all run-fatal errors recorded for a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/errors")
	if !ok {
		return
	}
	errs, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"errors": errs,
		"count":  len(errs),
	})
}

// runIDFromPath extracts the run id between the API prefix and an optional
// suffix, writing a 400 when the path doesn't fit.
func runIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	const prefix = "/api/v1/runs/"
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}
	runID := path[len(prefix) : len(path)-len(suffix)]
	if runID == "" || strings.Contains(runID, "/") {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return "", false
	}
	return runID, true
}
