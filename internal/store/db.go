// Package store persists runs, reports, and exported segments in sqlite.
// All functions are no-ops until InitDB is called, so library use of the
// pipeline works without a database.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sales-analytics-pipeline/internal/model"
)

var db *sql.DB

// InitDB opens the sqlite database and creates the schema.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			spec TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS run_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS stage_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			stage TEXT,
			started_at DATETIME,
			finished_at DATETIME,
			records_in INTEGER,
			records_out INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS run_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			stage TEXT,
			level TEXT,
			message TEXT,
			fields TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS run_reports (
			run_id TEXT PRIMARY KEY,
			report TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS kpi_summaries (
			run_id TEXT PRIMARY KEY,
			summary TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS customer_segments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			customer_id TEXT,
			recency_days INTEGER,
			frequency INTEGER,
			monetary REAL,
			rfm_score TEXT,
			segment TEXT
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a newly submitted run spec with status pending.
func SaveRun(runID string, spec model.RunSpec) error {
	if db == nil {
		return nil
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, specJSON, "pending", now, now)
	return err
}

// UpdateRunStatus updates a run's lifecycle status.
func UpdateRunStatus(runID, status string) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), runID)
	return err
}

// SaveRunError records a run-fatal error.
func SaveRunError(runID string, runErr error) error {
	if db == nil || runErr == nil {
		return nil
	}
	_, err := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, runErr.Error(), time.Now().UTC())
	return err
}

// GetRunErrors returns the recorded errors for a run, newest first.
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY created_at DESC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var msg string
		var createdAt time.Time
		if err := rows.Scan(&msg, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{"message": msg, "createdAt": createdAt})
	}
	return out, rows.Err()
}

// ListRuns returns all runs with basic info, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches a run's spec and status.
func GetRun(runID string) (map[string]interface{}, error) {
	if db == nil {
		return nil, sql.ErrNoRows
	}
	var specJSON, status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        runID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// SaveStageProgress records one stage's timing and record flow.
func SaveStageProgress(runID string, timing model.StageTiming) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`INSERT INTO stage_progress (run_id, stage, started_at, finished_at, records_in, records_out)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, timing.Stage, timing.StartedAt, timing.FinishedAt, timing.RecordsIn, timing.RecordsOut)
	return err
}

// SaveRunLog appends a structured log line for a run stage.
func SaveRunLog(runID, stage, level, message string, fields map[string]interface{}) error {
	if db == nil {
		return nil
	}
	fieldsJSON := "{}"
	if fields != nil {
		if b, err := json.Marshal(fields); err == nil {
			fieldsJSON = string(b)
		}
	}
	_, err := db.Exec(`INSERT INTO run_logs (run_id, stage, level, message, fields, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, stage, level, message, fieldsJSON, time.Now().UTC())
	return err
}

// SaveRunReport stores the full run report as JSON, replacing any previous one.
func SaveRunReport(runID string, report model.RunReport) error {
	if db == nil {
		return nil
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT OR REPLACE INTO run_reports (run_id, report, created_at) VALUES (?, ?, ?)`,
		runID, reportJSON, time.Now().UTC())
	return err
}

// GetRunReport loads a stored run report.
func GetRunReport(runID string) (*model.RunReport, error) {
	if db == nil {
		return nil, sql.ErrNoRows
	}
	var reportJSON string
	if err := db.QueryRow(`SELECT report FROM run_reports WHERE run_id = ?`, runID).Scan(&reportJSON); err != nil {
		return nil, err
	}
	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SaveKPISummary stores the KPI summary for DB exports.
func SaveKPISummary(runID string, summary *model.KPISummary) error {
	if db == nil || summary == nil {
		return nil
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT OR REPLACE INTO kpi_summaries (run_id, summary, created_at) VALUES (?, ?, ?)`,
		runID, summaryJSON, time.Now().UTC())
	return err
}

// SaveCustomerSegments stores the segmented profiles for DB exports. Existing
// rows for the run are replaced so re-running a finished run stays idempotent.
func SaveCustomerSegments(runID string, profiles []*model.CustomerProfile) error {
	if db == nil {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM customer_segments WHERE run_id = ?`, runID); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO customer_segments (run_id, customer_id, recency_days, frequency, monetary, rfm_score, segment)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range profiles {
		if _, err := stmt.Exec(runID, p.CustomerID, p.RecencyDays, p.Frequency, p.Monetary, p.RFMScore, p.Segment); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetCustomerSegments loads the exported segments for a run.
func GetCustomerSegments(runID string) ([]model.CustomerProfile, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT customer_id, recency_days, frequency, monetary, rfm_score, segment
		FROM customer_segments WHERE run_id = ? ORDER BY customer_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CustomerProfile
	for rows.Next() {
		var p model.CustomerProfile
		if err := rows.Scan(&p.CustomerID, &p.RecencyDays, &p.Frequency, &p.Monetary, &p.RFMScore, &p.Segment); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
