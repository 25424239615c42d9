// Package storage keeps an SQLite audit trail of harvest runs: one row per
// run and one row per extracted record, in table order.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/masahif/listharvest/internal/crawler"
	"github.com/masahif/listharvest/internal/extract"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id does not exist
var ErrRunNotFound = errors.New("run not found")

// SQLiteStorage stores runs and records in SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// Run describes one stored harvest run
type Run struct {
	ID         int64
	SeedURL    string
	Fields     []string
	StartedAt  time.Time
	FinishedAt *time.Time
	Stats      crawler.Stats
	Error      string
}

// StoredRecord is a record read back from the database
type StoredRecord struct {
	Position   int
	URL        string
	FetchError string
	Values     map[string]extract.Value
	CrawledAt  time.Time
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection prevents lock conflicts
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	storage := &SQLiteStorage{db: db}

	if err := storage.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// InitSchema creates the database schema
func (s *SQLiteStorage) InitSchema() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// StartRun inserts a run row and returns its id
func (s *SQLiteStorage) StartRun(seedURL string, fields []string) (int64, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("failed to encode fields: %w", err)
	}

	res, err := s.db.Exec(
		"INSERT INTO crawl_runs (seed_url, fields_json, started_at) VALUES (?, ?, ?)",
		seedURL, string(fieldsJSON), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}
	return res.LastInsertId()
}

// SaveRecord stores one record at its table position
func (s *SQLiteStorage) SaveRecord(runID int64, position int, rec extract.Record) error {
	values, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.URL, err)
	}

	var fetchErr sql.NullString
	if rec.Err != "" {
		fetchErr = sql.NullString{String: rec.Err, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO records (run_id, position, url, fetch_error, values_json, crawled_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, position, rec.URL, fetchErr, string(values), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.URL, err)
	}
	return nil
}

// FinishRun records the final counters of a run. runErr may be nil.
func (s *SQLiteStorage) FinishRun(runID int64, stats crawler.Stats, runErr error) error {
	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := s.db.Exec(`
		UPDATE crawl_runs
		SET finished_at = ?, index_pages = ?, index_failures = ?, worklist_size = ?,
		    attempted = ?, failures = ?, duration_ms = ?, run_error = ?
		WHERE id = ?
	`, time.Now().UTC(), stats.IndexPages, stats.IndexFailures, stats.WorklistSize,
		stats.LeavesAttempted, stats.LeafFailures, stats.Duration.Milliseconds(), errText, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun returns a stored run
func (s *SQLiteStorage) GetRun(runID int64) (*Run, error) {
	var (
		run        Run
		fieldsJSON string
		finished   sql.NullTime
		indexPages sql.NullInt64
		indexFails sql.NullInt64
		worklist   sql.NullInt64
		attempted  sql.NullInt64
		failures   sql.NullInt64
		durationMs sql.NullInt64
		runErr     sql.NullString
	)

	err := s.db.QueryRow(`
		SELECT id, seed_url, fields_json, started_at, finished_at, index_pages, index_failures,
		       worklist_size, attempted, failures, duration_ms, run_error
		FROM crawl_runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.SeedURL, &fieldsJSON, &run.StartedAt, &finished, &indexPages,
		&indexFails, &worklist, &attempted, &failures, &durationMs, &runErr)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &run.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	run.Stats = crawler.Stats{
		IndexPages:      int(indexPages.Int64),
		IndexFailures:   int(indexFails.Int64),
		WorklistSize:    int(worklist.Int64),
		LeavesAttempted: int(attempted.Int64),
		LeafFailures:    int(failures.Int64),
		StartTime:       run.StartedAt,
		Duration:        time.Duration(durationMs.Int64) * time.Millisecond,
	}
	run.Error = runErr.String

	return &run, nil
}

// LoadRecords returns the records of a run in table order
func (s *SQLiteStorage) LoadRecords(runID int64) ([]StoredRecord, error) {
	rows, err := s.db.Query(`
		SELECT position, url, fetch_error, values_json, crawled_at
		FROM records WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []StoredRecord
	for rows.Next() {
		var (
			rec      StoredRecord
			fetchErr sql.NullString
			values   string
		)
		if err := rows.Scan(&rec.Position, &rec.URL, &fetchErr, &values, &rec.CrawledAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.FetchError = fetchErr.String
		if err := json.Unmarshal([]byte(values), &rec.Values); err != nil {
			return nil, fmt.Errorf("failed to decode values of %s: %w", rec.URL, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetMeta retrieves a metadata value
func (s *SQLiteStorage) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM crawl_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta: %w", err)
	}
	return value, nil
}

// SetMeta stores a metadata value
func (s *SQLiteStorage) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO crawl_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set meta: %w", err)
	}
	return nil
}

// Observer returns a pipeline observer that saves every record under runID
func (s *SQLiteStorage) Observer(runID int64) crawler.Observer {
	return &runObserver{storage: s, runID: runID}
}

type runObserver struct {
	storage *SQLiteStorage
	runID   int64
}

func (o *runObserver) OnRecord(position int, rec extract.Record) error {
	return o.storage.SaveRecord(o.runID, position, rec)
}
