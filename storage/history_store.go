package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// HistoryStore records completed export runs in a local SQLite file.
type HistoryStore struct {
	db *sql.DB
}

// ExportRecord is one completed export run.
type ExportRecord struct {
	ID         int64
	CreatedAt  time.Time
	UserID     int
	Year       int
	Month      int
	EntryCount int
	TotalHours float64
	CSVPath    string
	ExcelPath  string
}

// Period renders the record's month as YYYY-MM.
func (r ExportRecord) Period() string {
	return fmt.Sprintf("%04d-%02d", r.Year, r.Month)
}

func OpenHistory(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	user_id INTEGER NOT NULL CHECK(user_id > 0),
	year INTEGER NOT NULL,
	month INTEGER NOT NULL CHECK(month BETWEEN 1 AND 12),
	entry_count INTEGER NOT NULL CHECK(entry_count >= 0),
	total_hours REAL NOT NULL,
	csv_path TEXT NOT NULL,
	excel_path TEXT NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// RecordExport inserts one run and returns its row ID. A zero CreatedAt is
// filled with the current time.
func (s *HistoryStore) RecordExport(record ExportRecord) (int64, error) {
	if record.UserID <= 0 {
		return 0, fmt.Errorf("user id must be > 0, got %d", record.UserID)
	}
	if record.Month < 1 || record.Month > 12 {
		return 0, fmt.Errorf("month must be between 1 and 12, got %d", record.Month)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	const insertStmt = `
INSERT INTO exports (
	created_at,
	user_id,
	year,
	month,
	entry_count,
	total_hours,
	csv_path,
	excel_path
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := s.db.Exec(
		insertStmt,
		record.CreatedAt.Format(time.RFC3339),
		record.UserID,
		record.Year,
		record.Month,
		record.EntryCount,
		record.TotalHours,
		record.CSVPath,
		record.ExcelPath,
	)
	if err != nil {
		return 0, fmt.Errorf("insert export record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted row id: %w", err)
	}
	return id, nil
}

// ListExports returns all recorded runs, most recent first.
func (s *HistoryStore) ListExports() ([]ExportRecord, error) {
	const query = `
SELECT
	id,
	created_at,
	user_id,
	year,
	month,
	entry_count,
	total_hours,
	csv_path,
	excel_path
FROM exports
ORDER BY created_at DESC, id DESC;
`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	records := make([]ExportRecord, 0, 32)
	for rows.Next() {
		var (
			record     ExportRecord
			createdRaw string
		)
		if err := rows.Scan(
			&record.ID,
			&createdRaw,
			&record.UserID,
			&record.Year,
			&record.Month,
			&record.EntryCount,
			&record.TotalHours,
			&record.CSVPath,
			&record.ExcelPath,
		); err != nil {
			return nil, fmt.Errorf("scan export record: %w", err)
		}

		record.CreatedAt, err = time.Parse(time.RFC3339, createdRaw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}

	return records, nil
}

// GetExportByID returns one run by ID.
func (s *HistoryStore) GetExportByID(id int64) (ExportRecord, bool, error) {
	if id <= 0 {
		return ExportRecord{}, false, fmt.Errorf("export id must be > 0")
	}

	const query = `
SELECT
	id,
	created_at,
	user_id,
	year,
	month,
	entry_count,
	total_hours,
	csv_path,
	excel_path
FROM exports
WHERE id = ?;
`

	var (
		record     ExportRecord
		createdRaw string
	)
	err := s.db.QueryRow(query, id).Scan(
		&record.ID,
		&createdRaw,
		&record.UserID,
		&record.Year,
		&record.Month,
		&record.EntryCount,
		&record.TotalHours,
		&record.CSVPath,
		&record.ExcelPath,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExportRecord{}, false, nil
		}
		return ExportRecord{}, false, fmt.Errorf("query export %d: %w", id, err)
	}

	record.CreatedAt, err = time.Parse(time.RFC3339, createdRaw)
	if err != nil {
		return ExportRecord{}, false, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}

	return record, true, nil
}
