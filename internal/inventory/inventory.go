// internal/inventory/inventory.go
package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
)

const (
	dirPermissions    = 0750
	busyTimeoutMs     = 5000
	connectionTimeout = 5 * time.Second
)

// Store keeps every sensor ever discovered and a log of scans.
type Store struct {
	db *sql.DB
}

// Device is one row of the devices table.
type Device struct {
	SensorID      uint8
	FirstSeen     time.Time
	LastSeen      time.Time
	LastScanID    string
	LastCount     int
	LastFrequency int
	LastFrame     string
	LastState     string // JSON
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		sensor_id      INTEGER PRIMARY KEY,
		first_seen     TEXT NOT NULL,
		last_seen      TEXT NOT NULL,
		last_scan_id   TEXT NOT NULL,
		last_count     INTEGER NOT NULL,
		last_frequency INTEGER NOT NULL,
		last_frame     TEXT NOT NULL,
		last_state     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scans (
		scan_id      TEXT PRIMARY KEY,
		started      TEXT NOT NULL,
		finished     TEXT NOT NULL,
		timeout_ms   INTEGER NOT NULL,
		device_count INTEGER NOT NULL
	)`,
}

// Open creates the database file (and its directory) and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("inventory: creating directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeoutMs)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("inventory: opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("inventory: verifying connection: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			db.Close() //nolint:errcheck
			return nil, fmt.Errorf("inventory: migration %d: %w", i+1, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("inventory: closing database: %w", err)
	}
	return nil
}

// Write records the scan and upserts every device seen in it, in one transaction.
// first_seen is kept from the first scan that ever saw the sensor.
func (s *Store) Write(ctx context.Context, res *scanner.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("inventory: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	reports := res.Reports()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO scans (scan_id, started, finished, timeout_ms, device_count)
		 VALUES (?, ?, ?, ?, ?)`,
		res.ScanID, formatTime(res.Started), formatTime(res.Finished),
		res.Timeout.Milliseconds(), len(reports),
	)
	if err != nil {
		return fmt.Errorf("inventory: insert scan: %w", err)
	}

	for _, r := range reports {
		state, err := json.Marshal(r.State)
		if err != nil {
			return fmt.Errorf("inventory: encode sensor %d: %w", r.SensorID, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO devices (sensor_id, first_seen, last_seen, last_scan_id,
			                      last_count, last_frequency, last_frame, last_state)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(sensor_id) DO UPDATE SET
			   last_seen      = excluded.last_seen,
			   last_scan_id   = excluded.last_scan_id,
			   last_count     = excluded.last_count,
			   last_frequency = excluded.last_frequency,
			   last_frame     = excluded.last_frame,
			   last_state     = excluded.last_state`,
			int(r.SensorID), formatTime(r.FirstSeen), formatTime(r.LastSeen), r.ScanID,
			r.Count, r.Frequency, r.Frame, string(state),
		)
		if err != nil {
			return fmt.Errorf("inventory: upsert sensor %d: %w", r.SensorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("inventory: commit: %w", err)
	}
	return nil
}

// Devices lists every known sensor ordered by id.
func (s *Store) Devices(ctx context.Context) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sensor_id, first_seen, last_seen, last_scan_id,
		        last_count, last_frequency, last_frame, last_state
		 FROM devices ORDER BY sensor_id`)
	if err != nil {
		return nil, fmt.Errorf("inventory: query devices: %w", err)
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		var (
			d           Device
			id          int
			first, last string
		)
		if err := rows.Scan(&id, &first, &last, &d.LastScanID,
			&d.LastCount, &d.LastFrequency, &d.LastFrame, &d.LastState); err != nil {
			return nil, fmt.Errorf("inventory: scan row: %w", err)
		}
		d.SensorID = uint8(id)
		d.FirstSeen = parseTime(first)
		d.LastSeen = parseTime(last)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ScanCount returns how many scans have been recorded.
func (s *Store) ScanCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("inventory: count scans: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s) //nolint:errcheck // written by formatTime
	return t
}
