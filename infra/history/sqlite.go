// Package history provides persistent stores for daily production totals.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/opsreport/config"
	core "github.com/kilianp07/opsreport/core/history"
)

// SQLiteStore persists production records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS production_history (
        location TEXT,
        day TEXT,
        connection TEXT,
        designation TEXT,
        produced REAL,
        pumped REAL,
        recorded_at INTEGER,
        PRIMARY KEY(location, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or replaces the record of the location and day.
func (s *SQLiteStore) Add(ctx context.Context, r core.Record) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO production_history
        (location, day, connection, designation, produced, pumped, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(location, day) DO UPDATE SET
            connection = excluded.connection,
            designation = excluded.designation,
            produced = excluded.produced,
            pumped = excluded.pumped,
            recorded_at = excluded.recorded_at`,
		r.Location, r.Date, r.Connection, r.Designation, r.ProducedGal, r.PumpedGal, r.RecordedAt.UnixNano())
	return err
}

// Query returns records matching q ordered by day and location.
func (s *SQLiteStore) Query(ctx context.Context, q core.Query) ([]core.Record, error) {
	var args []any
	query := `SELECT location, day, connection, designation, produced, pumped, recorded_at
        FROM production_history WHERE 1=1`
	if q.From != "" {
		query += ` AND day >= ?`
		args = append(args, q.From)
	}
	if q.To != "" {
		query += ` AND day <= ?`
		args = append(args, q.To)
	}
	if q.Location != "" {
		query += ` AND location = ?`
		args = append(args, q.Location)
	}
	query += ` ORDER BY day, location`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var r core.Record
		var ts int64
		if err := rows.Scan(&r.Location, &r.Date, &r.Connection, &r.Designation, &r.ProducedGal, &r.PumpedGal, &ts); err != nil {
			return nil, err
		}
		r.RecordedAt = time.Unix(0, ts).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Open creates the store selected by cfg.
func Open(cfg config.HistoryConfig) (core.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "jsonl":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "memory", "":
		return core.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown history backend %s", cfg.Backend)
	}
}
