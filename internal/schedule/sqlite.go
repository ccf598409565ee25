package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS schedules (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	start_date TEXT NOT NULL,
	pattern TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedules_created_at ON schedules(created_at);
`

// storedTimeLayout is fixed width so created_at sorts lexically
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores schedules in a local SQLite database
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewSQLiteRepository opens (or creates) the database at path
func NewSQLiteRepository(path string, logger *zap.Logger) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent use
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("SQLite schedule store opened", zap.String("path", path))
	return &SQLiteRepository{db: db, path: path, logger: logger}, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Schedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, start_date, pattern, created_at
		 FROM schedules ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]Schedule, 0)
	for rows.Next() {
		s, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}
	return schedules, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (Schedule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, start_date, pattern, created_at
		 FROM schedules WHERE id = ?`, id)
	s, err := scanSQLite(row)
	if err == sql.ErrNoRows {
		return Schedule{}, ErrScheduleNotFound
	}
	return s, err
}

func (r *SQLiteRepository) Add(ctx context.Context, s Schedule) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO schedules (id, name, description, start_date, pattern, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, nullString(s.Description), s.StartDate, s.Pattern,
		s.CreatedAt.UTC().Format(storedTimeLayout))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateSchedule
		}
		return fmt.Errorf("error creating schedule: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting schedule: %w", err)
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (Schedule, error) {
	var (
		s           Schedule
		description sql.NullString
		createdAt   string
	)
	if err := row.Scan(&s.ID, &s.Name, &description, &s.StartDate, &s.Pattern, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return Schedule{}, err
		}
		return Schedule{}, fmt.Errorf("error scanning schedule: %w", err)
	}
	s.Description = description.String

	t, err := time.Parse(storedTimeLayout, createdAt)
	if err != nil {
		return Schedule{}, fmt.Errorf("schedule %s: bad created_at %q: %w", s.ID, createdAt, err)
	}
	s.CreatedAt = t
	return s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
