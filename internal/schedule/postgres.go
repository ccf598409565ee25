package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute

	pqUniqueViolation = "23505"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS schedules (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	start_date DATE NOT NULL,
	pattern TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_schedules_created_at ON schedules(created_at DESC);
`

// PostgresRepository stores schedules in PostgreSQL
type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(ctx context.Context, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewPostgresRepository wraps db and creates the schedules table if needed
func NewPostgresRepository(ctx context.Context, db *sql.DB, logger *zap.Logger) (*PostgresRepository, error) {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresRepository{db: db, logger: logger}, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Schedule, error) {
	query := `SELECT id, name, description, to_char(start_date, 'YYYY-MM-DD'), pattern, created_at
               FROM schedules ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]Schedule, 0)
	for rows.Next() {
		s, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}
	return schedules, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Schedule, error) {
	query := `SELECT id, name, description, to_char(start_date, 'YYYY-MM-DD'), pattern, created_at
               FROM schedules WHERE id = $1`

	s, err := scanPostgres(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return Schedule{}, ErrScheduleNotFound
	}
	return s, err
}

func (r *PostgresRepository) Add(ctx context.Context, s Schedule) error {
	query := `INSERT INTO schedules (id, name, description, start_date, pattern, created_at)
               VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, s.ID, s.Name, nullString(s.Description), s.StartDate, s.Pattern, s.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateSchedule
		}
		return fmt.Errorf("error creating schedule: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
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

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func scanPostgres(row rowScanner) (Schedule, error) {
	var (
		s           Schedule
		description sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Name, &description, &s.StartDate, &s.Pattern, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Schedule{}, err
		}
		return Schedule{}, fmt.Errorf("error scanning schedule: %w", err)
	}
	s.Description = description.String
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}
