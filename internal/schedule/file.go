package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileRepository stores schedules as a JSON array in a single file.
// Every call reads the file, so edits from other processes are picked up.
type FileRepository struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewFileRepository creates a repository backed by path. The file is
// created on the first write.
func NewFileRepository(path string, logger *zap.Logger) *FileRepository {
	return &FileRepository{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// load reads and migrates the stored records
func (r *FileRepository) load() ([]Schedule, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet - will be created on first save
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read schedules file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []legacyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse schedules file: %w", err)
	}

	now := r.now()
	schedules := make([]Schedule, 0, len(records))
	migrated := 0
	for _, rec := range records {
		if rec.CreatedAt == "" {
			migrated++
		}
		schedules = append(schedules, migrate(rec, now))
	}
	if migrated > 0 {
		r.logger.Info("Migrated legacy schedule records",
			zap.String("file", r.path),
			zap.Int("count", migrated))
	}

	return schedules, nil
}

// save writes the records back to disk
func (r *FileRepository) save(schedules []Schedule) error {
	if schedules == nil {
		schedules = []Schedule{}
	}
	data, err := json.MarshalIndent(schedules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedules: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create schedules dir: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schedules file: %w", err)
	}

	r.logger.Debug("Schedules saved",
		zap.String("file", r.path),
		zap.Int("count", len(schedules)))
	return nil
}

func (r *FileRepository) List(ctx context.Context) ([]Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedules, err := r.load()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(schedules)
	return schedules, nil
}

func (r *FileRepository) Get(ctx context.Context, id string) (Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedules, err := r.load()
	if err != nil {
		return Schedule{}, err
	}
	for _, s := range schedules {
		if s.ID == id {
			return s, nil
		}
	}
	return Schedule{}, ErrScheduleNotFound
}

func (r *FileRepository) Add(ctx context.Context, s Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedules, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range schedules {
		if existing.ID == s.ID {
			return ErrDuplicateSchedule
		}
	}
	return r.save(append([]Schedule{s}, schedules...))
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedules, err := r.load()
	if err != nil {
		return err
	}
	kept := schedules[:0]
	for _, s := range schedules {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(schedules) {
		return ErrScheduleNotFound
	}
	return r.save(kept)
}

func (r *FileRepository) Close() error {
	return nil
}
