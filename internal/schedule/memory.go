package schedule

import (
	"context"
	"sync"
)

// MemoryRepository keeps schedules in process memory
type MemoryRepository struct {
	mu        sync.RWMutex
	schedules []Schedule
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository(initial ...Schedule) *MemoryRepository {
	return &MemoryRepository{schedules: append([]Schedule(nil), initial...)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]Schedule(nil), r.schedules...)
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.schedules {
		if s.ID == id {
			return s, nil
		}
	}
	return Schedule{}, ErrScheduleNotFound
}

func (r *MemoryRepository) Add(ctx context.Context, s Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.schedules {
		if existing.ID == s.ID {
			return ErrDuplicateSchedule
		}
	}
	r.schedules = append([]Schedule{s}, r.schedules...)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.schedules {
		if s.ID == id {
			r.schedules = append(r.schedules[:i], r.schedules[i+1:]...)
			return nil
		}
	}
	return ErrScheduleNotFound
}

func (r *MemoryRepository) Close() error {
	return nil
}
