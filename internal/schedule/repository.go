package schedule

import (
	"context"
	"sort"
)

// Repository defines the operations for persisting named schedules
type Repository interface {
	// List returns every schedule, newest first
	List(ctx context.Context) ([]Schedule, error)
	// Get returns one schedule or ErrScheduleNotFound
	Get(ctx context.Context, id string) (Schedule, error)
	// Add stores a new schedule; ErrDuplicateSchedule if the ID is taken
	Add(ctx context.Context, s Schedule) error
	// Delete removes a schedule; ErrScheduleNotFound if it does not exist
	Delete(ctx context.Context, id string) error
	Close() error
}

// sortNewestFirst orders by CreatedAt descending, keeping insertion order for ties
func sortNewestFirst(schedules []Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].CreatedAt.After(schedules[j].CreatedAt)
	})
}
