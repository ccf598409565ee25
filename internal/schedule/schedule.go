// Package schedule stores named rotation configurations.
//
// Stores keep Schedule records verbatim; they never interpret the pattern.
// Use Schedule.Config to project a record into a rotation.Config.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrDuplicateSchedule = errors.New("schedule with this id already exists")
)

// Schedule is a persisted, named rotation
type Schedule struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   string    `json:"startDate" yaml:"startDate"`
	Pattern     string    `json:"pattern" yaml:"pattern"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// New validates startDate and pattern and returns a record with a fresh ID.
// An empty name defaults to "Rotation (<pattern>)".
func New(name, description, startDate, pattern string, now time.Time) (Schedule, error) {
	cfg, err := rotation.ParseConfig(startDate, pattern)
	if err != nil {
		return Schedule{}, err
	}

	s := Schedule{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		StartDate:   dateutil.FormatDate(cfg.Anchor),
		Pattern:     cfg.Pattern.String(),
		CreatedAt:   now.UTC(),
	}
	if s.Name == "" {
		s.Name = defaultName(s.Pattern)
	}
	return s, nil
}

// Config projects the record into a rotation configuration
func (s Schedule) Config() (rotation.Config, error) {
	cfg, err := rotation.ParseConfig(s.StartDate, s.Pattern)
	if err != nil {
		return rotation.Config{}, fmt.Errorf("schedule %s: %w", s.ID, err)
	}
	return cfg, nil
}

func defaultName(pattern string) string {
	return fmt.Sprintf("Rotation (%s)", pattern)
}

// legacyRecord is the pre-naming format: id, startDate and pattern only
type legacyRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	Pattern     string `json:"pattern"`
	CreatedAt   string `json:"createdAt"`
}

// migrate upgrades a stored record. Records without createdAt predate
// names: they get a generated name and description, and a creation time
// taken from a millisecond-timestamp ID when there is one.
func migrate(r legacyRecord, now time.Time) Schedule {
	s := Schedule{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		Pattern:     r.Pattern,
	}

	if r.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
			s.CreatedAt = t.UTC()
			return s
		}
	}

	s.Name = defaultName(r.Pattern)
	if start, err := dateutil.ParseDate(r.StartDate); err == nil {
		s.Description = "Starts on " + start.Format("Jan 2, 2006")
	}
	s.CreatedAt = now.UTC()
	if ms, err := strconv.ParseInt(r.ID, 10, 64); err == nil && ms > 0 {
		s.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return s
}
