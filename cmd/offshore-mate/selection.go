package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/calendar"
	"github.com/ramunasnognys/offshore-mate-v3/internal/config"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/ramunasnognys/offshore-mate-v3/internal/schedule"
	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
	"go.uber.org/zap"
)

var errNoSchedule = errors.New("no schedule configured: pass --start and --pattern, set schedule.start_date and schedule.pattern, or save one with 'offshore-mate schedules add'")

// activeRotation resolves the rotation in order: flags, --schedule, config, newest saved schedule
func activeRotation(ctx context.Context) (rotation.Config, error) {
	if startFlag != "" || patternFlag != "" {
		if startFlag == "" || patternFlag == "" {
			return rotation.Config{}, fmt.Errorf("--start and --pattern must be used together")
		}
		return rotation.ParseConfig(startFlag, patternFlag)
	}

	cfg := *appConfig
	if scheduleFlag != "" {
		cfg.Schedule = config.ScheduleConfig{ID: scheduleFlag}
	}
	return rotationFromConfig(ctx, &cfg)
}

// rotationFromConfig resolves the rotation from configuration alone
func rotationFromConfig(ctx context.Context, cfg *config.Config) (rotation.Config, error) {
	if cfg.Schedule.ID == "" && cfg.Schedule.HasInlineSchedule() {
		return rotation.ParseConfig(cfg.Schedule.StartDate, cfg.Schedule.Pattern)
	}

	repo, err := schedule.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return rotation.Config{}, fmt.Errorf("failed to open schedule storage: %w", err)
	}
	defer repo.Close()

	if cfg.Schedule.ID != "" {
		s, err := repo.Get(ctx, cfg.Schedule.ID)
		if err != nil {
			return rotation.Config{}, fmt.Errorf("schedule %s: %w", cfg.Schedule.ID, err)
		}
		return s.Config()
	}

	saved, err := repo.List(ctx)
	if err != nil {
		return rotation.Config{}, err
	}
	if len(saved) == 0 {
		return rotation.Config{}, errNoSchedule
	}
	logger.Debug("Using newest saved schedule",
		zap.String("id", saved[0].ID),
		zap.String("name", saved[0].Name))
	return saved[0].Config()
}

func activeCalendar(ctx context.Context) (*calendar.RotationCalendar, error) {
	cfg, err := activeRotation(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.NewRotationCalendar(cfg, time.Now), nil
}

// dateArg parses an optional date argument, defaulting to today
func dateArg(args []string) (time.Time, error) {
	if len(args) == 0 {
		return dateutil.Today(), nil
	}
	return dateutil.ParseDate(args[0])
}

// monthArg parses an optional YYYY-MM argument, defaulting to the current month
func monthArg(args []string) (int, time.Month, error) {
	if len(args) == 0 {
		today := dateutil.Today()
		return today.Year(), today.Month(), nil
	}
	return dateutil.ParseMonth(args[0])
}
