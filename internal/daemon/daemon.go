// Package daemon sends evening reminders about the next day of a rotation.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/calendar"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultCronSpec runs the check at 18:00 every day
const DefaultCronSpec = "0 18 * * *"

// Options configures a Daemon
type Options struct {
	CronSpec  string
	Location  *time.Location
	Notifiers []Notifier
	Bot       Bot // optional command bot, run alongside the scheduler
	Now       func() time.Time
}

// Bot is a long-running command handler such as a Telegram poller
type Bot interface {
	Start()
	Stop()
}

// Daemon represents the daemon process
type Daemon struct {
	cronSpec  string
	schedule  cron.Schedule
	loc       *time.Location
	notifiers []Notifier
	bot       Bot
	now       func() time.Time
	logger    *zap.Logger

	mu          sync.Mutex // Protect against concurrent runs
	cal         *calendar.RotationCalendar
	lastRunDate string    // Track last successful run date to avoid duplicates
	lastRunTime time.Time // Track last successful run time
}

// Status is a snapshot of the daemon state
type Status struct {
	Schedule    string
	CronSpec    string
	NextRun     time.Time
	LastRunDate string
	LastRunTime time.Time
}

// New creates a daemon for cfg
func New(cfg rotation.Config, opts Options, logger *zap.Logger) (*Daemon, error) {
	if opts.CronSpec == "" {
		opts.CronSpec = DefaultCronSpec
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Notifiers) == 0 {
		opts.Notifiers = []Notifier{NewLogNotifier(logger)}
	}

	schedule, err := cron.ParseStandard(opts.CronSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", opts.CronSpec, err)
	}
	if spec, ok := schedule.(*cron.SpecSchedule); ok {
		spec.Location = opts.Location
	}

	d := &Daemon{
		cronSpec:  opts.CronSpec,
		schedule:  schedule,
		loc:       opts.Location,
		notifiers: opts.Notifiers,
		bot:       opts.Bot,
		now:       opts.Now,
		logger:    logger,
	}
	d.cal = calendar.NewRotationCalendar(cfg, d.localNow)
	return d, nil
}

func (d *Daemon) localNow() time.Time {
	return d.now().In(d.loc)
}

// SetConfig swaps the active rotation. A changed rotation may warrant a
// different reminder, so the once-per-day guard is reset.
func (d *Daemon) SetConfig(cfg rotation.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur := d.cal.Config()
	if cur.Anchor.Equal(cfg.Anchor) && cur.Pattern == cfg.Pattern {
		return
	}
	d.cal = calendar.NewRotationCalendar(cfg, d.localNow)
	d.lastRunDate = ""
	d.logger.Info("Active schedule changed", zap.String("schedule", cfg.String()))
}

// Calendar returns the calendar of the active rotation
func (d *Daemon) Calendar() *calendar.RotationCalendar {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cal
}

// Run starts the scheduler (and the bot, if any) and blocks until ctx is done
func (d *Daemon) Run(ctx context.Context) error {
	engine := cron.New(cron.WithLocation(d.loc))
	if _, err := engine.AddFunc(d.cronSpec, func() {
		d.logger.Info("Cron job triggered for rotation check")
		if _, err := d.RunOnce(ctx); err != nil {
			d.logger.Error("Rotation check failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("could not add rotation cron job: %w", err)
	}

	d.logger.Info("Daemon started",
		zap.String("cron_spec", d.cronSpec),
		zap.String("timezone", d.loc.String()),
		zap.String("schedule", d.Calendar().Config().String()),
		zap.Int("notifiers", len(d.notifiers)))

	// Check if we should run immediately (if scheduled time already passed today)
	if d.missedToday() {
		d.logger.Info("Scheduled time already passed today, running check now")
		if _, err := d.RunOnce(ctx); err != nil {
			d.logger.Error("Initial rotation check failed", zap.Error(err))
		}
	}

	engine.Start()
	d.logger.Info("Next check scheduled", zap.Time("next_run", d.nextRun()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		stopped := engine.Stop() // waits for running jobs
		<-stopped.Done()
		d.logger.Info("Scheduler stopped")
		return nil
	})
	if d.bot != nil {
		g.Go(func() error {
			d.bot.Start() // blocks until Stop
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			d.bot.Stop()
			return nil
		})
	}

	err := g.Wait()
	d.logger.Info("Daemon stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// RunOnce checks tomorrow and sends a reminder when one is due. It runs at
// most once per local calendar day; later calls the same day return false.
// Concurrent calls wait for the one in progress.
func (d *Daemon) RunOnce(ctx context.Context) (bool, error) {
	// IDEMPOTENT PROTECTION: Lock to prevent concurrent checks
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.localNow()
	today := now.Format("2006-01-02")
	if d.lastRunDate == today {
		d.logger.Debug("Already ran today, skipping",
			zap.String("last_run_date", d.lastRunDate),
			zap.Time("last_run_time", d.lastRunTime))
		return false, nil
	}

	cfg := d.cal.Config()
	reminder, due := ReminderFor(cfg, now)
	if !due {
		d.logger.Info("No reminder due",
			zap.String("tomorrow", d.cal.GetDayInfo(now.AddDate(0, 0, 1)).Status().String()))
		d.markRun(today, now)
		return false, nil
	}

	var errs []error
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, reminder); err != nil {
			d.logger.Error("Notifier failed",
				zap.String("notifier", n.Name()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	if len(errs) == len(d.notifiers) {
		// Nothing got through; allow a retry
		return false, errors.Join(errs...)
	}

	d.markRun(today, now)
	d.logger.Info("Reminder sent",
		zap.String("kind", reminder.Kind.String()),
		zap.Int("failed_notifiers", len(errs)))
	return true, errors.Join(errs...)
}

func (d *Daemon) markRun(today string, now time.Time) {
	d.lastRunDate = today
	d.lastRunTime = now
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		Schedule:    d.cal.Config().String(),
		CronSpec:    d.cronSpec,
		NextRun:     d.nextRun(),
		LastRunDate: d.lastRunDate,
		LastRunTime: d.lastRunTime,
	}
}

// nextRun calculates the next scheduled run time
func (d *Daemon) nextRun() time.Time {
	return d.schedule.Next(d.localNow())
}

// missedToday reports whether today's first scheduled run is already in the past
func (d *Daemon) missedToday() bool {
	now := d.localNow()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, d.loc)
	first := d.schedule.Next(midnight.Add(-time.Second))
	return first.Before(now) && first.Day() == now.Day()
}
