package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/chatassist/dialog-manager/pkg/record"
)

const DefaultReportHour = 12

// Housekeeper is the optional cleanup job piggybacked on the scheduler
// loop.
type Housekeeper interface {
	CleanupIdleSessions(ctx context.Context) error
}

// Scheduler evaluates reminders against wall-clock time once per tick and
// hands due ones to the notifier. One-shot reminders are marked sent after a
// successful delivery; recurring ones re-fire on every matching minute and
// are deduplicated in memory so a tick overrunning its interval cannot
// deliver the same minute twice.
type Scheduler struct {
	gateway     record.Gateway
	notifier    Notifier
	housekeeper Housekeeper

	loc        *time.Location
	reportHour int
	now        func() time.Time

	// lastFired holds the last minute each recurring reminder was
	// delivered in.
	lastFired  map[int64]time.Time
	lastReport time.Time
}

type SchedulerOption func(*Scheduler)

func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) { s.loc = loc }
}

func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithReportHour sets the hour of day the payroll reports go out at.
func WithReportHour(hour int) SchedulerOption {
	return func(s *Scheduler) { s.reportHour = hour }
}

// WithHousekeeper runs idle wizard cleanup on every tick.
func WithHousekeeper(h Housekeeper) SchedulerOption {
	return func(s *Scheduler) { s.housekeeper = h }
}

func NewScheduler(gateway record.Gateway, notifier Notifier, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		gateway:    gateway,
		notifier:   notifier,
		loc:        time.UTC,
		reportHour: DefaultReportHour,
		now:        time.Now,
		lastFired:  make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the scheduler loop. Tick errors are logged, not fatal; the
// loop exits when the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	c := time.Tick(interval)
	for {
		if err := s.Tick(ctx); err != nil {
			slogctx.Error(ctx, "Error during scheduler tick", "error", err)
		}

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}

// Tick runs one scheduler pass.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now().In(s.loc)
	minute := now.Truncate(time.Minute)

	var errs []error
	if err := s.deliverDue(ctx, now); err != nil {
		errs = append(errs, err)
	}
	if err := s.deliverRecurring(ctx, minute); err != nil {
		errs = append(errs, err)
	}
	if err := s.sendPayrollReports(ctx, minute); err != nil {
		errs = append(errs, err)
	}
	if s.housekeeper != nil {
		if err := s.housekeeper.CleanupIdleSessions(ctx); err != nil {
			errs = append(errs, fmt.Errorf("cleaning up idle sessions: %w", err))
		}
	}
	return errors.Join(errs...)
}

// deliverDue handles one-shot reminders. A failed delivery is not marked
// sent, so it is retried on the next tick.
func (s *Scheduler) deliverDue(ctx context.Context, now time.Time) error {
	due, err := s.gateway.DueReminders(ctx, now)
	if err != nil {
		return fmt.Errorf("fetching due reminders: %w", err)
	}

	for _, rem := range due {
		if err := s.notifier.Notify(ctx, rem.OwnerID, dueMessage(rem)); err != nil {
			slogctx.Warn(ctx, "Could not deliver reminder", "reminder_id", rem.ID, "owner_id", rem.OwnerID, "error", err)
			continue
		}
		if err := s.gateway.MarkReminderSent(ctx, rem.ID); err != nil {
			slogctx.Warn(ctx, "Could not mark reminder sent", "reminder_id", rem.ID, "error", err)
		}
	}
	return nil
}

func (s *Scheduler) deliverRecurring(ctx context.Context, minute time.Time) error {
	recurring, err := s.gateway.RecurringReminders(ctx)
	if err != nil {
		return fmt.Errorf("fetching recurring reminders: %w", err)
	}

	for _, rem := range recurring {
		if !s.matchesMinute(rem, minute) {
			continue
		}
		if last, ok := s.lastFired[rem.ID]; ok && last.Equal(minute) {
			continue
		}
		if err := s.notifier.Notify(ctx, rem.OwnerID, dueMessage(rem)); err != nil {
			slogctx.Warn(ctx, "Could not deliver recurring reminder", "reminder_id", rem.ID, "owner_id", rem.OwnerID, "error", err)
			continue
		}
		s.lastFired[rem.ID] = minute
	}

	// Drop stale dedupe entries so the map stays bounded by the reminders
	// matching the current minute.
	for id, last := range s.lastFired {
		if !last.Equal(minute) {
			delete(s.lastFired, id)
		}
	}
	return nil
}

// matchesMinute compares only the time-of-day of the reminder against the
// current minute; weekly reminders additionally require the weekday to
// match.
func (s *Scheduler) matchesMinute(rem record.Reminder, minute time.Time) bool {
	at := rem.At.In(s.loc)
	if at.Hour() != minute.Hour() || at.Minute() != minute.Minute() {
		return false
	}
	if rem.Repeat == record.RepeatWeekly && at.Weekday() != minute.Weekday() {
		return false
	}
	return true
}

func dueMessage(rem record.Reminder) string {
	return fmt.Sprintf("Reminder: %s", rem.Note)
}
