package business

import (
	"context"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/chatassist/dialog-manager/internal/config"
	"github.com/chatassist/dialog-manager/internal/reminder"
)

// SchedulerMain runs the reminder scheduler loop until the context is
// cancelled. Idle wizard cleanup piggybacks on the same loop.
func SchedulerMain(ctx context.Context, cfg *config.Config) error {
	eng, closeFn, err := initEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the engine: %w", err)
	}
	defer closeFn()

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	sched := reminder.NewScheduler(eng.Gateway, logNotifier{},
		reminder.WithLocation(loc),
		reminder.WithReportHour(cfg.Scheduler.ReportHour),
		reminder.WithHousekeeper(eng.Manager),
	)

	slogctx.Info(ctx, "Starting reminder scheduler", "tick_interval", cfg.Scheduler.TickInterval)
	return sched.Run(ctx, cfg.Scheduler.TickInterval)
}

// logNotifier records deliveries in the log. The chat transport plugs in
// here when the scheduler is embedded in the bot process.
type logNotifier struct{}

func (logNotifier) Notify(ctx context.Context, userID int64, message string) error {
	slogctx.Info(ctx, "Delivering notification", "user_id", userID, "message", message)
	return nil
}
