// Package reminder runs the background scheduler: due and recurring
// reminders, idle wizard cleanup, and the twice-monthly payroll reports.
package reminder

import (
	"context"
)

// Notifier delivers scheduler output to users. In production this is the
// chat transport; tests substitute a recorder.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, userID int64, message string) error

func (f NotifierFunc) Notify(ctx context.Context, userID int64, message string) error {
	return f(ctx, userID, message)
}
