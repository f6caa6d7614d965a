package record

import (
	"context"
	"time"
)

// Gateway is the persistence boundary of the system. The wizard engine
// commits through it, read views query it, and the reminder scheduler
// polls it. Implementations must make each operation atomic on its own
// record; no transaction ever spans two Gateway calls.
type Gateway interface {
	// Record operations
	CreateRecord(ctx context.Context, kind Kind, ownerID int64, fields Fields) (int64, error)
	UpdateRecord(ctx context.Context, kind Kind, id, ownerID int64, patch Patch) (bool, error)
	GetRecord(ctx context.Context, kind Kind, id, ownerID int64) (Record, error)
	DeleteRecord(ctx context.Context, kind Kind, id, ownerID int64) error
	ListRecords(ctx context.Context, kind Kind, ownerID int64, filter Filter, limit, offset int) ([]Record, error)
	CountRecords(ctx context.Context, kind Kind, ownerID int64, filter Filter) (int, error)

	// Reminder operations
	DueReminders(ctx context.Context, now time.Time) ([]Reminder, error)
	RecurringReminders(ctx context.Context) ([]Reminder, error)
	MarkReminderSent(ctx context.Context, id int64) error
	AllReminderOwners(ctx context.Context) ([]int64, error)
}
