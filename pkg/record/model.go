// Package record defines the persisted record model and the Gateway
// interface through which wizards commit, read views are computed and the
// reminder scheduler fetches due items.
package record

import "time"

// Kind identifies a record type.
type Kind string

const (
	KindPlace    Kind = "place"
	KindExpense  Kind = "expense"
	KindMedia    Kind = "media"
	KindNote     Kind = "note"
	KindWishlist Kind = "wishlist"
	KindTips     Kind = "tips"
	KindReminder Kind = "reminder"
)

// Kinds lists every known record kind.
func Kinds() []Kind {
	return []Kind{KindPlace, KindExpense, KindMedia, KindNote, KindWishlist, KindTips, KindReminder}
}

// Fields is the schemaless field set of a record. Keys are the wizard
// field names; values are the parsed values the wizard validated.
type Fields map[string]any

// Record is one persisted record.
type Record struct {
	ID        int64
	Kind      Kind
	OwnerID   int64
	Fields    Fields
	CreatedAt time.Time
}

// Filter restricts listing and counting to records whose fields equal the
// given values.
type Filter map[string]string

// Repeat is a reminder repeat mode.
type Repeat string

const (
	RepeatNone   Repeat = "none"
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
)

// Reminder is a persisted reminder. The Sent flag is meaningful only for
// Repeat == RepeatNone; recurring reminders are never marked sent and are
// re-evaluated every scheduler tick.
type Reminder struct {
	ID       int64
	OwnerID  int64
	Priority int
	At       time.Time
	Note     string
	Repeat   Repeat
	Sent     bool
}
