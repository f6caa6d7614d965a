package dialog

import (
	"time"

	"github.com/chatassist/dialog-manager/pkg/record"
)

// State names one step of a wizard. The zero value means no active step.
type State string

const (
	// StateDone marks a committed wizard; it never appears in a stored
	// session.
	StateDone State = "done"
	// StateCancelled marks an aborted wizard.
	StateCancelled State = "cancelled"
	// StateEditSelect is the edit-mode hub where the user picks the field
	// to change.
	StateEditSelect State = "edit_select"
)

// Session is the cursor of one active wizard. A user holds at most one
// session per record kind; starting a new wizard of the same kind replaces
// it.
type Session struct {
	UserID int64       `json:"user_id"`
	Kind   record.Kind `json:"kind"`
	State  State       `json:"state"`
	// EditRecordID is set when the wizard edits an existing record instead
	// of creating one.
	EditRecordID int64  `json:"edit_record_id,omitempty"`
	EditField    string `json:"edit_field,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	// LastInput advances on every accepted input and drives idle cleanup.
	LastInput time.Time `json:"last_input"`
}

func (s Session) Editing() bool {
	return s.EditRecordID != 0
}
