package dialog

import (
	"context"

	"github.com/chatassist/dialog-manager/pkg/record"
)

// Store keeps sessions and drafts for in-flight wizards. Implementations
// must be safe for concurrent use; the Manager additionally serialises
// operations per (user, kind) so a store never sees interleaved writes for
// the same wizard.
//
// Draft operations return serviceerr.ErrNotFound when no draft exists for
// the (user, kind) pair.
type Store interface {
	// BeginDraft creates a fresh empty draft, replacing any existing one
	// for the pair.
	BeginDraft(ctx context.Context, draft Draft) error
	Draft(ctx context.Context, userID int64, kind record.Kind) (Draft, error)
	SetField(ctx context.Context, userID int64, kind record.Kind, field string, value Value) error
	// TakeDraft returns the draft and removes it from the store in one
	// step. Callers use it after the draft's contents have been persisted.
	TakeDraft(ctx context.Context, userID int64, kind record.Kind) (Draft, error)
	DiscardDraft(ctx context.Context, userID int64, kind record.Kind) error

	Session(ctx context.Context, userID int64, kind record.Kind) (Session, error)
	StoreSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context, userID int64, kind record.Kind) error
	// ListSessions returns every stored session, for idle cleanup.
	ListSessions(ctx context.Context) ([]Session, error)
}
