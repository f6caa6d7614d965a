package dialogvalkey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/chatassist/dialog-manager/pkg/dialog"
	"github.com/chatassist/dialog-manager/pkg/record"
)

type objectType string

const (
	objectTypeDraft   objectType = "draft"
	objectTypeSession objectType = "session"
)

var (
	ErrGetDraft     = errors.New("getting draft from store")
	ErrStoreDraft   = errors.New("setting draft into storage")
	ErrGetSession   = errors.New("getting session from store")
	ErrStoreSession = errors.New("setting session into storage")
	ErrGetSessions  = errors.New("getting sessions from store")
)

// Store keeps wizard state under "<prefix>:<type>:<user>:<kind>" keys. A
// positive ttl acts as a safety net against entries that outlive the idle
// housekeeper, for example when the housekeeper instance is down.
type Store struct {
	store *store
	ttl   time.Duration
}

var _ dialog.Store = &Store{}

func NewStore(valkeyClient valkey.Client, prefix string, ttl time.Duration) *Store {
	return &Store{
		store: newStore(valkeyClient, prefix),
		ttl:   ttl,
	}
}

func objectID(userID int64, kind record.Kind) string {
	return fmt.Sprintf("%d:%s", userID, kind)
}

func (s *Store) BeginDraft(ctx context.Context, draft dialog.Draft) error {
	if err := s.store.Set(ctx, objectTypeDraft, objectID(draft.UserID, draft.Kind), draft, s.ttl); err != nil {
		return errors.Join(ErrStoreDraft, err)
	}

	return nil
}

func (s *Store) Draft(ctx context.Context, userID int64, kind record.Kind) (dialog.Draft, error) {
	var draft dialog.Draft
	if err := s.store.Get(ctx, objectTypeDraft, objectID(userID, kind), &draft); err != nil {
		return dialog.Draft{}, errors.Join(ErrGetDraft, err)
	}

	return draft, nil
}

// SetField is a read-modify-write; the manager serialises operations per
// (user, kind), so there is no concurrent writer for the same key.
func (s *Store) SetField(ctx context.Context, userID int64, kind record.Kind, field string, value dialog.Value) error {
	draft, err := s.Draft(ctx, userID, kind)
	if err != nil {
		return err
	}
	draft.Set(field, value)

	if err := s.store.Set(ctx, objectTypeDraft, objectID(userID, kind), draft, s.ttl); err != nil {
		return errors.Join(ErrStoreDraft, err)
	}

	return nil
}

func (s *Store) TakeDraft(ctx context.Context, userID int64, kind record.Kind) (dialog.Draft, error) {
	draft, err := s.Draft(ctx, userID, kind)
	if err != nil {
		return dialog.Draft{}, err
	}

	if err := s.store.Destroy(ctx, objectTypeDraft, objectID(userID, kind)); err != nil {
		return dialog.Draft{}, err
	}

	return draft, nil
}

func (s *Store) DiscardDraft(ctx context.Context, userID int64, kind record.Kind) error {
	return s.store.Destroy(ctx, objectTypeDraft, objectID(userID, kind))
}

func (s *Store) Session(ctx context.Context, userID int64, kind record.Kind) (dialog.Session, error) {
	var sess dialog.Session
	if err := s.store.Get(ctx, objectTypeSession, objectID(userID, kind), &sess); err != nil {
		return dialog.Session{}, errors.Join(ErrGetSession, err)
	}

	return sess, nil
}

func (s *Store) StoreSession(ctx context.Context, session dialog.Session) error {
	if err := s.store.Set(ctx, objectTypeSession, objectID(session.UserID, session.Kind), session, s.ttl); err != nil {
		return errors.Join(ErrStoreSession, err)
	}

	return nil
}

func (s *Store) DeleteSession(ctx context.Context, userID int64, kind record.Kind) error {
	return s.store.Destroy(ctx, objectTypeSession, objectID(userID, kind))
}

func (s *Store) ListSessions(ctx context.Context) ([]dialog.Session, error) {
	var sessions []dialog.Session
	if err := getStoreObjects(ctx, s.store, objectTypeSession, "*", &sessions); err != nil {
		return nil, errors.Join(ErrGetSessions, err)
	}

	return sessions, nil
}
