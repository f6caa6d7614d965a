// Package dialogmemory holds sessions and drafts in process memory. It is
// the default store for single-instance deployments and for tests; wizards
// do not survive a restart.
package dialogmemory

import (
	"context"
	"sync"

	"github.com/chatassist/dialog-manager/internal/serviceerr"
	"github.com/chatassist/dialog-manager/pkg/dialog"
	"github.com/chatassist/dialog-manager/pkg/record"
)

type key struct {
	UserID int64
	Kind   record.Kind
}

type Store struct {
	mu       sync.RWMutex
	drafts   map[key]dialog.Draft
	sessions map[key]dialog.Session
}

var _ dialog.Store = &Store{}

func NewStore() *Store {
	return &Store{
		drafts:   make(map[key]dialog.Draft),
		sessions: make(map[key]dialog.Session),
	}
}

func (s *Store) BeginDraft(_ context.Context, draft dialog.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[key{UserID: draft.UserID, Kind: draft.Kind}] = cloneDraft(draft)
	return nil
}

func (s *Store) Draft(_ context.Context, userID int64, kind record.Kind) (dialog.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[key{UserID: userID, Kind: kind}]
	if !ok {
		return dialog.Draft{}, serviceerr.ErrNotFound
	}
	return cloneDraft(d), nil
}

func (s *Store) SetField(_ context.Context, userID int64, kind record.Kind, field string, value dialog.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{UserID: userID, Kind: kind}
	d, ok := s.drafts[k]
	if !ok {
		return serviceerr.ErrNotFound
	}
	d.Set(field, value)
	s.drafts[k] = d
	return nil
}

func (s *Store) TakeDraft(_ context.Context, userID int64, kind record.Kind) (dialog.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{UserID: userID, Kind: kind}
	d, ok := s.drafts[k]
	if !ok {
		return dialog.Draft{}, serviceerr.ErrNotFound
	}
	delete(s.drafts, k)
	return d, nil
}

func (s *Store) DiscardDraft(_ context.Context, userID int64, kind record.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, key{UserID: userID, Kind: kind})
	return nil
}

func (s *Store) Session(_ context.Context, userID int64, kind record.Kind) (dialog.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[key{UserID: userID, Kind: kind}]
	if !ok {
		return dialog.Session{}, serviceerr.ErrNotFound
	}
	return sess, nil
}

func (s *Store) StoreSession(_ context.Context, session dialog.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key{UserID: session.UserID, Kind: session.Kind}] = session
	return nil
}

func (s *Store) DeleteSession(_ context.Context, userID int64, kind record.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key{UserID: userID, Kind: kind})
	return nil
}

func (s *Store) ListSessions(_ context.Context) ([]dialog.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]dialog.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// cloneDraft copies the field map so callers cannot mutate stored state
// behind the lock.
func cloneDraft(d dialog.Draft) dialog.Draft {
	fields := make(map[string]dialog.Value, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	d.Fields = fields
	return d
}
