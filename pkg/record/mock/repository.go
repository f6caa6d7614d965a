package recordmock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chatassist/dialog-manager/internal/serviceerr"
	"github.com/chatassist/dialog-manager/pkg/record"
)

type RepositoryOption func(*Repository)

// Repository is an in-memory record.Gateway used in tests and local runs.
type Repository struct {
	mu        sync.Mutex
	nextID    int64
	records   map[int64]record.Record
	reminders map[int64]record.Reminder

	createErr, updateErr, getErr, deleteErr error
	listErr, countErr                       error
	dueErr, recurringErr, markErr, ownerErr error
}

func WithRecord(rec record.Record) RepositoryOption {
	return func(r *Repository) {
		r.records[rec.ID] = rec
		if rec.ID >= r.nextID {
			r.nextID = rec.ID + 1
		}
	}
}

func WithReminder(rem record.Reminder) RepositoryOption {
	return func(r *Repository) {
		r.reminders[rem.ID] = rem
		if rem.ID >= r.nextID {
			r.nextID = rem.ID + 1
		}
	}
}

func WithCreateError(err error) RepositoryOption {
	return func(r *Repository) { r.createErr = err }
}
func WithUpdateError(err error) RepositoryOption {
	return func(r *Repository) { r.updateErr = err }
}
func WithGetError(err error) RepositoryOption {
	return func(r *Repository) { r.getErr = err }
}
func WithDeleteError(err error) RepositoryOption {
	return func(r *Repository) { r.deleteErr = err }
}
func WithListError(err error) RepositoryOption {
	return func(r *Repository) { r.listErr = err }
}
func WithCountError(err error) RepositoryOption {
	return func(r *Repository) { r.countErr = err }
}
func WithDueError(err error) RepositoryOption {
	return func(r *Repository) { r.dueErr = err }
}
func WithRecurringError(err error) RepositoryOption {
	return func(r *Repository) { r.recurringErr = err }
}
func WithMarkSentError(err error) RepositoryOption {
	return func(r *Repository) { r.markErr = err }
}

var _ = record.Gateway(&Repository{})

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		nextID:    1,
		records:   make(map[int64]record.Record),
		reminders: make(map[int64]record.Reminder),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) CreateRecord(_ context.Context, kind record.Kind, ownerID int64, fields record.Fields) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	if kind == record.KindReminder {
		rem := record.Reminder{ID: id, OwnerID: ownerID, Repeat: record.RepeatNone}
		if note, ok := fields["note"].(string); ok {
			rem.Note = note
		}
		if at, ok := fields["at"].(time.Time); ok {
			rem.At = at
		}
		if priority, ok := fields["priority"].(int); ok {
			rem.Priority = priority
		}
		if repeat, ok := fields["repeat"].(string); ok && repeat != "" {
			rem.Repeat = record.Repeat(repeat)
		}
		r.reminders[id] = rem
		return id, nil
	}

	copied := make(record.Fields, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.records[id] = record.Record{
		ID:        id,
		Kind:      kind,
		OwnerID:   ownerID,
		Fields:    copied,
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (r *Repository) UpdateRecord(_ context.Context, kind record.Kind, id, ownerID int64, patch record.Patch) (bool, error) {
	if r.updateErr != nil {
		return false, r.updateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if reminderPatch, ok := patch.(record.ReminderPatch); ok {
		rem, ok := r.reminders[id]
		if !ok || rem.OwnerID != ownerID {
			return false, nil
		}
		if reminderPatch.Note != nil {
			rem.Note = *reminderPatch.Note
		}
		if reminderPatch.At != nil {
			at, err := time.Parse(time.RFC3339, *reminderPatch.At)
			if err != nil {
				return false, err
			}
			rem.At = at
		}
		if reminderPatch.Priority != nil {
			rem.Priority = *reminderPatch.Priority
		}
		if reminderPatch.Repeat != nil {
			rem.Repeat = *reminderPatch.Repeat
		}
		r.reminders[id] = rem
		return true, nil
	}

	rec, ok := r.records[id]
	if !ok || rec.Kind != kind || rec.OwnerID != ownerID {
		return false, nil
	}
	for k, v := range patch.Changes() {
		rec.Fields[k] = v
	}
	r.records[id] = rec
	return true, nil
}

func (r *Repository) GetRecord(_ context.Context, kind record.Kind, id, ownerID int64) (record.Record, error) {
	if r.getErr != nil {
		return record.Record{}, r.getErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if kind == record.KindReminder {
		rem, ok := r.reminders[id]
		if !ok || rem.OwnerID != ownerID {
			return record.Record{}, serviceerr.ErrNotFound
		}
		return record.Record{
			ID:      rem.ID,
			Kind:    record.KindReminder,
			OwnerID: rem.OwnerID,
			Fields: record.Fields{
				"note":     rem.Note,
				"at":       rem.At.Format(time.RFC3339),
				"priority": rem.Priority,
				"repeat":   string(rem.Repeat),
				"sent":     rem.Sent,
			},
		}, nil
	}

	rec, ok := r.records[id]
	if !ok || rec.Kind != kind || rec.OwnerID != ownerID {
		return record.Record{}, serviceerr.ErrNotFound
	}
	return rec, nil
}

func (r *Repository) DeleteRecord(_ context.Context, kind record.Kind, id, ownerID int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if kind == record.KindReminder {
		rem, ok := r.reminders[id]
		if !ok || rem.OwnerID != ownerID {
			return serviceerr.ErrNotFound
		}
		delete(r.reminders, id)
		return nil
	}

	rec, ok := r.records[id]
	if !ok || rec.Kind != kind || rec.OwnerID != ownerID {
		return serviceerr.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *Repository) ListRecords(_ context.Context, kind record.Kind, ownerID int64, filter record.Filter, limit, offset int) ([]record.Record, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	matched := r.match(kind, ownerID, filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *Repository) CountRecords(_ context.Context, kind record.Kind, ownerID int64, filter record.Filter) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.match(kind, ownerID, filter)), nil
}

func (r *Repository) match(kind record.Kind, ownerID int64, filter record.Filter) []record.Record {
	var matched []record.Record
	for _, rec := range r.records {
		if rec.Kind != kind || rec.OwnerID != ownerID {
			continue
		}
		ok := true
		for k, want := range filter {
			if got, _ := rec.Fields[k].(string); got != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	return matched
}

func (r *Repository) DueReminders(_ context.Context, now time.Time) ([]record.Reminder, error) {
	if r.dueErr != nil {
		return nil, r.dueErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var due []record.Reminder
	for _, rem := range r.reminders {
		if rem.Repeat == record.RepeatNone && !rem.Sent && !rem.At.After(now) {
			due = append(due, rem)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].Priority != due[j].Priority {
			return due[i].Priority > due[j].Priority
		}
		return due[i].At.Before(due[j].At)
	})
	return due, nil
}

func (r *Repository) RecurringReminders(_ context.Context) ([]record.Reminder, error) {
	if r.recurringErr != nil {
		return nil, r.recurringErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var recurring []record.Reminder
	for _, rem := range r.reminders {
		if rem.Repeat != record.RepeatNone {
			recurring = append(recurring, rem)
		}
	}
	sort.Slice(recurring, func(i, j int) bool { return recurring[i].ID < recurring[j].ID })
	return recurring, nil
}

func (r *Repository) MarkReminderSent(_ context.Context, id int64) error {
	if r.markErr != nil {
		return r.markErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.reminders[id]
	if !ok {
		return serviceerr.ErrNotFound
	}
	rem.Sent = true
	r.reminders[id] = rem
	return nil
}

func (r *Repository) AllReminderOwners(_ context.Context) ([]int64, error) {
	if r.ownerErr != nil {
		return nil, r.ownerErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int64]bool)
	var owners []int64
	for _, rem := range r.reminders {
		if !seen[rem.OwnerID] {
			seen[rem.OwnerID] = true
			owners = append(owners, rem.OwnerID)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners, nil
}

// Reminder returns the stored reminder by id, for test assertions.
func (r *Repository) Reminder(id int64) (record.Reminder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	return rem, ok
}
