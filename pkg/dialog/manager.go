package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/chatassist/dialog-manager/internal/serviceerr"
	"github.com/chatassist/dialog-manager/pkg/export"
	"github.com/chatassist/dialog-manager/pkg/record"
)

const (
	DefaultIdleTimeout = time.Hour

	mirrorTimeout = 15 * time.Second
)

// ViewInvalidator drops cached read views of one user after their data
// changed.
type ViewInvalidator interface {
	Invalidate(ownerID int64)
}

// Manager drives the wizards: it owns the session and draft store, runs
// step validation, and commits finished drafts through the persistence
// gateway. All operations on the same (user, kind) wizard are serialised.
type Manager struct {
	store   Store
	gateway record.Gateway
	views   ViewInvalidator
	sink    export.Sink
	flows   map[record.Kind]*Flow
	locks   keyedMutex

	loc         *time.Location
	now         func() time.Time
	idleTimeout time.Duration
}

type ManagerOption func(*Manager)

// WithLocation sets the timezone used for "today" defaults and reminder
// timestamps.
func WithLocation(loc *time.Location) ManagerOption {
	return func(m *Manager) { m.loc = loc }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithIdleTimeout sets how long a wizard may sit without input before
// CleanupIdleSessions drops it.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTimeout = d }
}

func NewManager(store Store, gateway record.Gateway, views ViewInvalidator, sink export.Sink, opts ...ManagerOption) *Manager {
	if sink == nil {
		sink = export.Noop{}
	}
	m := &Manager{
		store:       store,
		gateway:     gateway,
		views:       views,
		sink:        sink,
		flows:       Flows(),
		loc:         time.UTC,
		now:         time.Now,
		idleTimeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result reports the outcome of one wizard operation.
type Result struct {
	State  State
	Prompt string
	// Invalid carries the rejection reason when the input failed
	// validation; the wizard stays on the same step.
	Invalid string
	// Committed is set when the wizard finished and its record was stored.
	Committed bool
	RecordID  int64
	Cancelled bool
	// Updated is set when an edit-mode field change was persisted.
	Updated bool
}

func (m *Manager) env() Env {
	return Env{Now: m.now(), Location: m.loc}
}

// Start begins a new wizard for the given record kind, replacing any wizard
// of the same kind the user already had running.
func (m *Manager) Start(ctx context.Context, userID int64, kind record.Kind) (Result, error) {
	flow, ok := m.flows[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", serviceerr.ErrUnknownWizard, kind)
	}

	lock := m.locks.get(sessionKey{UserID: userID, Kind: kind})
	lock.Lock()
	defer lock.Unlock()

	now := m.now()
	if err := m.store.BeginDraft(ctx, NewDraft(userID, kind, now)); err != nil {
		return Result{}, fmt.Errorf("beginning draft: %w", err)
	}
	sess := Session{
		UserID:    userID,
		Kind:      kind,
		State:     flow.Entry(),
		CreatedAt: now,
		LastInput: now,
	}
	if err := m.store.StoreSession(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("storing session: %w", err)
	}

	entry, _ := flow.Step(flow.Entry())
	return Result{State: entry.State, Prompt: entry.Prompt}, nil
}

// StartEdit begins an edit wizard over an existing record. The record must
// belong to the user.
func (m *Manager) StartEdit(ctx context.Context, userID int64, kind record.Kind, recordID int64) (Result, error) {
	flow, ok := m.flows[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", serviceerr.ErrUnknownWizard, kind)
	}
	if _, err := m.gateway.GetRecord(ctx, kind, recordID, userID); err != nil {
		return Result{}, fmt.Errorf("loading record to edit: %w", err)
	}

	lock := m.locks.get(sessionKey{UserID: userID, Kind: kind})
	lock.Lock()
	defer lock.Unlock()

	now := m.now()
	draft := NewDraft(userID, kind, now)
	draft.Set("record_id", NumberValue(float64(recordID)))
	if err := m.store.BeginDraft(ctx, draft); err != nil {
		return Result{}, fmt.Errorf("beginning draft: %w", err)
	}
	sess := Session{
		UserID:       userID,
		Kind:         kind,
		State:        StateEditSelect,
		EditRecordID: recordID,
		CreatedAt:    now,
		LastInput:    now,
	}
	if err := m.store.StoreSession(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("storing session: %w", err)
	}

	return Result{State: StateEditSelect, Prompt: editPrompt(flow)}, nil
}

// Handle feeds one input to the user's active wizard of the given kind.
// Returns serviceerr.ErrNoActiveWizard when there is none.
func (m *Manager) Handle(ctx context.Context, userID int64, kind record.Kind, in Input) (Result, error) {
	flow, ok := m.flows[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", serviceerr.ErrUnknownWizard, kind)
	}

	lock := m.locks.get(sessionKey{UserID: userID, Kind: kind})
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.store.Session(ctx, userID, kind)
	if errors.Is(err, serviceerr.ErrNotFound) {
		return Result{}, serviceerr.ErrNoActiveWizard
	}
	if err != nil {
		return Result{}, fmt.Errorf("loading session: %w", err)
	}

	if in.Control == ControlCancel {
		return m.cancel(ctx, sess)
	}
	if sess.Editing() {
		return m.handleEdit(ctx, flow, sess, in)
	}
	return m.handleStep(ctx, flow, sess, in)
}

// Cancel aborts the user's active wizard of the given kind, discarding its
// draft.
func (m *Manager) Cancel(ctx context.Context, userID int64, kind record.Kind) (Result, error) {
	return m.Handle(ctx, userID, kind, CancelInput())
}

// Active returns the user's current session of the given kind, so a
// transport can decide where to route a message.
func (m *Manager) Active(ctx context.Context, userID int64, kind record.Kind) (Session, error) {
	return m.store.Session(ctx, userID, kind)
}

func (m *Manager) handleStep(ctx context.Context, flow *Flow, sess Session, in Input) (Result, error) {
	step, ok := flow.Step(sess.State)
	if !ok {
		return Result{}, fmt.Errorf("session in unknown state %q for %s wizard", sess.State, flow.Kind)
	}

	draft, err := m.store.Draft(ctx, sess.UserID, sess.Kind)
	if err != nil {
		return Result{}, fmt.Errorf("loading draft: %w", err)
	}

	val, res, err := m.answer(step, in, draft)
	if err != nil || res.Invalid != "" {
		return res, err
	}

	if err := m.store.SetField(ctx, sess.UserID, sess.Kind, step.Field, val); err != nil {
		return Result{}, fmt.Errorf("storing field: %w", err)
	}
	draft.Set(step.Field, val)

	next := flow.next(step, draft)
	if next == StateDone {
		return m.commit(ctx, flow, sess, draft)
	}

	sess.State = next
	sess.LastInput = m.now()
	if err := m.store.StoreSession(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("storing session: %w", err)
	}

	nextStep, _ := flow.Step(next)
	return Result{State: next, Prompt: nextStep.Prompt}, nil
}

// answer validates one input against a step. A validation failure comes
// back as a reprompting Result, not an error.
func (m *Manager) answer(step Step, in Input, draft Draft) (Value, Result, error) {
	if in.Control == ControlSkip {
		if !step.Optional {
			return Value{}, reprompt(step, "this step cannot be skipped"), nil
		}
		return AbsentValue(), Result{}, nil
	}

	val, err := step.Validate(in, draft, m.env())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return Value{}, reprompt(step, verr.Reason), nil
		}
		return Value{}, Result{}, err
	}
	return val, Result{}, nil
}

func (m *Manager) commit(ctx context.Context, flow *Flow, sess Session, draft Draft) (Result, error) {
	fields := flow.Commit(draft, m.env())

	id, err := m.gateway.CreateRecord(ctx, flow.Kind, sess.UserID, fields)
	if err != nil {
		// The draft and session stay behind so the user can retry.
		return Result{}, fmt.Errorf("committing %s record: %w", flow.Kind, err)
	}

	if _, err := m.store.TakeDraft(ctx, sess.UserID, sess.Kind); err != nil {
		slogctx.Warn(ctx, "Could not clear committed draft", "user_id", sess.UserID, "kind", sess.Kind, "error", err)
	}
	if err := m.store.DeleteSession(ctx, sess.UserID, sess.Kind); err != nil {
		slogctx.Warn(ctx, "Could not delete finished session", "user_id", sess.UserID, "kind", sess.Kind, "error", err)
	}
	if m.views != nil {
		m.views.Invalidate(sess.UserID)
	}
	m.mirror(ctx, flow.Kind, sess.UserID, fields)

	return Result{State: StateDone, Committed: true, RecordID: id}, nil
}

// mirror forwards the committed record to the export sink without blocking
// or failing the commit.
func (m *Manager) mirror(ctx context.Context, kind record.Kind, ownerID int64, fields record.Fields) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
		defer cancel()
		if err := m.sink.Mirror(ctx, kind, ownerID, fields); err != nil {
			slogctx.Warn(ctx, "Could not mirror committed record", "kind", kind, "owner_id", ownerID, "error", err)
		}
	}()
}

func (m *Manager) cancel(ctx context.Context, sess Session) (Result, error) {
	if err := m.store.DiscardDraft(ctx, sess.UserID, sess.Kind); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
		return Result{}, fmt.Errorf("discarding draft: %w", err)
	}
	if err := m.store.DeleteSession(ctx, sess.UserID, sess.Kind); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
		return Result{}, fmt.Errorf("deleting session: %w", err)
	}
	return Result{State: StateCancelled, Cancelled: true}, nil
}

func (m *Manager) handleEdit(ctx context.Context, flow *Flow, sess Session, in Input) (Result, error) {
	if sess.State == StateEditSelect {
		name := strings.ToLower(strings.TrimSpace(in.Text))
		state, ok := flow.Editable[name]
		if !ok {
			return Result{State: sess.State, Prompt: editPrompt(flow), Invalid: fmt.Sprintf("%q is not an editable field", name)}, nil
		}
		step, _ := flow.Step(state)

		sess.State = state
		sess.EditField = name
		sess.LastInput = m.now()
		if err := m.store.StoreSession(ctx, sess); err != nil {
			return Result{}, fmt.Errorf("storing session: %w", err)
		}
		return Result{State: state, Prompt: step.Prompt}, nil
	}

	step, ok := flow.Step(sess.State)
	if !ok {
		return Result{}, fmt.Errorf("session in unknown state %q for %s wizard", sess.State, flow.Kind)
	}
	if in.Control == ControlSkip {
		return reprompt(step, "skipping is not available while editing"), nil
	}

	draft, err := m.store.Draft(ctx, sess.UserID, sess.Kind)
	if err != nil {
		return Result{}, fmt.Errorf("loading draft: %w", err)
	}
	val, res, err := m.answer(step, in, draft)
	if err != nil || res.Invalid != "" {
		return res, err
	}

	patch, err := flow.Patch(sess.EditField, val)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return reprompt(step, verr.Reason), nil
		}
		return Result{}, err
	}

	updated, err := m.gateway.UpdateRecord(ctx, sess.Kind, sess.EditRecordID, sess.UserID, patch)
	if err != nil {
		return Result{}, fmt.Errorf("updating %s record: %w", sess.Kind, err)
	}
	if !updated {
		return Result{}, serviceerr.ErrNotFound
	}
	if m.views != nil {
		m.views.Invalidate(sess.UserID)
	}

	sess.State = StateEditSelect
	sess.EditField = ""
	sess.LastInput = m.now()
	if err := m.store.StoreSession(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("storing session: %w", err)
	}
	return Result{State: StateEditSelect, Updated: true, Prompt: editPrompt(flow)}, nil
}

// CleanupIdleSessions drops wizards whose last input is older than the idle
// timeout, drafts included. Errors on individual sessions are logged and
// skipped.
func (m *Manager) CleanupIdleSessions(ctx context.Context) error {
	sessions, err := m.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	now := m.now()
	for _, s := range sessions {
		if now.Sub(s.LastInput) <= m.idleTimeout {
			continue
		}

		lock := m.locks.get(sessionKey{UserID: s.UserID, Kind: s.Kind})
		lock.Lock()
		if err := m.store.DiscardDraft(ctx, s.UserID, s.Kind); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
			slogctx.Warn(ctx, "Could not discard idle draft", "user_id", s.UserID, "kind", s.Kind, "error", err)
		}
		if err := m.store.DeleteSession(ctx, s.UserID, s.Kind); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
			slogctx.Warn(ctx, "Could not delete idle session", "user_id", s.UserID, "kind", s.Kind, "error", err)
		} else {
			slogctx.Info(ctx, "Dropped idle wizard", "user_id", s.UserID, "kind", s.Kind)
		}
		lock.Unlock()
	}
	return nil
}

func reprompt(step Step, reason string) Result {
	return Result{State: step.State, Prompt: step.Prompt, Invalid: reason}
}

func editPrompt(flow *Flow) string {
	return fmt.Sprintf("Which field do you want to change? (%s)", strings.Join(flow.EditableFields(), ", "))
}
