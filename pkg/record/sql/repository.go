package recordsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatassist/dialog-manager/internal/serviceerr"
	"github.com/chatassist/dialog-manager/pkg/record"
)

// Repository is the Postgres implementation of record.Gateway. Generic
// records live in a single table with a jsonb field set; reminders have
// typed columns because the scheduler queries them by time and flags.
type Repository struct {
	db *pgxpool.Pool
}

var _ = record.Gateway(&Repository{})

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateRecord(ctx context.Context, kind record.Kind, ownerID int64, fields record.Fields) (int64, error) {
	if kind == record.KindReminder {
		return r.createReminder(ctx, ownerID, fields)
	}

	fieldsBytes, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("marshaling fields: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx,
		`INSERT INTO records (kind, owner_id, fields) VALUES ($1, $2, $3) RETURNING id;`,
		kind, ownerID, fieldsBytes,
	).Scan(&id); err != nil {
		if err, ok := handlePgError(err); ok {
			return 0, err
		}

		return 0, fmt.Errorf("inserting into records: %w", err)
	}

	return id, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, kind record.Kind, id, ownerID int64, patch record.Patch) (bool, error) {
	if reminderPatch, ok := patch.(record.ReminderPatch); ok {
		return r.updateReminder(ctx, id, ownerID, reminderPatch)
	}

	changes := patch.Changes()
	if len(changes) == 0 {
		return false, nil
	}

	changesBytes, err := json.Marshal(changes)
	if err != nil {
		return false, fmt.Errorf("marshaling patch: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE records SET fields = fields || $1::jsonb WHERE id = $2 AND kind = $3 AND owner_id = $4;`,
		changesBytes, id, kind, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("updating records: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *Repository) GetRecord(ctx context.Context, kind record.Kind, id, ownerID int64) (record.Record, error) {
	if kind == record.KindReminder {
		return r.getReminderRecord(ctx, id, ownerID)
	}

	var rec record.Record
	var fieldsBytes []byte
	if err := r.db.QueryRow(ctx,
		`SELECT id, kind, owner_id, fields, created_at FROM records
WHERE id = $1 AND kind = $2 AND owner_id = $3;`,
		id, kind, ownerID,
	).Scan(&rec.ID, &rec.Kind, &rec.OwnerID, &fieldsBytes, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return record.Record{}, serviceerr.ErrNotFound
		}

		return record.Record{}, fmt.Errorf("selecting from records: %w", err)
	}

	if err := json.Unmarshal(fieldsBytes, &rec.Fields); err != nil {
		return record.Record{}, fmt.Errorf("unmarshaling fields: %w", err)
	}

	return rec, nil
}

func (r *Repository) DeleteRecord(ctx context.Context, kind record.Kind, id, ownerID int64) error {
	query := `DELETE FROM records WHERE id = $1 AND kind = $2 AND owner_id = $3;`
	args := []any{id, kind, ownerID}
	if kind == record.KindReminder {
		query = `DELETE FROM reminders WHERE id = $1 AND owner_id = $2;`
		args = []any{id, ownerID}
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return serviceerr.ErrNotFound
	}

	return nil
}

func (r *Repository) ListRecords(ctx context.Context, kind record.Kind, ownerID int64, filter record.Filter, limit, offset int) ([]record.Record, error) {
	filterBytes, err := marshalFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, kind, owner_id, fields, created_at FROM records
WHERE kind = $1 AND owner_id = $2 AND fields @> $3::jsonb
ORDER BY created_at DESC
LIMIT $4 OFFSET $5;`,
		kind, ownerID, filterBytes, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting from records: %w", err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		var rec record.Record
		var fieldsBytes []byte
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.OwnerID, &fieldsBytes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rows: %w", err)
		}
		if err := json.Unmarshal(fieldsBytes, &rec.Fields); err != nil {
			return nil, fmt.Errorf("unmarshaling fields: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return records, nil
}

func (r *Repository) CountRecords(ctx context.Context, kind record.Kind, ownerID int64, filter record.Filter) (int, error) {
	filterBytes, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE kind = $1 AND owner_id = $2 AND fields @> $3::jsonb;`,
		kind, ownerID, filterBytes,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}

	return count, nil
}

func marshalFilter(filter record.Filter) ([]byte, error) {
	if filter == nil {
		filter = record.Filter{}
	}
	filterBytes, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshaling filter: %w", err)
	}

	return filterBytes, nil
}

func (r *Repository) createReminder(ctx context.Context, ownerID int64, fields record.Fields) (int64, error) {
	rem, err := reminderFromFields(ownerID, fields)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx,
		`INSERT INTO reminders (owner_id, priority, at, note, repeat, sent)
VALUES ($1, $2, $3, $4, $5, FALSE) RETURNING id;`,
		rem.OwnerID, rem.Priority, rem.At, rem.Note, rem.Repeat,
	).Scan(&id); err != nil {
		if err, ok := handlePgError(err); ok {
			return 0, err
		}

		return 0, fmt.Errorf("inserting into reminders: %w", err)
	}

	return id, nil
}

func (r *Repository) updateReminder(ctx context.Context, id, ownerID int64, patch record.ReminderPatch) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE reminders SET
	note = COALESCE($1, note),
	at = COALESCE($2::timestamptz, at),
	priority = COALESCE($3, priority),
	repeat = COALESCE($4, repeat)
WHERE id = $5 AND owner_id = $6;`,
		patch.Note, patch.At, patch.Priority, (*string)(patch.Repeat), id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("updating reminders: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *Repository) getReminderRecord(ctx context.Context, id, ownerID int64) (record.Record, error) {
	var rem record.Reminder
	var createdAt time.Time
	if err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, priority, at, note, repeat, sent, created_at
FROM reminders WHERE id = $1 AND owner_id = $2;`,
		id, ownerID,
	).Scan(&rem.ID, &rem.OwnerID, &rem.Priority, &rem.At, &rem.Note, &rem.Repeat, &rem.Sent, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return record.Record{}, serviceerr.ErrNotFound
		}

		return record.Record{}, fmt.Errorf("selecting from reminders: %w", err)
	}

	return record.Record{
		ID:        rem.ID,
		Kind:      record.KindReminder,
		OwnerID:   rem.OwnerID,
		CreatedAt: createdAt,
		Fields: record.Fields{
			"note":     rem.Note,
			"at":       rem.At.Format(time.RFC3339),
			"priority": rem.Priority,
			"repeat":   string(rem.Repeat),
			"sent":     rem.Sent,
		},
	}, nil
}

func (r *Repository) DueReminders(ctx context.Context, now time.Time) ([]record.Reminder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, priority, at, note, repeat, sent FROM reminders
WHERE repeat = 'none' AND sent = FALSE AND at <= $1
ORDER BY priority DESC, at ASC;`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (r *Repository) RecurringReminders(ctx context.Context) ([]record.Reminder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, priority, at, note, repeat, sent FROM reminders
WHERE repeat <> 'none'
ORDER BY priority DESC, at ASC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting recurring reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (r *Repository) MarkReminderSent(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE reminders SET sent = TRUE WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("marking reminder sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return serviceerr.ErrNotFound
	}

	return nil
}

func (r *Repository) AllReminderOwners(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT owner_id FROM reminders;`)
	if err != nil {
		return nil, fmt.Errorf("selecting reminder owners: %w", err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var owner int64
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scanning rows: %w", err)
		}
		owners = append(owners, owner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return owners, nil
}

func scanReminders(rows pgx.Rows) ([]record.Reminder, error) {
	var reminders []record.Reminder
	for rows.Next() {
		var rem record.Reminder
		if err := rows.Scan(&rem.ID, &rem.OwnerID, &rem.Priority, &rem.At, &rem.Note, &rem.Repeat, &rem.Sent); err != nil {
			return nil, fmt.Errorf("scanning rows: %w", err)
		}
		reminders = append(reminders, rem)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return reminders, nil
}

func reminderFromFields(ownerID int64, fields record.Fields) (record.Reminder, error) {
	rem := record.Reminder{OwnerID: ownerID, Repeat: record.RepeatNone}

	note, ok := fields["note"].(string)
	if !ok || note == "" {
		return record.Reminder{}, errors.New("reminder fields: missing note")
	}
	rem.Note = note

	switch at := fields["at"].(type) {
	case time.Time:
		rem.At = at
	case string:
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return record.Reminder{}, fmt.Errorf("reminder fields: parsing at: %w", err)
		}
		rem.At = parsed
	default:
		return record.Reminder{}, errors.New("reminder fields: missing at")
	}

	switch priority := fields["priority"].(type) {
	case int:
		rem.Priority = priority
	case float64:
		rem.Priority = int(priority)
	}

	if repeat, ok := fields["repeat"].(string); ok && repeat != "" {
		rem.Repeat = record.Repeat(repeat)
	}

	return rem, nil
}
