package recordsql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatassist/dialog-manager/internal/dbtest/postgrestest"
	"github.com/chatassist/dialog-manager/internal/serviceerr"
	"github.com/chatassist/dialog-manager/pkg/record"
	recordsql "github.com/chatassist/dialog-manager/pkg/record/sql"
)

var dbPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pool, _, terminate := postgrestest.Start(ctx)
	defer terminate(ctx)

	dbPool = pool

	code := m.Run()
	os.Exit(code)
}

func TestRepository_CreateAndGetRecord(t *testing.T) {
	const owner int64 = 900

	r := recordsql.NewRepository(dbPool)

	id, err := r.CreateRecord(t.Context(), record.KindPlace, owner, record.Fields{
		"name":           "Mole",
		"place_type":     "bar",
		"price_category": 2,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := r.GetRecord(t.Context(), record.KindPlace, id, owner)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, record.KindPlace, got.Kind)
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, "Mole", got.Fields["name"])
	assert.Equal(t, "bar", got.Fields["place_type"])
	// jsonb numbers come back as float64
	assert.Equal(t, float64(2), got.Fields["price_category"])
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRepository_GetRecord_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		kind    record.Kind
		id      int64
		ownerID int64
	}{
		{
			name:    "missing id",
			kind:    record.KindNote,
			id:      999999,
			ownerID: postgrestest.OwnerOne,
		},
		{
			name:    "wrong owner",
			kind:    record.KindNote,
			id:      1,
			ownerID: 999999,
		},
		{
			name:    "missing reminder",
			kind:    record.KindReminder,
			id:      999999,
			ownerID: postgrestest.OwnerOne,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recordsql.NewRepository(dbPool)

			_, err := r.GetRecord(t.Context(), tt.kind, tt.id, tt.ownerID)
			assert.ErrorIs(t, err, serviceerr.ErrNotFound)
		})
	}
}

func TestRepository_ListRecords(t *testing.T) {
	tests := []struct {
		name      string
		kind      record.Kind
		ownerID   int64
		filter    record.Filter
		wantCount int
	}{
		{
			name:      "all expenses of owner",
			kind:      record.KindExpense,
			ownerID:   postgrestest.OwnerOne,
			wantCount: 2,
		},
		{
			name:      "filter by category",
			kind:      record.KindExpense,
			ownerID:   postgrestest.OwnerOne,
			filter:    record.Filter{"category": "food"},
			wantCount: 1,
		},
		{
			name:      "other owner sees nothing",
			kind:      record.KindExpense,
			ownerID:   postgrestest.OwnerTwo,
			wantCount: 0,
		},
		{
			name:      "no match",
			kind:      record.KindExpense,
			ownerID:   postgrestest.OwnerOne,
			filter:    record.Filter{"category": "entertainment"},
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recordsql.NewRepository(dbPool)

			got, err := r.ListRecords(t.Context(), tt.kind, tt.ownerID, tt.filter, 100, 0)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)

			for _, rec := range got {
				assert.Equal(t, tt.kind, rec.Kind)
				assert.Equal(t, tt.ownerID, rec.OwnerID)
			}

			count, err := r.CountRecords(t.Context(), tt.kind, tt.ownerID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestRepository_ListRecords_Pagination(t *testing.T) {
	const owner int64 = 901

	r := recordsql.NewRepository(dbPool)

	for i := range 5 {
		_, err := r.CreateRecord(t.Context(), record.KindNote, owner, record.Fields{
			"title": fmt.Sprintf("note %d", i),
		})
		require.NoError(t, err)
	}

	first, err := r.ListRecords(t.Context(), record.KindNote, owner, nil, 3, 0)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	rest, err := r.ListRecords(t.Context(), record.KindNote, owner, nil, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	seen := map[int64]bool{}
	for _, rec := range append(first, rest...) {
		assert.False(t, seen[rec.ID], "record %d listed twice", rec.ID)
		seen[rec.ID] = true
	}
}

func TestRepository_UpdateRecord(t *testing.T) {
	const owner int64 = 902

	r := recordsql.NewRepository(dbPool)

	id, err := r.CreateRecord(t.Context(), record.KindNote, owner, record.Fields{
		"title": "Groceries",
		"body":  "milk",
	})
	require.NoError(t, err)

	title := "Shopping list"
	updated, err := r.UpdateRecord(t.Context(), record.KindNote, id, owner, record.NotePatch{Title: &title})
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := r.GetRecord(t.Context(), record.KindNote, id, owner)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list", got.Fields["title"])
	assert.Equal(t, "milk", got.Fields["body"], "untouched fields survive the patch")

	updated, err = r.UpdateRecord(t.Context(), record.KindNote, id, owner+1, record.NotePatch{Title: &title})
	require.NoError(t, err)
	assert.False(t, updated, "wrong owner must not update")

	updated, err = r.UpdateRecord(t.Context(), record.KindNote, id, owner, record.NotePatch{})
	require.NoError(t, err)
	assert.False(t, updated, "empty patch is a no-op")
}

func TestRepository_DeleteRecord(t *testing.T) {
	const owner int64 = 903

	r := recordsql.NewRepository(dbPool)

	id, err := r.CreateRecord(t.Context(), record.KindWishlist, owner, record.Fields{
		"title": "headphones",
	})
	require.NoError(t, err)

	require.NoError(t, r.DeleteRecord(t.Context(), record.KindWishlist, id, owner))

	err = r.DeleteRecord(t.Context(), record.KindWishlist, id, owner)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_CreateReminder(t *testing.T) {
	const owner int64 = 904

	r := recordsql.NewRepository(dbPool)

	at := time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC)
	id, err := r.CreateRecord(t.Context(), record.KindReminder, owner, record.Fields{
		"note":     "dentist",
		"at":       at,
		"priority": 3,
	})
	require.NoError(t, err)

	got, err := r.GetRecord(t.Context(), record.KindReminder, id, owner)
	require.NoError(t, err)
	assert.Equal(t, record.KindReminder, got.Kind)
	assert.Equal(t, "dentist", got.Fields["note"])
	assert.Equal(t, at.Format(time.RFC3339), got.Fields["at"])
	assert.Equal(t, 3, got.Fields["priority"])
	assert.Equal(t, string(record.RepeatNone), got.Fields["repeat"])
	assert.Equal(t, false, got.Fields["sent"])
}

func TestRepository_CreateReminder_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		fields record.Fields
	}{
		{
			name:   "missing note",
			fields: record.Fields{"at": time.Now()},
		},
		{
			name:   "missing at",
			fields: record.Fields{"note": "dentist"},
		},
		{
			name:   "bad at string",
			fields: record.Fields{"note": "dentist", "at": "yesterday"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recordsql.NewRepository(dbPool)

			_, err := r.CreateRecord(t.Context(), record.KindReminder, 905, tt.fields)
			assert.Error(t, err)
		})
	}
}

func TestRepository_DueReminders(t *testing.T) {
	r := recordsql.NewRepository(dbPool)

	due, err := r.DueReminders(t.Context(), postgrestest.DueTime)
	require.NoError(t, err)

	notes := make([]string, 0, len(due))
	for _, rem := range due {
		assert.False(t, rem.Sent)
		assert.Equal(t, record.RepeatNone, rem.Repeat)
		notes = append(notes, rem.Note)
	}

	assert.Contains(t, notes, "standup")
	assert.NotContains(t, notes, "already delivered", "sent reminders are not due")
	assert.NotContains(t, notes, "water plants", "recurring reminders are not due")
}

func TestRepository_MarkReminderSent(t *testing.T) {
	const owner int64 = 906

	r := recordsql.NewRepository(dbPool)

	at := postgrestest.DueTime.Add(-time.Hour)
	id, err := r.CreateRecord(t.Context(), record.KindReminder, owner, record.Fields{
		"note": "one shot",
		"at":   at,
	})
	require.NoError(t, err)

	require.NoError(t, r.MarkReminderSent(t.Context(), id))

	due, err := r.DueReminders(t.Context(), postgrestest.DueTime)
	require.NoError(t, err)
	for _, rem := range due {
		assert.NotEqual(t, id, rem.ID, "sent reminder must not be redelivered")
	}

	err = r.MarkReminderSent(t.Context(), 999999)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_RecurringReminders(t *testing.T) {
	r := recordsql.NewRepository(dbPool)

	recurring, err := r.RecurringReminders(t.Context())
	require.NoError(t, err)

	var found bool
	for _, rem := range recurring {
		assert.NotEqual(t, record.RepeatNone, rem.Repeat)
		if rem.Note == "water plants" {
			found = true
			assert.Equal(t, record.RepeatDaily, rem.Repeat)
			assert.Equal(t, postgrestest.OwnerTwo, rem.OwnerID)
		}
	}
	assert.True(t, found, "seeded daily reminder missing")
}

func TestRepository_UpdateReminder(t *testing.T) {
	const owner int64 = 907

	r := recordsql.NewRepository(dbPool)

	id, err := r.CreateRecord(t.Context(), record.KindReminder, owner, record.Fields{
		"note": "call plumber",
		"at":   time.Date(2023, 6, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	note := "call electrician"
	priority := 2
	repeat := record.RepeatWeekly
	updated, err := r.UpdateRecord(t.Context(), record.KindReminder, id, owner, record.ReminderPatch{
		Note:     &note,
		Priority: &priority,
		Repeat:   &repeat,
	})
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := r.GetRecord(t.Context(), record.KindReminder, id, owner)
	require.NoError(t, err)
	assert.Equal(t, "call electrician", got.Fields["note"])
	assert.Equal(t, 2, got.Fields["priority"])
	assert.Equal(t, string(record.RepeatWeekly), got.Fields["repeat"])

	updated, err = r.UpdateRecord(t.Context(), record.KindReminder, id, owner+1, record.ReminderPatch{Note: &note})
	require.NoError(t, err)
	assert.False(t, updated, "wrong owner must not update")
}

func TestRepository_AllReminderOwners(t *testing.T) {
	r := recordsql.NewRepository(dbPool)

	owners, err := r.AllReminderOwners(t.Context())
	require.NoError(t, err)

	assert.Contains(t, owners, postgrestest.OwnerOne)
	assert.Contains(t, owners, postgrestest.OwnerTwo)
}
