package views_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatassist/dialog-manager/pkg/record"
	recordmock "github.com/chatassist/dialog-manager/pkg/record/mock"
	"github.com/chatassist/dialog-manager/pkg/viewcache"
	"github.com/chatassist/dialog-manager/pkg/views"
)

func TestStatsCachesResult(t *testing.T) {
	ctx := context.Background()
	gateway := recordmock.NewInMemRepository(
		recordmock.WithRecord(record.Record{ID: 1, Kind: record.KindNote, OwnerID: 42, Fields: record.Fields{"title": "a"}}),
		recordmock.WithRecord(record.Record{ID: 2, Kind: record.KindNote, OwnerID: 42, Fields: record.Fields{"title": "b"}}),
		recordmock.WithRecord(record.Record{ID: 3, Kind: record.KindPlace, OwnerID: 42, Fields: record.Fields{"name": "bar"}}),
	)
	svc := views.NewService(gateway, viewcache.New(time.Minute))

	stats, err := svc.Stats(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, stats[record.KindNote])
	assert.Equal(t, 1, stats[record.KindPlace])
	assert.Equal(t, 0, stats[record.KindExpense])

	// A record added behind the cache's back is invisible until
	// invalidation.
	_, err = gateway.CreateRecord(ctx, record.KindNote, 42, record.Fields{"title": "c"})
	require.NoError(t, err)

	stats, err = svc.Stats(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, stats[record.KindNote])

	svc.Invalidate(42)
	stats, err = svc.Stats(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 3, stats[record.KindNote])
}

func TestInvalidateIsPerOwner(t *testing.T) {
	ctx := context.Background()
	gateway := recordmock.NewInMemRepository(
		recordmock.WithRecord(record.Record{ID: 1, Kind: record.KindNote, OwnerID: 42, Fields: record.Fields{}}),
		recordmock.WithRecord(record.Record{ID: 2, Kind: record.KindNote, OwnerID: 7, Fields: record.Fields{}}),
	)
	cache := viewcache.New(time.Minute)
	svc := views.NewService(gateway, cache)

	_, err := svc.Stats(ctx, 42)
	require.NoError(t, err)
	_, err = svc.Stats(ctx, 7)
	require.NoError(t, err)

	svc.Invalidate(42)

	_, ok := cache.Get("stats_42")
	assert.False(t, ok)
	_, ok = cache.Get("stats_7")
	assert.True(t, ok)
}

func TestListCachesPerPageAndFilter(t *testing.T) {
	ctx := context.Background()
	gateway := recordmock.NewInMemRepository(
		recordmock.WithRecord(record.Record{ID: 1, Kind: record.KindPlace, OwnerID: 42, Fields: record.Fields{"place_type": "bar"}}),
		recordmock.WithRecord(record.Record{ID: 2, Kind: record.KindPlace, OwnerID: 42, Fields: record.Fields{"place_type": "park"}}),
	)
	svc := views.NewService(gateway, viewcache.New(time.Minute))

	bars, err := svc.List(ctx, record.KindPlace, 42, record.Filter{"place_type": "bar"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, bars, 1)

	all, err := svc.List(ctx, record.KindPlace, 42, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// The filtered entry was cached independently of the unfiltered one.
	bars, err = svc.List(ctx, record.KindPlace, 42, record.Filter{"place_type": "bar"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}
