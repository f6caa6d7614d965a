// Package views serves the read side of the record store: per-user counts
// and listings, memoised in the view cache. Every cache key embeds an owner
// scope so a commit can drop all of one user's entries with a single
// substring invalidation.
package views

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/chatassist/dialog-manager/pkg/record"
	"github.com/chatassist/dialog-manager/pkg/viewcache"
)

// OwnerScope is the substring shared by every cache key of one user.
func OwnerScope(ownerID int64) string {
	return fmt.Sprintf("_%d", ownerID)
}

func statsKey(ownerID int64) string {
	return fmt.Sprintf("stats_%d", ownerID)
}

func listKey(kind record.Kind, ownerID int64, filter record.Filter, limit, offset int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%ss_%d", kind, ownerID)
	for _, k := range sortedKeys(filter) {
		fmt.Fprintf(&b, "_%s=%s", k, filter[k])
	}
	fmt.Fprintf(&b, "_%d_%d", limit, offset)
	return b.String()
}

func sortedKeys(filter record.Filter) []string {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Service answers read queries through the cache.
type Service struct {
	gateway record.Gateway
	cache   *viewcache.Cache
}

func NewService(gateway record.Gateway, cache *viewcache.Cache) *Service {
	return &Service{gateway: gateway, cache: cache}
}

// Stats returns the user's record count per kind.
func (s *Service) Stats(ctx context.Context, ownerID int64) (map[record.Kind]int, error) {
	if v, ok := s.cache.Get(statsKey(ownerID)); ok {
		return v.(map[record.Kind]int), nil
	}

	stats := make(map[record.Kind]int, len(record.Kinds()))
	for _, kind := range record.Kinds() {
		n, err := s.gateway.CountRecords(ctx, kind, ownerID, nil)
		if err != nil {
			return nil, fmt.Errorf("counting %s records: %w", kind, err)
		}
		stats[kind] = n
	}
	s.cache.Set(statsKey(ownerID), stats)
	return stats, nil
}

// List returns a page of the user's records, served from cache when the
// same page was requested within the TTL.
func (s *Service) List(ctx context.Context, kind record.Kind, ownerID int64, filter record.Filter, limit, offset int) ([]record.Record, error) {
	key := listKey(kind, ownerID, filter, limit, offset)
	if v, ok := s.cache.Get(key); ok {
		return v.([]record.Record), nil
	}

	records, err := s.gateway.ListRecords(ctx, kind, ownerID, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing %s records: %w", kind, err)
	}
	s.cache.Set(key, records)
	return records, nil
}

// Invalidate drops every cached view of one user.
func (s *Service) Invalidate(ownerID int64) {
	s.cache.Invalidate(OwnerScope(ownerID))
}
