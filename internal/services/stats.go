package services

import (
	"context"
	"sort"

	"makeros/internal/core"
	"makeros/internal/gateway"
)

// StatsService maintains the daily visitor statistics. Entries are keyed by
// calendar day rather than a generated id: writing an existing day overwrites
// in place, a new day inserts and the collection re-sorts by date ascending.
type StatsService struct {
	base
}

func (s *StatsService) List() []core.StatEntry {
	return s.store.Stats()
}

func (s *StatsService) Upsert(ctx context.Context, entry core.StatEntry) ([]core.StatEntry, error) {
	entry.Date = core.DateOf(entry.Date.Time)
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	cur := s.store.Stats()
	next := make([]core.StatEntry, len(cur))
	copy(next, cur)

	replaced := false
	for i := range next {
		if next[i].Date.Equal(entry.Date) {
			next[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, entry)
		sort.SliceStable(next, func(i, j int) bool {
			return next[i].Date.Before(next[j].Date)
		})
	}

	s.store.ReplaceStats(next)
	s.dispatch(gateway.KeyStats, next)

	s.log.InfoContext(ctx, "Stat entry recorded",
		"date", entry.Date.String(),
		"replaced", replaced,
		"visitors", entry.Visitors)
	return next, nil
}

// Totals re-derives the engagement sums across all recorded days.
func (s *StatsService) Totals() core.EngagementTotals {
	return core.SumStats(s.store.Stats())
}
