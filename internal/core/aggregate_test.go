package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func expense(cents int64) Transaction {
	return Transaction{Type: Expense, Cost: Money{Cents: cents}, Date: NewDate(2025, 5, 1), Item: "x"}
}

func income(cents int64) Transaction {
	return Transaction{Type: Income, Cost: Money{Cents: cents}, Date: NewDate(2025, 5, 1), Item: "x"}
}

func TestSummarizeRemaining(t *testing.T) {
	budget := Money{Cents: 250000}

	s := Summarize(nil, budget)
	require.Equal(t, int64(250000), s.Remaining.Cents)
	require.Zero(t, s.ProgressPercent)

	s = Summarize([]Transaction{expense(4599)}, budget)
	require.Equal(t, int64(250000-4599), s.Remaining.Cents)

	// Income raises the remaining figure back up.
	s = Summarize([]Transaction{expense(4599), income(10000)}, budget)
	require.Equal(t, int64(250000-4599+10000), s.Remaining.Cents)
}

func TestSummarizeMonotonic(t *testing.T) {
	budget := Money{Cents: 100000}
	txns := []Transaction{income(5000)}
	prev := Summarize(txns, budget).Remaining.Cents
	for i := 0; i < 10; i++ {
		txns = append(txns, expense(777))
		cur := Summarize(txns, budget).Remaining.Cents
		require.Less(t, cur, prev, "remaining must not increase as expenses are added")
		prev = cur
	}
	for i := 0; i < 10; i++ {
		txns = append(txns, income(123))
		cur := Summarize(txns, budget).Remaining.Cents
		require.Greater(t, cur, prev, "remaining must not decrease as income is added")
		prev = cur
	}
}

func TestProgressPercentClamped(t *testing.T) {
	budget := Money{Cents: 1000}

	// Overspend by an arbitrary factor still reads 100.
	s := Summarize([]Transaction{expense(1000000)}, budget)
	require.Equal(t, float64(100), s.ProgressPercent)

	// Net-negative spend (income only) clamps at 0, it does not go negative.
	s = Summarize([]Transaction{income(5000)}, budget)
	require.Equal(t, float64(0), s.ProgressPercent)

	s = Summarize([]Transaction{expense(500)}, budget)
	require.InDelta(t, 50.0, s.ProgressPercent, 0.001)

	// Zero ceiling never divides.
	s = Summarize([]Transaction{expense(500)}, Money{})
	require.Zero(t, s.ProgressPercent)
}

func TestCategoryTotals(t *testing.T) {
	exp, inc := CategoryTotals([]Transaction{expense(100), expense(250), income(400)})
	require.Equal(t, int64(350), exp.Cents)
	require.Equal(t, int64(400), inc.Cents)
}

func TestUpcomingOrderAndLimit(t *testing.T) {
	classes := []ClassItem{
		{ID: "c1", Name: "Late", Date: NewDate(2025, 5, 20), Status: StatusPlanning},
		{ID: "c2", Name: "Mid", Date: NewDate(2025, 5, 16), Status: StatusReady},
	}
	events := []EventItem{
		{ID: "e1", Name: "Early", Date: NewDate(2025, 5, 15), Type: EventPublic},
	}

	up := Upcoming(classes, events)
	require.Len(t, up, 3)
	require.Equal(t, "e1", up[0].ID)
	require.Equal(t, "c2", up[1].ID)
	require.Equal(t, "c1", up[2].ID)
	require.Equal(t, KindEvent, up[0].Kind)

	// Never more than three, regardless of input size.
	for i := 0; i < 5; i++ {
		events = append(events, EventItem{ID: "x", Name: "x", Date: NewDate(2025, 6, 1+i), Type: EventStaff})
	}
	require.Len(t, Upcoming(classes, events), UpcomingLimit)
}

func TestWeekBucketsSundayRemap(t *testing.T) {
	classes := []ClassItem{
		{ID: "mon", Name: "Monday class", Date: NewDate(2025, 5, 12), Status: StatusReady},
	}
	events := []EventItem{
		{ID: "sun", Name: "Sunday event", Date: NewDate(2025, 5, 18), Type: EventPublic},
	}

	buckets := WeekBuckets(classes, events)
	require.Len(t, buckets[0], 1)
	require.Equal(t, "mon", buckets[0][0].ID)
	require.Len(t, buckets[6], 1)
	require.Equal(t, "sun", buckets[6][0].ID)
	for i := 1; i < 6; i++ {
		require.Empty(t, buckets[i])
	}
}

func TestSumStatsAndReach(t *testing.T) {
	stats := []StatEntry{
		{Date: NewDate(2025, 5, 1), Visitors: 120, Engagements: 45, Participants: 12, Offsite: 0},
		{Date: NewDate(2025, 5, 2), Visitors: 98, Engagements: 30, Participants: 8, Offsite: 5},
	}
	totals := SumStats(stats)
	require.Equal(t, 218, totals.Visitors)
	require.Equal(t, 75, totals.Engagements)
	require.Equal(t, 20, totals.Participants)
	require.Equal(t, 5, totals.Offsite)
	require.Equal(t, 318, totals.Reach())

	slices := totals.Breakdown()
	require.Len(t, slices, 4)
	sum := 0
	for _, s := range slices {
		sum += s.Value
	}
	require.Equal(t, totals.Reach(), sum)
}
