package core

import "sort"

// Aggregations are pure and re-derived on every read; nothing here caches.

const UpcomingLimit = 3

type ActivityKind string

const (
	KindClass ActivityKind = "Class"
	KindEvent ActivityKind = "Event"
)

// Activity is a class or event tagged with its source kind, for the combined
// schedule views.
type Activity struct {
	Kind ActivityKind `json:"kind"`
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Date Date         `json:"date"`
	Time string       `json:"time,omitempty"`
}

// BudgetSummary is the finance overview derived from the ledger and the
// externally configured budget ceiling.
type BudgetSummary struct {
	Budget          Money   `json:"budget"`
	Spent           Money   `json:"spent"`
	Remaining       Money   `json:"remaining"`
	ProgressPercent float64 `json:"progressPercent"`
	Expenses        Money   `json:"expenses"`
	Income          Money   `json:"income"`
}

// EngagementTotals sums every stat field across all recorded days.
type EngagementTotals struct {
	Visitors     int `json:"visitors"`
	Engagements  int `json:"engagements"`
	Participants int `json:"participants"`
	Offsite      int `json:"offsite"`
}

// ChartSlice is one labeled value of a proportional breakdown.
type ChartSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// TotalSpent is the net spend in cents: expenses add, income subtracts. It can
// go negative when income outweighs spending.
func TotalSpent(txns []Transaction) Money {
	var cents int64
	for _, t := range txns {
		cents += t.SignedCents()
	}
	return Money{Cents: cents}
}

// CategoryTotals sums transaction costs per type.
func CategoryTotals(txns []Transaction) (expenses, income Money) {
	for _, t := range txns {
		switch t.Type {
		case Income:
			income.Cents += t.Cost.Cents
		default:
			expenses.Cents += t.Cost.Cents
		}
	}
	return expenses, income
}

// Summarize derives the full budget overview. The progress percentage tracks
// net spend against the ceiling and is clamped to [0,100]; income lowers the
// remaining figure's deficit but never the displayed percentage below zero.
func Summarize(txns []Transaction, budget Money) BudgetSummary {
	spent := TotalSpent(txns)
	expenses, income := CategoryTotals(txns)
	var pct float64
	if budget.Cents > 0 {
		pct = float64(spent.Cents) / float64(budget.Cents) * 100
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return BudgetSummary{
		Budget:          budget,
		Spent:           spent,
		Remaining:       Money{Cents: budget.Cents - spent.Cents},
		ProgressPercent: pct,
		Expenses:        expenses,
		Income:          income,
	}
}

func classActivity(c ClassItem) Activity {
	return Activity{Kind: KindClass, ID: c.ID, Name: c.Name, Date: c.Date}
}

func eventActivity(e EventItem) Activity {
	return Activity{Kind: KindEvent, ID: e.ID, Name: e.Name, Date: e.Date, Time: e.Time}
}

func combine(classes []ClassItem, events []EventItem) []Activity {
	combined := make([]Activity, 0, len(classes)+len(events))
	for _, c := range classes {
		combined = append(combined, classActivity(c))
	}
	for _, e := range events {
		combined = append(combined, eventActivity(e))
	}
	return combined
}

// Upcoming returns the next activities across classes and events, sorted by
// date ascending and truncated to UpcomingLimit. Classes sort before events on
// the same day.
func Upcoming(classes []ClassItem, events []EventItem) []Activity {
	combined := combine(classes, events)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Date.Before(combined[j].Date)
	})
	if len(combined) > UpcomingLimit {
		combined = combined[:UpcomingLimit]
	}
	return combined
}

// WeekBuckets groups all classes and events by Monday-first weekday index.
func WeekBuckets(classes []ClassItem, events []EventItem) [7][]Activity {
	var buckets [7][]Activity
	for _, a := range combine(classes, events) {
		if a.Date.IsZero() {
			continue
		}
		idx := a.Date.WeekBucket()
		buckets[idx] = append(buckets[idx], a)
	}
	return buckets
}

// SumStats totals every engagement field across all entries.
func SumStats(stats []StatEntry) EngagementTotals {
	var t EngagementTotals
	for _, s := range stats {
		t.Visitors += s.Visitors
		t.Engagements += s.Engagements
		t.Participants += s.Participants
		t.Offsite += s.Offsite
	}
	return t
}

// Reach is the sum of all four category totals.
func (t EngagementTotals) Reach() int {
	return t.Visitors + t.Engagements + t.Participants + t.Offsite
}

// Breakdown renders the totals as a proportional chart dataset.
func (t EngagementTotals) Breakdown() []ChartSlice {
	return []ChartSlice{
		{Label: "Visitors", Value: t.Visitors},
		{Label: "Engagements", Value: t.Engagements},
		{Label: "Participants", Value: t.Participants},
		{Label: "Offsite", Value: t.Offsite},
	}
}
