package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"makeros/internal/core"
	"makeros/internal/gateway"
	"makeros/internal/store"
)

// fakeSyncer records dispatched keys without touching storage.
type fakeSyncer struct {
	keys []string
}

func (f *fakeSyncer) Dispatch(key string, payload any) <-chan gateway.Ack {
	f.keys = append(f.keys, key)
	ch := make(chan gateway.Ack, 1)
	ch <- gateway.Ack{Status: "success"}
	close(ch)
	return ch
}

func newTestSet(t *testing.T) (*Set, *fakeSyncer) {
	t.Helper()
	fs := &fakeSyncer{}
	return NewSet(store.New(), fs), fs
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestLedgerCreatePrepends(t *testing.T) {
	set, fs := newTestSet(t)
	ctx := context.Background()

	first, err := set.Ledger.Create(ctx, core.Transaction{
		Item: "plywood", Cost: core.Money{Cents: 1250}, Type: core.Expense,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.False(t, first.Date.IsZero())

	second, err := set.Ledger.Create(ctx, core.Transaction{
		Item: "workshop fee", Cost: core.Money{Cents: 4000}, Type: core.Income,
	})
	require.NoError(t, err)

	got := set.Ledger.List()
	require.Len(t, got, 2)
	require.Equal(t, second.ID, got[0].ID)
	require.Equal(t, first.ID, got[1].ID)
	require.Equal(t, []string{gateway.KeyTransactions, gateway.KeyTransactions}, fs.keys)
}

func TestLedgerCreateRejectsInvalid(t *testing.T) {
	set, fs := newTestSet(t)

	_, err := set.Ledger.Create(context.Background(), core.Transaction{
		Item: "", Cost: core.Money{Cents: 100}, Type: core.Expense,
	})
	require.ErrorIs(t, err, core.ErrEmptyItem)
	require.Empty(t, set.Ledger.List())
	require.Empty(t, fs.keys)
}

func TestLedgerUpdateUnknownIDIsNoOp(t *testing.T) {
	set, fs := newTestSet(t)
	ctx := context.Background()

	created, err := set.Ledger.Create(ctx, core.Transaction{
		Item: "filament", Cost: core.Money{Cents: 2999}, Type: core.Expense,
	})
	require.NoError(t, err)
	dispatched := len(fs.keys)

	got, err := set.Ledger.Update(ctx, "missing", core.Transaction{
		Item: "filament", Cost: core.Money{Cents: 3500}, Type: core.Expense,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, created.Cost, got[0].Cost)
	require.Len(t, fs.keys, dispatched, "no-op must not queue a save")
}

func TestLedgerUpdateAndDelete(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	created, err := set.Ledger.Create(ctx, core.Transaction{
		Item: "solder", Cost: core.Money{Cents: 800}, Type: core.Expense,
	})
	require.NoError(t, err)

	got, err := set.Ledger.Update(ctx, created.ID, core.Transaction{
		Item: "solder wire", Cost: core.Money{Cents: 950}, Type: core.Expense, Date: created.Date,
	})
	require.NoError(t, err)
	require.Equal(t, "solder wire", got[0].Item)
	require.Equal(t, int64(950), got[0].Cost.Cents)

	require.Empty(t, set.Ledger.Delete(ctx, created.ID))
}

func TestStatsUpsertByDate(t *testing.T) {
	set, fs := newTestSet(t)
	ctx := context.Background()

	_, err := set.Stats.Upsert(ctx, core.StatEntry{
		Date: mustDate(t, "2025-05-20"), Visitors: 12, Engagements: 4, Participants: 6,
	})
	require.NoError(t, err)
	_, err = set.Stats.Upsert(ctx, core.StatEntry{
		Date: mustDate(t, "2025-05-18"), Visitors: 7, Engagements: 1,
	})
	require.NoError(t, err)

	got := set.Stats.List()
	require.Len(t, got, 2)
	require.Equal(t, "2025-05-18", got[0].Date.String(), "entries sort by date ascending")

	// Same day again overwrites instead of inserting.
	_, err = set.Stats.Upsert(ctx, core.StatEntry{
		Date: mustDate(t, "2025-05-18"), Visitors: 9, Engagements: 3, Offsite: 2,
	})
	require.NoError(t, err)

	got = set.Stats.List()
	require.Len(t, got, 2)
	require.Equal(t, 9, got[0].Visitors)
	require.Equal(t, []string{gateway.KeyStats, gateway.KeyStats, gateway.KeyStats}, fs.keys)

	totals := set.Stats.Totals()
	require.Equal(t, 21, totals.Visitors)
	require.Equal(t, 7, totals.Engagements)
	require.Equal(t, 36, totals.Reach())
}

func TestEventsAppendWhileClassesPrepend(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	e1, err := set.Events.Create(ctx, core.EventItem{Name: "Open night", Date: mustDate(t, "2025-06-01")})
	require.NoError(t, err)
	require.Equal(t, core.EventPublic, e1.Type, "type defaults to public")
	e2, err := set.Events.Create(ctx, core.EventItem{Name: "Laser maintenance", Date: mustDate(t, "2025-06-02"), Type: core.EventRepair})
	require.NoError(t, err)

	events := set.Events.List()
	require.Equal(t, e1.ID, events[0].ID)
	require.Equal(t, e2.ID, events[1].ID)

	c1, err := set.Classes.Create(ctx, core.ClassItem{Name: "Intro to CNC", Date: mustDate(t, "2025-06-03")})
	require.NoError(t, err)
	require.Equal(t, core.StatusPlanning, c1.Status, "status defaults to planning")
	c2, err := set.Classes.Create(ctx, core.ClassItem{Name: "Resin casting", Date: mustDate(t, "2025-06-04"), Status: core.StatusReady})
	require.NoError(t, err)

	classes := set.Classes.List()
	require.Equal(t, c2.ID, classes[0].ID)
	require.Equal(t, c1.ID, classes[1].ID)
}

func TestTaskToggle(t *testing.T) {
	set, fs := newTestSet(t)
	ctx := context.Background()

	task, err := set.Tasks.Create(ctx, "empty laser chiller")
	require.NoError(t, err)
	require.False(t, task.Completed)

	got := set.Tasks.Toggle(ctx, task.ID)
	require.True(t, got[0].Completed)
	got = set.Tasks.Toggle(ctx, task.ID)
	require.False(t, got[0].Completed)

	dispatched := len(fs.keys)
	got = set.Tasks.Toggle(ctx, "missing")
	require.False(t, got[0].Completed)
	require.Len(t, fs.keys, dispatched)
}

func TestShoppingQuantityDefaults(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	item, err := set.Shopping.Create(ctx, "sandpaper", "")
	require.NoError(t, err)
	require.Equal(t, "1", item.Quantity)

	item, err = set.Shopping.Create(ctx, "wood glue", "3 bottles")
	require.NoError(t, err)
	require.Equal(t, "3 bottles", item.Quantity)

	_, err = set.Shopping.Create(ctx, "   ", "2")
	require.ErrorIs(t, err, core.ErrEmptyItem)
}

func TestActivatorReplace(t *testing.T) {
	set, fs := newTestSet(t)
	ctx := context.Background()

	require.Equal(t, core.DefaultActivator().Title, set.Activator.Get().Title)

	doc := core.ActivatorDocument{
		Title:       "Kinetic Sculpture Jam",
		Description: "A month of moving art.",
		Materials:   []string{"servos", "aluminium rod"},
		Difficulty:  "Intermediate",
		Month:       "June",
	}
	got, err := set.Activator.Replace(ctx, doc)
	require.NoError(t, err)
	require.Equal(t, doc, got)
	require.Equal(t, doc, set.Activator.Get())
	require.Equal(t, []string{gateway.KeyActivator}, fs.keys)

	_, err = set.Activator.Replace(ctx, core.ActivatorDocument{Title: ""})
	require.ErrorIs(t, err, core.ErrEmptyTitle)
}

func TestTimestampIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 200 {
		id := TimestampID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
