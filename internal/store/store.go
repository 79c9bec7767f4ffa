// Package store is the in-memory Entity Store: the authoritative state for the
// current session. Collections are read as snapshots and written only as whole
// replacements, so no reader ever observes a collection mid-mutation.
package store

import (
	"sync"

	"makeros/internal/core"
)

// collection keeps records in an id-to-record arena plus an explicit ordering
// slice. Lookup stays O(1) while insertion order survives replacement.
type collection[T any] struct {
	byID  map[string]T
	order []string
	keyOf func(T) string
}

func newCollection[T any](keyOf func(T) string) *collection[T] {
	return &collection[T]{byID: map[string]T{}, keyOf: keyOf}
}

func (c *collection[T]) replace(items []T) {
	c.byID = make(map[string]T, len(items))
	c.order = c.order[:0]
	for _, it := range items {
		k := c.keyOf(it)
		if _, dup := c.byID[k]; !dup {
			c.order = append(c.order, k)
		}
		c.byID[k] = it
	}
}

func (c *collection[T]) snapshot() []T {
	out := make([]T, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byID[k])
	}
	return out
}

func (c *collection[T]) get(key string) (T, bool) {
	v, ok := c.byID[key]
	return v, ok
}

// Snapshot is a point-in-time copy of every collection plus the singleton
// document, used for the read-everything endpoint and for restoring loaded
// state.
type Snapshot struct {
	Stats        []core.StatEntry       `json:"stats"`
	Transactions []core.Transaction     `json:"transactions"`
	Classes      []core.ClassItem       `json:"classes"`
	Events       []core.EventItem       `json:"events"`
	Tasks        []core.Task            `json:"tasks"`
	Shopping     []core.ShoppingItem    `json:"shoppingList"`
	Activator    core.ActivatorDocument `json:"activator"`
}

// Store holds one collection per entity kind for the lifetime of the process.
type Store struct {
	mu        sync.RWMutex
	stats     *collection[core.StatEntry]
	txns      *collection[core.Transaction]
	classes   *collection[core.ClassItem]
	events    *collection[core.EventItem]
	tasks     *collection[core.Task]
	shopping  *collection[core.ShoppingItem]
	activator core.ActivatorDocument
}

func New() *Store {
	return &Store{
		stats:     newCollection(func(e core.StatEntry) string { return e.Date.String() }),
		txns:      newCollection(func(t core.Transaction) string { return t.ID }),
		classes:   newCollection(func(c core.ClassItem) string { return c.ID }),
		events:    newCollection(func(e core.EventItem) string { return e.ID }),
		tasks:     newCollection(func(t core.Task) string { return t.ID }),
		shopping:  newCollection(func(s core.ShoppingItem) string { return s.ID }),
		activator: core.DefaultActivator(),
	}
}

func (s *Store) Stats() []core.StatEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.snapshot()
}

func (s *Store) ReplaceStats(items []core.StatEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.replace(items)
}

func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txns.snapshot()
}

func (s *Store) ReplaceTransactions(items []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns.replace(items)
}

func (s *Store) Classes() []core.ClassItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes.snapshot()
}

func (s *Store) ReplaceClasses(items []core.ClassItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes.replace(items)
}

func (s *Store) Events() []core.EventItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.snapshot()
}

func (s *Store) ReplaceEvents(items []core.EventItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events.replace(items)
}

func (s *Store) Tasks() []core.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.snapshot()
}

func (s *Store) ReplaceTasks(items []core.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks.replace(items)
}

func (s *Store) Shopping() []core.ShoppingItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shopping.snapshot()
}

func (s *Store) ReplaceShopping(items []core.ShoppingItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shopping.replace(items)
}

func (s *Store) Activator() core.ActivatorDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activator
}

func (s *Store) ReplaceActivator(doc core.ActivatorDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activator = doc
}

// Task looks up a single task by id.
func (s *Store) Task(id string) (core.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.get(id)
}

// Snapshot copies every collection at once under a single read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Stats:        s.stats.snapshot(),
		Transactions: s.txns.snapshot(),
		Classes:      s.classes.snapshot(),
		Events:       s.events.snapshot(),
		Tasks:        s.tasks.snapshot(),
		Shopping:     s.shopping.snapshot(),
		Activator:    s.activator,
	}
}

// Restore installs loaded state wholesale. A zero-value activator keeps the
// default seed in place, matching first-run behavior.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.replace(snap.Stats)
	s.txns.replace(snap.Transactions)
	s.classes.replace(snap.Classes)
	s.events.replace(snap.Events)
	s.tasks.replace(snap.Tasks)
	s.shopping.replace(snap.Shopping)
	if snap.Activator.Title != "" {
		s.activator = snap.Activator
	}
}
