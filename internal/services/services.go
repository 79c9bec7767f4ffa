// Package services holds the per-entity CRUD controllers. Every controller
// follows the same contract: validate input, assign identity, swap the whole
// next collection into the Entity Store, then dispatch a fire-and-forget sync
// of that collection. The store is always mutated before the save is queued,
// so in-memory state stays authoritative while storage trails behind.
package services

import (
	"strconv"
	"sync/atomic"
	"time"

	"makeros/internal/gateway"
	applog "makeros/internal/log"
	"makeros/internal/store"
)

// Syncer queues a save of a collection under its storage key. Implemented by
// gateway.Syncer; faked in tests.
type Syncer interface {
	Dispatch(key string, payload any) <-chan gateway.Ack
}

// IDFunc mints record identifiers.
type IDFunc func() string

var idCounter atomic.Int64

// TimestampID returns an opaque, monotonic-enough identifier. The counter
// suffix keeps ids unique even when two records are created within the same
// nanosecond tick.
func TimestampID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + strconv.FormatInt(idCounter.Add(1), 10)
}

type base struct {
	store *store.Store
	sync  Syncer
	newID IDFunc
	log   *applog.Logger
}

func (b base) dispatch(key string, payload any) {
	if b.sync != nil {
		b.sync.Dispatch(key, payload)
	}
}

// Set bundles one controller per entity kind over a shared store and syncer.
type Set struct {
	Stats     *StatsService
	Ledger    *LedgerService
	Classes   *ClassService
	Events    *EventService
	Tasks     *TaskService
	Shopping  *ShoppingService
	Activator *ActivatorService
}

func NewSet(st *store.Store, sync Syncer) *Set {
	b := base{store: st, sync: sync, newID: TimestampID, log: applog.Default(applog.ComponentServices)}
	return &Set{
		Stats:     &StatsService{base: b},
		Ledger:    &LedgerService{base: b},
		Classes:   &ClassService{base: b},
		Events:    &EventService{base: b},
		Tasks:     &TaskService{base: b},
		Shopping:  &ShoppingService{base: b},
		Activator: &ActivatorService{base: b},
	}
}
