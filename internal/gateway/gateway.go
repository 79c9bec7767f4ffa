// Package gateway is the asynchronous boundary between the in-memory Entity
// Store and durable storage. It keeps the wire contract of the original cloud
// façade: one JSON document per entity key, simulated latency on both
// directions, absence meaning "use defaults".
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"makeros/internal/core"
	"makeros/internal/storage"
)

// Storage keys, one per entity collection. The key names match the original
// deployment; the payload shapes under them are this system's own.
const (
	KeyStats        = "m_stats"
	KeyTransactions = "m_transactions"
	KeyClasses      = "m_classes"
	KeyEvents       = "m_events"
	KeyTasks        = "m_tasks"
	KeyShopping     = "m_shopping"
	KeyActivator    = "m_activator"
	KeySpark        = "m_daily_spark"
)

// EntityKeys lists every persisted key in load order.
func EntityKeys() []string {
	return []string{
		KeyStats, KeyTransactions, KeyClasses, KeyEvents,
		KeyTasks, KeyShopping, KeyActivator, KeySpark,
	}
}

// Ack acknowledges a completed save.
type Ack struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is everything a load returns. List collections come back empty when
// never saved; the two documents come back nil so the caller can install
// defaults.
type Snapshot struct {
	Stats        []core.StatEntry
	Transactions []core.Transaction
	Classes      []core.ClassItem
	Events       []core.EventItem
	Tasks        []core.Task
	Shopping     []core.ShoppingItem
	Activator    *core.ActivatorDocument
	Spark        *core.SuggestedProject
}

// Gateway fronts a key-value store with the simulated-latency save/load
// contract. It is the only component that touches durable storage.
type Gateway struct {
	kv          storage.KV
	loadLatency time.Duration
	saveLatency time.Duration
	now         func() time.Time
}

func New(kv storage.KV, loadLatency, saveLatency time.Duration) *Gateway {
	return &Gateway{
		kv:          kv,
		loadLatency: loadLatency,
		saveLatency: saveLatency,
		now:         time.Now,
	}
}

// Load returns the last-saved snapshot of every collection. The simulated
// cold-start latency elapses once, up front; the per-key reads then run
// concurrently. A key that was never saved is not an error.
func (g *Gateway) Load(ctx context.Context) (Snapshot, error) {
	if err := g.wait(ctx, g.loadLatency); err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return g.read(ctx, KeyStats, &snap.Stats) })
	eg.Go(func() error { return g.read(ctx, KeyTransactions, &snap.Transactions) })
	eg.Go(func() error { return g.read(ctx, KeyClasses, &snap.Classes) })
	eg.Go(func() error { return g.read(ctx, KeyEvents, &snap.Events) })
	eg.Go(func() error { return g.read(ctx, KeyTasks, &snap.Tasks) })
	eg.Go(func() error { return g.read(ctx, KeyShopping, &snap.Shopping) })
	eg.Go(func() error { return g.read(ctx, KeyActivator, &snap.Activator) })
	eg.Go(func() error { return g.read(ctx, KeySpark, &snap.Spark) })
	if err := eg.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Save serializes data and overwrites the key after the simulated network
// latency. Keys are saved independently; a failure on one never blocks
// another.
func (g *Gateway) Save(ctx context.Context, key string, data any) (Ack, error) {
	if err := g.wait(ctx, g.saveLatency); err != nil {
		return Ack{}, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return Ack{}, fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := g.kv.Put(ctx, key, payload); err != nil {
		return Ack{}, fmt.Errorf("save %s: %w", key, err)
	}
	return Ack{Status: "success", Timestamp: g.now()}, nil
}

func (g *Gateway) read(ctx context.Context, key string, dst any) error {
	payload, ok, err := g.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (g *Gateway) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
