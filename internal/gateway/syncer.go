package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	applog "makeros/internal/log"
)

// Publisher is notified after a key has been durably saved. Optional; a nil
// publisher disables notifications.
type Publisher interface {
	PublishSnapshotSaved(ctx context.Context, key string, savedAt time.Time) error
}

// SyncStatus is the "unsynced changes" view: how many saves are in flight and
// which keys are still ahead of durable storage.
type SyncStatus struct {
	Pending int      `json:"pending"`
	Dirty   []string `json:"dirty"`
}

// Syncer dispatches fire-and-forget saves. Local mutation never waits on it:
// the store is updated first and the save trails behind (store-then-sync).
// Failed saves are retried with doubling backoff; a key that exhausts its
// retries stays dirty until a later dispatch for it succeeds.
//
// Saves for the same key are serialized. Each dispatch takes a per-key
// generation; a payload superseded by a newer dispatch before it reaches
// storage is skipped, so a retried older save can never overwrite a newer one.
type Syncer struct {
	gw      *Gateway
	pub     Publisher
	retries int
	backoff time.Duration
	log     *applog.Logger

	mu      sync.Mutex
	dirty   map[string]struct{}
	gen     map[string]uint64
	keyMu   map[string]*sync.Mutex
	pending int
	wg      sync.WaitGroup
}

func NewSyncer(gw *Gateway, pub Publisher, retries int, backoff time.Duration) *Syncer {
	if retries < 1 {
		retries = 1
	}
	return &Syncer{
		gw:      gw,
		pub:     pub,
		retries: retries,
		backoff: backoff,
		log:     applog.Default(applog.ComponentSync),
		dirty:   map[string]struct{}{},
		gen:     map[string]uint64{},
		keyMu:   map[string]*sync.Mutex{},
	}
}

// Dispatch queues a save of payload under key and returns immediately. The
// returned channel resolves with the save's acknowledgement: "success" when
// this payload was written, "superseded" when a newer dispatch for the key
// took its place, "failed" when every attempt erred. Callers that don't
// surface a saved indicator may ignore the channel.
func (s *Syncer) Dispatch(key string, payload any) <-chan Ack {
	ch := make(chan Ack, 1)

	s.mu.Lock()
	s.dirty[key] = struct{}{}
	s.gen[key]++
	myGen := s.gen[key]
	km, ok := s.keyMu[key]
	if !ok {
		km = &sync.Mutex{}
		s.keyMu[key] = km
	}
	s.pending++
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx := context.Background()

		km.Lock()
		defer km.Unlock()

		var ack Ack
		var err error
		superseded := false
		delay := s.backoff
		for attempt := 1; attempt <= s.retries; attempt++ {
			if s.currentGen(key) != myGen {
				superseded = true
				break
			}
			ack, err = s.gw.Save(ctx, key, payload)
			if err == nil {
				break
			}
			s.log.WarnContext(ctx, "Snapshot save failed",
				"key", key, "attempt", attempt, "error", err)
			if attempt < s.retries {
				time.Sleep(delay)
				delay *= 2
			}
		}

		s.mu.Lock()
		s.pending--
		// Only the dispatch that wrote the latest generation may report the
		// key clean; otherwise the newer dispatch still owns it.
		if !superseded && err == nil && s.gen[key] == myGen {
			delete(s.dirty, key)
		}
		s.mu.Unlock()

		if superseded {
			s.log.DebugContext(ctx, "Snapshot save superseded by newer payload", "key", key)
			ch <- Ack{Status: "superseded", Timestamp: time.Now()}
			close(ch)
			return
		}

		if err != nil {
			s.log.ErrorContext(ctx, "Snapshot save abandoned, local state remains authoritative",
				"key", key, "retries", s.retries, "error", err)
			ch <- Ack{Status: "failed", Timestamp: time.Now()}
			close(ch)
			return
		}

		if s.pub != nil {
			if err := s.pub.PublishSnapshotSaved(ctx, key, ack.Timestamp); err != nil {
				s.log.WarnContext(ctx, "Failed to publish snapshot-saved event",
					"key", key, "error", err)
			}
		}

		s.log.InfoContext(ctx, "Snapshot synced", "key", key, "saved_at", ack.Timestamp)
		ch <- ack
		close(ch)
	}()

	return ch
}

func (s *Syncer) currentGen(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[key]
}

// Status reports in-flight saves and keys not yet confirmed durable.
func (s *Syncer) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return SyncStatus{Pending: s.pending, Dirty: keys}
}

// Drain blocks until every dispatched save has resolved. Used on shutdown and
// in tests.
func (s *Syncer) Drain() {
	s.wg.Wait()
}
