// Package worker mirrors saved snapshots to JSON files on disk. It consumes
// snapshot-saved events and re-reads the payload from storage, so exports
// always reflect the latest durable state rather than the event body.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"makeros/internal/amqp"
	applog "makeros/internal/log"
)

// SnapshotReader is the slice of the storage layer the worker needs.
type SnapshotReader interface {
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Keys(ctx context.Context) ([]string, error)
}

type BackupWorker struct {
	storage   SnapshotReader
	exportDir string
	log       *applog.Logger
}

func NewBackupWorker(storage SnapshotReader, exportDir string) *BackupWorker {
	return &BackupWorker{
		storage:   storage,
		exportDir: exportDir,
		log:       applog.Default(applog.ComponentWorker),
	}
}

// HandleSnapshotSaved exports the payload behind one snapshot-saved event.
func (w *BackupWorker) HandleSnapshotSaved(msg *amqp.SnapshotSavedMessage) error {
	ctx := context.Background()

	payload, ok, err := w.storage.Get(ctx, msg.Key)
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", msg.Key, err)
	}
	if !ok {
		// The key may have been saved and then the database replaced; nothing
		// to export either way.
		w.log.WarnContext(ctx, "Snapshot key not found, skipping export", "key", msg.Key)
		return nil
	}

	if err := w.export(msg.Key, payload); err != nil {
		return err
	}

	w.log.InfoContext(ctx, "Snapshot exported",
		"key", msg.Key, "bytes", len(payload), "saved_at", msg.SavedAt)
	return nil
}

// ExportAll mirrors every stored key. Run at startup to catch events lost
// while the worker was down.
func (w *BackupWorker) ExportAll(ctx context.Context) error {
	keys, err := w.storage.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list snapshot keys: %w", err)
	}

	for _, key := range keys {
		payload, ok, err := w.storage.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read snapshot %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := w.export(key, payload); err != nil {
			return err
		}
	}

	w.log.InfoContext(ctx, "Startup export complete", "keys", len(keys))
	return nil
}

// export writes the payload atomically via a temp file rename.
func (w *BackupWorker) export(key string, payload []byte) error {
	if err := os.MkdirAll(w.exportDir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	target := filepath.Join(w.exportDir, key+".json")
	tmp, err := os.CreateTemp(w.exportDir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp export file: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write export %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close export %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize export %s: %w", key, err)
	}
	return nil
}
