package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"makeros/internal/amqp"
)

type memoryReader struct {
	data map[string][]byte
}

func (m *memoryReader) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, ok := m.data[key]
	return payload, ok, nil
}

func (m *memoryReader) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func TestHandleSnapshotSaved(t *testing.T) {
	dir := t.TempDir()
	reader := &memoryReader{data: map[string][]byte{
		"m_tasks": []byte(`[{"id":"1","text":"sweep","completed":false}]`),
	}}
	w := NewBackupWorker(reader, dir)

	msg := amqp.NewSnapshotSavedMessage("m_tasks", time.Now())
	if err := w.HandleSnapshotSaved(msg); err != nil {
		t.Fatalf("HandleSnapshotSaved() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "m_tasks.json"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(got) != string(reader.data["m_tasks"]) {
		t.Errorf("export = %s, want %s", got, reader.data["m_tasks"])
	}
}

func TestHandleSnapshotSavedMissingKey(t *testing.T) {
	w := NewBackupWorker(&memoryReader{data: map[string][]byte{}}, t.TempDir())

	msg := amqp.NewSnapshotSavedMessage("m_ghost", time.Now())
	if err := w.HandleSnapshotSaved(msg); err != nil {
		t.Errorf("missing key should not be an error, got %v", err)
	}
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	reader := &memoryReader{data: map[string][]byte{
		"m_stats":        []byte(`[]`),
		"m_transactions": []byte(`[{"id":"t1"}]`),
	}}
	w := NewBackupWorker(reader, dir)

	if err := w.ExportAll(context.Background()); err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	for key := range reader.data {
		if _, err := os.Stat(filepath.Join(dir, key+".json")); err != nil {
			t.Errorf("expected export for %s: %v", key, err)
		}
	}
}

func TestExportOverwrites(t *testing.T) {
	dir := t.TempDir()
	reader := &memoryReader{data: map[string][]byte{"m_events": []byte(`["old"]`)}}
	w := NewBackupWorker(reader, dir)

	msg := amqp.NewSnapshotSavedMessage("m_events", time.Now())
	if err := w.HandleSnapshotSaved(msg); err != nil {
		t.Fatal(err)
	}

	reader.data["m_events"] = []byte(`["new"]`)
	if err := w.HandleSnapshotSaved(msg); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "m_events.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `["new"]` {
		t.Errorf("export = %s, want [\"new\"]", got)
	}
}
