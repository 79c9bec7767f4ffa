package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSavedMessage announces that a collection snapshot reached durable
// storage. It carries only the key; consumers fetch the payload themselves so
// the queue never holds stale data.
type SnapshotSavedMessage struct {
	Key     string    `json:"key"`
	SavedAt time.Time `json:"savedAt"`
}

func NewSnapshotSavedMessage(key string, savedAt time.Time) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{Key: key, SavedAt: savedAt}
}

func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
