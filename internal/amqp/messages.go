package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds on the export queue.
const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// ExportMessage is the lightweight envelope published on every mutation.
// It carries only the record ID and version; the worker fetches the full
// record from storage when it processes a sync.
type ExportMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Version   int64     `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncMessage(id string, version int64) *ExportMessage {
	return &ExportMessage{Kind: KindSync, ID: id, Version: version, Timestamp: time.Now()}
}

func NewDeleteMessage(id string) *ExportMessage {
	return &ExportMessage{Kind: KindDelete, ID: id, Timestamp: time.Now()}
}

func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindSync, KindDelete:
	default:
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message without record ID")
	}
	return &msg, nil
}
