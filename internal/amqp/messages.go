package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation says what the worker must do with the mirrored row.
type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// SyncMessage announces that a transaction changed locally. It carries only
// the id and version; the worker reads the current row from the database.
type SyncMessage struct {
	ID        string    `json:"id"`
	Operation Operation `json:"operation"`
	Version   int64     `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUpsertMessage(id string, version int64) *SyncMessage {
	return &SyncMessage{ID: id, Operation: OpUpsert, Version: version, Timestamp: time.Now()}
}

func NewDeleteMessage(id string) *SyncMessage {
	return &SyncMessage{ID: id, Operation: OpDelete, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON decodes and checks a message body.
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("sync message without id")
	}
	switch msg.Operation {
	case OpUpsert, OpDelete:
	case "":
		msg.Operation = OpUpsert
	default:
		return nil, fmt.Errorf("unknown sync operation %q", msg.Operation)
	}
	return &msg, nil
}
