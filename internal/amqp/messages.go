package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// ChangeMessage announces a committed change to the transaction collection.
// It carries no record data; consumers re-read the collection.
type ChangeMessage struct {
	Namespace string        `json:"namespace"`
	Op        core.ChangeOp `json:"op"`
	ID        string        `json:"id,omitempty"`
	Count     int           `json:"count"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewChangeMessage(namespace string, change core.Change) *ChangeMessage {
	ts := change.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &ChangeMessage{
		Namespace: namespace,
		Op:        change.Op,
		ID:        change.ID,
		Count:     change.Count,
		Timestamp: ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
