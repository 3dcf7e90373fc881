package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type (
	RecordKind   string
	RecordAction string
)

const (
	KindTransaction RecordKind = "transaction"
	KindGoal        RecordKind = "goal"

	ActionCreated RecordAction = "created"
	ActionUpdated RecordAction = "updated"
	ActionDeleted RecordAction = "deleted"
)

// RecordChangedMessage announces a write to one user's records. It carries
// identifiers only; consumers read the current state from the store.
type RecordChangedMessage struct {
	UserID    string       `json:"user_id"`
	Kind      RecordKind   `json:"kind"`
	ID        string       `json:"id"`
	Action    RecordAction `json:"action"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewRecordChangedMessage(uid string, kind RecordKind, id string, action RecordAction) *RecordChangedMessage {
	return &RecordChangedMessage{
		UserID:    uid,
		Kind:      kind,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes a message and rejects ones without a
// user or record id.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == "" || msg.ID == "" {
		return nil, fmt.Errorf("record changed message missing user_id or id")
	}
	return &msg, nil
}
