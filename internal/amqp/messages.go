package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Actions recorded on a transaction event.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEventMessage notifies workers that a transaction changed.
// It carries only identifiers, the worker fetches fresh state from the
// store before recomputing progress.
type TransactionEventMessage struct {
	EventID       string    `json:"event_id"`
	Owner         string    `json:"owner"`
	TransactionID int64     `json:"transaction_id"`
	Kind          string    `json:"kind"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(owner string, transactionID int64, kind, action string) *TransactionEventMessage {
	return &TransactionEventMessage{
		EventID:       uuid.NewString(),
		Owner:         owner,
		TransactionID: transactionID,
		Kind:          kind,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
