package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collections that publish change notifications.
const (
	CollectionTransactions = "transactions"
	CollectionGoals        = "goals"
	CollectionBudgets      = "budgets"
	CollectionConfig       = "config"
)

const (
	OpPut    = "put"
	OpDelete = "delete"
)

// ChangeMessage announces that a document changed. It carries no payload;
// consumers reload the snapshot from the store.
type ChangeMessage struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewChangeMessage(collection, op, id string) *ChangeMessage {
	return &ChangeMessage{
		Collection: collection,
		Op:         op,
		ID:         id,
		Timestamp:  time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes and validates a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Collection {
	case CollectionTransactions, CollectionGoals, CollectionBudgets, CollectionConfig:
	default:
		return nil, fmt.Errorf("unknown collection %q", msg.Collection)
	}
	if msg.Op != OpPut && msg.Op != OpDelete {
		return nil, fmt.Errorf("unknown op %q", msg.Op)
	}
	return &msg, nil
}
