package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// SpendSyncMessage announces that a spend record needs exporting. The
// worker loads the full record from the database.
type SpendSyncMessage struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSpendSyncMessage(id, accountID string, now time.Time) *SpendSyncMessage {
	return &SpendSyncMessage{
		ID:        id,
		AccountID: accountID,
		Timestamp: now,
	}
}

func (m *SpendSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SpendSyncMessageFromJSON decodes a message and rejects ones without an ID.
func SpendSyncMessageFromJSON(data []byte) (*SpendSyncMessage, error) {
	var msg SpendSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("spend sync message without id")
	}
	return &msg, nil
}
