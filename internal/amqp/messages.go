package amqp

import (
	"encoding/json"
	"time"
)

// MortgageSyncMessage is a lightweight queue message for exporting a mortgage
// to the backup sheet. It carries only the ID and version; the worker fetches
// the full row from the database.
type MortgageSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMortgageSyncMessage creates a new sync message with just ID and version
func NewMortgageSyncMessage(id, version int64) *MortgageSyncMessage {
	return &MortgageSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MortgageSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MortgageSyncMessageFromJSON creates a message from JSON bytes
func MortgageSyncMessageFromJSON(data []byte) (*MortgageSyncMessage, error) {
	var msg MortgageSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
