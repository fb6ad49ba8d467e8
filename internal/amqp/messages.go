package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"fintrack/internal/core"
)

// Entities and actions carried by ledger-changed messages.
const (
	EntityTransaction = "transaction"
	EntityCategory    = "category"
	EntityAccount     = "account"
	EntityAsset       = "asset"

	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// LedgerChangedMessage tells workers that an owner's ledger changed. It
// carries references only; consumers read the rows they need from the store.
type LedgerChangedMessage struct {
	OwnerID   string      `json:"owner_id"`
	Entity    string      `json:"entity"`
	Action    string      `json:"action"`
	ID        string      `json:"id"`
	Month     *core.Month `json:"month,omitempty"` // set for transactions
	Timestamp time.Time   `json:"timestamp"`
}

// NewLedgerChangedMessage stamps a message with the current time.
func NewLedgerChangedMessage(ownerID, entity, action, id string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		OwnerID:   ownerID,
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// WithMonth records the month a transaction change affects.
func (m *LedgerChangedMessage) WithMonth(month core.Month) *LedgerChangedMessage {
	m.Month = &month
	return m
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message and requires an owner.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.OwnerID == "" {
		return nil, errors.New("ledger changed message without owner_id")
	}
	return &msg, nil
}
