// Package events publishes ledger change notifications to external brokers.
package events

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Type names a ledger change.
type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
	BudgetCreated      Type = "budget.created"
	BudgetUpdated      Type = "budget.updated"
	BudgetDeleted      Type = "budget.deleted"
	UserRegistered     Type = "user.registered"
)

// Event is the wire payload for every broker.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	UserID     string    `json:"userId"`
	EntityID   string    `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// New builds an event stamped with a fresh ID and the current time.
func New(typ Type, userID, entityID string, data any) Event {
	now := time.Now().UTC()
	return Event{
		ID:         ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Type:       typ,
		UserID:     userID,
		EntityID:   entityID,
		OccurredAt: now,
		Data:       data,
	}
}
