package domain

import (
	"time"

	"github.com/google/uuid"
)

// Market binds a market key to its operator and the two token ids the
// operator controls. The record is write-once: once Registered is true,
// the operator and token ids never change.
type Market struct {
	Key             string
	Operator        uuid.UUID
	CurrencyTokenID int64
	TicketTokenID   int64
	Registered      bool
	CreatedAt       time.Time
}
