package domain

import (
	"time"

	"github.com/google/uuid"
)

// FestTicket is a resale listing, distinct from the underlying ticket
// token. A listing is created unsold with no owner; a purchase sets the
// owner and marks it sold, permanently. Records are never deleted or
// reused; reselling the same underlying token produces a new FestTicket.
type FestTicket struct {
	ID        int64
	MarketKey string
	TokenID   int64
	Seller    uuid.UUID
	Owner     *uuid.UUID
	ListPrice int64
	Sold      bool
	CreatedAt time.Time
	SoldAt    *time.Time
}
