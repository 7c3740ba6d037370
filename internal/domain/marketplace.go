package domain

import "github.com/google/uuid"

// MarketplaceState is the marketplace engine's own bookkeeping for its
// bound market: the organizer receiving fees and the running count of
// primary tickets sold. It is separate from the ledger's market registry,
// which stays policy-agnostic.
type MarketplaceState struct {
	MarketKey   string
	Organizer   uuid.UUID
	TicketsSold int64
}
