package domain

import "time"

type EventKind string

const (
	EventMarketRegistered  EventKind = "market_registered"
	EventTicketMinted      EventKind = "ticket_minted"
	EventCurrencyMinted    EventKind = "currency_minted"
	EventCurrencyPurchased EventKind = "currency_purchased"
	EventPrimarySale       EventKind = "primary_sale"
	EventTicketListed      EventKind = "ticket_listed"
	EventSecondarySale     EventKind = "secondary_sale"
)

// Event is a journal entry for external indexers. Nothing inside the
// service consumes these; they are written in the same transaction as
// the operation they describe.
type Event struct {
	ID         int64
	Kind       EventKind
	Payload    map[string]any
	OccurredAt time.Time
}
