package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a caller identity. Token balances are held by the ledger;
// the base-currency balance lives in the settlement account.
type Account struct {
	ID          uuid.UUID
	DisplayName string
	CreatedAt   time.Time
}

// SettlementBalance is an account's base-currency position.
type SettlementBalance struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
}
