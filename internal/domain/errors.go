package domain

import "errors"

var (
	ErrUnauthorizedCaller      = errors.New("unauthorized caller")
	ErrMarketNotRegistered     = errors.New("market not registered")
	ErrMarketAlreadyRegistered = errors.New("market already registered")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrInsufficientCurrency    = errors.New("insufficient currency")
	ErrNotApproved             = errors.New("transfer not approved")
	ErrSoldOut                 = errors.New("tickets sold out")
	ErrExceedsCap              = errors.New("quantity exceeds remaining supply")
	ErrPriceCapExceeded        = errors.New("ask price exceeds resale cap")
	ErrIncorrectPayment        = errors.New("incorrect payment amount")
	ErrIncorrectListingFee     = errors.New("incorrect listing fee")
	ErrUnknownTicket           = errors.New("unknown or already sold ticket")
	ErrNoHolding               = errors.New("caller holds no such ticket")
	ErrTokenNotFound           = errors.New("token not found")
	ErrAccountNotFound         = errors.New("account not found")
	ErrInvalidQuantity         = errors.New("invalid quantity")
	ErrInvalidPrice            = errors.New("invalid price")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidID               = errors.New("invalid id")
)
