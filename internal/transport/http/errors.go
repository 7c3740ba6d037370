package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/guard"
)

const (
	codeMethodNotAllowed        = "method_not_allowed"
	codeNotFound                = "not_found"
	codeInvalidRequestBody      = "invalid_request_body"
	codeInvalidID               = "invalid_id"
	codeIdentityRequired        = "identity_required"
	codeUnauthorizedCaller      = "unauthorized_caller"
	codeMarketNotRegistered     = "market_not_registered"
	codeMarketAlreadyRegistered = "market_already_registered"
	codeInsufficientBalance     = "insufficient_balance"
	codeInsufficientCurrency    = "insufficient_currency"
	codeNotApproved             = "not_approved"
	codeSoldOut                 = "sold_out"
	codeExceedsCap              = "exceeds_cap"
	codePriceCapExceeded        = "price_cap_exceeded"
	codeIncorrectPayment        = "incorrect_payment"
	codeIncorrectListingFee     = "incorrect_listing_fee"
	codeUnknownTicket           = "unknown_ticket"
	codeNoHolding               = "no_holding"
	codeTokenNotFound           = "token_not_found"
	codeAccountNotFound         = "account_not_found"
	codeInvalidQuantity         = "invalid_quantity"
	codeInvalidPrice            = "invalid_price"
	codeInvalidAmount           = "invalid_amount"
	codeReentrantCall           = "reentrant_call"
	codeForbidden               = "forbidden"
	codeInternalError           = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps a domain sentinel to its HTTP status and code.
// Every handler funnels service failures through here so the envelope
// stays uniform across routes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
	case errors.Is(err, domain.ErrIncorrectPayment):
		writeError(w, http.StatusBadRequest, codeIncorrectPayment, err.Error())
	case errors.Is(err, domain.ErrIncorrectListingFee):
		writeError(w, http.StatusBadRequest, codeIncorrectListingFee, err.Error())
	case errors.Is(err, domain.ErrUnauthorizedCaller):
		writeError(w, http.StatusForbidden, codeUnauthorizedCaller, err.Error())
	case errors.Is(err, domain.ErrNotApproved):
		writeError(w, http.StatusForbidden, codeNotApproved, err.Error())
	case errors.Is(err, domain.ErrMarketNotRegistered):
		writeError(w, http.StatusNotFound, codeMarketNotRegistered, err.Error())
	case errors.Is(err, domain.ErrTokenNotFound):
		writeError(w, http.StatusNotFound, codeTokenNotFound, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, codeAccountNotFound, err.Error())
	case errors.Is(err, domain.ErrUnknownTicket):
		writeError(w, http.StatusNotFound, codeUnknownTicket, err.Error())
	case errors.Is(err, domain.ErrMarketAlreadyRegistered):
		writeError(w, http.StatusConflict, codeMarketAlreadyRegistered, err.Error())
	case errors.Is(err, domain.ErrSoldOut):
		writeError(w, http.StatusConflict, codeSoldOut, err.Error())
	case errors.Is(err, domain.ErrExceedsCap):
		writeError(w, http.StatusConflict, codeExceedsCap, err.Error())
	case errors.Is(err, domain.ErrPriceCapExceeded):
		writeError(w, http.StatusConflict, codePriceCapExceeded, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, codeInsufficientBalance, err.Error())
	case errors.Is(err, domain.ErrInsufficientCurrency):
		writeError(w, http.StatusConflict, codeInsufficientCurrency, err.Error())
	case errors.Is(err, domain.ErrNoHolding):
		writeError(w, http.StatusConflict, codeNoHolding, err.Error())
	case errors.Is(err, guard.ErrReentrantCall):
		writeError(w, http.StatusConflict, codeReentrantCall, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
