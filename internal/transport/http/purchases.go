package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/app"
)

func handleBuyCurrency(w http.ResponseWriter, r *http.Request, engine MarketEngine, key string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	if !boundMarket(w, engine, key) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req buyCurrencyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	payment, err := decimal.NewFromString(req.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidAmount, "invalid payment")
		return
	}

	balance, err := engine.BuyCurrency(r.Context(), app.BuyCurrencyInput{
		Caller:   caller,
		Quantity: req.Quantity,
		Payment:  payment,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(buyCurrencyResponse{
		Quantity:        req.Quantity,
		CurrencyBalance: balance,
	})
}

func handleBuyTicket(w http.ResponseWriter, r *http.Request, engine MarketEngine, key string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	if !boundMarket(w, engine, key) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req buyTicketRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	sold, err := engine.BuyTicket(r.Context(), app.BuyTicketInput{
		Caller:   caller,
		Quantity: req.Quantity,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(buyTicketResponse{
		Quantity:    req.Quantity,
		TicketsSold: sold,
	})
}

type buyCurrencyRequest struct {
	Quantity int64  `json:"quantity"`
	Payment  string `json:"payment"`
}

type buyCurrencyResponse struct {
	Quantity        int64 `json:"quantity"`
	CurrencyBalance int64 `json:"currency_balance"`
}

type buyTicketRequest struct {
	Quantity int64 `json:"quantity"`
}

type buyTicketResponse struct {
	Quantity    int64 `json:"quantity"`
	TicketsSold int64 `json:"tickets_sold"`
}
