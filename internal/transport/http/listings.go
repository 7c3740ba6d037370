package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/app"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

func handleListings(w http.ResponseWriter, r *http.Request, engine MarketEngine, key string) {
	switch r.Method {
	case http.MethodGet:
		handleSecondaryMarket(w, r, engine, key)
	case http.MethodPost:
		handleListTicket(w, r, engine, key)
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func handleSecondaryMarket(w http.ResponseWriter, r *http.Request, engine MarketEngine, key string) {
	if !boundMarket(w, engine, key) {
		return
	}

	listings, err := engine.SecondaryMarket(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]listingResponse, 0, len(listings))
	for _, listing := range listings {
		resp = append(resp, toListingResponse(listing))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func handleListTicket(w http.ResponseWriter, r *http.Request, engine MarketEngine, key string) {
	if !boundMarket(w, engine, key) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req listTicketRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	fee, err := decimal.NewFromString(req.ListingFee)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidAmount, "invalid listing_fee")
		return
	}

	listing, err := engine.ListTicket(r.Context(), app.ListTicketInput{
		Caller:     caller,
		AskPrice:   req.AskPrice,
		ListingFee: fee,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toListingResponse(listing))
}

func handleBuyListedTicket(w http.ResponseWriter, r *http.Request, engine MarketEngine, key, rawID string) {
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
	ticketID, err := parseTicketID(rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidID, "invalid listing id")
		return
	}

	ticket, err := engine.BuyListedTicket(r.Context(), app.BuyListedTicketInput{
		Caller:   caller,
		TicketID: ticketID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toListingResponse(ticket))
}

type listTicketRequest struct {
	AskPrice   int64  `json:"ask_price"`
	ListingFee string `json:"listing_fee"`
}

type listingResponse struct {
	ID        int64      `json:"id"`
	MarketKey string     `json:"market_key"`
	TokenID   int64      `json:"token_id"`
	Seller    string     `json:"seller"`
	Owner     *string    `json:"owner,omitempty"`
	ListPrice int64      `json:"list_price"`
	Sold      bool       `json:"sold"`
	CreatedAt time.Time  `json:"created_at"`
	SoldAt    *time.Time `json:"sold_at,omitempty"`
}

func toListingResponse(t domain.FestTicket) listingResponse {
	resp := listingResponse{
		ID:        t.ID,
		MarketKey: t.MarketKey,
		TokenID:   t.TokenID,
		Seller:    t.Seller.String(),
		ListPrice: t.ListPrice,
		Sold:      t.Sold,
		CreatedAt: t.CreatedAt,
		SoldAt:    t.SoldAt,
	}
	if t.Owner != nil {
		owner := t.Owner.String()
		resp.Owner = &owner
	}
	return resp
}
