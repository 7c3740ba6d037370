package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/app"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

// MarketRegistry is the ledger surface for the market registry routes.
type MarketRegistry interface {
	RegisterMarket(ctx context.Context, in app.RegisterMarketInput) (domain.Market, error)
	Market(ctx context.Context, key string) (domain.Market, error)
}

// MarketEngine is the marketplace surface for purchase and resale routes.
type MarketEngine interface {
	BuyCurrency(ctx context.Context, in app.BuyCurrencyInput) (int64, error)
	BuyTicket(ctx context.Context, in app.BuyTicketInput) (int64, error)
	ListTicket(ctx context.Context, in app.ListTicketInput) (domain.FestTicket, error)
	BuyListedTicket(ctx context.Context, in app.BuyListedTicketInput) (domain.FestTicket, error)
	SecondaryMarket(ctx context.Context) ([]domain.FestTicket, error)
	State(ctx context.Context) (domain.MarketplaceState, error)
	Market() domain.Market
}

// HandleRegisterMarket returns an HTTP handler for POST /markets.
// The caller registers itself as the market operator; registering on
// someone else's behalf is rejected by the ledger.
func HandleRegisterMarket(registry MarketRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		caller, ok := requireCaller(w, r)
		if !ok {
			return
		}

		var req registerMarketRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.MarketKey == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "market_key is required")
			return
		}

		operator := caller
		if req.Operator != "" {
			parsed, err := uuid.Parse(req.Operator)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid operator")
				return
			}
			operator = parsed
		}

		market, err := registry.RegisterMarket(r.Context(), app.RegisterMarketInput{
			Caller:      caller,
			MarketKey:   req.MarketKey,
			Operator:    operator,
			CurrencyURI: req.CurrencyURI,
			TicketURI:   req.TicketURI,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toMarketResponse(market))
	}
}

// HandleMarketTree returns an HTTP handler for everything under
// /markets/{key}/. The engine serves a single configured market, so a
// mismatched key is a plain 404.
func HandleMarketTree(registry MarketRegistry, engine MarketEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "markets" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		key := parts[1]
		rest := parts[2:]

		switch {
		case len(rest) == 0:
			handleGetMarket(w, r, registry, engine, key)
		case len(rest) == 2 && rest[0] == "currency" && rest[1] == "purchases":
			handleBuyCurrency(w, r, engine, key)
		case len(rest) == 2 && rest[0] == "tickets" && rest[1] == "purchases":
			handleBuyTicket(w, r, engine, key)
		case len(rest) == 1 && rest[0] == "listings":
			handleListings(w, r, engine, key)
		case len(rest) == 3 && rest[0] == "listings" && rest[2] == "purchase":
			handleBuyListedTicket(w, r, engine, key, rest[1])
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleGetMarket(w http.ResponseWriter, r *http.Request, registry MarketRegistry, engine MarketEngine, key string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	market, err := registry.Market(r.Context(), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := toMarketResponse(market)
	if key == engine.Market().Key {
		if st, err := engine.State(r.Context()); err == nil {
			resp.TicketsSold = &st.TicketsSold
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// boundMarket rejects keys the engine does not serve.
func boundMarket(w http.ResponseWriter, engine MarketEngine, key string) bool {
	if key != engine.Market().Key {
		writeError(w, http.StatusNotFound, codeMarketNotRegistered, domain.ErrMarketNotRegistered.Error())
		return false
	}
	return true
}

func parseTicketID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

type registerMarketRequest struct {
	MarketKey   string `json:"market_key"`
	Operator    string `json:"operator,omitempty"`
	CurrencyURI string `json:"currency_uri"`
	TicketURI   string `json:"ticket_uri"`
}

type marketResponse struct {
	Key             string    `json:"key"`
	Operator        string    `json:"operator"`
	CurrencyTokenID int64     `json:"currency_token_id"`
	TicketTokenID   int64     `json:"ticket_token_id"`
	Registered      bool      `json:"registered"`
	CreatedAt       time.Time `json:"created_at"`
	TicketsSold     *int64    `json:"tickets_sold,omitempty"`
}

func toMarketResponse(m domain.Market) marketResponse {
	return marketResponse{
		Key:             m.Key,
		Operator:        m.Operator.String(),
		CurrencyTokenID: m.CurrencyTokenID,
		TicketTokenID:   m.TicketTokenID,
		Registered:      m.Registered,
		CreatedAt:       m.CreatedAt,
	}
}
