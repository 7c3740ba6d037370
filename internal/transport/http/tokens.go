package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

// TokenReader is the ledger surface for token metadata and balances.
type TokenReader interface {
	Token(ctx context.Context, tokenID int64) (domain.Token, error)
	BalanceOf(ctx context.Context, account uuid.UUID, tokenID int64) (int64, error)
}

// HandleTokens returns an HTTP handler for GET /tokens/{id}.
func HandleTokens(svc TokenReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "tokens" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		tokenID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || tokenID <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid token id")
			return
		}

		token, err := svc.Token(r.Context(), tokenID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			ID:          token.ID,
			URI:         token.URI,
			TotalSupply: token.TotalSupply,
		})
	}
}

// HandleBalances returns an HTTP handler for
// GET /accounts/{id}/balances/{tokenId}.
func HandleBalances(svc TokenReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 || parts[0] != "accounts" || parts[2] != "balances" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		account, err := uuid.Parse(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid account id")
			return
		}
		tokenID, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil || tokenID <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid token id")
			return
		}

		balance, err := svc.BalanceOf(r.Context(), account, tokenID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(balanceResponse{
			Account: account.String(),
			TokenID: tokenID,
			Balance: balance,
		})
	}
}

type tokenResponse struct {
	ID          int64  `json:"id"`
	URI         string `json:"uri"`
	TotalSupply int64  `json:"total_supply"`
}

type balanceResponse struct {
	Account string `json:"account"`
	TokenID int64  `json:"token_id"`
	Balance int64  `json:"balance"`
}
