package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

// AdminAccountService is the minimal interface for the identity and
// deposit admin endpoints.
type AdminAccountService interface {
	CreateAccount(ctx context.Context, displayName string) (domain.Account, error)
	Deposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, decimal.Decimal, error)
}

// HandleAdminCreateAccount returns an HTTP handler for POST /admin/accounts.
func HandleAdminCreateAccount(svc AdminAccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createAccountRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		account, err := svc.CreateAccount(r.Context(), req.DisplayName)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(accountResponse{
			ID:          account.ID.String(),
			DisplayName: account.DisplayName,
			Balance:     "0",
			CreatedAt:   account.CreatedAt,
		})
	}
}

// HandleAdminAccounts returns an HTTP handler for GET
// /admin/accounts/{id} and POST /admin/accounts/{id}/deposit.
func HandleAdminAccounts(svc AdminAccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 3 || parts[0] != "admin" || parts[1] != "accounts" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		id, err := uuid.Parse(parts[2])
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid account id")
			return
		}

		switch {
		case len(parts) == 3 && r.Method == http.MethodGet:
			account, balance, err := svc.GetAccount(r.Context(), id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(accountResponse{
				ID:          account.ID.String(),
				DisplayName: account.DisplayName,
				Balance:     balance.String(),
				CreatedAt:   account.CreatedAt,
			})
		case len(parts) == 4 && parts[3] == "deposit" && r.Method == http.MethodPost:
			var req depositRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			amount, err := decimal.NewFromString(req.Amount)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidAmount, "invalid amount")
				return
			}

			balance, err := svc.Deposit(r.Context(), id, amount)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(depositResponse{
				ID:      id.String(),
				Balance: balance.String(),
			})
		case len(parts) == 3 || (len(parts) == 4 && parts[3] == "deposit"):
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

type createAccountRequest struct {
	DisplayName string `json:"display_name"`
}

type accountResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Balance     string    `json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
}

type depositRequest struct {
	Amount string `json:"amount"`
}

type depositResponse struct {
	ID      string `json:"id"`
	Balance string `json:"balance"`
}
