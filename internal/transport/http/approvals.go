package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// ApprovalService is the ledger surface for operator approvals.
type ApprovalService interface {
	SetApprovalForAll(ctx context.Context, caller, operator uuid.UUID, approved bool) error
	IsApprovedForAll(ctx context.Context, owner, operator uuid.UUID) (bool, error)
}

// HandleApprovals returns an HTTP handler for /approvals: POST grants
// or revokes blanket transfer authority for the caller, GET reads any
// owner/operator pair.
func HandleApprovals(svc ApprovalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			caller, ok := requireCaller(w, r)
			if !ok {
				return
			}

			var req setApprovalRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			operator, err := uuid.Parse(req.Operator)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid operator")
				return
			}

			if err := svc.SetApprovalForAll(r.Context(), caller, operator, req.Approved); err != nil {
				writeServiceError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(approvalResponse{
				Owner:    caller.String(),
				Operator: operator.String(),
				Approved: req.Approved,
			})
		case http.MethodGet:
			owner, err := uuid.Parse(r.URL.Query().Get("owner"))
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid owner")
				return
			}
			operator, err := uuid.Parse(r.URL.Query().Get("operator"))
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid operator")
				return
			}

			approved, err := svc.IsApprovedForAll(r.Context(), owner, operator)
			if err != nil {
				writeServiceError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(approvalResponse{
				Owner:    owner.String(),
				Operator: operator.String(),
				Approved: approved,
			})
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type setApprovalRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type approvalResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}
