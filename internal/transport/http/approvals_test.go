package http

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type stubApprovals struct {
	approved bool
	err      error

	setOwner    uuid.UUID
	setOperator uuid.UUID
	setApproved bool
}

func (s *stubApprovals) SetApprovalForAll(_ context.Context, caller, operator uuid.UUID, approved bool) error {
	s.setOwner = caller
	s.setOperator = operator
	s.setApproved = approved
	return s.err
}

func (s *stubApprovals) IsApprovedForAll(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return s.approved, s.err
}

func TestHandleApprovals(t *testing.T) {
	t.Parallel()

	operatorID := "11111111-1111-1111-1111-111111111111"

	t.Run("grant approval uses caller as owner", func(t *testing.T) {
		t.Parallel()
		svc := &stubApprovals{}
		rec := doRequest(t, HandleApprovals(svc), http.MethodPost, "/approvals", testCallerID,
			`{"operator":"`+operatorID+`","approved":true}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.setOwner != uuid.MustParse(testCallerID) || svc.setOperator != uuid.MustParse(operatorID) || !svc.setApproved {
			t.Fatalf("unexpected approval call: owner=%s operator=%s approved=%v", svc.setOwner, svc.setOperator, svc.setApproved)
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, HandleApprovals(&stubApprovals{}), http.MethodPost, "/approvals", "",
			`{"operator":"`+operatorID+`","approved":true}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("invalid operator", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, HandleApprovals(&stubApprovals{}), http.MethodPost, "/approvals", testCallerID,
			`{"operator":"not-a-uuid","approved":true}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("query approval", func(t *testing.T) {
		t.Parallel()
		svc := &stubApprovals{approved: true}
		rec := doRequest(t, HandleApprovals(svc), http.MethodGet,
			"/approvals?owner="+testCallerID+"&operator="+operatorID, "", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"approved":true`) {
			t.Fatalf("expected approved true, got %s", rec.Body.String())
		}
	})

	t.Run("query with missing owner", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, HandleApprovals(&stubApprovals{}), http.MethodGet,
			"/approvals?operator="+operatorID, "", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, HandleApprovals(&stubApprovals{}), http.MethodDelete, "/approvals", testCallerID, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}
