package http

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

type stubTokens struct {
	token   domain.Token
	balance int64
	err     error
}

func (s *stubTokens) Token(_ context.Context, _ int64) (domain.Token, error) {
	return s.token, s.err
}

func (s *stubTokens) BalanceOf(_ context.Context, _ uuid.UUID, _ int64) (int64, error) {
	return s.balance, s.err
}

func TestHandleTokens(t *testing.T) {
	t.Parallel()

	t.Run("returns metadata and supply", func(t *testing.T) {
		t.Parallel()
		svc := &stubTokens{token: domain.Token{ID: 2, URI: "ipfs://ticket", TotalSupply: 42}}
		rec := doRequest(t, HandleTokens(svc), http.MethodGet, "/tokens/2", "", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := rec.Body.String()
		if !strings.Contains(body, `"uri":"ipfs://ticket"`) || !strings.Contains(body, `"total_supply":42`) {
			t.Fatalf("unexpected body: %s", body)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()
		svc := &stubTokens{err: domain.ErrTokenNotFound}
		rec := doRequest(t, HandleTokens(svc), http.MethodGet, "/tokens/99", "", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, HandleTokens(&stubTokens{}), http.MethodGet, "/tokens/zero", "", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHandleBalances(t *testing.T) {
	t.Parallel()

	t.Run("returns balance", func(t *testing.T) {
		t.Parallel()
		svc := &stubTokens{balance: 500}
		rec := doRequest(t, HandleBalances(svc), http.MethodGet, "/accounts/"+testCallerID+"/balances/1", "", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"balance":500`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("invalid account id", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, HandleBalances(&stubTokens{}), http.MethodGet, "/accounts/nope/balances/1", "", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed path", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, HandleBalances(&stubTokens{}), http.MethodGet, "/accounts/"+testCallerID+"/balances", "", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
