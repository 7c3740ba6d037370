package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

const testCallerID = "22222222-2222-2222-2222-222222222222"

func doRequest(t *testing.T, h http.Handler, method, path, caller, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	rec := httptest.NewRecorder()
	Identity(h).ServeHTTP(rec, req)
	return rec
}

func TestHandleRegisterMarket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		caller         string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			caller:         testCallerID,
			body:           `{"market_key":"festiv","currency_uri":"ipfs://c","ticket_uri":"ipfs://t"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"key":"festiv"`,
		},
		{
			name:           "missing identity",
			body:           `{"market_key":"festiv"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedSubstr: "identity_required",
		},
		{
			name:           "invalid json",
			caller:         testCallerID,
			body:           `{"market_key":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing market key",
			caller:         testCallerID,
			body:           `{"currency_uri":"ipfs://c"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "operator mismatch",
			caller:         testCallerID,
			body:           `{"market_key":"festiv","operator":"33333333-3333-3333-3333-333333333333"}`,
			serviceErr:     domain.ErrUnauthorizedCaller,
			expectedStatus: http.StatusForbidden,
			expectedSubstr: "unauthorized_caller",
		},
		{
			name:           "already registered",
			caller:         testCallerID,
			body:           `{"market_key":"festiv"}`,
			serviceErr:     domain.ErrMarketAlreadyRegistered,
			expectedStatus: http.StatusConflict,
			expectedSubstr: "market_already_registered",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			registry := &stubRegistry{market: testMarket(), err: tc.serviceErr}
			rec := doRequest(t, HandleRegisterMarket(registry), http.MethodPost, "/markets", tc.caller, tc.body)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tc.expectedSubstr) {
				t.Fatalf("expected body to contain %q, got %s", tc.expectedSubstr, rec.Body.String())
			}
		})
	}

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, HandleRegisterMarket(&stubRegistry{}), http.MethodGet, "/markets", testCallerID, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHandleMarketTree_Routing(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{market: testMarket(), state: domain.MarketplaceState{MarketKey: "festiv", TicketsSold: 7}}
	registry := &stubRegistry{market: testMarket()}
	handler := HandleMarketTree(registry, engine)

	t.Run("get market includes sold counter", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, handler, http.MethodGet, "/markets/festiv", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"tickets_sold":7`) {
			t.Fatalf("expected tickets_sold in body, got %s", rec.Body.String())
		}
	})

	t.Run("unknown market key", func(t *testing.T) {
		t.Parallel()
		miss := &stubRegistry{err: domain.ErrMarketNotRegistered}
		rec := doRequest(t, HandleMarketTree(miss, engine), http.MethodGet, "/markets/other", "", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("unknown subtree path", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, handler, http.MethodGet, "/markets/festiv/unknown", "", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("purchase on unbound market key", func(t *testing.T) {
		t.Parallel()
		rec := doRequest(t, handler, http.MethodPost, "/markets/other/tickets/purchases", testCallerID, `{"quantity":1}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
