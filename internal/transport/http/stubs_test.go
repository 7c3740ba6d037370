package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/app"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

type stubRegistry struct {
	market domain.Market
	err    error
}

func (s *stubRegistry) RegisterMarket(_ context.Context, _ app.RegisterMarketInput) (domain.Market, error) {
	return s.market, s.err
}

func (s *stubRegistry) Market(_ context.Context, _ string) (domain.Market, error) {
	return s.market, s.err
}

type stubEngine struct {
	market   domain.Market
	state    domain.MarketplaceState
	balance  int64
	sold     int64
	listing  domain.FestTicket
	listings []domain.FestTicket
	err      error
}

func (s *stubEngine) BuyCurrency(_ context.Context, _ app.BuyCurrencyInput) (int64, error) {
	return s.balance, s.err
}

func (s *stubEngine) BuyTicket(_ context.Context, _ app.BuyTicketInput) (int64, error) {
	return s.sold, s.err
}

func (s *stubEngine) ListTicket(_ context.Context, _ app.ListTicketInput) (domain.FestTicket, error) {
	return s.listing, s.err
}

func (s *stubEngine) BuyListedTicket(_ context.Context, _ app.BuyListedTicketInput) (domain.FestTicket, error) {
	return s.listing, s.err
}

func (s *stubEngine) SecondaryMarket(_ context.Context) ([]domain.FestTicket, error) {
	return s.listings, s.err
}

func (s *stubEngine) State(_ context.Context) (domain.MarketplaceState, error) {
	return s.state, s.err
}

func (s *stubEngine) Market() domain.Market {
	return s.market
}

type stubAccounts struct {
	account domain.Account
	balance decimal.Decimal
	err     error
}

func (s *stubAccounts) CreateAccount(_ context.Context, _ string) (domain.Account, error) {
	return s.account, s.err
}

func (s *stubAccounts) Deposit(_ context.Context, _ uuid.UUID, _ decimal.Decimal) (decimal.Decimal, error) {
	return s.balance, s.err
}

func (s *stubAccounts) GetAccount(_ context.Context, _ uuid.UUID) (domain.Account, decimal.Decimal, error) {
	return s.account, s.balance, s.err
}

func testMarket() domain.Market {
	return domain.Market{
		Key:             "festiv",
		Operator:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		CurrencyTokenID: 1,
		TicketTokenID:   2,
		Registered:      true,
		CreatedAt:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}
