package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

type balanceKey struct {
	account uuid.UUID
	tokenID int64
}

type approvalKey struct {
	owner    uuid.UUID
	operator uuid.UUID
}

type fakeLedgerRepo struct {
	markets   map[string]domain.Market
	tokens    map[int64]*domain.Token
	nextToken int64
	balances  map[balanceKey]int64
	approvals map[approvalKey]bool
	events    []domain.Event
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		markets:   make(map[string]domain.Market),
		tokens:    make(map[int64]*domain.Token),
		balances:  make(map[balanceKey]int64),
		approvals: make(map[approvalKey]bool),
	}
}

func (f *fakeLedgerRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeLedgerRepo) GetMarket(_ context.Context, key string) (domain.Market, error) {
	m, ok := f.markets[key]
	if !ok {
		return domain.Market{}, domain.ErrMarketNotRegistered
	}
	return m, nil
}

func (f *fakeLedgerRepo) GetMarketForUpdate(ctx context.Context, key string) (domain.Market, error) {
	return f.GetMarket(ctx, key)
}

func (f *fakeLedgerRepo) CreateMarket(_ context.Context, m domain.Market) error {
	if _, exists := f.markets[m.Key]; exists {
		return domain.ErrMarketAlreadyRegistered
	}
	f.markets[m.Key] = m
	return nil
}

func (f *fakeLedgerRepo) CreateToken(_ context.Context, uri string) (int64, error) {
	f.nextToken++
	f.tokens[f.nextToken] = &domain.Token{ID: f.nextToken, URI: uri}
	return f.nextToken, nil
}

func (f *fakeLedgerRepo) GetToken(_ context.Context, tokenID int64) (domain.Token, error) {
	t, ok := f.tokens[tokenID]
	if !ok {
		return domain.Token{}, domain.ErrTokenNotFound
	}
	return *t, nil
}

func (f *fakeLedgerRepo) AddSupply(_ context.Context, tokenID, quantity int64) error {
	t, ok := f.tokens[tokenID]
	if !ok {
		return domain.ErrTokenNotFound
	}
	t.TotalSupply += quantity
	return nil
}

func (f *fakeLedgerRepo) GetBalance(_ context.Context, account uuid.UUID, tokenID int64) (int64, error) {
	return f.balances[balanceKey{account, tokenID}], nil
}

func (f *fakeLedgerRepo) AddBalance(_ context.Context, account uuid.UUID, tokenID, quantity int64) error {
	f.balances[balanceKey{account, tokenID}] += quantity
	return nil
}

func (f *fakeLedgerRepo) SubtractBalance(_ context.Context, account uuid.UUID, tokenID, quantity int64) error {
	key := balanceKey{account, tokenID}
	if f.balances[key] < quantity {
		return domain.ErrInsufficientBalance
	}
	f.balances[key] -= quantity
	return nil
}

func (f *fakeLedgerRepo) SetApproval(_ context.Context, owner, operator uuid.UUID, approved bool) error {
	f.approvals[approvalKey{owner, operator}] = approved
	return nil
}

func (f *fakeLedgerRepo) GetApproval(_ context.Context, owner, operator uuid.UUID) (bool, error) {
	return f.approvals[approvalKey{owner, operator}], nil
}

func (f *fakeLedgerRepo) RecordEvent(_ context.Context, event domain.Event) error {
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

type fakeMarketRepo struct {
	states     map[string]*domain.MarketplaceState
	tickets    map[int64]*domain.FestTicket
	nextTicket int64
	lastSale   map[balanceKey]int64
	settlement map[uuid.UUID]decimal.Decimal
	events     []domain.Event
}

func newFakeMarketRepo() *fakeMarketRepo {
	return &fakeMarketRepo{
		states:     make(map[string]*domain.MarketplaceState),
		tickets:    make(map[int64]*domain.FestTicket),
		lastSale:   make(map[balanceKey]int64),
		settlement: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (f *fakeMarketRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeMarketRepo) GetState(_ context.Context, marketKey string) (*domain.MarketplaceState, error) {
	st, ok := f.states[marketKey]
	if !ok {
		return nil, nil
	}
	copy := *st
	return &copy, nil
}

func (f *fakeMarketRepo) GetStateForUpdate(_ context.Context, marketKey string) (domain.MarketplaceState, error) {
	st, ok := f.states[marketKey]
	if !ok {
		return domain.MarketplaceState{}, domain.ErrMarketNotRegistered
	}
	return *st, nil
}

func (f *fakeMarketRepo) CreateState(_ context.Context, st domain.MarketplaceState) error {
	f.states[st.MarketKey] = &st
	return nil
}

func (f *fakeMarketRepo) AddTicketsSold(_ context.Context, marketKey string, quantity int64) error {
	st, ok := f.states[marketKey]
	if !ok {
		return domain.ErrMarketNotRegistered
	}
	st.TicketsSold += quantity
	return nil
}

func (f *fakeMarketRepo) CreateFestTicket(_ context.Context, t domain.FestTicket) (int64, error) {
	f.nextTicket++
	t.ID = f.nextTicket
	f.tickets[t.ID] = &t
	return t.ID, nil
}

func (f *fakeMarketRepo) GetFestTicketForUpdate(_ context.Context, id int64) (domain.FestTicket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return domain.FestTicket{}, domain.ErrUnknownTicket
	}
	return *t, nil
}

func (f *fakeMarketRepo) MarkFestTicketSold(_ context.Context, id int64, owner uuid.UUID, soldAt time.Time) error {
	t, ok := f.tickets[id]
	if !ok {
		return domain.ErrUnknownTicket
	}
	t.Owner = &owner
	t.Sold = true
	t.SoldAt = &soldAt
	return nil
}

func (f *fakeMarketRepo) ListFestTickets(_ context.Context, marketKey string) ([]domain.FestTicket, error) {
	out := make([]domain.FestTicket, 0, len(f.tickets))
	for _, t := range f.tickets {
		if t.MarketKey == marketKey {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMarketRepo) GetLastSalePrice(_ context.Context, account uuid.UUID, tokenID int64) (int64, error) {
	return f.lastSale[balanceKey{account, tokenID}], nil
}

func (f *fakeMarketRepo) SetLastSalePrice(_ context.Context, account uuid.UUID, tokenID, price int64) error {
	f.lastSale[balanceKey{account, tokenID}] = price
	return nil
}

func (f *fakeMarketRepo) TransferSettlement(_ context.Context, from, to uuid.UUID, amount decimal.Decimal) error {
	if f.settlement[from].LessThan(amount) {
		return domain.ErrInsufficientBalance
	}
	f.settlement[from] = f.settlement[from].Sub(amount)
	f.settlement[to] = f.settlement[to].Add(amount)
	return nil
}

func (f *fakeMarketRepo) RecordEvent(_ context.Context, event domain.Event) error {
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

type fakeAccounts struct {
	names map[uuid.UUID]string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{names: make(map[uuid.UUID]string)}
}

func (f *fakeAccounts) EnsureAccount(_ context.Context, id uuid.UUID, name string) (domain.Account, error) {
	if _, ok := f.names[id]; !ok {
		f.names[id] = name
	}
	return domain.Account{ID: id, DisplayName: f.names[id]}, nil
}

// hookedLedger lets tests fire a callback at the start of a transfer,
// standing in for a programmable recipient that calls back into the
// marketplace mid-operation.
type hookedLedger struct {
	Ledger
	beforeTransfer func(ctx context.Context) error
}

func (h *hookedLedger) Transfer(ctx context.Context, in TransferInput) error {
	if h.beforeTransfer != nil {
		if err := h.beforeTransfer(ctx); err != nil {
			return err
		}
	}
	return h.Ledger.Transfer(ctx, in)
}
