package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/clock"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetMarket(ctx context.Context, key string) (domain.Market, error)
	GetMarketForUpdate(ctx context.Context, key string) (domain.Market, error)
	CreateMarket(ctx context.Context, m domain.Market) error
	CreateToken(ctx context.Context, uri string) (int64, error)
	GetToken(ctx context.Context, tokenID int64) (domain.Token, error)
	AddSupply(ctx context.Context, tokenID, quantity int64) error
	GetBalance(ctx context.Context, account uuid.UUID, tokenID int64) (int64, error)
	AddBalance(ctx context.Context, account uuid.UUID, tokenID, quantity int64) error
	SubtractBalance(ctx context.Context, account uuid.UUID, tokenID, quantity int64) error
	SetApproval(ctx context.Context, owner, operator uuid.UUID, approved bool) error
	GetApproval(ctx context.Context, owner, operator uuid.UUID) (bool, error)
	RecordEvent(ctx context.Context, event domain.Event) error
}

// LedgerService is the asset ledger: token balances, supply counters,
// metadata, and the market registry. It enforces caller identity against
// each market's bound operator but is policy-agnostic otherwise: supply
// caps and pricing live in the marketplace engine.
type LedgerService struct {
	repo  LedgerRepository
	clock clock.Clock
}

func NewLedgerService(repo LedgerRepository, clk clock.Clock) *LedgerService {
	return &LedgerService{repo: repo, clock: clk}
}

type RegisterMarketInput struct {
	Caller      uuid.UUID
	MarketKey   string
	Operator    uuid.UUID
	CurrencyURI string
	TicketURI   string
}

// RegisterMarket allocates two fresh token ids and binds them, with the
// operator address, to the market key. Self-registration only: the
// caller must be the operator it names. Re-registering an existing key
// fails rather than silently rebinding its tokens.
func (s *LedgerService) RegisterMarket(ctx context.Context, in RegisterMarketInput) (domain.Market, error) {
	if in.MarketKey == "" {
		return domain.Market{}, domain.ErrInvalidID
	}
	if in.Caller == uuid.Nil || in.Caller != in.Operator {
		return domain.Market{}, domain.ErrUnauthorizedCaller
	}

	var market domain.Market
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetMarket(txCtx, in.MarketKey); err == nil {
			return domain.ErrMarketAlreadyRegistered
		} else if err != domain.ErrMarketNotRegistered {
			return err
		}

		currencyID, err := s.repo.CreateToken(txCtx, in.CurrencyURI)
		if err != nil {
			return err
		}
		ticketID, err := s.repo.CreateToken(txCtx, in.TicketURI)
		if err != nil {
			return err
		}

		market = domain.Market{
			Key:             in.MarketKey,
			Operator:        in.Operator,
			CurrencyTokenID: currencyID,
			TicketTokenID:   ticketID,
			Registered:      true,
			CreatedAt:       s.clock.Now(),
		}
		if err := s.repo.CreateMarket(txCtx, market); err != nil {
			return err
		}

		return s.repo.RecordEvent(txCtx, domain.Event{
			Kind: domain.EventMarketRegistered,
			Payload: map[string]any{
				"market_key":        market.Key,
				"operator":          market.Operator.String(),
				"currency_token_id": market.CurrencyTokenID,
				"ticket_token_id":   market.TicketTokenID,
			},
			OccurredAt: market.CreatedAt,
		})
	})
	if err != nil {
		return domain.Market{}, err
	}
	return market, nil
}

type MintTicketInput struct {
	Caller    uuid.UUID
	MarketKey string
	Quantity  int64
	To        uuid.UUID
}

// MintTicket issues ticket tokens to the recipient. Only the market's
// bound operator may mint; no supply cap is enforced here.
func (s *LedgerService) MintTicket(ctx context.Context, in MintTicketInput) error {
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		market, err := s.authorizedMarket(txCtx, in.MarketKey, in.Caller)
		if err != nil {
			return err
		}
		if err := s.mint(txCtx, in.To, market.TicketTokenID, in.Quantity); err != nil {
			return err
		}
		return s.repo.RecordEvent(txCtx, domain.Event{
			Kind: domain.EventTicketMinted,
			Payload: map[string]any{
				"market_key": in.MarketKey,
				"token_id":   market.TicketTokenID,
				"to":         in.To.String(),
				"quantity":   in.Quantity,
			},
			OccurredAt: s.clock.Now(),
		})
	})
}

type MintCurrencyInput struct {
	Caller    uuid.UUID
	MarketKey string
	Quantity  int64
}

// MintCurrency issues currency tokens to the market's operator.
func (s *LedgerService) MintCurrency(ctx context.Context, in MintCurrencyInput) error {
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		market, err := s.authorizedMarket(txCtx, in.MarketKey, in.Caller)
		if err != nil {
			return err
		}
		if err := s.mint(txCtx, market.Operator, market.CurrencyTokenID, in.Quantity); err != nil {
			return err
		}
		return s.repo.RecordEvent(txCtx, domain.Event{
			Kind: domain.EventCurrencyMinted,
			Payload: map[string]any{
				"market_key": in.MarketKey,
				"token_id":   market.CurrencyTokenID,
				"to":         market.Operator.String(),
				"quantity":   in.Quantity,
			},
			OccurredAt: s.clock.Now(),
		})
	})
}

type TransferInput struct {
	Caller   uuid.UUID
	From     uuid.UUID
	To       uuid.UUID
	TokenID  int64
	Quantity int64
}

// Transfer moves tokens between accounts. The caller must be the sender
// or an operator the sender has approved.
func (s *LedgerService) Transfer(ctx context.Context, in TransferInput) error {
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if in.From == uuid.Nil || in.To == uuid.Nil {
		return domain.ErrInvalidID
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if in.Caller != in.From {
			approved, err := s.repo.GetApproval(txCtx, in.From, in.Caller)
			if err != nil {
				return err
			}
			if !approved {
				return domain.ErrNotApproved
			}
		}
		if err := s.repo.SubtractBalance(txCtx, in.From, in.TokenID, in.Quantity); err != nil {
			return err
		}
		return s.repo.AddBalance(txCtx, in.To, in.TokenID, in.Quantity)
	})
}

// SetApprovalForAll grants or revokes blanket transfer authority over
// the caller's tokens.
func (s *LedgerService) SetApprovalForAll(ctx context.Context, caller, operator uuid.UUID, approved bool) error {
	if caller == uuid.Nil || operator == uuid.Nil {
		return domain.ErrInvalidID
	}
	return s.repo.SetApproval(ctx, caller, operator, approved)
}

func (s *LedgerService) BalanceOf(ctx context.Context, account uuid.UUID, tokenID int64) (int64, error) {
	return s.repo.GetBalance(ctx, account, tokenID)
}

func (s *LedgerService) TotalSupply(ctx context.Context, tokenID int64) (int64, error) {
	token, err := s.repo.GetToken(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	return token.TotalSupply, nil
}

func (s *LedgerService) IsApprovedForAll(ctx context.Context, owner, operator uuid.UUID) (bool, error) {
	return s.repo.GetApproval(ctx, owner, operator)
}

func (s *LedgerService) Token(ctx context.Context, tokenID int64) (domain.Token, error) {
	return s.repo.GetToken(ctx, tokenID)
}

func (s *LedgerService) Market(ctx context.Context, key string) (domain.Market, error) {
	return s.repo.GetMarket(ctx, key)
}

func (s *LedgerService) authorizedMarket(ctx context.Context, key string, caller uuid.UUID) (domain.Market, error) {
	market, err := s.repo.GetMarketForUpdate(ctx, key)
	if err != nil {
		return domain.Market{}, err
	}
	if !market.Registered {
		return domain.Market{}, domain.ErrMarketNotRegistered
	}
	if caller != market.Operator {
		return domain.Market{}, domain.ErrUnauthorizedCaller
	}
	return market, nil
}

func (s *LedgerService) mint(ctx context.Context, to uuid.UUID, tokenID, quantity int64) error {
	if to == uuid.Nil {
		return domain.ErrInvalidID
	}
	if err := s.repo.AddBalance(ctx, to, tokenID, quantity); err != nil {
		return err
	}
	return s.repo.AddSupply(ctx, tokenID, quantity)
}
