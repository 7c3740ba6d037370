package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/clock"
	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

type AccountRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateAccount(ctx context.Context, account domain.Account) error
	UpsertAccount(ctx context.Context, account domain.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error)
	CreditSettlement(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	GetSettlementBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

// AccountService manages caller identities and base-currency deposits.
// The deposit endpoint stands in for the external settlement rail that
// funds accounts in production.
type AccountService struct {
	repo  AccountRepository
	clock clock.Clock
}

func NewAccountService(repo AccountRepository, clk clock.Clock) *AccountService {
	return &AccountService{repo: repo, clock: clk}
}

func (s *AccountService) CreateAccount(ctx context.Context, displayName string) (domain.Account, error) {
	account := domain.Account{
		ID:          uuid.New(),
		DisplayName: displayName,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

// EnsureAccount creates the account if it does not exist yet. Used by
// the marketplace bootstrap for its pinned identities.
func (s *AccountService) EnsureAccount(ctx context.Context, id uuid.UUID, displayName string) (domain.Account, error) {
	if id == uuid.Nil {
		return domain.Account{}, domain.ErrInvalidID
	}
	account := domain.Account{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.UpsertAccount(ctx, account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (s *AccountService) Deposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if id == uuid.Nil {
		return decimal.Decimal{}, domain.ErrInvalidID
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	var balance decimal.Decimal
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetAccount(txCtx, id); err != nil {
			return err
		}
		if err := s.repo.CreditSettlement(txCtx, id, amount); err != nil {
			return err
		}
		var err error
		balance, err = s.repo.GetSettlementBalance(txCtx, id)
		return err
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return balance, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, decimal.Decimal, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, decimal.Decimal{}, err
	}
	balance, err := s.repo.GetSettlementBalance(ctx, id)
	if err != nil {
		return domain.Account{}, decimal.Decimal{}, err
	}
	return account, balance, nil
}
