package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

// AccountRepository persists accounts and their settlement-currency balances.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	const stmt = `INSERT INTO accounts (id, display_name, created_at) VALUES ($1, $2, $3)`
	if _, err := r.exec(ctx, stmt, account.ID, account.DisplayName, account.CreatedAt); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) UpsertAccount(ctx context.Context, account domain.Account) error {
	const stmt = `
INSERT INTO accounts (id, display_name, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`

	if _, err := r.exec(ctx, stmt, account.ID, account.DisplayName, account.CreatedAt); err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	const query = `SELECT id, display_name, created_at FROM accounts WHERE id = $1`
	var a domain.Account
	if err := r.queryRow(ctx, query, id).Scan(&a.ID, &a.DisplayName, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) CreditSettlement(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	const stmt = `
INSERT INTO settlement_accounts (account_id, balance)
VALUES ($1, $2)
ON CONFLICT (account_id) DO UPDATE SET balance = settlement_accounts.balance + EXCLUDED.balance`

	if _, err := r.exec(ctx, stmt, id, amount); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("credit settlement: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetSettlementBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	const query = `
SELECT COALESCE(
	(SELECT balance FROM settlement_accounts WHERE account_id = $1), 0)`

	var balance decimal.Decimal
	if err := r.queryRow(ctx, query, id).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("get settlement balance: %w", err)
	}
	return balance, nil
}

func (r *AccountRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *AccountRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
