package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

// LedgerRepository persists token balances, supply counters, metadata,
// approvals and the market registry.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const marketColumns = `market_key, operator_account, currency_token_id, ticket_token_id, registered, created_at`

func (r *LedgerRepository) GetMarket(ctx context.Context, key string) (domain.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets WHERE market_key = $1`
	return r.scanMarket(r.queryRow(ctx, query, key))
}

func (r *LedgerRepository) GetMarketForUpdate(ctx context.Context, key string) (domain.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets WHERE market_key = $1 FOR UPDATE`
	return r.scanMarket(r.queryRow(ctx, query, key))
}

func (r *LedgerRepository) scanMarket(row pgx.Row) (domain.Market, error) {
	var m domain.Market
	err := row.Scan(&m.Key, &m.Operator, &m.CurrencyTokenID, &m.TicketTokenID, &m.Registered, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Market{}, domain.ErrMarketNotRegistered
		}
		return domain.Market{}, fmt.Errorf("get market: %w", err)
	}
	return m, nil
}

func (r *LedgerRepository) CreateMarket(ctx context.Context, m domain.Market) error {
	const stmt = `
INSERT INTO markets (market_key, operator_account, currency_token_id, ticket_token_id, registered, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt, m.Key, m.Operator, m.CurrencyTokenID, m.TicketTokenID, m.Registered, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMarketAlreadyRegistered
		}
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("create market: %w", err)
	}
	return nil
}

func (r *LedgerRepository) CreateToken(ctx context.Context, uri string) (int64, error) {
	const stmt = `INSERT INTO tokens (uri) VALUES ($1) RETURNING id`
	var id int64
	if err := r.queryRow(ctx, stmt, uri).Scan(&id); err != nil {
		return 0, fmt.Errorf("create token: %w", err)
	}
	return id, nil
}

func (r *LedgerRepository) GetToken(ctx context.Context, tokenID int64) (domain.Token, error) {
	const query = `SELECT id, uri, total_supply FROM tokens WHERE id = $1`
	var t domain.Token
	if err := r.queryRow(ctx, query, tokenID).Scan(&t.ID, &t.URI, &t.TotalSupply); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Token{}, domain.ErrTokenNotFound
		}
		return domain.Token{}, fmt.Errorf("get token: %w", err)
	}
	return t, nil
}

func (r *LedgerRepository) AddSupply(ctx context.Context, tokenID, quantity int64) error {
	const stmt = `UPDATE tokens SET total_supply = total_supply + $2 WHERE id = $1`
	tag, err := r.exec(ctx, stmt, tokenID, quantity)
	if err != nil {
		return fmt.Errorf("add supply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *LedgerRepository) GetBalance(ctx context.Context, account uuid.UUID, tokenID int64) (int64, error) {
	const query = `
SELECT COALESCE(
	(SELECT quantity FROM balances WHERE account_id = $1 AND token_id = $2), 0)`

	var quantity int64
	if err := r.queryRow(ctx, query, account, tokenID).Scan(&quantity); err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return quantity, nil
}

func (r *LedgerRepository) AddBalance(ctx context.Context, account uuid.UUID, tokenID, quantity int64) error {
	const stmt = `
INSERT INTO balances (account_id, token_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (account_id, token_id) DO UPDATE SET quantity = balances.quantity + EXCLUDED.quantity`

	if _, err := r.exec(ctx, stmt, account, tokenID, quantity); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("add balance: %w", err)
	}
	return nil
}

func (r *LedgerRepository) SubtractBalance(ctx context.Context, account uuid.UUID, tokenID, quantity int64) error {
	const stmt = `
UPDATE balances
SET quantity = quantity - $3
WHERE account_id = $1 AND token_id = $2 AND quantity >= $3`

	tag, err := r.exec(ctx, stmt, account, tokenID, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientBalance
		}
		return fmt.Errorf("subtract balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *LedgerRepository) SetApproval(ctx context.Context, owner, operator uuid.UUID, approved bool) error {
	const stmt = `
INSERT INTO approvals (owner_account, operator_account, approved)
VALUES ($1, $2, $3)
ON CONFLICT (owner_account, operator_account) DO UPDATE SET approved = EXCLUDED.approved`

	if _, err := r.exec(ctx, stmt, owner, operator, approved); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("set approval: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetApproval(ctx context.Context, owner, operator uuid.UUID) (bool, error) {
	const query = `SELECT approved FROM approvals WHERE owner_account = $1 AND operator_account = $2`
	var approved bool
	if err := r.queryRow(ctx, query, owner, operator).Scan(&approved); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("get approval: %w", err)
	}
	return approved, nil
}

func (r *LedgerRepository) RecordEvent(ctx context.Context, event domain.Event) error {
	return insertEvent(ctx, r.exec, event)
}

func (r *LedgerRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LedgerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
