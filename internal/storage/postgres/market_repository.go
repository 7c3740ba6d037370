package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

// MarketRepository persists marketplace state, resale listings, last sale
// prices and settlement-currency movements.
type MarketRepository struct {
	pool *pgxpool.Pool
}

func NewMarketRepository(pool *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{pool: pool}
}

func (r *MarketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *MarketRepository) GetState(ctx context.Context, marketKey string) (*domain.MarketplaceState, error) {
	const query = `
SELECT market_key, organizer_account, tickets_sold
FROM marketplace_state
WHERE market_key = $1`

	var st domain.MarketplaceState
	err := r.queryRow(ctx, query, marketKey).Scan(&st.MarketKey, &st.Organizer, &st.TicketsSold)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get marketplace state: %w", err)
	}
	return &st, nil
}

func (r *MarketRepository) GetStateForUpdate(ctx context.Context, marketKey string) (domain.MarketplaceState, error) {
	const query = `
SELECT market_key, organizer_account, tickets_sold
FROM marketplace_state
WHERE market_key = $1
FOR UPDATE`

	var st domain.MarketplaceState
	err := r.queryRow(ctx, query, marketKey).Scan(&st.MarketKey, &st.Organizer, &st.TicketsSold)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.MarketplaceState{}, domain.ErrMarketNotRegistered
		}
		return domain.MarketplaceState{}, fmt.Errorf("lock marketplace state: %w", err)
	}
	return st, nil
}

func (r *MarketRepository) CreateState(ctx context.Context, st domain.MarketplaceState) error {
	const stmt = `
INSERT INTO marketplace_state (market_key, organizer_account, tickets_sold)
VALUES ($1, $2, $3)`

	_, err := r.exec(ctx, stmt, st.MarketKey, st.Organizer, st.TicketsSold)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMarketAlreadyRegistered
		}
		return fmt.Errorf("create marketplace state: %w", err)
	}
	return nil
}

func (r *MarketRepository) AddTicketsSold(ctx context.Context, marketKey string, quantity int64) error {
	const stmt = `UPDATE marketplace_state SET tickets_sold = tickets_sold + $2 WHERE market_key = $1`
	tag, err := r.exec(ctx, stmt, marketKey, quantity)
	if err != nil {
		return fmt.Errorf("add tickets sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMarketNotRegistered
	}
	return nil
}

const festTicketColumns = `id, market_key, token_id, seller_account, owner_account, list_price, sold, created_at, sold_at`

func (r *MarketRepository) CreateFestTicket(ctx context.Context, t domain.FestTicket) (int64, error) {
	const stmt = `
INSERT INTO fest_tickets (market_key, token_id, seller_account, list_price, sold, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	var id int64
	err := r.queryRow(ctx, stmt, t.MarketKey, t.TokenID, t.Seller, t.ListPrice, t.Sold, t.CreatedAt).Scan(&id)
	if err != nil {
		if isCheckViolation(err) {
			return 0, domain.ErrInvalidPrice
		}
		return 0, fmt.Errorf("create fest ticket: %w", err)
	}
	return id, nil
}

func (r *MarketRepository) GetFestTicketForUpdate(ctx context.Context, id int64) (domain.FestTicket, error) {
	query := `SELECT ` + festTicketColumns + ` FROM fest_tickets WHERE id = $1 FOR UPDATE`

	var t domain.FestTicket
	err := r.queryRow(ctx, query, id).Scan(
		&t.ID, &t.MarketKey, &t.TokenID, &t.Seller, &t.Owner, &t.ListPrice, &t.Sold, &t.CreatedAt, &t.SoldAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.FestTicket{}, domain.ErrUnknownTicket
		}
		return domain.FestTicket{}, fmt.Errorf("lock fest ticket: %w", err)
	}
	return t, nil
}

func (r *MarketRepository) MarkFestTicketSold(ctx context.Context, id int64, owner uuid.UUID, soldAt time.Time) error {
	const stmt = `
UPDATE fest_tickets
SET sold = TRUE, owner_account = $2, sold_at = $3
WHERE id = $1 AND NOT sold`

	tag, err := r.exec(ctx, stmt, id, owner, soldAt)
	if err != nil {
		return fmt.Errorf("mark fest ticket sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnknownTicket
	}
	return nil
}

func (r *MarketRepository) ListFestTickets(ctx context.Context, marketKey string) ([]domain.FestTicket, error) {
	query := `SELECT ` + festTicketColumns + ` FROM fest_tickets WHERE market_key = $1 ORDER BY id`

	rows, err := r.query(ctx, query, marketKey)
	if err != nil {
		return nil, fmt.Errorf("list fest tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.FestTicket
	for rows.Next() {
		var t domain.FestTicket
		err := rows.Scan(&t.ID, &t.MarketKey, &t.TokenID, &t.Seller, &t.Owner, &t.ListPrice, &t.Sold, &t.CreatedAt, &t.SoldAt)
		if err != nil {
			return nil, fmt.Errorf("scan fest ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fest tickets: %w", err)
	}
	return tickets, nil
}

func (r *MarketRepository) GetLastSalePrice(ctx context.Context, account uuid.UUID, tokenID int64) (int64, error) {
	const query = `
SELECT COALESCE(
	(SELECT price FROM last_sale_prices WHERE account_id = $1 AND token_id = $2), 0)`

	var price int64
	if err := r.queryRow(ctx, query, account, tokenID).Scan(&price); err != nil {
		return 0, fmt.Errorf("get last sale price: %w", err)
	}
	return price, nil
}

func (r *MarketRepository) SetLastSalePrice(ctx context.Context, account uuid.UUID, tokenID, price int64) error {
	const stmt = `
INSERT INTO last_sale_prices (account_id, token_id, price)
VALUES ($1, $2, $3)
ON CONFLICT (account_id, token_id) DO UPDATE SET price = EXCLUDED.price`

	if _, err := r.exec(ctx, stmt, account, tokenID, price); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("set last sale price: %w", err)
	}
	return nil
}

// TransferSettlement moves base currency between settlement accounts. The
// debit is conditional on the payer holding at least the amount, so a
// concurrent spend cannot drive the balance negative.
func (r *MarketRepository) TransferSettlement(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) error {
	const debit = `
UPDATE settlement_accounts
SET balance = balance - $2
WHERE account_id = $1 AND balance >= $2`

	tag, err := r.exec(ctx, debit, from, amount)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientBalance
		}
		return fmt.Errorf("debit settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}

	const credit = `
INSERT INTO settlement_accounts (account_id, balance)
VALUES ($1, $2)
ON CONFLICT (account_id) DO UPDATE SET balance = settlement_accounts.balance + EXCLUDED.balance`

	if _, err := r.exec(ctx, credit, to, amount); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("credit settlement: %w", err)
	}
	return nil
}

func (r *MarketRepository) RecordEvent(ctx context.Context, event domain.Event) error {
	return insertEvent(ctx, r.exec, event)
}

func (r *MarketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *MarketRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *MarketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
