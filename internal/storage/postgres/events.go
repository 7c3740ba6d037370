package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

type execFunc func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

// insertEvent appends a journal entry using the calling repository's
// tx-aware exec, so the event commits with the operation it describes.
func insertEvent(ctx context.Context, exec execFunc, event domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	const stmt = `INSERT INTO ledger_events (kind, payload, occurred_at) VALUES ($1, $2, $3)`
	if _, err := exec(ctx, stmt, string(event.Kind), payload, event.OccurredAt); err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// EventRepository reads the journal for external indexers.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// ListEvents returns up to limit events with ids greater than afterID,
// oldest first.
func (r *EventRepository) ListEvents(ctx context.Context, afterID int64, limit int) ([]domain.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	const query = `
SELECT id, kind, payload, occurred_at
FROM ledger_events
WHERE id > $1
ORDER BY id
LIMIT $2`

	rows, err := r.pool.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			e   domain.Event
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.Kind, &raw, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Payload); err != nil {
				return nil, fmt.Errorf("decode event payload: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}
