package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Shaikh-Shayan/NFT-FestivTicket/internal/domain"
)

// EventLister reads the event journal for external indexers.
type EventLister interface {
	ListEvents(ctx context.Context, afterID int64, limit int) ([]domain.Event, error)
}

// HandleEvents returns an HTTP handler for GET /events?after=&limit=.
func HandleEvents(svc EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var afterID int64
		if raw := r.URL.Query().Get("after"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid after cursor")
				return
			}
			afterID = parsed
		}

		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, "invalid limit")
				return
			}
			limit = parsed
		}

		events, err := svc.ListEvents(r.Context(), afterID, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]eventResponse, 0, len(events))
		for _, event := range events {
			resp = append(resp, eventResponse{
				ID:         event.ID,
				Kind:       string(event.Kind),
				Payload:    event.Payload,
				OccurredAt: event.OccurredAt,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type eventResponse struct {
	ID         int64          `json:"id"`
	Kind       string         `json:"kind"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}
