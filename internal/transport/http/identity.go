package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CallerHeader carries the authenticated account id. The fronting
// gateway strips and re-sets it, so by the time a request reaches this
// service the header is trusted.
const CallerHeader = "X-Account-ID"

type callerKey struct{}

// Identity parses the caller header and stores the account id in the
// request context. A malformed header is rejected; a missing one is
// allowed through, since read-only routes need no identity.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(CallerHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid "+CallerHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, id)))
	})
}

func callerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(callerKey{}).(uuid.UUID)
	return id, ok
}

// requireCaller writes the identity error itself when no caller is
// present, so handlers can bail out with a bare return.
func requireCaller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := callerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeIdentityRequired, "caller identity required")
		return uuid.Nil, false
	}
	return id, true
}
