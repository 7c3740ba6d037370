// Package guard provides a non-reentrant critical section for operations
// that perform external-effectful calls before their state is committed.
package guard

import (
	"context"
	"errors"
	"sync"
)

var ErrReentrantCall = errors.New("reentrant call rejected")

type ctxKey struct{}

// Guard serializes the operations it protects. A callback that fires
// inside a guarded operation and tries to enter the same guard again is
// rejected with ErrReentrantCall instead of deadlocking: the guarded
// context carries a marker that Do checks before taking the lock.
type Guard struct {
	mu sync.Mutex
}

func New() *Guard {
	return &Guard{}
}

// Do runs fn inside the critical section. Independent callers block
// until the section is free; a re-entrant caller (same call chain,
// detected via the context marker) fails immediately.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if held, _ := ctx.Value(ctxKey{}).(*Guard); held == g {
		return ErrReentrantCall
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(context.WithValue(ctx, ctxKey{}, g))
}
