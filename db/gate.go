package db

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"
)

// ErrUnavailable is returned by callers that refuse to touch the store
// while the gate reports it unreachable.
var ErrUnavailable = errors.New("database unavailable")

const probeTimeout = 2 * time.Second

// Gate caches database connectivity so request paths do not pay for a
// round trip on every call. A cached positive is trusted until some
// operation actually fails; a cached negative triggers a fresh probe on
// each call, so the gate recovers as soon as the store does.
type Gate struct {
	db        *sql.DB
	connected atomic.Bool
}

// NewGate probes db once, best-effort. A failed initial probe is not an
// error; the gate simply starts in the unavailable state.
func NewGate(ctx context.Context, db *sql.DB) *Gate {
	g := &Gate{db: db}
	g.probe(ctx)
	return g
}

// Available reports whether the store is reachable. A stale positive is
// accepted; only the negative state re-probes.
func (g *Gate) Available(ctx context.Context) bool {
	if g.connected.Load() {
		return true
	}
	return g.probe(ctx)
}

// MarkDown records a failed store operation so the next Available call
// re-probes instead of trusting the cache.
func (g *Gate) MarkDown() {
	g.connected.Store(false)
}

func (g *Gate) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var one int
	err := g.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	ok := err == nil
	g.connected.Store(ok)
	return ok
}
