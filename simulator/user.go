package simulator

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/iimin/restosim/store"
)

// user is one simulated client. It loops Acting then Thinking until
// its context ends. Failures are logged and counted, never fatal.
type user struct {
	id       int
	db       store.DB
	catalog  *Catalog
	handlers *Handlers
	thinkMin time.Duration
	thinkMax time.Duration
	stats    *Stats
}

func (u *user) run(ctx context.Context) {
	// Small start delay so users do not hit the pool in lockstep.
	jitter := time.Duration(10+rand.Intn(491)) * time.Millisecond //nolint:gosec // weak random is fine for jitter

	select {
	case <-ctx.Done():
		return
	case <-time.After(jitter):
	}

	for ctx.Err() == nil {
		u.performAction(ctx, u.catalog.Pick())

		if !u.think(ctx) {
			return
		}
	}
}

// performAction runs one action in its own transaction: commit on
// success, rollback on any failure, then move on either way. Registry
// updates are applied only after the commit succeeded.
func (u *user) performAction(ctx context.Context, kind ActionKind) {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("user %d: failed to begin transaction for %s: %v", u.id, kind, err)
		}
		u.stats.recordFailure(kind)

		return
	}

	apply, err := u.handlers.HandlerFor(kind)(ctx, tx)
	if err != nil {
		_ = tx.Rollback(ctx)
		if ctx.Err() == nil {
			log.Printf("user %d: %s failed: %v", u.id, kind, err)
		}
		u.stats.recordFailure(kind)

		return
	}

	if err = tx.Commit(ctx); err != nil {
		if ctx.Err() == nil {
			log.Printf("user %d: failed to commit %s: %v", u.id, kind, err)
		}
		u.stats.recordFailure(kind)

		return
	}

	if apply != nil {
		apply()
	}

	u.stats.recordSuccess(kind)
}

// think pauses for a uniformly random duration between the configured
// bounds. It returns false when the context ended during the pause.
func (u *user) think(ctx context.Context) bool {
	d := u.thinkMin
	if span := u.thinkMax - u.thinkMin; span > 0 {
		d += time.Duration(rand.Int63n(int64(span) + 1)) //nolint:gosec // weak random is fine for think time
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
