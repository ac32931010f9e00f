package simulator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iimin/restosim/generator"
	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/store"
	"github.com/iimin/restosim/synth"
)

// Config holds the simulation knobs.
type Config struct {
	Users     int
	Duration  time.Duration
	ThinkMin  time.Duration
	ThinkMax  time.Duration
	LoadLimit uint

	// Seed for the per-user synthetic value sources. Zero means derive
	// from the clock.
	Seed int64
}

// Simulator runs N concurrent simulated users against the store for a
// fixed wall clock duration.
type Simulator struct {
	db      store.DB
	reg     *registry.Registry
	catalog *Catalog
	cfg     Config
}

// New creates a Simulator. The catalog must already be validated.
func New(db store.DB, reg *registry.Registry, catalog *Catalog, cfg Config) *Simulator {
	return &Simulator{db: db, reg: reg, catalog: catalog, cfg: cfg}
}

// Run loads known ids, starts all users and blocks until the duration
// elapsed (or ctx was cancelled) and every user stopped. One user's
// failures never terminate the others.
func (s *Simulator) Run(ctx context.Context) (*Stats, error) {
	runID := uuid.New()

	log.Printf("simulation %s: loading known ids (limit %d per table)", runID, s.cfg.LoadLimit)

	if err := generator.LoadRecent(ctx, s.db, s.reg, s.cfg.LoadLimit); err != nil {
		return nil, fmt.Errorf("failed to load initial ids: %w", err)
	}

	log.Printf("simulation %s: known ids: %d clients, %d restaurants, %d tables, %d menu items, %d bookings, %d orders, %d reviews",
		runID,
		s.reg.Count(registry.Client), s.reg.Count(registry.Restaurant), s.reg.Count(registry.Table),
		s.reg.Count(registry.MenuItem), s.reg.Count(registry.Booking), s.reg.Count(registry.Order),
		s.reg.Count(registry.Review))

	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Duration)
	defer cancel()

	stats := NewStats()

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Users; i++ {
		u := &user{
			id:       i + 1,
			db:       s.db,
			catalog:  s.catalog,
			handlers: NewHandlers(s.reg, synth.New(seed+int64(i))),
			thinkMin: s.cfg.ThinkMin,
			thinkMax: s.cfg.ThinkMax,
			stats:    stats,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			u.run(runCtx)
		}()
	}

	log.Printf("simulation %s: %d users running for %s", runID, s.cfg.Users, s.cfg.Duration)

	wg.Wait()

	successes, failures := stats.Totals()
	log.Printf("simulation %s: finished, %d actions committed, %d failed", runID, successes, failures)

	return stats, nil
}
