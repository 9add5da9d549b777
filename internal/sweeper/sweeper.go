// Package sweeper wires up the cron job that periodically removes orphaned
// duplicate rows. Compensating deletes during registration rollback are
// best-effort; whatever they miss accumulates until this sweep collects it.
package sweeper

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Store is the slice of the datastore the sweeper needs.
type Store interface {
	SweepOrphans(ctx context.Context) (questions, programs int64, err error)
}

// Sweeper wraps robfig/cron and manages the sweep loop.
type Sweeper struct {
	cron  *cron.Cron
	store Store
	spec  string // cron spec, e.g. "@every 24h"
}

// New creates a Sweeper that fires every intervalHours hours.
func New(store Store, intervalHours int) *Sweeper {
	return &Sweeper{
		cron:  cron.New(cron.WithLogger(cron.DefaultLogger)),
		store: store,
		spec:  fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a restart never postpones cleanup by a full interval.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[sweeper] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("[sweeper] Cron stopped")
}

// runSweep executes one orphan sweep cycle.
func (s *Sweeper) runSweep(ctx context.Context) {
	questions, programs, err := s.store.SweepOrphans(ctx)
	if err != nil {
		log.Printf("[sweeper] Sweep error: %v", err)
		return
	}
	if questions == 0 && programs == 0 {
		log.Println("[sweeper] Sweep complete — no orphans")
		return
	}
	log.Printf("[sweeper] Sweep complete — questions=%d programs=%d", questions, programs)
}
