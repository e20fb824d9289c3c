// Package jobs runs the scheduled maintenance tasks of the blood bank. The
// only job for now is the daily stock expiry sweep.
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.vocdoni.io/dvote/log"

	"github.com/bloodline/backend/db"
)

// expirySchedule runs every day at 02:10, outside collection hours.
const expirySchedule = "10 2 * * *"

// Scheduler owns the cron runner and the storage it sweeps.
type Scheduler struct {
	db   *db.MongoStorage
	cron *cron.Cron
}

// New creates a scheduler over the given storage.
func New(database *db.MongoStorage) *Scheduler {
	return &Scheduler{
		db:   database,
		cron: cron.New(),
	}
}

// Start registers the daily expiry sweep and starts the cron runner in its
// own goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(expirySchedule, s.RunExpirySweep); err != nil {
		return fmt.Errorf("cannot schedule expiry sweep: %w", err)
	}
	s.cron.Start()
	log.Infow("scheduler started", "expirySchedule", expirySchedule)
	return nil
}

// Stop stops the cron runner, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunExpirySweep marks the stock units whose expiry date has passed as
// expired and debits the corresponding stock levels.
func (s *Scheduler) RunExpirySweep() {
	expired, err := s.db.ExpireStockUnits(time.Now())
	if err != nil {
		log.Warnw("stock expiry sweep failed", "error", err)
		return
	}
	if expired > 0 {
		log.Infow("stock expiry sweep finished", "expiredUnits", expired)
	}
}
