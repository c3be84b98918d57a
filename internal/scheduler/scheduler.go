package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/malinawb/malina-bot/types"
)

// Settler is the accrual engine as seen by the sweep.
type Settler interface {
	Settle(ctx context.Context, userID int64, now time.Time) (*types.AccessRecord, error)
}

// Scheduler runs the daily settlement sweep so balances decay even for
// users who never log in. One sweep per day at a fixed UTC hour; every
// record is settled independently and a failing record is logged and
// skipped, never aborting the rest of the batch.
type Scheduler struct {
	store   types.AccessStore
	settler Settler
	hourUTC int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	now     func() time.Time
}

type Config struct {
	// HourUTC is the hour of day (0-23) the sweep fires at.
	HourUTC int
}

const sweepTimeout = 30 * time.Minute

func NewScheduler(store types.AccessStore, settler Settler, config Config) *Scheduler {
	if config.HourUTC < 0 || config.HourUTC > 23 {
		config.HourUTC = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:   store,
		settler: settler,
		hourUTC: config.HourUTC,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("Settlement scheduler started, daily at %02d:00 UTC", s.hourUTC)

	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Println("Stopping settlement scheduler...")
	s.cancel()
	s.wg.Wait()
	log.Println("Settlement scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(s.untilNextRun())
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			ctx, cancel := context.WithTimeout(s.ctx, sweepTimeout)
			if err := s.RunDailySettlement(ctx); err != nil {
				log.Printf("Daily settlement aborted: %v", err)
			}
			cancel()
		}
	}
}

func (s *Scheduler) untilNextRun() time.Duration {
	now := s.now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// RunDailySettlement sweeps every known record once. Archived records
// are skipped; a store failure on one record does not stop the sweep.
func (s *Scheduler) RunDailySettlement(ctx context.Context) error {
	runID := uuid.NewString()
	started := s.now()

	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return err
	}
	log.Printf("Settlement run %s: sweeping %d records", runID, len(ids))

	var settled, skipped, failed int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := s.settler.Settle(ctx, id, s.now())
		switch {
		case err == nil:
			settled++
		case errors.Is(err, types.ErrArchived), errors.Is(err, types.ErrNotFound):
			skipped++
		default:
			failed++
			log.Printf("Settlement run %s: user %d: %v", runID, id, err)
		}
	}

	log.Printf("Settlement run %s finished in %s: settled=%d skipped=%d failed=%d",
		runID, time.Since(started).Round(time.Millisecond), settled, skipped, failed)
	return nil
}
