package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"vigil/store"
)

// Sweeper deletes check rows older than the retention horizon. The horizon
// is clamped at config load to at least the longest reporting window, so a
// sweep can never truncate an incident a report could still ask about.
type Sweeper struct {
	store     store.Store
	retention time.Duration
	cron      *cron.Cron
}

func NewSweeper(st store.Store, retention time.Duration) *Sweeper {
	return &Sweeper{
		store:     st,
		retention: retention,
		cron:      cron.New(),
	}
}

// Start schedules the daily sweep at 03:00.
func (s *Sweeper) Start() {
	s.cron.AddFunc("0 3 * * *", func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			log.Printf("sweeper: %v", err)
		}
	})
	s.cron.Start()
	log.Printf("sweeper: retaining %d days of checks", int(s.retention.Hours()/24))
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep deletes everything past the horizon and returns the count removed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.retention)
	n, err := s.store.DeleteChecksOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("sweeper: removed %d checks older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
