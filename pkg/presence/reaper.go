package presence

import (
	"context"
	"log"
	"time"

	"GlowCare/pkg/store"
)

// Reaper demotes experts whose heartbeats stopped arriving. The
// explicit offline signal on tab close is a fire-and-forget beacon and
// may never arrive (crash, network loss); this loop is what actually
// keeps the availability list honest. It runs on its own schedule,
// independent of request traffic.
type Reaper struct {
	store     *store.Store
	interval  time.Duration
	threshold time.Duration
}

func NewReaper(s *store.Store, interval, threshold time.Duration) *Reaper {
	return &Reaper{store: s, interval: interval, threshold: threshold}
}

// Run sweeps until ctx is canceled. One sweep fires immediately so a
// restart does not leave stale rows up for a full interval.
func (r *Reaper) Run(ctx context.Context) {
	r.sweep(ctx)

	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.sweep(ctx)
		}
	}
}

// Sweep runs a single pass; cmd/reaper uses it for cron deployments.
func (r *Reaper) Sweep(ctx context.Context) (int64, error) {
	return r.store.SweepStaleExperts(ctx, r.threshold)
}

func (r *Reaper) sweep(ctx context.Context) {
	n, err := r.Sweep(ctx)
	if err != nil {
		log.Printf("[reaper] sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[reaper] marked %d expert(s) offline after %s of inactivity", n, r.threshold)
	}
}
