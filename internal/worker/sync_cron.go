package worker

// sync_cron.go
// Background goroutine that enqueues a scheduled sync every interval. The
// run itself happens on the sync worker, so a slow run never overlaps the
// next tick: the pending marker collapses it.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Enqueuer is satisfied by *Dispatcher.
type Enqueuer interface {
	EnqueueSync(ctx context.Context, trigger string) (string, bool, error)
}

// StartSyncCron ticks every interval until ctx is cancelled. A non-positive
// interval disables scheduling.
func StartSyncCron(ctx context.Context, interval time.Duration, q Enqueuer, trigger string) {
	if interval <= 0 {
		log.Info().Msg("sync_cron: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("sync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_cron: shutting down")
				return
			case <-ticker.C:
				id, queued, err := q.EnqueueSync(ctx, trigger)
				if err != nil {
					log.Error().Err(err).Msg("sync_cron: failed to enqueue")
					continue
				}
				if !queued {
					log.Debug().Str("job_id", id).Msg("sync_cron: run already pending, skipping tick")
				}
			}
		}
	}()
}
