package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/metrics"
)

// Janitor hard-deletes soft-deleted threads once they age past the retention
// window. Soft delete keeps threads restorable; the janitor is what finally
// reclaims the rows.
type Janitor struct {
	store     *thread.Store
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
	wg        sync.WaitGroup
	stopChan  chan struct{}
}

// Config contains janitor configuration.
type Config struct {
	Retention time.Duration
	Interval  time.Duration
}

// NewJanitor creates the retention janitor.
func NewJanitor(store *thread.Store, cfg Config, log zerolog.Logger) *Janitor {
	return &Janitor{
		store:     store,
		retention: cfg.Retention,
		interval:  cfg.Interval,
		log:       log.With().Str("component", "thread-janitor").Logger(),
		stopChan:  make(chan struct{}),
	}
}

// Start launches the purge loop.
func (j *Janitor) Start(ctx context.Context) error {
	j.log.Info().
		Dur("retention", j.retention).
		Dur("interval", j.interval).
		Msg("starting thread janitor")

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.run(ctx)
	}()
	return nil
}

// Stop gracefully shuts down the janitor.
func (j *Janitor) Stop() {
	close(j.stopChan)

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.log.Info().Msg("thread janitor stopped")
	case <-time.After(30 * time.Second):
		j.log.Warn().Msg("thread janitor shutdown timed out")
	}
}

func (j *Janitor) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopChan:
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	cutoff := time.Now().Add(-j.retention)
	purged, err := j.store.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("thread purge failed")
		return
	}
	if purged > 0 {
		metrics.ThreadsPurgedTotal.Add(float64(purged))
		j.log.Info().Int64("purged", purged).Time("cutoff", cutoff).Msg("purged expired threads")
	}
}
