// Package worker refreshes the calendar snapshot on a cron schedule.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/famcal/internal/config"
	"github.com/tartampluch/famcal/internal/engine"
)

// SnapshotLoader builds a complete snapshot from the configured sources.
type SnapshotLoader interface {
	Load(ctx context.Context, sources []config.SourceConfig) (*engine.Snapshot, error)
}

// Worker reloads every source on Schedule and hands each complete snapshot
// to Publish. A failed refresh keeps the previously published snapshot.
type Worker struct {
	Loader   SnapshotLoader
	Sources  []config.SourceConfig
	Schedule string
	Publish  func(*engine.Snapshot)
}

// Refresh performs a single load and publishes the result on success.
func (w *Worker) Refresh(ctx context.Context) error {
	snap, err := w.Loader.Load(ctx, w.Sources)
	if err != nil {
		return err
	}
	if w.Publish != nil {
		w.Publish(snap)
	}
	slog.Info(config.MsgSnapshotUpdated,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyFailed, len(snap.Failed),
	)
	return nil
}

// Run refreshes once immediately, then on every tick of the schedule,
// until ctx is cancelled. Overlapping ticks are skipped.
func (w *Worker) Run(ctx context.Context) error {
	spec := w.Schedule
	if spec == "" {
		spec = config.DefaultRefreshCron
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrCronSpec, err)
	}

	log := slog.With(config.LogKeyComponent, config.CompWorker)
	log.Info(config.MsgWorkerStart, config.LogKeySchedule, spec)

	refresh := func() {
		start := time.Now()
		if err := w.Refresh(ctx); err != nil && ctx.Err() == nil {
			log.Error(config.MsgRefreshFailed,
				config.LogKeyError, err,
				config.LogKeyDuration, time.Since(start).Milliseconds(),
			)
		}
	}

	refresh()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(schedule, cron.FuncJob(refresh))
	c.Start()

	<-ctx.Done()
	log.Info(config.MsgWorkerStop)
	// Wait for a running refresh to observe the cancellation.
	<-c.Stop().Done()
	return nil
}
