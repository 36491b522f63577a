package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DecayJob periodically ages records that have not been accessed within
// the configured window. Access tracking on reads feeds this: records the
// context loader keeps touching stay important, untouched ones fade out.
type DecayJob struct {
	store     Store
	logger    *slog.Logger
	schedule  string
	afterDays int
	cron      *cron.Cron
}

// NewDecayJob creates a decay job with a cron schedule (standard five
// field spec) and the idle window in days.
func NewDecayJob(log *slog.Logger, store Store, schedule string, afterDays int) *DecayJob {
	if log == nil {
		log = slog.Default()
	}
	if afterDays <= 0 {
		afterDays = 90
	}
	return &DecayJob{
		store:     store,
		logger:    log.With(slog.String("service", "memory_decay")),
		schedule:  schedule,
		afterDays: afterDays,
	}
}

// Start registers and launches the cron schedule.
func (j *DecayJob) Start() error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(j.schedule, j.runOnce)
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (j *DecayJob) Stop(ctx context.Context) error {
	if j.cron == nil {
		return nil
	}
	select {
	case <-j.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *DecayJob) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -j.afterDays)
	decayed, deleted, err := j.store.Decay(ctx, cutoff)
	if err != nil {
		j.logger.Error("memory decay pass failed", slog.Any("error", err))
		return
	}
	j.logger.Info("memory decay pass complete",
		slog.Int64("decayed", decayed),
		slog.Int64("deleted", deleted),
	)
}
