// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// PruneScheduler periodically removes checkpoint records older than maxAge
// on a cron schedule, same gocron/v2 wiring as the disk probe scheduler.
// Records are not checked against the drives currently attached.
type PruneScheduler struct {
	logger    logger.Logger
	store     *Store
	scheduler gocron.Scheduler
	maxAge    time.Duration
}

// NewPruneScheduler builds (without starting) a scheduler that prunes store
// every time cronExpression fires.
func NewPruneScheduler(l logger.Logger, store *Store, cronExpression string, maxAge time.Duration) (*PruneScheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, errors.CheckpointWriteFailed).WithMetadata("operation", "create_scheduler")
	}

	ps := &PruneScheduler{logger: l, store: store, scheduler: sched, maxAge: maxAge}

	_, err = sched.NewJob(
		gocron.CronJob(cronExpression, false),
		gocron.NewTask(ps.runPrune),
		gocron.WithName("checkpoint-prune"),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CheckpointWriteFailed).
			WithMetadata("operation", "register_prune_job").
			WithMetadata("cron", cronExpression)
	}
	return ps, nil
}

func (ps *PruneScheduler) runPrune() {
	removed, err := ps.store.Prune(ps.maxAge)
	if err != nil {
		ps.logger.Error("checkpoint prune failed", "error", err)
		return
	}
	if removed > 0 {
		ps.logger.Info("pruned stale checkpoint records", "removed", removed, "max_age", ps.maxAge)
	}
}

// Start begins the cron schedule.
func (ps *PruneScheduler) Start() {
	ps.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for any in-flight job.
func (ps *PruneScheduler) Stop() error {
	return ps.scheduler.Shutdown()
}
