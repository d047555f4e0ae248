package jobs

import (
	"context"
	"time"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/logger"
)

// MarkOverdueDemands rolls demands still marked Future past their demand
// date into Overdue. Each record goes through the transition engine so the
// change is logged and serialized like any other mutation.
func (jr *JobRunner) MarkOverdueDemands() {
	jr.runWithRecovery("MarkOverdueDemands", func() {
		ctx := context.Background()
		today := time.Now().Truncate(24 * time.Hour)

		ids, err := jr.store.ListFutureDue(ctx, today)
		if err != nil {
			logger.Error("Failed to list due demands", "error", err)
			return
		}
		if len(ids) == 0 {
			return
		}

		overdue := domain.StatusOverdue
		var failed int
		for _, id := range ids {
			_, err := jr.status.ApplyUpdate(ctx, id, CronActor, domain.UpdateFields{Status: &overdue})
			if err != nil {
				failed++
				logger.Error("Failed to mark demand overdue", "payment_id", id, "error", err)
			}
		}
		logger.Info("Marked due demands overdue", "total", len(ids), "failed", failed)
	})
}

// CheckSnapshotStaleness warns when LMS overdue snapshots have not been
// refreshed within the configured window; overdue reconciliation degrades
// silently otherwise.
func (jr *JobRunner) CheckSnapshotStaleness() {
	jr.runWithRecovery("CheckSnapshotStaleness", func() {
		ctx := context.Background()
		maxAge := time.Duration(jr.config.Snapshot.MaxAgeHours) * time.Hour
		cutoff := time.Now().Add(-maxAge)

		stale, err := jr.store.CountStale(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to count stale snapshots", "error", err)
			return
		}
		if stale > 0 {
			logger.Warn("LMS overdue snapshots are stale", "count", stale, "max_age_hours", jr.config.Snapshot.MaxAgeHours)
		}
	})
}
