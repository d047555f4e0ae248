package jobs

import (
	"github.com/Prosparity-git/collection/internal/config"
	"github.com/Prosparity-git/collection/internal/logger"
	"github.com/Prosparity-git/collection/internal/repository/postgres"
	"github.com/Prosparity-git/collection/internal/service"
)

// CronActor is the audit-trail identifier for scheduler-driven mutations.
const CronActor = "system:cron"

// JobRunner coordinates all scheduled jobs.
type JobRunner struct {
	store  *postgres.Store
	status service.StatusService
	config *config.Config
}

func NewJobRunner(store *postgres.Store, status service.StatusService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:  store,
		status: status,
		config: cfg,
	}
}

// Config exposes the loaded configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs every nightly job once, for manual execution from
// the cronjob binary.
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.MarkOverdueDemands()
	jr.CheckSnapshotStaleness()
}
