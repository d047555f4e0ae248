package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Prosparity-git/collection/internal/jobs"
	"github.com/Prosparity-git/collection/internal/logger"
)

// Scheduler manages cron job scheduling.
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner.
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	_, err := s.cron.AddFunc(cfg.MarkOverdueDemands, s.jobs.MarkOverdueDemands)
	if err != nil {
		logger.Error("Failed to register MarkOverdueDemands job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.SnapshotStaleness, s.jobs.CheckSnapshotStaleness)
	if err != nil {
		logger.Error("Failed to register CheckSnapshotStaleness job", "error", err)
	}
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
}
