package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nba-props/internal/props"
)

const passJobID = "projection_pass"

// PassRunner is the part of the pipeline the scheduler drives
type PassRunner interface {
	Trigger(ctx context.Context, from time.Time) (*props.PassResult, bool, error)
}

// JobInfo represents information about a scheduled job
type JobInfo struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Schedule   string        `json:"schedule"`
	LastRun    time.Time     `json:"last_run"`
	NextRun    time.Time     `json:"next_run"`
	Status     string        `json:"status"`
	RunCount   int           `json:"run_count"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// PassScheduler runs a projection pass on a cron schedule
type PassScheduler struct {
	runner    PassRunner
	schedule  string
	cron      *cron.Cron
	logger    *logrus.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	now       func() time.Time
	mu        sync.RWMutex
	job       JobInfo
	isRunning bool
}

// NewPassScheduler creates a scheduler for the given cron spec
func NewPassScheduler(runner PassRunner, schedule string, logger *logrus.Logger) *PassScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &PassScheduler{
		runner:   runner,
		schedule: schedule,
		cron:     cron.New(cron.WithLogger(cron.VerbosePrintfLogger(logger))),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		job: JobInfo{
			ID:       passJobID,
			Name:     "Daily projection pass",
			Schedule: schedule,
			Status:   "scheduled",
		},
	}
}

// Start registers the pass job and starts the cron scheduler
func (s *PassScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("pass scheduler is already running")
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runJob)
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", passJobID, err)
	}

	s.cron.Start()
	s.isRunning = true
	s.job.NextRun = s.cron.Entry(entryID).Next

	s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"job_id":    passJobID,
		"schedule":  s.schedule,
		"next_run":  s.job.NextRun,
	}).Info("Scheduled job added")

	return nil
}

// runJob executes one scheduled pass with panic recovery
func (s *PassScheduler) runJob() {
	s.mu.Lock()
	s.job.Status = "running"
	s.job.LastRun = s.now()
	s.job.RunCount++
	runCount := s.job.RunCount
	s.mu.Unlock()

	log := s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"job_id":    passJobID,
		"run_count": runCount,
	})
	log.Info("Starting scheduled job")
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Job panicked")
			s.updateJobStatus("failed", fmt.Sprintf("panic: %v", r), time.Since(startTime))
		}
	}()

	pass, shared, err := s.runner.Trigger(s.ctx, s.now())
	if err != nil {
		log.WithError(err).Error("Scheduled pass failed")
		s.updateJobStatus("failed", err.Error(), time.Since(startTime))
		return
	}

	log.WithFields(logrus.Fields{
		"duration": time.Since(startTime),
		"results":  len(pass.Results),
		"shared":   shared,
	}).Info("Job completed successfully")
	s.updateJobStatus("completed", "", time.Since(startTime))
}

func (s *PassScheduler) updateJobStatus(status, errorMsg string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.job.Status = status
	s.job.Duration = duration
	if errorMsg != "" {
		s.job.ErrorCount++
		s.job.LastError = errorMsg
	}

	if entries := s.cron.Entries(); len(entries) > 0 {
		s.job.NextRun = entries[0].Next
	}
}

// Job returns a snapshot of the pass job
func (s *PassScheduler) Job() JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job
}

// Stop stops the scheduler, waiting briefly for a running job
func (s *PassScheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.logger.WithField("component", "scheduler").Info("Cron scheduler stopped gracefully")
	case <-time.After(5 * time.Second):
		s.logger.WithField("component", "scheduler").Warn("Cron scheduler stop timed out")
	}

	s.cancel()
	return nil
}
