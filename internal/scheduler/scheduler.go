// Package scheduler runs periodic rating updates.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RatingUpdater brings the rating history up to a date
type RatingUpdater interface {
	UpdateRatings(ctx context.Context, through time.Time) error
}

// Scheduler manages scheduled rating update jobs
type Scheduler struct {
	cron       *cron.Cron
	updater    RatingUpdater
	logger     *logrus.Entry
	clock      func() time.Time
	jobTimeout time.Duration

	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(updater RatingUpdater, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		updater:    updater,
		logger:     log.WithField("component", "scheduler"),
		clock:      time.Now,
		jobTimeout: time.Hour,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// ScheduleRatingUpdate schedules an update through the current date on a
// cron expression
func (s *Scheduler) ScheduleRatingUpdate(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.runUpdate)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled rating update job")
	return nil
}

func (s *Scheduler) runUpdate() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	through := s.clock()
	start := time.Now()
	if err := s.updater.UpdateRatings(ctx, through); err != nil {
		s.logger.WithError(err).Error("Scheduled rating update failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"through_date": through.Format("2006-01-02"),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Scheduled rating update completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	var nextRun time.Time
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if !entry.Valid() {
			continue
		}
		next := entry.Next
		// zero until the cron loop has picked up the entry
		if next.IsZero() {
			next = entry.Schedule.Next(s.clock().In(time.UTC))
		}
		if nextRun.IsZero() || next.Before(nextRun) {
			nextRun = next
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		if entry := s.cron.Entry(jobID); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
