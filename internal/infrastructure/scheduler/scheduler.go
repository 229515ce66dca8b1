// Package scheduler contains the recurring-job infrastructure for auto-send
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CronScheduler runs one recurring job per user on top of a cron runner.
// Registering a job for a user replaces any previously registered one, so
// a user can never accumulate stacked schedules.
type CronScheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	mu      sync.Mutex
	entries map[int64]cron.EntryID
}

// NewCronScheduler creates a new scheduler
func NewCronScheduler(logger zerolog.Logger) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(),
		logger:  logger,
		entries: make(map[int64]cron.EntryID),
	}
}

// Register schedules a recurring job for a user, replacing any existing one
func (s *CronScheduler) Register(userID int64, cronSpec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[userID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, userID)
	}

	entryID, err := s.cron.AddFunc(cronSpec, job)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", cronSpec, err)
	}

	s.entries[userID] = entryID
	s.logger.Info().
		Int64("user_id", userID).
		Str("cron", cronSpec).
		Msg("Auto-send job registered")
	return nil
}

// Unregister removes the user's job if one is registered
func (s *CronScheduler) Unregister(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[userID]
	if !ok {
		return
	}

	s.cron.Remove(entryID)
	delete(s.entries, userID)
	s.logger.Info().Int64("user_id", userID).Msg("Auto-send job unregistered")
}

// JobCount returns the number of registered jobs
func (s *CronScheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start starts the cron runner
func (s *CronScheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop stops the cron runner, waiting for running jobs to finish
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}
