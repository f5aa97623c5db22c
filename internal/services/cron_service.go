package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron         *cron.Cron
	rateLimitSvc *RateLimitService
	logger       *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(rateLimitSvc *RateLimitService, logger *logrus.Logger) *CronService {
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:         c,
		rateLimitSvc: rateLimitSvc,
		logger:       logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	// "0 0 * * * *" = At minute 0 of every hour
	_, err := s.cron.AddFunc("0 0 * * * *", s.cleanupLoginAttemptsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule login attempt cleanup job: %w", err)
	}
	s.logger.Info("✓ Scheduled: Cleanup expired login attempts (Hourly)")

	s.cron.Start()
	s.logger.Info("✓ Cron service started successfully")

	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("✓ Cron service stopped")
}

func (s *CronService) cleanupLoginAttemptsJob() {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.rateLimitSvc.CleanupExpiredAttempts(ctx)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to cleanup login attempts")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"removed":  removed,
		"duration": time.Since(startTime).String(),
	}).Info("[CRON] ✓ Cleaned up expired login attempts")
}

// RunCleanupNow runs the login attempt cleanup immediately
func (s *CronService) RunCleanupNow() {
	s.logger.Info("[MANUAL] Running login attempt cleanup now...")
	s.cleanupLoginAttemptsJob()
}
