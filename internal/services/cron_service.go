package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ContractExpirer moves lapsed provider contracts to expired
type ContractExpirer interface {
	ExpireDue(ctx context.Context, asOf time.Time) (int, error)
}

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	expirer  ContractExpirer
	schedule string
	timeout  time.Duration
	logger   *logrus.Logger
}

// NewCronService creates a new CronService. schedule uses the six-field
// format with seconds, e.g. "0 15 0 * * *" for 00:15 every day.
func NewCronService(expirer ContractExpirer, schedule string, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:     cron.New(cron.WithSeconds()),
		expirer:  expirer,
		schedule: schedule,
		timeout:  5 * time.Minute,
		logger:   logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	if _, err := s.cron.AddFunc(s.schedule, s.expireContractsJob); err != nil {
		return fmt.Errorf("failed to schedule contract expiry job: %w", err)
	}
	s.logger.WithField("schedule", s.schedule).Info("Scheduled: Expire lapsed provider contracts")

	s.cron.Start()
	s.logger.Info("Cron service started successfully")
	return nil
}

// Stop stops all cron jobs and waits for a running job to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// expireContractsJob expires active contracts whose end date has passed
func (s *CronService) expireContractsJob() {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	expired, err := s.expirer.ExpireDue(ctx, startTime)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to expire provider contracts")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"expired":  expired,
		"duration": time.Since(startTime).String(),
	}).Info("[CRON] Contract expiry job finished")
}
