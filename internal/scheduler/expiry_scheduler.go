package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/smartcart/smartcart-backend/internal/app/service"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// expiryScanSchedule runs the catalog sweep every morning at 09:00.
const expiryScanSchedule = "0 9 * * *"

// ExpiryScheduler runs the daily expiry sweep in the background.
type ExpiryScheduler struct {
	cron          *cron.Cron
	expiryService service.ExpiryService
}

func NewExpiryScheduler(expiryService service.ExpiryService) *ExpiryScheduler {
	return &ExpiryScheduler{
		cron:          cron.New(),
		expiryService: expiryService,
	}
}

// Start registers the scan job and launches the cron loop.
func (s *ExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc(expiryScanSchedule, s.runScan)
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("Expiry scheduler started", map[string]interface{}{
		"schedule": expiryScanSchedule,
	})
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *ExpiryScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Expiry scheduler stopped")
}

func (s *ExpiryScheduler) runScan() {
	created, err := s.expiryService.Scan(time.Now())
	if err != nil {
		logger.Error("Scheduled expiry scan failed", err, nil)
		return
	}

	logger.Info("Scheduled expiry scan finished", map[string]interface{}{
		"created": created,
	})
}
