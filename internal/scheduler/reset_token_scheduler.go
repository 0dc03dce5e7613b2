package scheduler

import (
	"github.com/ikkim/mventory-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultPurgeSpec runs the purge every 15 minutes
const DefaultPurgeSpec = "@every 15m"

// ExpiredTokenPurger deletes reset tokens past their expiry
type ExpiredTokenPurger interface {
	PurgeExpired() (int64, error)
}

// ResetTokenScheduler periodically removes expired password reset tokens.
// Expired rows are already unusable; this only keeps the table small.
type ResetTokenScheduler struct {
	cron   *cron.Cron
	purger ExpiredTokenPurger
	spec   string
}

func NewResetTokenScheduler(purger ExpiredTokenPurger, spec string) *ResetTokenScheduler {
	if spec == "" {
		spec = DefaultPurgeSpec
	}
	return &ResetTokenScheduler{
		cron:   cron.New(),
		purger: purger,
		spec:   spec,
	}
}

// RunOnce purges expired tokens immediately
func (s *ResetTokenScheduler) RunOnce() {
	count, err := s.purger.PurgeExpired()
	if err != nil {
		logger.Error("Failed to purge expired reset tokens", err)
		return
	}
	logger.Debug("Reset token purge finished", map[string]interface{}{
		"deleted": count,
	})
}

func (s *ResetTokenScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for reset token purge", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Reset token scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop stops the scheduler and waits for a running purge to finish
func (s *ResetTokenScheduler) Stop() {
	logger.Info("Stopping reset token scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Reset token scheduler stopped")
}
