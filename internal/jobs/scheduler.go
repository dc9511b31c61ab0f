// Package jobs manages the background cron tasks: the nightly ranking
// recompute and the hourly sweep of stale pending deposits.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/config"
	"github.com/globalcluster/referral-backend/internal/features/referrals"
	"github.com/globalcluster/referral-backend/internal/features/wallet"
)

// Scheduler manages the background tasks.
type Scheduler struct {
	cron          *cron.Cron
	ranker        *referrals.Ranker
	walletService *wallet.Service
	sweepMinAge   time.Duration
	tz            string
}

// NewScheduler creates a scheduler in the configured timezone.
func NewScheduler(cfg *config.Config, ranker *referrals.Ranker, walletService *wallet.Service) *Scheduler {
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).Warnf("Could not load %s, falling back to UTC", cfg.AppTimezone)
		loc = time.UTC
	}

	return &Scheduler{
		cron:          cron.New(cron.WithLocation(loc)),
		ranker:        ranker,
		walletService: walletService,
		sweepMinAge:   cfg.DepositSweepMinAge,
		tz:            loc.String(),
	}
}

// Start registers and launches all background tasks.
func (s *Scheduler) Start(ctx context.Context) {
	// Nightly ranking recompute at 02:00
	s.cron.AddFunc("0 2 * * *", func() {
		log.Info("[CRON] Nightly ranking recompute")
		if err := s.ranker.Recompute(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ranking recompute failed")
		}
	})

	// Hourly sweep of pending deposits
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] Pending deposit sweep")
		if err := s.walletService.SweepPendingDeposits(ctx, s.sweepMinAge); err != nil {
			log.WithError(err).Error("[CRON] Deposit sweep failed")
		}
	})

	s.cron.Start()
	log.Infof("Scheduler started (%s)", s.tz)
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}
