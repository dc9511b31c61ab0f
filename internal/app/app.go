// Package app initializes all application components.
// app.go is the assembly point: it creates the DB pool, runs migrations,
// builds repositories, services, the HTTP server and the scheduler.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/common"
	"github.com/globalcluster/referral-backend/internal/config"
	"github.com/globalcluster/referral-backend/internal/db/postgres"
	"github.com/globalcluster/referral-backend/internal/features/earnings"
	"github.com/globalcluster/referral-backend/internal/features/profiles"
	"github.com/globalcluster/referral-backend/internal/features/referrals"
	"github.com/globalcluster/referral-backend/internal/features/tickets"
	"github.com/globalcluster/referral-backend/internal/features/wallet"
	"github.com/globalcluster/referral-backend/internal/jobs"
	"github.com/globalcluster/referral-backend/internal/server"
)

// App holds all application components.
type App struct {
	Server    *server.Server
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
}

// New creates and initializes the application. Initialization order
// matters, components depend on each other.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	// === 2. Repositories ===
	profilesRepo := profiles.NewRepository(pool)
	earningsRepo := earnings.NewRepository(pool)
	walletRepo := wallet.NewRepository(pool)
	ticketsRepo := tickets.NewRepository(pool)
	referralsRepo := referrals.NewRepository(pool)

	// === 3. Services ===
	engine := earnings.NewEngine(earningsRepo, earnings.Rates{
		DirectReferral: cfg.BonusDirectReferralRate,
		MatchingPair:   cfg.BonusMatchingPairRate,
	})
	reporting := earnings.NewReporting(earningsRepo)
	profilesService := profiles.NewService(profilesRepo, engine)
	walletService := wallet.NewService(walletRepo, wallet.NewHTTPGateway(cfg), cfg.WalletCurrency)
	ticketsService := tickets.NewService(ticketsRepo)
	referralsService := referrals.NewService(referralsRepo)
	ranker := referrals.NewRanker(referralsRepo)

	// === 4. Bootstrap admin ===
	if err := bootstrapAdmin(ctx, cfg, profilesRepo); err != nil {
		return nil, fmt.Errorf("admin bootstrap: %w", err)
	}

	// === 5. HTTP server and scheduler ===
	srv := server.New(cfg, pool, profilesService, reporting, walletService, ticketsService, referralsService)
	scheduler := jobs.NewScheduler(cfg, ranker, walletService)

	return &App{
		Server:    srv,
		Scheduler: scheduler,
		DB:        pool,
	}, nil
}

// bootstrapAdmin creates the configured admin account on first start. The
// password arrives pre-hashed so the plaintext never touches the
// environment.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, repo *profiles.Repository) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	_, err := repo.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrUserNotFound) {
		return err
	}

	admin := &profiles.User{
		ID:           uuid.New(),
		Email:        cfg.AdminEmail,
		Name:         "Administrator",
		PasswordHash: cfg.AdminPasswordHash,
		UserType:     profiles.UserTypeAdmin,
		Status:       profiles.StatusApproved,
		IsActive:     true,
		IsStaff:      true,
	}
	if err := repo.CreateUser(ctx, admin, nil, nil); err != nil {
		return err
	}

	log.WithField("email", cfg.AdminEmail).Info("Admin account created")
	return nil
}
