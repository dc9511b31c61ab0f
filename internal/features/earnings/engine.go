// Package earnings: engine.go is the bonus computation engine. It is
// invoked by the profiles module whenever a sponsored user transitions
// into approved status, and by nothing else.
package earnings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/common"
	"github.com/globalcluster/referral-backend/internal/monitoring"
)

// Store is the storage surface the engine computes against. *Repository
// implements it; tests use an in-memory fake.
type Store interface {
	// Atomically runs fn with recomputation for sponsorID serialized and
	// every write inside fn committed together or not at all.
	Atomically(ctx context.Context, sponsorID uuid.UUID, fn func(Store) error) error
	ProfileExists(ctx context.Context, profileID uuid.UUID) (bool, error)
	CountApprovedReferrals(ctx context.Context, sponsorID uuid.UUID) (int, error)
	GetOrCreateType(ctx context.Context, name string) (*EarningsType, error)
	UpsertEntry(ctx context.Context, profileID uuid.UUID, typeID int64, amount decimal.Decimal, description string) error
}

// Engine recomputes a sponsor's referral bonuses from the current state of
// the referral graph. Every run starts from scratch: amounts are derived
// from the live approved-referral count and upserted, never incremented.
type Engine struct {
	store Store
	rates Rates
}

// NewEngine creates a bonus engine with the given rates.
func NewEngine(store Store, rates Rates) *Engine {
	return &Engine{store: store, rates: rates}
}

// Compute counts the sponsor's approved direct referrals, derives the
// direct-referral and matching bonuses, and upserts both ledger rows in one
// transaction. It returns the sum of the two bonuses.
//
// The operation is idempotent: recomputing with an unchanged referral count
// stores identical amounts. Any failure propagates to the caller; nothing
// is retried and the transaction guarantees the two rows land together.
func (e *Engine) Compute(ctx context.Context, sponsorUserID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal

	err := e.store.Atomically(ctx, sponsorUserID, func(s Store) error {
		exists, err := s.ProfileExists(ctx, sponsorUserID)
		if err != nil {
			return err
		}
		if !exists {
			return common.ErrProfileNotFound
		}

		approved, err := s.CountApprovedReferrals(ctx, sponsorUserID)
		if err != nil {
			return err
		}

		directBonus := e.rates.DirectReferral.Mul(decimal.NewFromInt(int64(approved)))
		pairs := approved / 2
		matchingBonus := e.rates.MatchingPair.Mul(decimal.NewFromInt(int64(pairs)))

		directType, err := s.GetOrCreateType(ctx, DirectReferralBonusName)
		if err != nil {
			return err
		}
		err = s.UpsertEntry(ctx, sponsorUserID, directType.ID, directBonus,
			fmt.Sprintf("Direct Referral Bonus for %d approved referrals", approved))
		if err != nil {
			return err
		}

		matchingType, err := s.GetOrCreateType(ctx, MatchingBonusName)
		if err != nil {
			return err
		}
		err = s.UpsertEntry(ctx, sponsorUserID, matchingType.ID, matchingBonus,
			fmt.Sprintf("Matching Bonus for %d pairs of approved referrals", pairs))
		if err != nil {
			return err
		}

		total = directBonus.Add(matchingBonus)

		log.WithFields(log.Fields{
			"sponsor":  sponsorUserID,
			"approved": approved,
			"direct":   directBonus.StringFixed(2),
			"matching": matchingBonus.StringFixed(2),
		}).Debug("Referral bonuses recomputed")
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	monitoring.BonusComputationsTotal.Inc()
	return total, nil
}
