// Package referrals: ranking.go recomputes member tiers from approved
// direct-referral counts. Runs nightly from the scheduler.
package referrals

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RankStore is the storage surface the ranker needs.
type RankStore interface {
	ApprovedRecruitCounts(ctx context.Context) (map[uuid.UUID]int, error)
	UpsertRanking(ctx context.Context, userID uuid.UUID, name string, rankLevel, totalRecruits, bonus int) error
}

// Ranker recomputes every sponsor's tier from their recruit count.
type Ranker struct {
	store RankStore
}

// NewRanker creates the ranker.
func NewRanker(store RankStore) *Ranker {
	return &Ranker{store: store}
}

// TierFor maps an approved recruit count to a tier name, level and bonus.
func TierFor(recruits int) (name string, level, bonus int) {
	switch {
	case recruits < 5:
		return TierSilver, 1, 0
	case recruits < 10:
		return TierSilverPro, 2, 5000
	case recruits < 25:
		return TierGold, 3, 15000
	case recruits < 50:
		return TierGoldPro, 4, 40000
	default:
		return TierPlatinum, 5, 100000
	}
}

// Recompute refreshes the ranking row of every sponsor with at least one
// approved recruit. Failures on single rows are logged and skipped so one
// bad row does not stall the whole run.
func (r *Ranker) Recompute(ctx context.Context) error {
	counts, err := r.store.ApprovedRecruitCounts(ctx)
	if err != nil {
		return err
	}

	var updated, failed int
	for sponsorID, recruits := range counts {
		name, level, bonus := TierFor(recruits)
		if err := r.store.UpsertRanking(ctx, sponsorID, name, level, recruits, bonus); err != nil {
			log.WithError(err).WithField("user_id", sponsorID).Error("Ranking upsert failed")
			failed++
			continue
		}
		updated++
	}

	log.WithFields(log.Fields{"updated": updated, "failed": failed}).Info("Rankings recomputed")
	return nil
}
