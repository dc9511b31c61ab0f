package referrals

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		recruits  int
		wantName  string
		wantLevel int
		wantBonus int
	}{
		{0, TierSilver, 1, 0},
		{4, TierSilver, 1, 0},
		{5, TierSilverPro, 2, 5000},
		{9, TierSilverPro, 2, 5000},
		{10, TierGold, 3, 15000},
		{24, TierGold, 3, 15000},
		{25, TierGoldPro, 4, 40000},
		{49, TierGoldPro, 4, 40000},
		{50, TierPlatinum, 5, 100000},
		{200, TierPlatinum, 5, 100000},
	}

	for _, tt := range tests {
		name, level, bonus := TierFor(tt.recruits)
		assert.Equal(t, tt.wantName, name, "recruits=%d", tt.recruits)
		assert.Equal(t, tt.wantLevel, level, "recruits=%d", tt.recruits)
		assert.Equal(t, tt.wantBonus, bonus, "recruits=%d", tt.recruits)
	}
}

// fakeRankStore records upserts and serves canned recruit counts.
type fakeRankStore struct {
	counts    map[uuid.UUID]int
	countsErr error
	upserts   map[uuid.UUID]*UserRanking
	failFor   map[uuid.UUID]bool
}

func (f *fakeRankStore) ApprovedRecruitCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.counts, nil
}

func (f *fakeRankStore) UpsertRanking(ctx context.Context, userID uuid.UUID, name string, rankLevel, totalRecruits, bonus int) error {
	if f.failFor[userID] {
		return errors.New("upsert failed")
	}
	if f.upserts == nil {
		f.upserts = make(map[uuid.UUID]*UserRanking)
	}
	f.upserts[userID] = &UserRanking{
		UserID:        userID,
		Name:          name,
		RankLevel:     rankLevel,
		TotalRecruits: totalRecruits,
		Bonus:         bonus,
	}
	return nil
}

func TestRecompute(t *testing.T) {
	small, big := uuid.New(), uuid.New()
	store := &fakeRankStore{counts: map[uuid.UUID]int{small: 3, big: 30}}

	require.NoError(t, NewRanker(store).Recompute(context.Background()))

	require.Len(t, store.upserts, 2)
	assert.Equal(t, TierSilver, store.upserts[small].Name)
	assert.Equal(t, 3, store.upserts[small].TotalRecruits)
	assert.Equal(t, TierGoldPro, store.upserts[big].Name)
	assert.Equal(t, 40000, store.upserts[big].Bonus)
}

func TestRecomputeSkipsFailedRows(t *testing.T) {
	good, bad := uuid.New(), uuid.New()
	store := &fakeRankStore{
		counts:  map[uuid.UUID]int{good: 6, bad: 12},
		failFor: map[uuid.UUID]bool{bad: true},
	}

	// One failing row must not stall the rest of the run.
	require.NoError(t, NewRanker(store).Recompute(context.Background()))
	require.Len(t, store.upserts, 1)
	assert.Equal(t, TierSilverPro, store.upserts[good].Name)
}

func TestRecomputePropagatesCountError(t *testing.T) {
	store := &fakeRankStore{countsErr: errors.New("db down")}
	assert.Error(t, NewRanker(store).Recompute(context.Background()))
}
