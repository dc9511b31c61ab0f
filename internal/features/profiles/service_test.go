package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalcluster/referral-backend/internal/common"
)

// fakeRepo keeps accounts in memory.
type fakeRepo struct {
	users       map[uuid.UUID]*User
	byEmail     map[string]*User
	individuals map[uuid.UUID]*IndividualProfile
	companies   map[uuid.UUID]*CompanyProfile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       make(map[uuid.UUID]*User),
		byEmail:     make(map[string]*User),
		individuals: make(map[uuid.UUID]*IndividualProfile),
		companies:   make(map[uuid.UUID]*CompanyProfile),
	}
}

func (f *fakeRepo) CreateUser(ctx context.Context, u *User, individual *IndividualProfile, company *CompanyProfile) error {
	if _, taken := f.byEmail[u.Email]; taken {
		return common.ErrEmailTaken
	}
	if individual != nil && individual.SponsorID != nil && *individual.SponsorID == u.ID {
		return common.ErrSelfSponsor
	}
	f.users[u.ID] = u
	f.byEmail[u.Email] = u
	if individual != nil {
		f.individuals[u.ID] = individual
	}
	if company != nil {
		f.companies[u.ID] = company
	}
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetIndividualProfile(ctx context.Context, userID uuid.UUID) (*IndividualProfile, error) {
	p, ok := f.individuals[userID]
	if !ok {
		return nil, common.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeRepo) SetStatus(ctx context.Context, userID uuid.UUID, status string) (string, error) {
	u, ok := f.users[userID]
	if !ok {
		return "", common.ErrUserNotFound
	}
	previous := u.Status
	u.Status = status
	return previous, nil
}

func (f *fakeRepo) UpdateContact(ctx context.Context, userID uuid.UUID, phone, address, country, state, city string) error {
	u, ok := f.users[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	u.PhoneNumber, u.Address, u.Country, u.State, u.City = phone, address, country, state, city
	return nil
}

func (f *fakeRepo) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	u, ok := f.users[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeRepo) ListSponsored(ctx context.Context, sponsorID uuid.UUID) ([]*IndividualProfile, error) {
	var out []*IndividualProfile
	for _, p := range f.individuals {
		if p.SponsorID != nil && *p.SponsorID == sponsorID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeEngine records which sponsors it was asked to recompute.
type fakeEngine struct {
	computed []uuid.UUID
	err      error
}

func (f *fakeEngine) Compute(ctx context.Context, sponsorUserID uuid.UUID) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	f.computed = append(f.computed, sponsorUserID)
	return decimal.RequireFromString("30000.00"), nil
}

func addIndividual(repo *fakeRepo, sponsorID *uuid.UUID, status string) uuid.UUID {
	id := uuid.New()
	repo.users[id] = &User{ID: id, Email: id.String() + "@example.com", UserType: UserTypeIndividual, Status: status, IsActive: true}
	repo.individuals[id] = &IndividualProfile{UserID: id, SponsorID: sponsorID, Rank: RankEntrepreneur}
	return id
}

func TestSignupIndividual(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeEngine{})

	sponsor := uuid.New()
	u, err := svc.Signup(context.Background(), SignupInput{
		Email:     "ada@example.com",
		Name:      "Ada",
		Password:  "correct-horse",
		UserType:  UserTypeIndividual,
		SponsorID: &sponsor,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, u.Status)
	assert.False(t, u.IsStaff)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	p := repo.individuals[u.ID]
	require.NotNil(t, p)
	assert.Equal(t, sponsor, *p.SponsorID)
	assert.Equal(t, RankEntrepreneur, p.Rank)
	assert.Equal(t, MembershipIndividualPackage, p.MembershipType)
}

func TestSignupCompany(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeEngine{})

	u, err := svc.Signup(context.Background(), SignupInput{
		Email:                     "acme@example.com",
		Name:                      "Acme Ltd",
		Password:                  "correct-horse",
		UserType:                  UserTypeCompany,
		CompanyRegistrationNumber: "RC-12345",
	})
	require.NoError(t, err)

	assert.Nil(t, repo.individuals[u.ID])
	require.NotNil(t, repo.companies[u.ID])
	assert.Equal(t, "RC-12345", repo.companies[u.ID].CompanyRegistrationNumber)
}

func TestSignupUnknownType(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeEngine{})
	_, err := svc.Signup(context.Background(), SignupInput{
		Email:    "x@example.com",
		Password: "correct-horse",
		UserType: "alien",
	})
	assert.ErrorIs(t, err, common.ErrInvalidStatus)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeEngine{})

	u, err := svc.Signup(context.Background(), SignupInput{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct-horse",
		UserType: UserTypeIndividual,
	})
	require.NoError(t, err)
	u.IsActive = true

	got, err := svc.Authenticate(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	u.IsActive = false
	_, err = svc.Authenticate(context.Background(), "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestApproveTriggersEngineForSponsor(t *testing.T) {
	repo := newFakeRepo()
	engine := &fakeEngine{}
	svc := NewService(repo, engine)

	sponsor := addIndividual(repo, nil, StatusApproved)
	recruit := addIndividual(repo, &sponsor, StatusPending)

	require.NoError(t, svc.Approve(context.Background(), recruit))

	assert.Equal(t, StatusApproved, repo.users[recruit].Status)
	require.Len(t, engine.computed, 1)
	assert.Equal(t, sponsor, engine.computed[0])
}

func TestApproveWithoutSponsorSkipsEngine(t *testing.T) {
	repo := newFakeRepo()
	engine := &fakeEngine{}
	svc := NewService(repo, engine)

	recruit := addIndividual(repo, nil, StatusPending)
	require.NoError(t, svc.Approve(context.Background(), recruit))

	assert.Equal(t, StatusApproved, repo.users[recruit].Status)
	assert.Empty(t, engine.computed)
}

func TestApproveCompanySkipsEngine(t *testing.T) {
	repo := newFakeRepo()
	engine := &fakeEngine{}
	svc := NewService(repo, engine)

	id := uuid.New()
	repo.users[id] = &User{ID: id, Email: "acme@example.com", UserType: UserTypeCompany, Status: StatusPending}
	repo.companies[id] = &CompanyProfile{UserID: id}

	require.NoError(t, svc.Approve(context.Background(), id))
	assert.Empty(t, engine.computed)
}

func TestReapproveDoesNotRetrigger(t *testing.T) {
	repo := newFakeRepo()
	engine := &fakeEngine{}
	svc := NewService(repo, engine)

	sponsor := addIndividual(repo, nil, StatusApproved)
	recruit := addIndividual(repo, &sponsor, StatusPending)

	require.NoError(t, svc.Approve(context.Background(), recruit))
	require.NoError(t, svc.Approve(context.Background(), recruit))

	assert.Len(t, engine.computed, 1)
}

func TestApproveKeepsStatusOnEngineFailure(t *testing.T) {
	repo := newFakeRepo()
	engine := &fakeEngine{err: errors.New("ledger unavailable")}
	svc := NewService(repo, engine)

	sponsor := addIndividual(repo, nil, StatusApproved)
	recruit := addIndividual(repo, &sponsor, StatusPending)

	err := svc.Approve(context.Background(), recruit)
	assert.Error(t, err)
	// The approval itself stays committed.
	assert.Equal(t, StatusApproved, repo.users[recruit].Status)
}

func TestListSponsoredReturnsOwnRecruits(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeEngine{})

	sponsor := addIndividual(repo, nil, StatusApproved)
	other := addIndividual(repo, nil, StatusApproved)
	recruit := addIndividual(repo, &sponsor, StatusApproved)
	addIndividual(repo, &other, StatusApproved)

	recruits, err := svc.ListSponsored(context.Background(), sponsor)
	require.NoError(t, err)
	require.Len(t, recruits, 1)
	assert.Equal(t, recruit, recruits[0].UserID)
}

func TestRejectNeverTouchesEngine(t *testing.T) {
	repo := newFakeRepo()
	engine := &fakeEngine{}
	svc := NewService(repo, engine)

	sponsor := addIndividual(repo, nil, StatusApproved)
	recruit := addIndividual(repo, &sponsor, StatusApproved)

	require.NoError(t, svc.Reject(context.Background(), recruit))
	assert.Equal(t, StatusRejected, repo.users[recruit].Status)
	assert.Empty(t, engine.computed)
}
