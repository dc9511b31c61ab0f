// Package profiles: service.go holds the account business logic: signup,
// login credential checks and the approval transition. Approval is the
// explicit orchestration point for the bonus engine: the status change
// commits first, then the sponsor's bonuses are recomputed. No persistence
// hook hides that call.
package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/auth"
	"github.com/globalcluster/referral-backend/internal/common"
)

// BonusEngine recomputes a sponsor's referral bonuses. Implemented by
// earnings.Engine.
type BonusEngine interface {
	Compute(ctx context.Context, sponsorUserID uuid.UUID) (decimal.Decimal, error)
}

// Store is the storage surface the service needs. *Repository implements
// it; tests use an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, u *User, individual *IndividualProfile, company *CompanyProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetIndividualProfile(ctx context.Context, userID uuid.UUID) (*IndividualProfile, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status string) (previous string, err error)
	UpdateContact(ctx context.Context, userID uuid.UUID, phone, address, country, state, city string) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	ListSponsored(ctx context.Context, sponsorID uuid.UUID) ([]*IndividualProfile, error)
}

// Service manages accounts and the approval lifecycle.
type Service struct {
	repo   Store
	engine BonusEngine
}

// NewService creates the profiles service.
func NewService(repo Store, engine BonusEngine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Signup registers a new account with a typed profile. Passwords are
// hashed with bcrypt; accounts start in pending status.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		UserType:     in.UserType,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		Country:      in.Country,
		State:        in.State,
		City:         in.City,
		Status:       StatusPending,
		IsActive:     true,
	}

	var individual *IndividualProfile
	var company *CompanyProfile
	switch in.UserType {
	case UserTypeIndividual:
		individual = &IndividualProfile{
			UserID:         u.ID,
			Gender:         in.Gender,
			SponsorID:      in.SponsorID,
			Rank:           RankEntrepreneur,
			MembershipType: MembershipIndividualPackage,
		}
	case UserTypeCompany:
		company = &CompanyProfile{
			UserID:                    u.ID,
			CompanyRegistrationNumber: in.CompanyRegistrationNumber,
		}
	case UserTypeAdmin:
		u.IsStaff = true
		u.Status = StatusApproved
	default:
		return nil, common.ErrInvalidStatus
	}

	if err := s.repo.CreateUser(ctx, u, individual, company); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":   u.ID,
		"user_type": u.UserType,
	}).Info("Account registered")
	return u, nil
}

// Authenticate checks the email/password pair and returns the user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, common.ErrUserNotFound
	}
	return u, nil
}

// Approve transitions the user into approved status, then recomputes the
// sponsor's bonuses when the approved user is an individual with one.
//
// The engine runs only on an actual transition INTO approved; re-approving
// an already approved user is a no-op. An engine failure surfaces to the
// caller but does not undo the committed approval.
func (s *Service) Approve(ctx context.Context, userID uuid.UUID) error {
	previous, err := s.repo.SetStatus(ctx, userID, StatusApproved)
	if err != nil {
		return err
	}
	if previous == StatusApproved {
		return nil
	}

	profile, err := s.repo.GetIndividualProfile(ctx, userID)
	if errors.Is(err, common.ErrProfileNotFound) {
		// Company or admin account: nothing to recompute.
		return nil
	}
	if err != nil {
		return err
	}
	if profile.SponsorID == nil {
		return nil
	}

	total, err := s.engine.Compute(ctx, *profile.SponsorID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"sponsor": *profile.SponsorID,
		}).Error("Bonus computation failed after approval")
		return err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"sponsor": *profile.SponsorID,
		"total":   total.StringFixed(2),
	}).Info("Sponsor bonuses recomputed")
	return nil
}

// Reject transitions the user into rejected status. Never touches the
// bonus engine: leaving approved status does not trigger recomputation in
// this design.
func (s *Service) Reject(ctx context.Context, userID uuid.UUID) error {
	_, err := s.repo.SetStatus(ctx, userID, StatusRejected)
	return err
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// GetIndividualProfile returns the individual profile for the user.
func (s *Service) GetIndividualProfile(ctx context.Context, userID uuid.UUID) (*IndividualProfile, error) {
	return s.repo.GetIndividualProfile(ctx, userID)
}

// ListSponsored returns the profiles the user has recruited.
func (s *Service) ListSponsored(ctx context.Context, sponsorID uuid.UUID) ([]*IndividualProfile, error) {
	return s.repo.ListSponsored(ctx, sponsorID)
}

// UpdateContact updates a user's contact details.
func (s *Service) UpdateContact(ctx context.Context, userID uuid.UUID, phone, address, country, state, city string) error {
	return s.repo.UpdateContact(ctx, userID, phone, address, country, state, city)
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, userID, active)
}
