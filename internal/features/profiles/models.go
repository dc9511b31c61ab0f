// Package profiles manages user accounts, the individual/company profiles
// attached to them, and the referral graph (each individual profile may
// reference one sponsor). The approval transition here is what triggers
// the bonus engine.
// models.go describes the stored structures.
package profiles

import (
	"time"

	"github.com/google/uuid"
)

// User account types
const (
	UserTypeIndividual = "individual"
	UserTypeCompany    = "company"
	UserTypeAdmin      = "admin"
)

// Approval statuses. Only the transition into StatusApproved triggers
// bonus computation for the user's sponsor.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Ranks of the referral program, lowest to highest.
const (
	RankEntrepreneur    = "entrepreneur"
	RankFieldMarshall   = "field marshall"
	RankBusinessBuilder = "business builder"
	RankBoardMember     = "board member"
	RankBrandAmbassador = "brand ambassador"
)

// MembershipIndividualPackage is the only membership type currently sold.
const MembershipIndividualPackage = "individual package"

// User is one account: an individual participant, a company, or an admin.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"` // Person or company name
	PasswordHash string    `db:"password_hash"`
	UserType     string    `db:"user_type"`
	PhoneNumber  string    `db:"phone_number"`
	Address      string    `db:"address"`
	Country      string    `db:"country"`
	State        string    `db:"state"`
	City         string    `db:"city"`
	Status       string    `db:"status"`
	IsActive     bool      `db:"is_active"`
	IsStaff      bool      `db:"is_staff"`
	DateJoined   time.Time `db:"date_joined"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// IndividualProfile is the program-participant side of a user. Its primary
// key IS the user id. SponsorID is the single edge of the referral graph;
// nil means the participant joined without a sponsor.
type IndividualProfile struct {
	UserID         uuid.UUID  `db:"user_id"`
	Gender         string     `db:"gender"`
	SponsorID      *uuid.UUID `db:"sponsor_id"`
	Rank           string     `db:"rank"`
	MembershipType string     `db:"membership_type"`
}

// CompanyProfile is the company side of a user.
type CompanyProfile struct {
	UserID                    uuid.UUID `db:"user_id"`
	CompanyRegistrationNumber string    `db:"company_registration_number"`
}

// SignupInput carries everything needed to register an account.
type SignupInput struct {
	Email       string
	Name        string
	Password    string
	UserType    string
	PhoneNumber string
	Address     string
	Country     string
	State       string
	City        string

	// Individual-only
	Gender    string
	SponsorID *uuid.UUID

	// Company-only
	CompanyRegistrationNumber string
}
