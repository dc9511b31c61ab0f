// Package profiles: repository.go runs all queries against users,
// individual_profiles and company_profiles. User-plus-profile creation is
// one DB transaction so an account never exists without its profile.
package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/globalcluster/referral-backend/internal/common"
)

const uniqueViolation = "23505"

// Repository provides storage for user accounts and profiles.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new profiles repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, name, password_hash, user_type, phone_number,
	address, country, state, city, status, is_active, is_staff,
	date_joined, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.UserType, &u.PhoneNumber,
		&u.Address, &u.Country, &u.State, &u.City, &u.Status, &u.IsActive,
		&u.IsStaff, &u.DateJoined, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts the user row and its typed profile in one
// transaction. Individual signups with a sponsor equal to the new user id
// are rejected before touching the database.
func (r *Repository) CreateUser(ctx context.Context, u *User, individual *IndividualProfile, company *CompanyProfile) error {
	if individual != nil && individual.SponsorID != nil && *individual.SponsorID == u.ID {
		return common.ErrSelfSponsor
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("signup tx begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, user_type, phone_number,
		                   address, country, state, city, status, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, u.ID, u.Email, u.Name, u.PasswordHash, u.UserType, u.PhoneNumber,
		u.Address, u.Country, u.State, u.City, u.Status, u.IsStaff)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrEmailTaken
		}
		return fmt.Errorf("user insert: %w", err)
	}

	switch {
	case individual != nil:
		_, err = tx.Exec(ctx, `
			INSERT INTO individual_profiles (user_id, gender, sponsor_id, rank, membership_type)
			VALUES ($1, $2, $3, $4, $5)
		`, u.ID, individual.Gender, individual.SponsorID, individual.Rank, individual.MembershipType)
		if err != nil {
			return fmt.Errorf("individual profile insert: %w", err)
		}
	case company != nil:
		_, err = tx.Exec(ctx, `
			INSERT INTO company_profiles (user_id, company_registration_number)
			VALUES ($1, $2)
		`, u.ID, company.CompanyRegistrationNumber)
		if err != nil {
			return fmt.Errorf("company profile insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID returns the user with the given id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	return u, nil
}

// GetByEmail returns the user with the given email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	return u, nil
}

// GetIndividualProfile returns the individual profile for the user.
func (r *Repository) GetIndividualProfile(ctx context.Context, userID uuid.UUID) (*IndividualProfile, error) {
	var p IndividualProfile
	err := r.db.QueryRow(ctx, `
		SELECT user_id, gender, sponsor_id, rank, membership_type
		FROM individual_profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Gender, &p.SponsorID, &p.Rank, &p.MembershipType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("individual profile lookup: %w", err)
	}
	return &p, nil
}

// SetStatus updates the user's approval status and returns the previous
// status. The row is locked for the duration so two racing transitions
// cannot both observe the same previous value.
func (r *Repository) SetStatus(ctx context.Context, userID uuid.UUID, status string) (previous string, err error) {
	err = r.db.QueryRow(ctx, `
		UPDATE users u
		SET status = $2, updated_at = NOW()
		FROM (SELECT id, status FROM users WHERE id = $1 FOR UPDATE) old
		WHERE u.id = old.id
		RETURNING old.status
	`, userID, status).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", common.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("status update: %w", err)
	}
	return previous, nil
}

// UpdateContact updates the mutable contact fields of a user.
func (r *Repository) UpdateContact(ctx context.Context, userID uuid.UUID, phone, address, country, state, city string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET phone_number = $2, address = $3, country = $4, state = $5, city = $6, updated_at = NOW()
		WHERE id = $1
	`, userID, phone, address, country, state, city)
	if err != nil {
		return fmt.Errorf("contact update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// SetActive enables or disables an account.
func (r *Repository) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, userID, active)
	if err != nil {
		return fmt.Errorf("active update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// ListSponsored returns the individual profiles sponsored by the user.
func (r *Repository) ListSponsored(ctx context.Context, sponsorID uuid.UUID) ([]*IndividualProfile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, gender, sponsor_id, rank, membership_type
		FROM individual_profiles
		WHERE sponsor_id = $1
	`, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("sponsored list: %w", err)
	}
	defer rows.Close()

	var out []*IndividualProfile
	for rows.Next() {
		var p IndividualProfile
		if err := rows.Scan(&p.UserID, &p.Gender, &p.SponsorID, &p.Rank, &p.MembershipType); err != nil {
			return nil, fmt.Errorf("sponsored scan: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
