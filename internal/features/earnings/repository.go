// Package earnings: repository.go runs all queries against earnings_types,
// user_earnings and the referral graph. NUMERIC values travel as text and
// are parsed into decimals so no float ever touches a monetary amount.
package earnings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/globalcluster/referral-backend/internal/db/postgres"
)

// Repository provides storage for the bonus engine and reporting. A
// Repository built by NewRepository runs on the pool; Atomically derives a
// transaction-scoped view of itself for the engine's two-row upsert.
type Repository struct {
	pool *pgxpool.Pool
	db   postgres.Querier
}

// NewRepository creates a new earnings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

// Atomically runs fn against a transaction-scoped repository. The
// transaction first takes an advisory lock keyed on the sponsor, so
// concurrent recomputations for the same sponsor serialize instead of
// overwriting each other's counts.
func (r *Repository) Atomically(ctx context.Context, sponsorID uuid.UUID, fn func(Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("bonus tx begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, sponsorID)
	if err != nil {
		return fmt.Errorf("sponsor lock: %w", err)
	}

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ProfileExists reports whether an individual profile exists for the user.
func (r *Repository) ProfileExists(ctx context.Context, profileID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM individual_profiles WHERE user_id = $1)`, profileID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("profile lookup: %w", err)
	}
	return exists, nil
}

// CountApprovedReferrals counts the profiles sponsored by sponsorID whose
// user is currently approved. Status is read at call time; there is no
// snapshotting.
func (r *Repository) CountApprovedReferrals(ctx context.Context, sponsorID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM individual_profiles ip
		JOIN users u ON u.id = ip.user_id
		WHERE ip.sponsor_id = $1 AND u.status = 'approved'
	`, sponsorID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("approved referral count: %w", err)
	}
	return n, nil
}

// GetOrCreateType resolves an earnings type by name, creating it with the
// defaults (amount 0.00, enabled) on first use.
func (r *Repository) GetOrCreateType(ctx context.Context, name string) (*EarningsType, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO earnings_types (bonus_name) VALUES ($1)
		ON CONFLICT (bonus_name) DO NOTHING
	`, name)
	if err != nil {
		return nil, fmt.Errorf("earnings type create: %w", err)
	}

	return r.getTypeByName(ctx, name)
}

func (r *Repository) getTypeByName(ctx context.Context, name string) (*EarningsType, error) {
	var (
		t         EarningsType
		amountRaw string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, bonus_name, amount::text, status, created_on
		FROM earnings_types
		WHERE bonus_name = $1
	`, name).Scan(&t.ID, &t.BonusName, &amountRaw, &t.Status, &t.CreatedOn)
	if err != nil {
		return nil, fmt.Errorf("earnings type lookup (%s): %w", name, err)
	}
	t.Amount, err = decimal.NewFromString(amountRaw)
	if err != nil {
		return nil, fmt.Errorf("earnings type amount parse: %w", err)
	}
	return &t, nil
}

// UpsertEntry writes the ledger row for (profile, type). An existing row
// keeps its date; amount and description are overwritten, never added to.
func (r *Repository) UpsertEntry(ctx context.Context, profileID uuid.UUID, typeID int64, amount decimal.Decimal, description string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_earnings (individual_profile_id, earnings_type_id, amount, description)
		VALUES ($1, $2, $3::numeric, $4)
		ON CONFLICT (individual_profile_id, earnings_type_id)
		DO UPDATE SET amount = EXCLUDED.amount, description = EXCLUDED.description
	`, profileID, typeID, amount.StringFixed(2), description)
	if err != nil {
		return fmt.Errorf("ledger upsert: %w", err)
	}
	return nil
}

// ListTypes returns every known earnings type.
func (r *Repository) ListTypes(ctx context.Context) ([]*EarningsType, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, bonus_name, amount::text, status, created_on
		FROM earnings_types
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("earnings types list: %w", err)
	}
	defer rows.Close()

	var types []*EarningsType
	for rows.Next() {
		var (
			t         EarningsType
			amountRaw string
		)
		if err := rows.Scan(&t.ID, &t.BonusName, &amountRaw, &t.Status, &t.CreatedOn); err != nil {
			return nil, fmt.Errorf("earnings type scan: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amountRaw); err != nil {
			return nil, fmt.Errorf("earnings type amount parse: %w", err)
		}
		types = append(types, &t)
	}
	return types, rows.Err()
}

// EntriesByProfile returns every ledger entry owned by the profile.
func (r *Repository) EntriesByProfile(ctx context.Context, profileID uuid.UUID) ([]*LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, individual_profile_id, earnings_type_id, amount::text, description, date
		FROM user_earnings
		WHERE individual_profile_id = $1
		ORDER BY id
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("ledger entries list: %w", err)
	}
	defer rows.Close()

	var entries []*LedgerEntry
	for rows.Next() {
		var (
			e         LedgerEntry
			amountRaw string
		)
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.TypeID, &amountRaw, &e.Description, &e.Date); err != nil {
			return nil, fmt.Errorf("ledger entry scan: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amountRaw); err != nil {
			return nil, fmt.Errorf("ledger amount parse: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
