// Package referrals: repository.go runs all queries against products,
// share_requests and user_rankings. Share approval touches two tables and
// runs in a DB transaction.
package referrals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/globalcluster/referral-backend/internal/common"
)

// Repository provides storage for products, share requests and rankings.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new referrals repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, product_name, company_id, description, product_value,
	product_link, status, shares, traffic, pending_shares, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ProductName, &p.CompanyID, &p.Description, &p.ProductValue,
		&p.ProductLink, &p.Status, &p.Shares, &p.Traffic, &p.PendingShares,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct inserts a new product.
func (r *Repository) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, product_name, company_id, description, product_value, product_link, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.ProductName, p.CompanyID, p.Description, p.ProductValue, p.ProductLink, p.Status)
	if err != nil {
		return fmt.Errorf("product insert: %w", err)
	}
	return nil
}

// GetProduct returns one product.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("product lookup: %w", err)
	}
	return p, nil
}

// ListProducts returns products, optionally filtered by status.
func (r *Repository) ListProducts(ctx context.Context, status string) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	args := []any{}
	if status != "" {
		query = `SELECT ` + productColumns + ` FROM products WHERE status = $1 ORDER BY created_at DESC`
		args = append(args, status)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("products list: %w", err)
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("product scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetProductStatus updates a product's status.
func (r *Repository) SetProductStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("product update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrProductNotFound
	}
	return nil
}

// IncrementTraffic bumps a product's traffic counter.
func (r *Repository) IncrementTraffic(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET traffic = traffic + 1, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("traffic update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrProductNotFound
	}
	return nil
}

// CreateShareRequest records a pending share and bumps the product's
// pending counter, atomically.
func (r *Repository) CreateShareRequest(ctx context.Context, userID, productID uuid.UUID) (*ShareRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("share request tx begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var req ShareRequest
	err = tx.QueryRow(ctx, `
		INSERT INTO share_requests (user_id, product_id)
		VALUES ($1, $2)
		RETURNING id, user_id, product_id, status, date_requested
	`, userID, productID).Scan(&req.ID, &req.UserID, &req.ProductID, &req.Status, &req.DateRequested)
	if err != nil {
		return nil, fmt.Errorf("share request insert: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE products SET pending_shares = pending_shares + 1, updated_at = NOW() WHERE id = $1
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("pending shares update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrProductNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &req, nil
}

// ApproveShareRequest marks the request approved and moves one pending
// share into the product's confirmed count. One DB transaction: either the
// request and both counters change together or nothing does.
func (r *Repository) ApproveShareRequest(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("share approval tx begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var productID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE share_requests SET status = 'approved'
		WHERE id = $1 AND status = 'pending'
		RETURNING product_id
	`, id).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrShareRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("share request update: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET shares = shares + 1, pending_shares = pending_shares - 1, updated_at = NOW()
		WHERE id = $1 AND pending_shares > 0
	`, productID)
	if err != nil {
		return fmt.Errorf("share counters update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNoPendingShares
	}

	return tx.Commit(ctx)
}

// RejectShareRequest marks the request rejected and releases its pending
// share.
func (r *Repository) RejectShareRequest(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("share rejection tx begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var productID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE share_requests SET status = 'rejected'
		WHERE id = $1 AND status = 'pending'
		RETURNING product_id
	`, id).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrShareRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("share request update: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE products SET pending_shares = GREATEST(pending_shares - 1, 0), updated_at = NOW()
		WHERE id = $1
	`, productID)
	if err != nil {
		return fmt.Errorf("pending shares update: %w", err)
	}

	return tx.Commit(ctx)
}

// ApprovedRecruitCounts returns, for every individual with a sponsor, the
// sponsor and the number of their approved recruits. Feed for the nightly
// ranking recompute.
func (r *Repository) ApprovedRecruitCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ip.sponsor_id, COUNT(*)
		FROM individual_profiles ip
		JOIN users u ON u.id = ip.user_id
		WHERE ip.sponsor_id IS NOT NULL AND u.status = 'approved'
		GROUP BY ip.sponsor_id
	`)
	if err != nil {
		return nil, fmt.Errorf("recruit counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var sponsor uuid.UUID
		var n int
		if err := rows.Scan(&sponsor, &n); err != nil {
			return nil, fmt.Errorf("recruit count scan: %w", err)
		}
		counts[sponsor] = n
	}
	return counts, rows.Err()
}

// UpsertRanking writes a member's ranking row, keyed by user.
func (r *Repository) UpsertRanking(ctx context.Context, userID uuid.UUID, name string, rankLevel, totalRecruits, bonus int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_rankings (user_id, name, rank_level, total_recruits, bonus)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET name = EXCLUDED.name, rank_level = EXCLUDED.rank_level,
		              total_recruits = EXCLUDED.total_recruits, bonus = EXCLUDED.bonus
	`, userID, name, rankLevel, totalRecruits, bonus)
	if err != nil {
		return fmt.Errorf("ranking upsert: %w", err)
	}
	return nil
}

// GetRanking returns a member's ranking row.
func (r *Repository) GetRanking(ctx context.Context, userID uuid.UUID) (*UserRanking, error) {
	var rk UserRanking
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, rank_level, total_recruits, bonus, status, date
		FROM user_rankings WHERE user_id = $1
	`, userID).Scan(&rk.ID, &rk.UserID, &rk.Name, &rk.RankLevel, &rk.TotalRecruits,
		&rk.Bonus, &rk.Status, &rk.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ranking lookup: %w", err)
	}
	return &rk, nil
}

// ListRankings returns every enabled ranking, highest level first.
func (r *Repository) ListRankings(ctx context.Context) ([]*UserRanking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, name, rank_level, total_recruits, bonus, status, date
		FROM user_rankings
		WHERE status = 'enabled'
		ORDER BY rank_level DESC, total_recruits DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("rankings list: %w", err)
	}
	defer rows.Close()

	var out []*UserRanking
	for rows.Next() {
		var rk UserRanking
		if err := rows.Scan(&rk.ID, &rk.UserID, &rk.Name, &rk.RankLevel, &rk.TotalRecruits,
			&rk.Bonus, &rk.Status, &rk.Date); err != nil {
			return nil, fmt.Errorf("ranking scan: %w", err)
		}
		out = append(out, &rk)
	}
	return out, rows.Err()
}
