// Package wallet: repository.go runs all queries against wallets and
// wallet_transactions. Balance is derived from successful transactions,
// never stored, so a re-verified deposit can never double-credit.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/globalcluster/referral-backend/internal/common"
)

// Repository provides storage for wallets and their transactions.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new wallet repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureWallet guarantees the user has a wallet row and returns it.
func (r *Repository) EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*Wallet, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wallets (user_id, currency) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, currency)
	if err != nil {
		return nil, fmt.Errorf("wallet create: %w", err)
	}
	return r.GetByUserID(ctx, userID)
}

// GetByUserID returns the user's wallet.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, currency, created_at FROM wallets WHERE user_id = $1
	`, userID).Scan(&w.ID, &w.UserID, &w.Currency, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("wallet lookup: %w", err)
	}
	return &w, nil
}

// CreateTransaction records a wallet movement.
func (r *Repository) CreateTransaction(ctx context.Context, walletID int64, txType string, amount decimal.Decimal, status, reference string) (*WalletTransaction, error) {
	var t WalletTransaction
	var amountRaw string
	err := r.db.QueryRow(ctx, `
		INSERT INTO wallet_transactions (wallet_id, transaction_type, amount, status, gateway_reference)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING id, wallet_id, transaction_type, amount::text, status, gateway_reference, created_at
	`, walletID, txType, amount.StringFixed(2), status, reference).Scan(
		&t.ID, &t.WalletID, &t.TransactionType, &amountRaw, &t.Status, &t.GatewayReference, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("wallet transaction insert: %w", err)
	}
	if t.Amount, err = decimal.NewFromString(amountRaw); err != nil {
		return nil, fmt.Errorf("wallet amount parse: %w", err)
	}
	return &t, nil
}

// GetTransactionByReference returns the wallet transaction recorded for a
// gateway reference.
func (r *Repository) GetTransactionByReference(ctx context.Context, reference string) (*WalletTransaction, error) {
	var t WalletTransaction
	var amountRaw string
	err := r.db.QueryRow(ctx, `
		SELECT id, wallet_id, transaction_type, amount::text, status, gateway_reference, created_at
		FROM wallet_transactions
		WHERE gateway_reference = $1
	`, reference).Scan(&t.ID, &t.WalletID, &t.TransactionType, &amountRaw, &t.Status, &t.GatewayReference, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("wallet transaction lookup: %w", err)
	}
	if t.Amount, err = decimal.NewFromString(amountRaw); err != nil {
		return nil, fmt.Errorf("wallet amount parse: %w", err)
	}
	return &t, nil
}

// SetTransactionStatus updates a transaction's status.
func (r *Repository) SetTransactionStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE wallet_transactions SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("wallet transaction update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTransactionNotFound
	}
	return nil
}

const balanceQuery = `
	SELECT COALESCE(SUM(
		CASE WHEN transaction_type = 'deposit' THEN amount ELSE -amount END
	), 0)::text
	FROM wallet_transactions
	WHERE wallet_id = $1 AND status = 'success'`

// Balance computes the wallet balance: successful deposits minus
// successful withdrawals and transfers out.
func (r *Repository) Balance(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	var raw string
	if err := r.db.QueryRow(ctx, balanceQuery, walletID).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("balance query: %w", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance parse: %w", err)
	}
	return balance, nil
}

// DebitForPayout checks the balance and records the withdrawal in one
// transaction. The advisory lock keyed on the wallet serializes concurrent
// payouts, so two of them can never both spend the same funds.
func (r *Repository) DebitForPayout(ctx context.Context, walletID int64, amount decimal.Decimal, reference string) (*WalletTransaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("payout tx begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended('wallet:' || $1::text, 0))`, walletID)
	if err != nil {
		return nil, fmt.Errorf("wallet lock: %w", err)
	}

	var raw string
	if err := tx.QueryRow(ctx, balanceQuery, walletID).Scan(&raw); err != nil {
		return nil, fmt.Errorf("balance query: %w", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("balance parse: %w", err)
	}
	if balance.LessThan(amount) {
		return nil, common.ErrInsufficientBalance
	}

	var t WalletTransaction
	var amountRaw string
	err = tx.QueryRow(ctx, `
		INSERT INTO wallet_transactions (wallet_id, transaction_type, amount, status, gateway_reference)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING id, wallet_id, transaction_type, amount::text, status, gateway_reference, created_at
	`, walletID, TxTypeWithdraw, amount.StringFixed(2), TxStatusSuccess, reference).Scan(
		&t.ID, &t.WalletID, &t.TransactionType, &amountRaw, &t.Status, &t.GatewayReference, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("withdrawal insert: %w", err)
	}
	if t.Amount, err = decimal.NewFromString(amountRaw); err != nil {
		return nil, fmt.Errorf("wallet amount parse: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTransactions returns the latest transactions of a wallet.
func (r *Repository) ListTransactions(ctx context.Context, walletID int64, limit int) ([]*WalletTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, wallet_id, transaction_type, amount::text, status, gateway_reference, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("wallet transactions list: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListPendingDepositsOlderThan returns pending deposits created before the
// cutoff. Used by the hourly sweep to re-verify stuck deposits.
func (r *Repository) ListPendingDepositsOlderThan(ctx context.Context, cutoff time.Time) ([]*WalletTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, wallet_id, transaction_type, amount::text, status, gateway_reference, created_at
		FROM wallet_transactions
		WHERE transaction_type = 'deposit' AND status = 'pending' AND created_at < $1
		ORDER BY created_at
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("pending deposits list: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// RecordPayment inserts a payment audit row.
func (r *Repository) RecordPayment(ctx context.Context, p *PaymentRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions (id, user_id, reference_id, amount, payment_method, status)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
	`, p.ID, p.UserID, p.ReferenceID, p.Amount.StringFixed(2), p.PaymentMethod, p.Status)
	if err != nil {
		return fmt.Errorf("payment record insert: %w", err)
	}
	return nil
}

// ListPayments returns the user's latest payment records.
func (r *Repository) ListPayments(ctx context.Context, userID uuid.UUID, limit int) ([]*PaymentRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, reference_id, amount::text, payment_method, status, date
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("payment records list: %w", err)
	}
	defer rows.Close()

	var out []*PaymentRecord
	for rows.Next() {
		var p PaymentRecord
		var amountRaw string
		if err := rows.Scan(&p.ID, &p.UserID, &p.ReferenceID, &amountRaw, &p.PaymentMethod, &p.Status, &p.Date); err != nil {
			return nil, fmt.Errorf("payment record scan: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amountRaw); err != nil {
			return nil, fmt.Errorf("payment amount parse: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func scanTransactions(rows pgx.Rows) ([]*WalletTransaction, error) {
	var out []*WalletTransaction
	for rows.Next() {
		var t WalletTransaction
		var amountRaw string
		if err := rows.Scan(&t.ID, &t.WalletID, &t.TransactionType, &amountRaw, &t.Status, &t.GatewayReference, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("wallet transaction scan: %w", err)
		}
		amount, err := decimal.NewFromString(amountRaw)
		if err != nil {
			return nil, fmt.Errorf("wallet amount parse: %w", err)
		}
		t.Amount = amount
		out = append(out, &t)
	}
	return out, rows.Err()
}
