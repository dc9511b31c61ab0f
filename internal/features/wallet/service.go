// Package wallet: service.go holds the deposit / payout business logic.
package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/common"
	"github.com/globalcluster/referral-backend/internal/monitoring"
)

// Store is the storage surface the service needs. *Repository implements
// it; tests use an in-memory fake.
type Store interface {
	EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	CreateTransaction(ctx context.Context, walletID int64, txType string, amount decimal.Decimal, status, reference string) (*WalletTransaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*WalletTransaction, error)
	SetTransactionStatus(ctx context.Context, id int64, status string) error
	Balance(ctx context.Context, walletID int64) (decimal.Decimal, error)
	DebitForPayout(ctx context.Context, walletID int64, amount decimal.Decimal, reference string) (*WalletTransaction, error)
	ListTransactions(ctx context.Context, walletID int64, limit int) ([]*WalletTransaction, error)
	ListPendingDepositsOlderThan(ctx context.Context, cutoff time.Time) ([]*WalletTransaction, error)
	RecordPayment(ctx context.Context, p *PaymentRecord) error
	ListPayments(ctx context.Context, userID uuid.UUID, limit int) ([]*PaymentRecord, error)
}

// Service manages wallets, deposits and payouts.
type Service struct {
	repo     Store
	gateway  Gateway
	currency string
}

// NewService creates the wallet service.
func NewService(repo Store, gateway Gateway, currency string) *Service {
	return &Service{repo: repo, gateway: gateway, currency: currency}
}

// GetWallet returns the user's wallet, creating it on first access.
func (s *Service) GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	return s.repo.EnsureWallet(ctx, userID, s.currency)
}

// Balance returns the user's current wallet balance.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.repo.Balance(ctx, w.ID)
}

// Deposit initializes a deposit at the gateway and records it pending. The
// user completes payment at the returned authorization URL; VerifyDeposit
// settles it.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, email string, amount decimal.Decimal) (*DepositIntent, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}

	w, err := s.repo.EnsureWallet(ctx, userID, s.currency)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.InitializeDeposit(ctx, email, amount, w.Currency)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.CreateTransaction(ctx, w.ID, TxTypeDeposit, amount, TxStatusPending, intent.Reference); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"amount":    amount.StringFixed(2),
		"reference": intent.Reference,
	}).Info("Deposit initialized")
	return intent, nil
}

// VerifyDeposit checks a pending deposit against the gateway and settles
// it. Verifying an already settled deposit is a no-op returning the stored
// transaction, so re-verification can never double-credit.
func (s *Service) VerifyDeposit(ctx context.Context, reference string) (*WalletTransaction, error) {
	t, err := s.repo.GetTransactionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if t.Status != TxStatusPending {
		return t, nil
	}

	result, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		monitoring.DepositVerificationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	switch result.Status {
	case "success":
		if err := s.repo.SetTransactionStatus(ctx, t.ID, TxStatusSuccess); err != nil {
			return nil, err
		}
		t.Status = TxStatusSuccess
		monitoring.DepositVerificationsTotal.WithLabelValues("success").Inc()
		log.WithField("reference", reference).Info("Deposit confirmed")
	case "failed", "abandoned":
		if err := s.repo.SetTransactionStatus(ctx, t.ID, TxStatusFailed); err != nil {
			return nil, err
		}
		t.Status = TxStatusFailed
		monitoring.DepositVerificationsTotal.WithLabelValues("failed").Inc()
	default:
		// Still processing at the gateway; leave the row pending.
		monitoring.DepositVerificationsTotal.WithLabelValues("pending").Inc()
	}
	return t, nil
}

// Payout sends money out through the gateway. The funds are debited first
// inside one locked repository transaction (balance check plus withdrawal
// insert), so concurrent payouts serialize and the balance cannot go
// negative; a transfer the gateway refuses voids the debit.
func (s *Service) Payout(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, recipientCode, reason string) (*WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}

	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reference := "wd_" + uuid.NewString()
	t, err := s.repo.DebitForPayout(ctx, w.ID, amount, reference)
	if err != nil {
		return nil, err
	}

	gatewayRef, err := s.gateway.Payout(ctx, amount, recipientCode, reason)
	if err != nil {
		if voidErr := s.repo.SetTransactionStatus(ctx, t.ID, TxStatusFailed); voidErr != nil {
			log.WithError(voidErr).WithField("reference", reference).Error("Payout debit reversal failed")
		}
		return nil, err
	}

	record := &PaymentRecord{
		ID:            uuid.New(),
		UserID:        userID,
		ReferenceID:   gatewayRef,
		Amount:        amount,
		PaymentMethod: PaymentMethodBankTransfer,
		Status:        PaymentStatusApproved,
	}
	if err := s.repo.RecordPayment(ctx, record); err != nil {
		// The money already moved; losing the audit row is log-worthy but
		// must not fail the payout.
		log.WithError(err).WithField("reference", reference).Error("Payment record insert failed")
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"amount":    amount.StringFixed(2),
		"reference": reference,
	}).Info("Payout sent")
	return t, nil
}

// ListPayments returns the user's payment audit records.
func (s *Service) ListPayments(ctx context.Context, userID uuid.UUID, limit int) ([]*PaymentRecord, error) {
	return s.repo.ListPayments(ctx, userID, limit)
}

// ListTransactions returns the user's latest wallet transactions.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*WalletTransaction, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, w.ID, limit)
}

// ListBanks returns the gateway's bank directory.
func (s *Service) ListBanks(ctx context.Context) ([]Bank, error) {
	return s.gateway.ListBanks(ctx)
}

// ResolveAccount resolves a bank account through the gateway.
func (s *Service) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*AccountInfo, error) {
	return s.gateway.ResolveAccount(ctx, accountNumber, bankCode)
}

// SweepPendingDeposits re-verifies deposits that have sat pending longer
// than minAge. Run hourly by the scheduler; verification errors are logged
// and skipped so one stuck reference does not stall the sweep.
func (s *Service) SweepPendingDeposits(ctx context.Context, minAge time.Duration) error {
	cutoff := time.Now().Add(-minAge)
	pending, err := s.repo.ListPendingDepositsOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, t := range pending {
		if _, err := s.VerifyDeposit(ctx, t.GatewayReference); err != nil {
			log.WithError(err).WithField("reference", t.GatewayReference).Warn("Deposit sweep verification failed")
		}
	}

	if len(pending) > 0 {
		log.WithField("checked", len(pending)).Info("Pending deposit sweep finished")
	}
	return nil
}
