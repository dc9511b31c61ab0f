package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalcluster/referral-backend/internal/common"
)

// fakeWalletRepo keeps wallets and transactions in memory. The mutex
// mirrors the repository's per-wallet serialization of payout debits.
type fakeWalletRepo struct {
	mu       sync.Mutex
	wallets  map[uuid.UUID]*Wallet
	txs      []*WalletTransaction
	payments []*PaymentRecord
	nextID   int64
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[uuid.UUID]*Wallet), nextID: 1}
}

func (f *fakeWalletRepo) EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*Wallet, error) {
	if w, ok := f.wallets[userID]; ok {
		return w, nil
	}
	w := &Wallet{ID: f.nextID, UserID: userID, Currency: currency}
	f.nextID++
	f.wallets[userID] = w
	return w, nil
}

func (f *fakeWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	w, ok := f.wallets[userID]
	if !ok {
		return nil, common.ErrWalletNotFound
	}
	return w, nil
}

func (f *fakeWalletRepo) CreateTransaction(ctx context.Context, walletID int64, txType string, amount decimal.Decimal, status, reference string) (*WalletTransaction, error) {
	t := &WalletTransaction{
		ID:               f.nextID,
		WalletID:         walletID,
		TransactionType:  txType,
		Amount:           amount,
		Status:           status,
		GatewayReference: reference,
		CreatedAt:        time.Now(),
	}
	f.nextID++
	f.txs = append(f.txs, t)
	return t, nil
}

func (f *fakeWalletRepo) GetTransactionByReference(ctx context.Context, reference string) (*WalletTransaction, error) {
	for _, t := range f.txs {
		if t.GatewayReference == reference {
			return t, nil
		}
	}
	return nil, common.ErrTransactionNotFound
}

func (f *fakeWalletRepo) SetTransactionStatus(ctx context.Context, id int64, status string) error {
	for _, t := range f.txs {
		if t.ID == id {
			t.Status = status
			return nil
		}
	}
	return common.ErrTransactionNotFound
}

func (f *fakeWalletRepo) Balance(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, t := range f.txs {
		if t.WalletID != walletID || t.Status != TxStatusSuccess {
			continue
		}
		if t.TransactionType == TxTypeDeposit {
			balance = balance.Add(t.Amount)
		} else {
			balance = balance.Sub(t.Amount)
		}
	}
	return balance, nil
}

func (f *fakeWalletRepo) DebitForPayout(ctx context.Context, walletID int64, amount decimal.Decimal, reference string) (*WalletTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, err := f.Balance(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, common.ErrInsufficientBalance
	}
	return f.CreateTransaction(ctx, walletID, TxTypeWithdraw, amount, TxStatusSuccess, reference)
}

func (f *fakeWalletRepo) ListTransactions(ctx context.Context, walletID int64, limit int) ([]*WalletTransaction, error) {
	var out []*WalletTransaction
	for _, t := range f.txs {
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeWalletRepo) ListPendingDepositsOlderThan(ctx context.Context, cutoff time.Time) ([]*WalletTransaction, error) {
	var out []*WalletTransaction
	for _, t := range f.txs {
		if t.TransactionType == TxTypeDeposit && t.Status == TxStatusPending && t.CreatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeWalletRepo) RecordPayment(ctx context.Context, p *PaymentRecord) error {
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeWalletRepo) ListPayments(ctx context.Context, userID uuid.UUID, limit int) ([]*PaymentRecord, error) {
	var out []*PaymentRecord
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeGateway answers with canned statuses and counts calls.
type fakeGateway struct {
	mu           sync.Mutex
	initCalls    int
	verifyCalls  int
	verifyStatus string
	payoutCalls  int
	payoutErr    error
}

func (f *fakeGateway) InitializeDeposit(ctx context.Context, email string, amount decimal.Decimal, currency string) (*DepositIntent, error) {
	f.initCalls++
	ref := fmt.Sprintf("ref-%d", f.initCalls)
	return &DepositIntent{Reference: ref, AuthorizationURL: "https://pay.example.com/" + ref, AccessCode: "ac_" + ref}, nil
}

func (f *fakeGateway) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	f.verifyCalls++
	return &VerifyResult{Reference: reference, Status: f.verifyStatus}, nil
}

func (f *fakeGateway) ListBanks(ctx context.Context) ([]Bank, error) {
	return []Bank{{Name: "First Bank", Code: "011"}}, nil
}

func (f *fakeGateway) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*AccountInfo, error) {
	return &AccountInfo{AccountNumber: accountNumber, AccountName: "ADA LOVELACE"}, nil
}

func (f *fakeGateway) Payout(ctx context.Context, amount decimal.Decimal, recipientCode, reason string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payoutErr != nil {
		return "", f.payoutErr
	}
	f.payoutCalls++
	return fmt.Sprintf("payout-%d", f.payoutCalls), nil
}

func TestDepositCreatesPendingTransaction(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{}
	svc := NewService(repo, gw, "NGN")
	user := uuid.New()

	intent, err := svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("5000.00"))
	require.NoError(t, err)
	assert.NotEmpty(t, intent.AuthorizationURL)

	tx, err := repo.GetTransactionByReference(context.Background(), intent.Reference)
	require.NoError(t, err)
	assert.Equal(t, TxStatusPending, tx.Status)
	assert.Equal(t, TxTypeDeposit, tx.TransactionType)

	// Pending money is not spendable.
	balance, err := svc.Balance(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(newFakeWalletRepo(), &fakeGateway{}, "NGN")

	_, err := svc.Deposit(context.Background(), uuid.New(), "ada@example.com", decimal.Zero)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	_, err = svc.Deposit(context.Background(), uuid.New(), "ada@example.com", decimal.RequireFromString("-10"))
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestVerifyDepositSettlesOnce(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{verifyStatus: "success"}
	svc := NewService(repo, gw, "NGN")
	user := uuid.New()

	intent, err := svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("5000.00"))
	require.NoError(t, err)

	tx, err := svc.VerifyDeposit(context.Background(), intent.Reference)
	require.NoError(t, err)
	assert.Equal(t, TxStatusSuccess, tx.Status)

	balance, err := svc.Balance(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "5000.00", balance.StringFixed(2))

	// Re-verifying a settled deposit never hits the gateway again and
	// never double-credits.
	_, err = svc.VerifyDeposit(context.Background(), intent.Reference)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.verifyCalls)

	balance, err = svc.Balance(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "5000.00", balance.StringFixed(2))
}

func TestVerifyDepositFailedStaysUncredited(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{verifyStatus: "abandoned"}
	svc := NewService(repo, gw, "NGN")
	user := uuid.New()

	intent, err := svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	tx, err := svc.VerifyDeposit(context.Background(), intent.Reference)
	require.NoError(t, err)
	assert.Equal(t, TxStatusFailed, tx.Status)

	balance, err := svc.Balance(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestVerifyDepositStillProcessing(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{verifyStatus: "ongoing"}
	svc := NewService(repo, gw, "NGN")

	intent, err := svc.Deposit(context.Background(), uuid.New(), "ada@example.com", decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	tx, err := svc.VerifyDeposit(context.Background(), intent.Reference)
	require.NoError(t, err)
	assert.Equal(t, TxStatusPending, tx.Status)
}

func TestPayoutInsufficientBalance(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{verifyStatus: "success"}
	svc := NewService(repo, gw, "NGN")
	user := uuid.New()

	intent, err := svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("1000.00"))
	require.NoError(t, err)
	_, err = svc.VerifyDeposit(context.Background(), intent.Reference)
	require.NoError(t, err)

	_, err = svc.Payout(context.Background(), user, decimal.RequireFromString("1500.00"), "RCP_1", "cashout")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, 0, gw.payoutCalls)
}

func TestPayoutDebitsBalance(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{verifyStatus: "success"}
	svc := NewService(repo, gw, "NGN")
	user := uuid.New()

	intent, err := svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("1000.00"))
	require.NoError(t, err)
	_, err = svc.VerifyDeposit(context.Background(), intent.Reference)
	require.NoError(t, err)

	tx, err := svc.Payout(context.Background(), user, decimal.RequireFromString("400.00"), "RCP_1", "cashout")
	require.NoError(t, err)
	assert.Equal(t, TxTypeWithdraw, tx.TransactionType)
	assert.Equal(t, TxStatusSuccess, tx.Status)

	balance, err := svc.Balance(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "600.00", balance.StringFixed(2))

	// The payout leaves an audit record with the gateway's transfer
	// reference.
	records, err := svc.ListPayments(context.Background(), user, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "payout-1", records[0].ReferenceID)
	assert.Equal(t, PaymentStatusApproved, records[0].Status)
}

func TestPayoutGatewayFailureReleasesFunds(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{verifyStatus: "success", payoutErr: errors.New("transfer declined")}
	svc := NewService(repo, gw, "NGN")
	user := uuid.New()

	intent, err := svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("1000.00"))
	require.NoError(t, err)
	_, err = svc.VerifyDeposit(context.Background(), intent.Reference)
	require.NoError(t, err)

	_, err = svc.Payout(context.Background(), user, decimal.RequireFromString("400.00"), "RCP_1", "cashout")
	assert.Error(t, err)

	// The debit is voided, nothing stays withheld.
	balance, err := svc.Balance(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", balance.StringFixed(2))
}

func TestConcurrentPayoutsCannotOverdraw(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{verifyStatus: "success"}
	svc := NewService(repo, gw, "NGN")
	user := uuid.New()

	intent, err := svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	_, err = svc.VerifyDeposit(context.Background(), intent.Reference)
	require.NoError(t, err)

	// Two payouts race for the same 100.00. The locked debit lets exactly
	// one through; the other sees the spent balance.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Payout(context.Background(), user, decimal.RequireFromString("100.00"), "RCP_1", "cashout")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, common.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected payout error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 1, gw.payoutCalls)

	balance, err := svc.Balance(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "0.00", balance.StringFixed(2))
}

func TestSweepPendingDeposits(t *testing.T) {
	repo := newFakeWalletRepo()
	gw := &fakeGateway{verifyStatus: "success"}
	svc := NewService(repo, gw, "NGN")
	user := uuid.New()

	intent, err := svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("250.00"))
	require.NoError(t, err)

	// Age the transaction past the sweep cutoff.
	tx, err := repo.GetTransactionByReference(context.Background(), intent.Reference)
	require.NoError(t, err)
	tx.CreatedAt = time.Now().Add(-2 * time.Hour)

	require.NoError(t, svc.SweepPendingDeposits(context.Background(), time.Hour))
	assert.Equal(t, 1, gw.verifyCalls)

	balance, err := svc.Balance(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "250.00", balance.StringFixed(2))

	// A fresh pending deposit is left alone.
	_, err = svc.Deposit(context.Background(), user, "ada@example.com", decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	require.NoError(t, svc.SweepPendingDeposits(context.Background(), time.Hour))
	assert.Equal(t, 1, gw.verifyCalls)
}
