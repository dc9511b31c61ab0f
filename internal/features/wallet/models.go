// Package wallet manages per-user wallets and the deposit / payout flow
// against the external payment gateway.
// models.go describes the stored structures.
package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet transaction types
const (
	TxTypeDeposit  = "deposit"
	TxTypeTransfer = "transfer"
	TxTypeWithdraw = "withdraw"
)

// Wallet transaction statuses. Only successful rows count toward the
// balance.
const (
	TxStatusPending = "pending"
	TxStatusSuccess = "success"
	TxStatusFailed  = "failed"
)

// Payment record methods and statuses
const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"

	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusDeclined = "declined"
)

// Wallet is one user's wallet. Every user has at most one.
type Wallet struct {
	ID        int64     `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Currency  string    `db:"currency" json:"currency"` // ISO code, NGN by default
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WalletTransaction is one movement on a wallet. Deposits are created
// pending and flipped to success once the gateway confirms them.
type WalletTransaction struct {
	ID               int64           `db:"id" json:"id"`
	WalletID         int64           `db:"wallet_id" json:"wallet_id"`
	TransactionType  string          `db:"transaction_type" json:"transaction_type"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Status           string          `db:"status" json:"status"`
	GatewayReference string          `db:"gateway_reference" json:"gateway_reference"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// PaymentRecord is the user-facing audit row kept for every accepted
// payout, with its own unique reference. Wallet transactions drive the
// balance; payment records are what statements show.
type PaymentRecord struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	ReferenceID   string          `db:"reference_id" json:"reference_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	Status        string          `db:"status" json:"status"`
	Date          time.Time       `db:"date" json:"date"`
}

// DepositIntent is what the gateway returns when a deposit is initialized:
// the reference to verify later and the URL the user completes payment at.
type DepositIntent struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// VerifyResult is the gateway's view of a transaction.
type VerifyResult struct {
	Reference string
	Status    string // "success", "failed", "abandoned", ...
	Amount    decimal.Decimal
	Currency  string
}

// Bank is one entry of the gateway's bank directory.
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// AccountInfo is a resolved bank account.
type AccountInfo struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}
