// Package common holds the sentinel errors shared by all feature modules.
// Handlers match on these to pick HTTP status codes; services return them
// untouched: no retries, no local recovery.
package common

import "errors"

// Account and referral-graph errors
var (
	// ErrUserNotFound: no user row for the given identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrProfileNotFound: user exists but has no individual profile.
	ErrProfileNotFound = errors.New("individual profile not found")
	// ErrEmailTaken: signup with an email that is already registered.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrSelfSponsor: a profile may not name itself as its sponsor.
	ErrSelfSponsor = errors.New("a profile cannot sponsor itself")
	// ErrInvalidStatus: status value outside pending/approved/rejected.
	ErrInvalidStatus = errors.New("invalid status")
)

// Wallet and payment errors
var (
	// ErrWalletNotFound: user has no wallet yet.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrInsufficientBalance: payout larger than the wallet balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrInvalidAmount: zero or negative monetary amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrTransactionNotFound: no transaction for the given reference.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Ticket and permission errors
var (
	// ErrTicketNotFound: no support ticket with the given id.
	ErrTicketNotFound = errors.New("support ticket not found")
	// ErrNotStaff: staff-only operation attempted by a regular user.
	ErrNotStaff = errors.New("staff privileges required")
	// ErrForbidden: resource belongs to another user.
	ErrForbidden = errors.New("not allowed to access this resource")
)

// Product and share-request errors
var (
	// ErrProductNotFound: no product with the given id.
	ErrProductNotFound = errors.New("product not found")
	// ErrShareRequestNotFound: no share request with the given id.
	ErrShareRequestNotFound = errors.New("share request not found")
	// ErrNoPendingShares: approval would drive pending_shares negative.
	ErrNoPendingShares = errors.New("product has no pending shares")
)
