// Package referrals manages the shareable products companies publish, the
// share requests members file against them, and the program rankings.
// models.go describes the stored structures.
package referrals

import (
	"time"

	"github.com/google/uuid"
)

// Product statuses
const (
	ProductPending  = "pending"
	ProductActive   = "active"
	ProductDeclined = "declined"
)

// Product contact channels
const (
	ValueWhatsapp = "whatsapp"
	ValuePhone    = "phone"
	ValueWebsite  = "website"
)

// Share request statuses
const (
	SharePending  = "pending"
	ShareApproved = "approved"
	ShareRejected = "rejected"
)

// Ranking tier names, lowest to highest.
const (
	TierSilver    = "silver"
	TierSilverPro = "silver pro"
	TierGold      = "gold"
	TierGoldPro   = "gold pro"
	TierPlatinum  = "platinum"
)

// Ranking statuses
const (
	RankingEnabled  = "enabled"
	RankingDisabled = "disabled"
)

// Product is something a company publishes for members to share.
type Product struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ProductName   string    `db:"product_name" json:"product_name"`
	CompanyID     uuid.UUID `db:"company_id" json:"company_id"`
	Description   string    `db:"description" json:"description"`
	ProductValue  string    `db:"product_value" json:"product_value"` // Contact channel
	ProductLink   string    `db:"product_link" json:"product_link"`
	Status        string    `db:"status" json:"status"`
	Shares        int       `db:"shares" json:"shares"`
	Traffic       int       `db:"traffic" json:"traffic"`
	PendingShares int       `db:"pending_shares" json:"pending_shares"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ShareRequest is a member's request to have a share credited. Approval
// moves one pending share into the product's confirmed share count.
type ShareRequest struct {
	ID            int64     `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	ProductID     uuid.UUID `db:"product_id" json:"product_id"`
	Status        string    `db:"status" json:"status"`
	DateRequested time.Time `db:"date_requested" json:"date_requested"`
}

// UserRanking is a member's current tier in the referral program,
// recomputed nightly from their approved direct-referral count.
type UserRanking struct {
	ID            int64     `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Name          string    `db:"name" json:"name"`
	RankLevel     int       `db:"rank_level" json:"rank_level"`
	TotalRecruits int       `db:"total_recruits" json:"total_recruits"`
	Bonus         int       `db:"bonus" json:"bonus"`
	Status        string    `db:"status" json:"status"`
	Date          time.Time `db:"date" json:"date"`
}
