// Package earnings implements the referral bonus engine and the earnings
// ledger: bonus categories, one ledger row per (profile, bonus type), and
// the daily/monthly reporting over those rows.
// models.go describes the stored structures.
package earnings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bonus category names. Categories are created lazily the first time a
// bonus of that kind is computed.
const (
	DirectReferralBonusName = "Direct Referral Bonus"
	MatchingBonusName       = "Matching Bonus"
)

// EarningsType statuses
const (
	TypeStatusEnabled  = "enabled"
	TypeStatusDisabled = "disabled"
)

// EarningsType is a named bonus category. Amount is the default amount for
// the category (0.00 on lazy creation); the ledger always stores the
// computed amount, never this default.
type EarningsType struct {
	ID        int64           `db:"id"`
	BonusName string          `db:"bonus_name"` // Unique category name
	Amount    decimal.Decimal `db:"amount"`     // Default amount, informational
	Status    string          `db:"status"`     // enabled / disabled
	CreatedOn time.Time       `db:"created_on"`
}

// LedgerEntry is the single current amount a profile has earned under one
// bonus type. At most one row exists per (profile, type): recomputation
// overwrites amount and description and leaves the date untouched.
type LedgerEntry struct {
	ID          int64           `db:"id"`
	ProfileID   uuid.UUID       `db:"individual_profile_id"`
	TypeID      *int64          `db:"earnings_type_id"` // nil when the type was deleted
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	Date        time.Time       `db:"date"` // Set on insert, immutable
}

// Rates configures the bonus engine. Passed in explicitly so tests can run
// with alternate rates and nothing hides in package globals.
type Rates struct {
	DirectReferral decimal.Decimal // Per approved direct referral
	MatchingPair   decimal.Decimal // Per pair of approved referrals
}

// Report is the earnings breakdown for one profile.
type Report struct {
	// DailyByType has an entry for every known earnings type: the sum of
	// that type's ledger amounts on the selected date, zero when none.
	DailyByType map[string]decimal.Decimal `json:"daily_by_type"`
	// MonthlyEarnings maps "Jan".."Dec" to the sum of all entries whose
	// date falls in that month, across ALL years. Aggregating same-numbered
	// months of different years together is intentional, quirky as it is.
	MonthlyEarnings map[string]decimal.Decimal `json:"monthly_earnings"`
	// TotalEarnings is the all-time sum with no date bound.
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	// SelectedDateEarnings sums every entry on the selected date.
	SelectedDateEarnings decimal.Decimal `json:"selected_date_earnings"`
	// SelectedDate echoes the date the report was built for.
	SelectedDate time.Time `json:"selected_date"`
}
