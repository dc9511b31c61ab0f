// Package earnings: reporting.go aggregates the ledger for one profile.
// Read-only; a profile with no entries reports zeros, not an error.
package earnings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/globalcluster/referral-backend/internal/common"
)

// ReportStore is the read surface the reporting service needs.
type ReportStore interface {
	ProfileExists(ctx context.Context, profileID uuid.UUID) (bool, error)
	ListTypes(ctx context.Context) ([]*EarningsType, error)
	EntriesByProfile(ctx context.Context, profileID uuid.UUID) ([]*LedgerEntry, error)
}

// Reporting builds earnings breakdowns from the ledger.
type Reporting struct {
	store ReportStore
}

// NewReporting creates the reporting service.
func NewReporting(store ReportStore) *Reporting {
	return &Reporting{store: store}
}

// Report aggregates the profile's ledger: per-type sums on selectedDate,
// per-month sums across all years, the all-time total and the total on
// selectedDate. A nil selectedDate means today.
//
// Returns common.ErrProfileNotFound when no individual profile exists for
// the given id.
func (r *Reporting) Report(ctx context.Context, profileID uuid.UUID, selectedDate *time.Time) (*Report, error) {
	exists, err := r.store.ProfileExists(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrProfileNotFound
	}

	day := time.Now()
	if selectedDate != nil {
		day = *selectedDate
	}
	day = common.DateOnly(day)

	types, err := r.store.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := r.store.EntriesByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		DailyByType:          make(map[string]decimal.Decimal, len(types)),
		MonthlyEarnings:      make(map[string]decimal.Decimal, 12),
		TotalEarnings:        decimal.Zero,
		SelectedDateEarnings: decimal.Zero,
		SelectedDate:         day,
	}

	// Every known type reports a number, zero when nothing matched.
	typeNames := make(map[int64]string, len(types))
	for _, t := range types {
		typeNames[t.ID] = t.BonusName
		report.DailyByType[t.BonusName] = decimal.Zero
	}
	for month := 1; month <= 12; month++ {
		report.MonthlyEarnings[common.MonthAbbrev(month)] = decimal.Zero
	}

	for _, entry := range entries {
		report.TotalEarnings = report.TotalEarnings.Add(entry.Amount)

		// Month bucket keyed by month number only: entries from different
		// years that share a month land in the same bucket.
		monthKey := common.MonthAbbrev(int(entry.Date.Month()))
		report.MonthlyEarnings[monthKey] = report.MonthlyEarnings[monthKey].Add(entry.Amount)

		if common.SameDay(entry.Date, day) {
			report.SelectedDateEarnings = report.SelectedDateEarnings.Add(entry.Amount)
			if entry.TypeID != nil {
				if name, ok := typeNames[*entry.TypeID]; ok {
					report.DailyByType[name] = report.DailyByType[name].Add(entry.Amount)
				}
			}
		}
	}

	return report, nil
}
