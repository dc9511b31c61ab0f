package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthAbbrev(t *testing.T) {
	assert.Equal(t, "Jan", MonthAbbrev(1))
	assert.Equal(t, "Jun", MonthAbbrev(6))
	assert.Equal(t, "Dec", MonthAbbrev(12))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC)
	b := time.Date(2026, time.March, 15, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, c))
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, time.March, 15, 17, 45, 12, 99, time.UTC)
	day := DateOnly(ts)

	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), day)
}

func TestParseAndFormatDate(t *testing.T) {
	day, err := ParseDate("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", FormatDate(day))

	_, err = ParseDate("31/08/2026")
	assert.Error(t, err)
}
