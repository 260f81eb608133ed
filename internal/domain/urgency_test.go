package domain

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		days int
		want UrgencyStatus
	}{
		{"far in the past", -365, UrgencyExpired},
		{"five days overdue", -5, UrgencyExpired},
		{"due today", 0, UrgencyExpired},
		{"tomorrow", 1, UrgencyUrgent},
		{"one week", 7, UrgencyUrgent},
		{"eight days", 8, UrgencyWarning},
		{"thirty days", 30, UrgencyWarning},
		{"thirty one days", 31, UrgencyValid},
		{"min int", math.MinInt, UrgencyExpired},
		{"max int", math.MaxInt, UrgencyValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.days))
		})
	}
}

func TestClassify_Total(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("every day count maps to exactly one known status", prop.ForAll(
		func(days int) bool {
			return Classify(days).IsValid()
		},
		gen.Int(),
	))

	properties.Property("fewer days is never less urgent", prop.ForAll(
		func(a, b int) bool {
			if a > b {
				a, b = b, a
			}
			return Classify(a).Rank() <= Classify(b).Rank()
		},
		gen.IntRange(-1000, 1000),
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestUrgencyStatus_Rank(t *testing.T) {
	assert.True(t, UrgencyExpired.WorseThan(UrgencyUrgent))
	assert.True(t, UrgencyUrgent.WorseThan(UrgencyWarning))
	assert.True(t, UrgencyWarning.WorseThan(UrgencyValid))
	assert.False(t, UrgencyValid.WorseThan(UrgencyValid))
	assert.False(t, UrgencyStatus("bogus").IsValid())
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"earlier today", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 0},
		{"later today", time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC), 1},
		{"tomorrow midnight", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), 1},
		{"five days ago", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), -5},
		{"in thirty days", time.Date(2026, 4, 9, 9, 30, 0, 0, time.UTC), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysRemaining(tt.due, now))
		})
	}
}

func TestCalendarDays(t *testing.T) {
	today := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, 0, CalendarDays(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), today))
	assert.Equal(t, 1, CalendarDays(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), today))
	assert.Equal(t, -1, CalendarDays(time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC), today))
	assert.Equal(t, 365, CalendarDays(time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC), today))
}
