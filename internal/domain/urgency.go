// Package domain contains core business types and interfaces.
//
// This file defines the urgency classifier used for every dated obligation
// (inspections, certificates, scheduled maintenance).
package domain

import (
	"math"
	"time"
)

// =============================================================================
// Urgency Status
// =============================================================================

// UrgencyStatus categorizes how close an obligation is to its due date.
type UrgencyStatus string

const (
	// UrgencyValid indicates more than 30 days remain.
	UrgencyValid UrgencyStatus = "valid"

	// UrgencyWarning indicates 8 to 30 days remain.
	UrgencyWarning UrgencyStatus = "warning"

	// UrgencyUrgent indicates 1 to 7 days remain.
	UrgencyUrgent UrgencyStatus = "urgent"

	// UrgencyExpired indicates the due date is today or has passed.
	UrgencyExpired UrgencyStatus = "expired"
)

// Classification thresholds in days.
const (
	UrgentWithinDays  = 7
	WarningWithinDays = 30
)

// urgencyRank orders statuses worst to best.
var urgencyRank = map[UrgencyStatus]int{
	UrgencyExpired: 0,
	UrgencyUrgent:  1,
	UrgencyWarning: 2,
	UrgencyValid:   3,
}

// String returns the string representation of the status.
func (s UrgencyStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s UrgencyStatus) IsValid() bool {
	_, ok := urgencyRank[s]
	return ok
}

// Rank returns the position of the status in the worst-to-best ordering
// (expired=0 ... valid=3). Unknown statuses rank as expired.
func (s UrgencyStatus) Rank() int {
	return urgencyRank[s]
}

// WorseThan reports whether s is strictly more urgent than other.
func (s UrgencyStatus) WorseThan(other UrgencyStatus) bool {
	return s.Rank() < other.Rank()
}

// Classify maps a signed day count (due date minus today) to an urgency
// status. It is total over int.
func Classify(daysRemaining int) UrgencyStatus {
	switch {
	case daysRemaining <= 0:
		return UrgencyExpired
	case daysRemaining <= UrgentWithinDays:
		return UrgencyUrgent
	case daysRemaining <= WarningWithinDays:
		return UrgencyWarning
	default:
		return UrgencyValid
	}
}

// DaysRemaining returns ceil((due - now) / 24h). A due date earlier the
// same day yields 0.
func DaysRemaining(due, now time.Time) int {
	days := math.Ceil(due.Sub(now).Hours() / 24)
	// Durations saturate at roughly ±292 years, so days always fits an int.
	return int(days)
}

// ClassifyDate is Classify(DaysRemaining(due, now)).
func ClassifyDate(due, now time.Time) UrgencyStatus {
	return Classify(DaysRemaining(due, now))
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDays returns the number of calendar days from today's date to
// due's date, ignoring time of day. Each value is read in its own location.
func CalendarDays(due, today time.Time) int {
	dy, dm, dd := due.Date()
	ty, tm, td := today.Date()
	a := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}
