// Package domain contains core business types and interfaces.
//
// This file defines checklist-driven inspection sessions (daily and
// periodic) and the rules for recording responses and submitting them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Checklist Item Status
// =============================================================================

// ItemStatus is the recorded outcome of a single checklist item.
type ItemStatus string

const (
	ItemStatusNotChecked ItemStatus = "not-checked"
	ItemStatusPassed     ItemStatus = "passed"

	// ItemStatusFailed is a valid answer. It does not block submission; the
	// caller decides whether to raise a defect for it.
	ItemStatusFailed ItemStatus = "failed"
)

// String returns the string representation of the status.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusNotChecked, ItemStatusPassed, ItemStatusFailed:
		return true
	}
	return false
}

// IsAnswered returns true for passed and failed.
func (s ItemStatus) IsAnswered() bool {
	return s == ItemStatusPassed || s == ItemStatusFailed
}

// ChecklistItem is one line of an inspection checklist.
type ChecklistItem struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	IsRequired  bool       `json:"is_required"`
	Status      ItemStatus `json:"status"`
	Comment     string     `json:"comment,omitempty"`
}

// =============================================================================
// Session Kind, Frequency and Status
// =============================================================================

// SessionKind distinguishes daily pre-use checks from periodic inspections.
type SessionKind string

const (
	// SessionKindDaily sessions are instantiated for "today".
	SessionKindDaily SessionKind = "daily"

	// SessionKindPeriodic sessions are scheduled ahead and require an
	// operator-entered next inspection date on submission.
	SessionKindPeriodic SessionKind = "periodic"
)

// IsValid returns true if the kind is a recognized value.
func (k SessionKind) IsValid() bool {
	return k == SessionKindDaily || k == SessionKindPeriodic
}

// Frequency describes how often a periodic inspection recurs. It is
// informational: next due dates are entered by the operator.
type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi-annual"
	FrequencyAnnual     Frequency = "annual"
)

// IsValid returns true if the frequency is a recognized value.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencySemiAnnual, FrequencyAnnual:
		return true
	}
	return false
}

var frequencyLabels = map[Frequency]string{
	FrequencyDaily:      "Daily",
	FrequencyWeekly:     "Weekly",
	FrequencyMonthly:    "Monthly",
	FrequencyQuarterly:  "Quarterly",
	FrequencySemiAnnual: "Semi-annual",
	FrequencyAnnual:     "Annual",
}

// Label returns the display label of the frequency, e.g. "Semi-annual".
func (f Frequency) Label() string {
	if label, ok := frequencyLabels[f]; ok {
		return label
	}
	return string(f)
}

// SessionStatus represents the lifecycle state of an inspection session.
type SessionStatus string

const (
	// SessionStatusPending is the initial state; all items are not-checked.
	SessionStatusPending SessionStatus = "pending"

	// SessionStatusInProgress is entered on the first item response.
	SessionStatusInProgress SessionStatus = "in-progress"

	// SessionStatusCompleted is terminal.
	SessionStatusCompleted SessionStatus = "completed"

	// SessionStatusOverdue is never stored. DisplayStatus reports it for
	// open sessions whose due date has passed.
	SessionStatusOverdue SessionStatus = "overdue"
)

// String returns the string representation of the status.
func (s SessionStatus) String() string {
	return string(s)
}

// IsValid returns true if the status can be stored.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusPending, SessionStatusInProgress, SessionStatusCompleted:
		return true
	}
	return false
}

// IsOpen returns true for pending and in-progress.
func (s SessionStatus) IsOpen() bool {
	return s == SessionStatusPending || s == SessionStatusInProgress
}

// =============================================================================
// Inspection Session
// =============================================================================

// InspectionSession is one instance of a checklist inspection for an asset.
// Sessions are never deleted; completed sessions form the inspection history.
type InspectionSession struct {
	ID                 uuid.UUID
	EquipmentID        uuid.UUID
	Kind               SessionKind
	Frequency          Frequency // Informational only
	Items              []ChecklistItem
	Status             SessionStatus // Stored status, never overdue
	DueDate            time.Time
	CompletedDate      *time.Time
	PerformedBy        string
	NextInspectionDate *time.Time // Periodic sessions only
	Version            int32      // Optimistic concurrency token
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewDailySession creates today's pending daily session. The due date is
// the start of today.
func NewDailySession(equipmentID uuid.UUID, items []ChecklistItem, now time.Time) InspectionSession {
	return InspectionSession{
		ID:          uuid.New(),
		EquipmentID: equipmentID,
		Kind:        SessionKindDaily,
		Frequency:   FrequencyDaily,
		Items:       resetItems(items),
		Status:      SessionStatusPending,
		DueDate:     StartOfDay(now),
	}
}

// NewPeriodicSession creates a pending periodic session due on dueDate.
func NewPeriodicSession(equipmentID uuid.UUID, frequency Frequency, items []ChecklistItem, dueDate time.Time) InspectionSession {
	return InspectionSession{
		ID:          uuid.New(),
		EquipmentID: equipmentID,
		Kind:        SessionKindPeriodic,
		Frequency:   frequency,
		Items:       resetItems(items),
		Status:      SessionStatusPending,
		DueDate:     StartOfDay(dueDate),
	}
}

func resetItems(items []ChecklistItem) []ChecklistItem {
	out := make([]ChecklistItem, len(items))
	for i, item := range items {
		item.Status = ItemStatusNotChecked
		item.Comment = ""
		out[i] = item
	}
	return out
}

// IsEditable returns true if item responses can still be recorded.
func (s *InspectionSession) IsEditable() bool {
	return s.Status != SessionStatusCompleted
}

// IsPeriodic returns true for periodic sessions.
func (s *InspectionSession) IsPeriodic() bool {
	return s.Kind == SessionKindPeriodic
}

// Obligation returns the session's due date as a dated obligation,
// labelled by frequency ("Monthly inspection").
func (s *InspectionSession) Obligation() Obligation {
	return Obligation{Kind: ObligationInspection, Label: s.Frequency.Label() + " inspection", DueDate: s.DueDate}
}

// IsDueObligation reports whether an open session counts toward the
// equipment's expiry status. A daily check is due on the day it was started,
// so it only counts once it is overdue.
func (s *InspectionSession) IsDueObligation(now time.Time) bool {
	if !s.Status.IsOpen() {
		return false
	}
	if s.Kind == SessionKindDaily {
		return s.DisplayStatus(now) == SessionStatusOverdue
	}
	return true
}

// RecordItemResponse records the status and comment of one checklist item.
// The first response moves a pending session to in-progress. On error the
// session is left unchanged.
func (s *InspectionSession) RecordItemResponse(itemID string, status ItemStatus, comment string) error {
	const op = "inspection.record_item"

	if !s.IsEditable() {
		return &InvalidTransitionError{Entity: "inspection", From: string(s.Status), To: string(SessionStatusInProgress)}
	}
	if !status.IsValid() {
		return Invalid(op, "invalid item status: "+string(status))
	}

	idx := s.itemIndex(itemID)
	if idx < 0 {
		return &InvalidItemError{ItemID: itemID}
	}

	s.Items[idx].Status = status
	s.Items[idx].Comment = comment
	if s.Status == SessionStatusPending {
		s.Status = SessionStatusInProgress
	}
	return nil
}

// SetNextInspectionDate records the operator-entered date of the next
// periodic inspection. It is validated on Submit.
func (s *InspectionSession) SetNextInspectionDate(date time.Time) error {
	if !s.IsEditable() {
		return &InvalidTransitionError{Entity: "inspection", From: string(s.Status), To: string(s.Status)}
	}
	d := StartOfDay(date)
	s.NextInspectionDate = &d
	return nil
}

// ValidateSubmission returns an IncompleteRequiredItemsError listing every
// required item that is still not-checked. Optional items are ignored.
func ValidateSubmission(items []ChecklistItem) error {
	var missing []string
	for _, item := range items {
		if item.IsRequired && !item.Status.IsAnswered() {
			missing = append(missing, item.ID)
		}
	}
	if len(missing) > 0 {
		return &IncompleteRequiredItemsError{ItemIDs: missing}
	}
	return nil
}

// Submit completes the session. Every required item must be answered and,
// for periodic sessions, NextInspectionDate must be strictly after today.
// performedBy overrides PerformedBy when non-empty. On error the session is
// left unchanged.
func (s *InspectionSession) Submit(performedBy string, now time.Time) error {
	if !s.IsEditable() {
		return &InvalidTransitionError{Entity: "inspection", From: string(s.Status), To: string(SessionStatusCompleted)}
	}
	if err := ValidateSubmission(s.Items); err != nil {
		return err
	}
	if s.IsPeriodic() {
		if s.NextInspectionDate == nil || CalendarDays(*s.NextInspectionDate, now) <= 0 {
			return &MissingNextDueDateError{SessionID: s.ID.String()}
		}
	}

	completed := now
	s.Status = SessionStatusCompleted
	s.CompletedDate = &completed
	if performedBy != "" {
		s.PerformedBy = performedBy
	}
	return nil
}

// DisplayStatus returns the status to show right now: open sessions whose
// due date is before today are reported overdue. The stored Status is not
// modified.
func (s *InspectionSession) DisplayStatus(now time.Time) SessionStatus {
	if s.Status.IsOpen() && CalendarDays(s.DueDate, now) < 0 {
		return SessionStatusOverdue
	}
	return s.Status
}

// FailedItems returns the items answered failed, in checklist order.
func (s *InspectionSession) FailedItems() []ChecklistItem {
	var failed []ChecklistItem
	for _, item := range s.Items {
		if item.Status == ItemStatusFailed {
			failed = append(failed, item)
		}
	}
	return failed
}

// ChecklistCounts summarizes item outcomes for a session.
type ChecklistCounts struct {
	Total      int
	Required   int
	Passed     int
	Failed     int
	NotChecked int
}

// Answered returns the number of passed and failed items.
func (c ChecklistCounts) Answered() int {
	return c.Passed + c.Failed
}

// Counts tallies item outcomes.
func (s *InspectionSession) Counts() ChecklistCounts {
	c := ChecklistCounts{Total: len(s.Items)}
	for _, item := range s.Items {
		if item.IsRequired {
			c.Required++
		}
		switch item.Status {
		case ItemStatusPassed:
			c.Passed++
		case ItemStatusFailed:
			c.Failed++
		default:
			c.NotChecked++
		}
	}
	return c
}

func (s *InspectionSession) itemIndex(itemID string) int {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// =============================================================================
// Inspection Service Parameters
// =============================================================================

// ScheduleInspectionParams contains parameters for scheduling a periodic session.
type ScheduleInspectionParams struct {
	EquipmentID uuid.UUID
	DueDate     time.Time
	Frequency   Frequency // Optional, defaults to the catalog frequency
}

// StartDailyInspectionParams contains parameters for today's daily check.
type StartDailyInspectionParams struct {
	EquipmentID uuid.UUID
}

// RecordItemResponseParams contains parameters for answering a checklist item.
type RecordItemResponseParams struct {
	SessionID uuid.UUID
	ItemID    string
	Status    ItemStatus
	Comment   string
	Version   int32 // Expected version; 0 skips the check
}

// SubmitInspectionParams contains parameters for submitting a session.
type SubmitInspectionParams struct {
	SessionID          uuid.UUID
	PerformedBy        string
	NextInspectionDate *time.Time // Required for periodic sessions
	Version            int32      // Expected version; 0 skips the check
}

// SubmitInspectionResult is returned by a successful submission.
type SubmitInspectionResult struct {
	Session     *InspectionSession
	NextSession *InspectionSession // Scheduled follow-up for periodic sessions
}
