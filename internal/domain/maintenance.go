// Package domain contains core business types and interfaces.
//
// This file defines maintenance work orders and their status lifecycle.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Work Order Type
// =============================================================================

// WorkOrderType classifies the maintenance strategy behind a work order.
type WorkOrderType string

const (
	WorkOrderTypePreventive     WorkOrderType = "preventive"
	WorkOrderTypeCorrective     WorkOrderType = "corrective"
	WorkOrderTypePredictive     WorkOrderType = "predictive"
	WorkOrderTypeConditionBased WorkOrderType = "condition-based"
)

// String returns the string representation of the type.
func (t WorkOrderType) String() string {
	return string(t)
}

// IsValid returns true if the type is a recognized value.
func (t WorkOrderType) IsValid() bool {
	switch t {
	case WorkOrderTypePreventive, WorkOrderTypeCorrective,
		WorkOrderTypePredictive, WorkOrderTypeConditionBased:
		return true
	}
	return false
}

// =============================================================================
// Work Order Priority
// =============================================================================

// WorkOrderPriority is triage metadata. It never gates transitions.
type WorkOrderPriority string

const (
	WorkOrderPriorityLow    WorkOrderPriority = "low"
	WorkOrderPriorityMedium WorkOrderPriority = "medium"
	WorkOrderPriorityHigh   WorkOrderPriority = "high"
)

// IsValid returns true if the priority is a recognized value.
func (p WorkOrderPriority) IsValid() bool {
	switch p {
	case WorkOrderPriorityLow, WorkOrderPriorityMedium, WorkOrderPriorityHigh:
		return true
	}
	return false
}

// PriorityForSeverity returns the default work order priority used when a
// corrective order is raised for a defect of the given severity.
func PriorityForSeverity(s DefectSeverity) WorkOrderPriority {
	switch s {
	case DefectSeverityCritical:
		return WorkOrderPriorityHigh
	case DefectSeverityMajor:
		return WorkOrderPriorityMedium
	}
	return WorkOrderPriorityLow
}

// =============================================================================
// Work Order Status
// =============================================================================

// WorkOrderStatus represents the lifecycle state of a work order.
type WorkOrderStatus string

const (
	WorkOrderStatusScheduled  WorkOrderStatus = "scheduled"
	WorkOrderStatusInProgress WorkOrderStatus = "in-progress"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
	WorkOrderStatusCancelled  WorkOrderStatus = "cancelled"
)

// String returns the string representation of the status.
func (s WorkOrderStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case WorkOrderStatusScheduled, WorkOrderStatusInProgress,
		WorkOrderStatusCompleted, WorkOrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for completed and cancelled.
func (s WorkOrderStatus) IsTerminal() bool {
	return s == WorkOrderStatusCompleted || s == WorkOrderStatusCancelled
}

// CanTransitionTo checks if a work order can move to the target status.
//
// Valid transitions:
// - scheduled -> in-progress
// - scheduled -> cancelled
// - in-progress -> completed
// - in-progress -> cancelled
func (s WorkOrderStatus) CanTransitionTo(target WorkOrderStatus) bool {
	switch s {
	case WorkOrderStatusScheduled:
		return target == WorkOrderStatusInProgress || target == WorkOrderStatusCancelled
	case WorkOrderStatusInProgress:
		return target == WorkOrderStatusCompleted || target == WorkOrderStatusCancelled
	}
	return false
}

// =============================================================================
// Work Order Domain Type
// =============================================================================

// WorkOrder is a scheduled maintenance task for one asset. Work orders are
// never deleted; cancelled is their end state when the work is abandoned.
type WorkOrder struct {
	ID                uuid.UUID
	EquipmentID       uuid.UUID
	Title             string
	Description       string
	Type              WorkOrderType
	Priority          WorkOrderPriority
	Status            WorkOrderStatus
	ScheduledDate     time.Time
	EstimatedDuration time.Duration
	ActualDuration    *time.Duration
	StartedAt         *time.Time
	CompletedDate     *time.Time
	CompletedBy       string
	Version           int32
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TransitionTo moves the work order to target if the transition is allowed.
// The work order is unchanged on error.
func (w *WorkOrder) TransitionTo(target WorkOrderStatus) error {
	if !w.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{Entity: "work order", From: string(w.Status), To: string(target)}
	}
	w.Status = target
	return nil
}

// Start moves a scheduled work order to in-progress.
func (w *WorkOrder) Start(now time.Time) error {
	if err := w.TransitionTo(WorkOrderStatusInProgress); err != nil {
		return err
	}
	started := now
	w.StartedAt = &started
	return nil
}

// Complete finishes an in-progress work order. A scheduled order is started
// and completed in one step. Terminal orders return InvalidTransitionError.
func (w *WorkOrder) Complete(completedBy string, actualDuration time.Duration, now time.Time) error {
	const op = "workorder.complete"

	if w.Status.IsTerminal() {
		return &InvalidTransitionError{Entity: "work order", From: string(w.Status), To: string(WorkOrderStatusCompleted)}
	}
	if completedBy == "" {
		return Invalid(op, "completed by is required")
	}
	if actualDuration < 0 {
		return Invalid(op, "actual duration cannot be negative")
	}

	if w.Status == WorkOrderStatusScheduled {
		started := now
		w.StartedAt = &started
	}
	completed := now
	d := actualDuration
	w.Status = WorkOrderStatusCompleted
	w.CompletedDate = &completed
	w.CompletedBy = completedBy
	w.ActualDuration = &d
	return nil
}

// Cancel abandons a scheduled or in-progress work order.
func (w *WorkOrder) Cancel() error {
	return w.TransitionTo(WorkOrderStatusCancelled)
}

// IsOverdue returns true if the order is still open and its scheduled date
// is before today.
func (w *WorkOrder) IsOverdue(now time.Time) bool {
	return !w.Status.IsTerminal() && CalendarDays(w.ScheduledDate, now) < 0
}

// Obligation returns the work order's scheduled date as a dated obligation.
func (w *WorkOrder) Obligation() Obligation {
	return Obligation{Kind: ObligationMaintenance, Label: w.Title, DueDate: w.ScheduledDate}
}

// =============================================================================
// Work Order Service Parameters
// =============================================================================

// ScheduleWorkOrderParams contains validated parameters for scheduling a work order.
type ScheduleWorkOrderParams struct {
	EquipmentID       uuid.UUID
	Title             string
	Description       string
	Type              WorkOrderType
	Priority          WorkOrderPriority // Optional, defaults to medium
	ScheduledDate     time.Time
	EstimatedDuration time.Duration
}

// CompleteWorkOrderParams contains parameters for completing a work order.
type CompleteWorkOrderParams struct {
	ID             uuid.UUID
	CompletedBy    string
	ActualDuration time.Duration
	Version        int32 // Expected version; 0 skips the check
}

// WorkOrderTransitionParams identifies a work order for start or cancel.
type WorkOrderTransitionParams struct {
	ID      uuid.UUID
	Version int32 // Expected version; 0 skips the check
}
