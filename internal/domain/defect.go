// Package domain contains core business types and interfaces.
//
// This file defines defect reports raised against equipment and their
// resolution lifecycle.
package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Defect Severity
// =============================================================================

// DefectSeverity is triage metadata for display ordering. It never gates
// status transitions.
type DefectSeverity string

const (
	DefectSeverityMinor    DefectSeverity = "minor"
	DefectSeverityMajor    DefectSeverity = "major"
	DefectSeverityCritical DefectSeverity = "critical"
)

var severityRank = map[DefectSeverity]int{
	DefectSeverityMinor:    1,
	DefectSeverityMajor:    2,
	DefectSeverityCritical: 3,
}

// String returns the string representation of the severity.
func (s DefectSeverity) String() string {
	return string(s)
}

// IsValid returns true if the severity is a recognized value.
func (s DefectSeverity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank returns 3 for critical, 2 for major, 1 for minor and 0 otherwise.
func (s DefectSeverity) Rank() int {
	return severityRank[s]
}

// =============================================================================
// Defect Status
// =============================================================================

// DefectStatus represents the lifecycle state of a defect report.
type DefectStatus string

const (
	DefectStatusOpen       DefectStatus = "open"
	DefectStatusInProgress DefectStatus = "in-progress"
	DefectStatusResolved   DefectStatus = "resolved"
	DefectStatusClosed     DefectStatus = "closed"
)

// String returns the string representation of the status.
func (s DefectStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s DefectStatus) IsValid() bool {
	switch s {
	case DefectStatusOpen, DefectStatusInProgress, DefectStatusResolved, DefectStatusClosed:
		return true
	}
	return false
}

// IsUnresolved returns true for open and in-progress.
func (s DefectStatus) IsUnresolved() bool {
	return s == DefectStatusOpen || s == DefectStatusInProgress
}

// CanTransitionTo checks if a defect can move to the target status.
//
// Valid transitions, forward only:
// - open -> in-progress
// - in-progress -> resolved
// - resolved -> closed
func (s DefectStatus) CanTransitionTo(target DefectStatus) bool {
	switch s {
	case DefectStatusOpen:
		return target == DefectStatusInProgress
	case DefectStatusInProgress:
		return target == DefectStatusResolved
	case DefectStatusResolved:
		return target == DefectStatusClosed
	}
	return false
}

// =============================================================================
// Defect Report Domain Type
// =============================================================================

// DefectReport is a reported fault on an asset.
type DefectReport struct {
	ID            uuid.UUID
	EquipmentID   uuid.UUID
	Title         string
	Description   string
	Severity      DefectSeverity
	Status        DefectStatus
	ReportedDate  time.Time
	ReportedBy    string
	AssignedTo    string
	ResolvedDate  *time.Time
	ResolvedBy    string
	MaintenanceID *uuid.UUID // Optional work order raised to fix the defect
	SessionID     *uuid.UUID // Optional inspection session the defect came from
	Version       int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransitionTo moves the defect to target if allowed. The report is
// unchanged on error.
func (d *DefectReport) TransitionTo(target DefectStatus) error {
	if !d.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{Entity: "defect", From: string(d.Status), To: string(target)}
	}
	d.Status = target
	return nil
}

// StartWork moves an open defect to in-progress. assignedTo and
// maintenanceID are optional and only overwrite when provided.
func (d *DefectReport) StartWork(assignedTo string, maintenanceID *uuid.UUID) error {
	if err := d.TransitionTo(DefectStatusInProgress); err != nil {
		return err
	}
	if assignedTo != "" {
		d.AssignedTo = assignedTo
	}
	if maintenanceID != nil {
		id := *maintenanceID
		d.MaintenanceID = &id
	}
	return nil
}

// Resolve moves an in-progress defect to resolved. Both resolvedBy and a
// non-zero resolvedDate are required.
func (d *DefectReport) Resolve(resolvedBy string, resolvedDate time.Time) error {
	const op = "defect.resolve"

	if !d.Status.CanTransitionTo(DefectStatusResolved) {
		return &InvalidTransitionError{Entity: "defect", From: string(d.Status), To: string(DefectStatusResolved)}
	}
	if resolvedBy == "" {
		return Invalid(op, "resolved by is required")
	}
	if resolvedDate.IsZero() {
		return Invalid(op, "resolved date is required")
	}

	resolved := resolvedDate
	d.Status = DefectStatusResolved
	d.ResolvedBy = resolvedBy
	d.ResolvedDate = &resolved
	return nil
}

// Close archives a resolved defect. Closed is terminal.
func (d *DefectReport) Close() error {
	return d.TransitionTo(DefectStatusClosed)
}

// SortByTriage orders defects by severity (critical first), then by
// reported date (oldest first). The sort is stable.
func SortByTriage(defects []DefectReport) {
	sort.SliceStable(defects, func(i, j int) bool {
		ri, rj := defects[i].Severity.Rank(), defects[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return defects[i].ReportedDate.Before(defects[j].ReportedDate)
	})
}

// =============================================================================
// Defect Service Parameters
// =============================================================================

// ReportDefectParams contains validated parameters for reporting a defect.
type ReportDefectParams struct {
	EquipmentID uuid.UUID
	Title       string
	Description string
	Severity    DefectSeverity
	ReportedBy  string
	SessionID   *uuid.UUID // Optional source inspection session
}

// StartDefectWorkParams contains parameters for moving a defect to in-progress.
type StartDefectWorkParams struct {
	ID            uuid.UUID
	AssignedTo    string
	MaintenanceID *uuid.UUID
	Version       int32 // Expected version; 0 skips the check
}

// ResolveDefectParams contains parameters for resolving a defect.
type ResolveDefectParams struct {
	ID           uuid.UUID
	ResolvedBy   string
	ResolvedDate time.Time // Defaults to now when zero
	Version      int32     // Expected version; 0 skips the check
}

// DefectTransitionParams identifies a defect for closing.
type DefectTransitionParams struct {
	ID      uuid.UUID
	Version int32 // Expected version; 0 skips the check
}
