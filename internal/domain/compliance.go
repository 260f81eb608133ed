// Package domain contains core business types and interfaces.
//
// This file defines the compliance score aggregator and the per-asset
// compliance snapshot.
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Obligations
// =============================================================================

// ObligationKind identifies what kind of dated requirement an obligation is.
type ObligationKind string

const (
	ObligationInspection  ObligationKind = "inspection"
	ObligationCertificate ObligationKind = "certificate"
	ObligationMaintenance ObligationKind = "maintenance"
)

// Obligation is anything with a due date tracked against today.
type Obligation struct {
	Kind    ObligationKind
	Label   string    // Display label, e.g. "LOLER thorough examination"
	DueDate time.Time // Calendar due date
}

// DaysRemaining returns the signed number of days until the obligation is due.
func (o Obligation) DaysRemaining(now time.Time) int {
	return DaysRemaining(o.DueDate, now)
}

// Status classifies the obligation relative to now.
func (o Obligation) Status(now time.Time) UrgencyStatus {
	return Classify(o.DaysRemaining(now))
}

// NearestObligation returns the obligation with the fewest days remaining.
// Ties keep the earlier entry. ok is false when obligations is empty.
func NearestObligation(obligations []Obligation, now time.Time) (nearest Obligation, days int, ok bool) {
	for i, o := range obligations {
		d := o.DaysRemaining(now)
		if i == 0 || d < days {
			nearest, days = o, d
		}
	}
	return nearest, days, len(obligations) > 0
}

// =============================================================================
// Scores
// =============================================================================

// MaxScore is the upper bound of every score.
const MaxScore = 100

// SubScores holds the four category scores feeding the overall score.
// Each is 0-100 and produced upstream (see scores.go).
type SubScores struct {
	Inspection  int
	Maintenance int
	Document    int
	Defect      int
}

// Aggregate combines the four sub-scores into the overall compliance score:
// the arithmetic mean, rounded half away from zero, clamped to [0, 100].
// Argument order does not affect the result.
func Aggregate(inspection, maintenance, document, defect int) int {
	sum := float64(inspection) + float64(maintenance) + float64(document) + float64(defect)
	return clampScore(int(math.Round(sum / 4)))
}

// Overall is Aggregate applied to s.
func (s SubScores) Overall() int {
	return Aggregate(s.Inspection, s.Maintenance, s.Document, s.Defect)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// =============================================================================
// Compliance Metric
// =============================================================================

// ComplianceMetric is the per-asset compliance snapshot.
type ComplianceMetric struct {
	EquipmentID      uuid.UUID
	OverallScore     int
	InspectionScore  int
	MaintenanceScore int
	DocumentScore    int
	DefectScore      int
	ExpiryStatus     UrgencyStatus
	NextDueDate      *time.Time // Absent when no obligations exist
	NextDueItemLabel string     // Empty when no obligations exist
	LastUpdated      time.Time
}

// HasNextDue returns true if the metric references a next due obligation.
func (m *ComplianceMetric) HasNextDue() bool {
	return m.NextDueDate != nil
}

// SubScores returns the category scores of the snapshot.
func (m *ComplianceMetric) SubScores() SubScores {
	return SubScores{
		Inspection:  m.InspectionScore,
		Maintenance: m.MaintenanceScore,
		Document:    m.DocumentScore,
		Defect:      m.DefectScore,
	}
}

// BuildComplianceMetric assembles a snapshot for one asset. The expiry
// status is derived from the nearest obligation; with no obligations it is
// valid and the next-due fields are left empty.
func BuildComplianceMetric(equipmentID uuid.UUID, scores SubScores, obligations []Obligation, now time.Time) ComplianceMetric {
	m := ComplianceMetric{
		EquipmentID:      equipmentID,
		OverallScore:     scores.Overall(),
		InspectionScore:  clampScore(scores.Inspection),
		MaintenanceScore: clampScore(scores.Maintenance),
		DocumentScore:    clampScore(scores.Document),
		DefectScore:      clampScore(scores.Defect),
		ExpiryStatus:     UrgencyValid,
		LastUpdated:      now,
	}

	nearest, days, ok := NearestObligation(obligations, now)
	if !ok {
		return m
	}

	due := nearest.DueDate
	m.ExpiryStatus = Classify(days)
	m.NextDueDate = &due
	m.NextDueItemLabel = nearest.Label
	return m
}

// ComplianceSummary is a compliance snapshot joined with the equipment it
// describes, used for fleet listings and exports.
type ComplianceSummary struct {
	ComplianceMetric
	EquipmentName string
	Category      EquipmentCategory
	SerialNumber  string
}

// =============================================================================
// Compliance Export
// =============================================================================

// ExportStatus mirrors the state of the background export job.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// ComplianceExport tracks a requested CSV export of all compliance
// snapshots. Key, URL and Rows are set once the export has completed.
type ComplianceExport struct {
	ID          uuid.UUID
	Status      ExportStatus
	RequestedBy string
	Key         string
	URL         string
	Rows        int
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
