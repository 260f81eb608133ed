// Package service contains the business logic layer.
//
// This file implements the compliance service, which gathers an asset's
// obligations and sub-scores and stores the resulting snapshot.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/metrics"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/google/uuid"
)

var (
	openSessionStatuses = []string{
		string(domain.SessionStatusPending),
		string(domain.SessionStatusInProgress),
	}
	unresolvedDefectStatuses = []string{
		string(domain.DefectStatusOpen),
		string(domain.DefectStatusInProgress),
	}
)

// =============================================================================
// Interface Definition
// =============================================================================

// ComplianceService defines the interface for compliance snapshot operations.
type ComplianceService interface {
	// Recompute rebuilds and stores the snapshot for one piece of equipment.
	// Obligations are open periodic sessions, daily checks once overdue,
	// the current certificate of each name and open work orders.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	Recompute(ctx context.Context, equipmentID uuid.UUID) (*domain.ComplianceMetric, error)

	// Get returns the stored snapshot, computing it first if none exists.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	Get(ctx context.Context, equipmentID uuid.UUID) (*domain.ComplianceMetric, error)

	// RecomputeAll rebuilds every snapshot and returns how many succeeded.
	// Failures for individual equipment are joined into the returned error.
	RecomputeAll(ctx context.Context) (int, error)

	// ListSummaries returns every stored snapshot with its equipment,
	// lowest overall score first.
	ListSummaries(ctx context.Context) ([]domain.ComplianceSummary, error)
}

// =============================================================================
// Implementation
// =============================================================================

// complianceService implements the ComplianceService interface.
type complianceService struct {
	queries *repository.Queries
	now     Clock
	logger  *slog.Logger
}

// NewComplianceService creates a new ComplianceService.
func NewComplianceService(
	queries *repository.Queries,
	clock Clock,
	logger *slog.Logger,
) ComplianceService {
	return &complianceService{
		queries: queries,
		now:     clock,
		logger:  logger,
	}
}

// =============================================================================
// Recompute
// =============================================================================

// Recompute rebuilds and stores the snapshot for one piece of equipment.
func (s *complianceService) Recompute(ctx context.Context, equipmentID uuid.UUID) (*domain.ComplianceMetric, error) {
	const op = "compliance.recompute"

	if _, err := s.queries.GetEquipmentByID(ctx, equipmentID); err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "equipment", equipmentID.String())
		}
		return nil, domain.Internal(err, op, "failed to get equipment")
	}

	now := s.now()
	var obligations []domain.Obligation

	// Inspections: latest completed session scores, open sessions are due.
	var completed []domain.InspectionSession
	latest, err := s.queries.GetLatestCompletedInspectionSession(ctx, equipmentID)
	switch {
	case err == nil:
		session, err := rowToSession(op, latest)
		if err != nil {
			return nil, err
		}
		completed = append(completed, *session)
	case !isNoRows(err):
		return nil, domain.Internal(err, op, "failed to get latest inspection")
	}

	open, err := s.queries.ListInspectionSessionsByStatus(ctx, repository.ListInspectionSessionsByStatusParams{
		EquipmentID: equipmentID,
		Statuses:    openSessionStatuses,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list open inspections")
	}
	for _, row := range open {
		session, err := rowToSession(op, row)
		if err != nil {
			return nil, err
		}
		if session.IsDueObligation(now) {
			obligations = append(obligations, session.Obligation())
		}
	}

	// Certificates
	certRows, err := s.queries.ListCertificatesByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list certificates")
	}
	certs := make([]domain.Certificate, 0, len(certRows))
	for _, row := range certRows {
		certs = append(certs, rowToCertificate(row))
	}
	certs = domain.CurrentCertificates(certs)
	for i := range certs {
		obligations = append(obligations, certs[i].Obligation())
	}

	// Work orders
	orderRows, err := s.queries.ListWorkOrdersByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list work orders")
	}
	orders := make([]domain.WorkOrder, 0, len(orderRows))
	for _, row := range orderRows {
		order := rowToWorkOrder(row)
		orders = append(orders, *order)
		if !order.Status.IsTerminal() {
			obligations = append(obligations, order.Obligation())
		}
	}

	// Defects
	defectRows, err := s.queries.ListDefectReportsByEquipmentID(ctx, repository.ListDefectReportsByEquipmentIDParams{
		EquipmentID: equipmentID,
		Statuses:    unresolvedDefectStatuses,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list defects")
	}
	defects := make([]domain.DefectReport, 0, len(defectRows))
	for _, row := range defectRows {
		defects = append(defects, *rowToDefect(row))
	}

	scores := domain.SubScores{
		Inspection:  domain.InspectionScore(completed),
		Maintenance: domain.MaintenanceScore(orders, now),
		Document:    domain.DocumentScore(certs, now),
		Defect:      domain.DefectScore(defects),
	}
	metric := domain.BuildComplianceMetric(equipmentID, scores, obligations, now)

	row, err := s.queries.UpsertComplianceMetric(ctx, repository.UpsertComplianceMetricParams{
		EquipmentID:      metric.EquipmentID,
		OverallScore:     int32(metric.OverallScore),
		InspectionScore:  int32(metric.InspectionScore),
		MaintenanceScore: int32(metric.MaintenanceScore),
		DocumentScore:    int32(metric.DocumentScore),
		DefectScore:      int32(metric.DefectScore),
		ExpiryStatus:     string(metric.ExpiryStatus),
		NextDueDate:      domain.ToNullTime(metric.NextDueDate),
		NextDueItemLabel: domain.ToNullString(metric.NextDueItemLabel),
		LastUpdated:      metric.LastUpdated,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to store compliance metric")
	}

	stored := rowToComplianceMetric(row)
	metrics.ComplianceScore.Observe(float64(stored.OverallScore))
	metrics.ComplianceRecomputed.WithLabelValues(string(stored.ExpiryStatus)).Inc()

	s.logger.Info("compliance recomputed",
		"equipment_id", equipmentID,
		"overall_score", stored.OverallScore,
		"expiry_status", stored.ExpiryStatus,
		"obligations", len(obligations),
	)

	return stored, nil
}

// =============================================================================
// Get / RecomputeAll / ListSummaries
// =============================================================================

// Get returns the stored snapshot, computing it first if none exists.
func (s *complianceService) Get(ctx context.Context, equipmentID uuid.UUID) (*domain.ComplianceMetric, error) {
	const op = "compliance.get"

	row, err := s.queries.GetComplianceMetric(ctx, equipmentID)
	if err != nil {
		if isNoRows(err) {
			return s.Recompute(ctx, equipmentID)
		}
		return nil, domain.Internal(err, op, "failed to get compliance metric")
	}
	return rowToComplianceMetric(row), nil
}

// RecomputeAll rebuilds every snapshot.
func (s *complianceService) RecomputeAll(ctx context.Context) (int, error) {
	const op = "compliance.recompute_all"

	ids, err := s.queries.ListEquipmentIDs(ctx)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to list equipment")
	}

	var (
		done int
		errs []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Recompute(ctx, id); err != nil {
			s.logger.Error("compliance recompute failed", "equipment_id", id, "error", err)
			errs = append(errs, err)
			continue
		}
		done++
	}

	s.logger.Info("compliance recomputed for all equipment",
		"equipment", len(ids),
		"succeeded", done,
	)

	return done, errors.Join(errs...)
}

// ListSummaries returns every stored snapshot with its equipment.
func (s *complianceService) ListSummaries(ctx context.Context) ([]domain.ComplianceSummary, error) {
	const op = "compliance.list"

	rows, err := s.queries.ListComplianceMetricsWithEquipment(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list compliance metrics")
	}

	summaries := make([]domain.ComplianceSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.ComplianceSummary{
			ComplianceMetric: domain.ComplianceMetric{
				EquipmentID:      row.EquipmentID,
				OverallScore:     int(row.OverallScore),
				InspectionScore:  int(row.InspectionScore),
				MaintenanceScore: int(row.MaintenanceScore),
				DocumentScore:    int(row.DocumentScore),
				DefectScore:      int(row.DefectScore),
				ExpiryStatus:     domain.UrgencyStatus(row.ExpiryStatus),
				NextDueDate:      domain.NullTimePtr(row.NextDueDate),
				NextDueItemLabel: domain.NullStringValue(row.NextDueItemLabel),
				LastUpdated:      row.LastUpdated,
			},
			EquipmentName: row.EquipmentName,
			Category:      domain.EquipmentCategory(row.Category),
			SerialNumber:  domain.NullStringValue(row.SerialNumber),
		})
	}
	return summaries, nil
}

// =============================================================================
// Conversion
// =============================================================================

func rowToComplianceMetric(row repository.ComplianceMetric) *domain.ComplianceMetric {
	return &domain.ComplianceMetric{
		EquipmentID:      row.EquipmentID,
		OverallScore:     int(row.OverallScore),
		InspectionScore:  int(row.InspectionScore),
		MaintenanceScore: int(row.MaintenanceScore),
		DocumentScore:    int(row.DocumentScore),
		DefectScore:      int(row.DefectScore),
		ExpiryStatus:     domain.UrgencyStatus(row.ExpiryStatus),
		NextDueDate:      domain.NullTimePtr(row.NextDueDate),
		NextDueItemLabel: domain.NullStringValue(row.NextDueItemLabel),
		LastUpdated:      row.LastUpdated,
	}
}
