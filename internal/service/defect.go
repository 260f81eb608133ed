// Package service contains the business logic layer.
//
// This file implements the defect service for reporting faults on
// equipment and tracking them through to closure.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/metrics"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/DukeRupert/plantcheck/internal/worker"
	"github.com/google/uuid"
)

var allDefectStatuses = []domain.DefectStatus{
	domain.DefectStatusOpen,
	domain.DefectStatusInProgress,
	domain.DefectStatusResolved,
	domain.DefectStatusClosed,
}

// =============================================================================
// Interface Definition
// =============================================================================

// DefectService defines the interface for defect report operations.
type DefectService interface {
	// Report raises a new open defect.
	// Returns domain.ENOTFOUND if the equipment or source session does not exist.
	// Returns domain.EINVALID for validation errors.
	Report(ctx context.Context, params domain.ReportDefectParams) (*domain.DefectReport, error)

	// StartWork moves an open defect to in-progress, optionally linking the
	// work order raised to fix it.
	// Returns domain.ECONFLICT for an invalid transition or stale version.
	StartWork(ctx context.Context, params domain.StartDefectWorkParams) (*domain.DefectReport, error)

	// Resolve moves an in-progress defect to resolved.
	// Returns domain.EINVALID if resolved by is missing.
	// Returns domain.ECONFLICT for an invalid transition or stale version.
	Resolve(ctx context.Context, params domain.ResolveDefectParams) (*domain.DefectReport, error)

	// Close archives a resolved defect.
	// Returns domain.ECONFLICT for an invalid transition or stale version.
	Close(ctx context.Context, params domain.DefectTransitionParams) (*domain.DefectReport, error)

	// GetByID retrieves a defect by ID.
	// Returns domain.ENOTFOUND if the defect does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DefectReport, error)

	// ListByEquipment returns defects for equipment in triage order
	// (critical first, then oldest first). An empty statuses list returns all.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	ListByEquipment(ctx context.Context, equipmentID uuid.UUID, statuses []domain.DefectStatus) ([]domain.DefectReport, error)
}

// =============================================================================
// Implementation
// =============================================================================

// defectService implements the DefectService interface.
type defectService struct {
	queries *repository.Queries
	now     Clock
	logger  *slog.Logger
}

// NewDefectService creates a new DefectService.
func NewDefectService(
	queries *repository.Queries,
	clock Clock,
	logger *slog.Logger,
) DefectService {
	return &defectService{
		queries: queries,
		now:     clock,
		logger:  logger,
	}
}

// =============================================================================
// Report
// =============================================================================

// Report raises a new open defect.
func (s *defectService) Report(ctx context.Context, params domain.ReportDefectParams) (*domain.DefectReport, error) {
	const op = "defect.report"

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, domain.Invalid(op, "title is required")
	}
	if !params.Severity.IsValid() {
		return nil, domain.Invalid(op, "invalid defect severity: "+string(params.Severity))
	}
	reportedBy := strings.TrimSpace(params.ReportedBy)
	if reportedBy == "" {
		return nil, domain.Invalid(op, "reported by is required")
	}

	if _, err := s.queries.GetEquipmentByID(ctx, params.EquipmentID); err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "equipment", params.EquipmentID.String())
		}
		return nil, domain.Internal(err, op, "failed to get equipment")
	}

	if params.SessionID != nil {
		session, err := s.queries.GetInspectionSessionByID(ctx, *params.SessionID)
		if err != nil {
			if isNoRows(err) {
				return nil, domain.NotFound(op, "inspection", params.SessionID.String())
			}
			return nil, domain.Internal(err, op, "failed to get inspection")
		}
		if session.EquipmentID != params.EquipmentID {
			return nil, domain.Invalid(op, "inspection belongs to different equipment")
		}
	}

	row, err := s.queries.CreateDefectReport(ctx, repository.CreateDefectReportParams{
		EquipmentID: params.EquipmentID,
		Title:       title,
		Description: domain.ToNullString(strings.TrimSpace(params.Description)),
		Severity:    string(params.Severity),
		Status:      string(domain.DefectStatusOpen),
		ReportedBy:  reportedBy,
		SessionID:   domain.ToNullUUID(params.SessionID),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create defect report")
	}

	defect := rowToDefect(row)
	metrics.DefectsReported.WithLabelValues(string(defect.Severity)).Inc()
	s.enqueueRecompute(ctx, defect.EquipmentID)

	s.logger.Info("defect reported",
		"defect_id", defect.ID,
		"equipment_id", defect.EquipmentID,
		"severity", defect.Severity,
		"reported_by", defect.ReportedBy,
	)

	return defect, nil
}

// =============================================================================
// Transitions
// =============================================================================

// StartWork moves an open defect to in-progress.
func (s *defectService) StartWork(ctx context.Context, params domain.StartDefectWorkParams) (*domain.DefectReport, error) {
	const op = "defect.start"

	return s.transition(ctx, op, params.ID, params.Version, func(d *domain.DefectReport) error {
		if params.MaintenanceID != nil {
			order, err := s.queries.GetWorkOrderByID(ctx, *params.MaintenanceID)
			if err != nil {
				if isNoRows(err) {
					return domain.NotFound(op, "work order", params.MaintenanceID.String())
				}
				return domain.Internal(err, op, "failed to get work order")
			}
			if order.EquipmentID != d.EquipmentID {
				return domain.Invalid(op, "work order belongs to different equipment")
			}
		}
		return d.StartWork(strings.TrimSpace(params.AssignedTo), params.MaintenanceID)
	})
}

// Resolve moves an in-progress defect to resolved.
func (s *defectService) Resolve(ctx context.Context, params domain.ResolveDefectParams) (*domain.DefectReport, error) {
	const op = "defect.resolve"

	resolvedDate := params.ResolvedDate
	if resolvedDate.IsZero() {
		resolvedDate = s.now()
	}
	return s.transition(ctx, op, params.ID, params.Version, func(d *domain.DefectReport) error {
		return d.Resolve(strings.TrimSpace(params.ResolvedBy), resolvedDate)
	})
}

// Close archives a resolved defect.
func (s *defectService) Close(ctx context.Context, params domain.DefectTransitionParams) (*domain.DefectReport, error) {
	const op = "defect.close"

	return s.transition(ctx, op, params.ID, params.Version, func(d *domain.DefectReport) error {
		return d.Close()
	})
}

// transition loads a defect, applies apply, and writes it back guarded by
// the row version.
func (s *defectService) transition(ctx context.Context, op string, id uuid.UUID, expected int32, apply func(*domain.DefectReport) error) (*domain.DefectReport, error) {
	defect, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(op, "defect", expected, defect.Version); err != nil {
		return nil, err
	}

	oldStatus := defect.Status
	if err := apply(defect); err != nil {
		return nil, err
	}

	row, err := s.queries.UpdateDefectReport(ctx, repository.UpdateDefectReportParams{
		ID:            defect.ID,
		Status:        string(defect.Status),
		AssignedTo:    domain.ToNullString(defect.AssignedTo),
		ResolvedDate:  domain.ToNullTime(defect.ResolvedDate),
		ResolvedBy:    domain.ToNullString(defect.ResolvedBy),
		MaintenanceID: domain.ToNullUUID(defect.MaintenanceID),
		Version:       defect.Version,
	})
	if err != nil {
		if isNoRows(err) {
			return nil, staleWrite(op, "defect")
		}
		return nil, domain.Internal(err, op, "failed to update defect report")
	}

	updated := rowToDefect(row)
	metrics.DefectTransitions.WithLabelValues(string(updated.Status)).Inc()
	s.enqueueRecompute(ctx, updated.EquipmentID)

	s.logger.Info("defect status changed",
		"defect_id", updated.ID,
		"equipment_id", updated.EquipmentID,
		"severity", updated.Severity,
		"old_status", oldStatus,
		"new_status", updated.Status,
	)

	return updated, nil
}

// =============================================================================
// GetByID / ListByEquipment
// =============================================================================

// GetByID retrieves a defect by ID.
func (s *defectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DefectReport, error) {
	return s.load(ctx, "defect.get", id)
}

// ListByEquipment returns defects for equipment in triage order.
func (s *defectService) ListByEquipment(ctx context.Context, equipmentID uuid.UUID, statuses []domain.DefectStatus) ([]domain.DefectReport, error) {
	const op = "defect.list"

	if len(statuses) == 0 {
		statuses = allDefectStatuses
	}
	filter := make([]string, 0, len(statuses))
	for _, st := range statuses {
		if !st.IsValid() {
			return nil, domain.Invalid(op, "invalid defect status: "+string(st))
		}
		filter = append(filter, string(st))
	}

	if _, err := s.queries.GetEquipmentByID(ctx, equipmentID); err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "equipment", equipmentID.String())
		}
		return nil, domain.Internal(err, op, "failed to get equipment")
	}

	rows, err := s.queries.ListDefectReportsByEquipmentID(ctx, repository.ListDefectReportsByEquipmentIDParams{
		EquipmentID: equipmentID,
		Statuses:    filter,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list defects")
	}

	defects := make([]domain.DefectReport, 0, len(rows))
	for _, row := range rows {
		defects = append(defects, *rowToDefect(row))
	}
	domain.SortByTriage(defects)
	return defects, nil
}

func (s *defectService) load(ctx context.Context, op string, id uuid.UUID) (*domain.DefectReport, error) {
	row, err := s.queries.GetDefectReportByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "defect", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get defect report")
	}
	return rowToDefect(row), nil
}

func (s *defectService) enqueueRecompute(ctx context.Context, equipmentID uuid.UUID) {
	if _, err := worker.EnqueueRecomputeCompliance(ctx, s.queries, equipmentID); err != nil {
		s.logger.Warn("failed to enqueue compliance recompute", "equipment_id", equipmentID, "error", err)
	}
}

// =============================================================================
// Conversion
// =============================================================================

func rowToDefect(row repository.DefectReport) *domain.DefectReport {
	return &domain.DefectReport{
		ID:            row.ID,
		EquipmentID:   row.EquipmentID,
		Title:         row.Title,
		Description:   domain.NullStringValue(row.Description),
		Severity:      domain.DefectSeverity(row.Severity),
		Status:        domain.DefectStatus(row.Status),
		ReportedDate:  row.ReportedDate,
		ReportedBy:    row.ReportedBy,
		AssignedTo:    domain.NullStringValue(row.AssignedTo),
		ResolvedDate:  domain.NullTimePtr(row.ResolvedDate),
		ResolvedBy:    domain.NullStringValue(row.ResolvedBy),
		MaintenanceID: domain.NullUUIDPtr(row.MaintenanceID),
		SessionID:     domain.NullUUIDPtr(row.SessionID),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
