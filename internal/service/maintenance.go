// Package service contains the business logic layer.
//
// This file implements the maintenance service for scheduling and working
// through equipment work orders.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/metrics"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/DukeRupert/plantcheck/internal/worker"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// MaintenanceService defines the interface for work order operations.
type MaintenanceService interface {
	// Schedule creates a scheduled work order.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	// Returns domain.EINVALID for validation errors.
	Schedule(ctx context.Context, params domain.ScheduleWorkOrderParams) (*domain.WorkOrder, error)

	// Start moves a scheduled work order to in-progress.
	// Returns domain.ECONFLICT for an invalid transition or stale version.
	Start(ctx context.Context, params domain.WorkOrderTransitionParams) (*domain.WorkOrder, error)

	// Complete finishes a work order.
	// Returns domain.EINVALID if completed by is missing.
	// Returns domain.ECONFLICT if the order is already completed or cancelled.
	Complete(ctx context.Context, params domain.CompleteWorkOrderParams) (*domain.WorkOrder, error)

	// Cancel abandons a scheduled or in-progress work order.
	// Returns domain.ECONFLICT for an invalid transition or stale version.
	Cancel(ctx context.Context, params domain.WorkOrderTransitionParams) (*domain.WorkOrder, error)

	// GetByID retrieves a work order by ID.
	// Returns domain.ENOTFOUND if the work order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error)

	// ListByEquipment returns work orders for equipment, soonest scheduled first.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.WorkOrder, error)
}

// =============================================================================
// Implementation
// =============================================================================

// maintenanceService implements the MaintenanceService interface.
type maintenanceService struct {
	queries *repository.Queries
	now     Clock
	logger  *slog.Logger
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(
	queries *repository.Queries,
	clock Clock,
	logger *slog.Logger,
) MaintenanceService {
	return &maintenanceService{
		queries: queries,
		now:     clock,
		logger:  logger,
	}
}

// =============================================================================
// Schedule
// =============================================================================

// Schedule creates a scheduled work order.
func (s *maintenanceService) Schedule(ctx context.Context, params domain.ScheduleWorkOrderParams) (*domain.WorkOrder, error) {
	const op = "workorder.schedule"

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, domain.Invalid(op, "title is required")
	}
	if !params.Type.IsValid() {
		return nil, domain.Invalid(op, "invalid work order type: "+string(params.Type))
	}
	priority := params.Priority
	if priority == "" {
		priority = domain.WorkOrderPriorityMedium
	}
	if !priority.IsValid() {
		return nil, domain.Invalid(op, "invalid work order priority: "+string(priority))
	}
	if params.ScheduledDate.IsZero() {
		return nil, domain.Invalid(op, "scheduled date is required")
	}
	if params.EstimatedDuration < 0 {
		return nil, domain.Invalid(op, "estimated duration cannot be negative")
	}

	if _, err := s.queries.GetEquipmentByID(ctx, params.EquipmentID); err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "equipment", params.EquipmentID.String())
		}
		return nil, domain.Internal(err, op, "failed to get equipment")
	}

	row, err := s.queries.CreateWorkOrder(ctx, repository.CreateWorkOrderParams{
		EquipmentID:              params.EquipmentID,
		Title:                    title,
		Description:              domain.ToNullString(strings.TrimSpace(params.Description)),
		Type:                     string(params.Type),
		Priority:                 string(priority),
		Status:                   string(domain.WorkOrderStatusScheduled),
		ScheduledDate:            domain.StartOfDay(params.ScheduledDate),
		EstimatedDurationMinutes: int32(params.EstimatedDuration / time.Minute),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create work order")
	}

	order := rowToWorkOrder(row)
	metrics.WorkOrderTransitions.WithLabelValues(string(order.Status)).Inc()
	s.enqueueRecompute(ctx, order.EquipmentID)

	s.logger.Info("work order scheduled",
		"work_order_id", order.ID,
		"equipment_id", order.EquipmentID,
		"type", order.Type,
		"scheduled_date", order.ScheduledDate.Format("2006-01-02"),
	)

	return order, nil
}

// =============================================================================
// Transitions
// =============================================================================

// Start moves a scheduled work order to in-progress.
func (s *maintenanceService) Start(ctx context.Context, params domain.WorkOrderTransitionParams) (*domain.WorkOrder, error) {
	const op = "workorder.start"
	now := s.now()
	return s.transition(ctx, op, params.ID, params.Version, func(w *domain.WorkOrder) error {
		return w.Start(now)
	})
}

// Complete finishes a work order.
func (s *maintenanceService) Complete(ctx context.Context, params domain.CompleteWorkOrderParams) (*domain.WorkOrder, error) {
	const op = "workorder.complete"
	now := s.now()
	return s.transition(ctx, op, params.ID, params.Version, func(w *domain.WorkOrder) error {
		return w.Complete(strings.TrimSpace(params.CompletedBy), params.ActualDuration, now)
	})
}

// Cancel abandons a work order.
func (s *maintenanceService) Cancel(ctx context.Context, params domain.WorkOrderTransitionParams) (*domain.WorkOrder, error) {
	const op = "workorder.cancel"
	return s.transition(ctx, op, params.ID, params.Version, func(w *domain.WorkOrder) error {
		return w.Cancel()
	})
}

// transition loads a work order, applies apply, and writes it back guarded
// by the row version.
func (s *maintenanceService) transition(ctx context.Context, op string, id uuid.UUID, expected int32, apply func(*domain.WorkOrder) error) (*domain.WorkOrder, error) {
	order, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(op, "work order", expected, order.Version); err != nil {
		return nil, err
	}

	oldStatus := order.Status
	if err := apply(order); err != nil {
		return nil, err
	}

	var actual sql.NullInt32
	if order.ActualDuration != nil {
		actual = sql.NullInt32{Int32: int32(*order.ActualDuration / time.Minute), Valid: true}
	}

	row, err := s.queries.UpdateWorkOrder(ctx, repository.UpdateWorkOrderParams{
		ID:                    order.ID,
		Status:                string(order.Status),
		StartedAt:             domain.ToNullTime(order.StartedAt),
		CompletedDate:         domain.ToNullTime(order.CompletedDate),
		CompletedBy:           domain.ToNullString(order.CompletedBy),
		ActualDurationMinutes: actual,
		Version:               order.Version,
	})
	if err != nil {
		if isNoRows(err) {
			return nil, staleWrite(op, "work order")
		}
		return nil, domain.Internal(err, op, "failed to update work order")
	}

	updated := rowToWorkOrder(row)
	metrics.WorkOrderTransitions.WithLabelValues(string(updated.Status)).Inc()
	s.enqueueRecompute(ctx, updated.EquipmentID)

	s.logger.Info("work order status changed",
		"work_order_id", updated.ID,
		"equipment_id", updated.EquipmentID,
		"old_status", oldStatus,
		"new_status", updated.Status,
	)

	return updated, nil
}

// =============================================================================
// GetByID / ListByEquipment
// =============================================================================

// GetByID retrieves a work order by ID.
func (s *maintenanceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	return s.load(ctx, "workorder.get", id)
}

// ListByEquipment returns work orders for equipment.
func (s *maintenanceService) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.WorkOrder, error) {
	const op = "workorder.list"

	if _, err := s.queries.GetEquipmentByID(ctx, equipmentID); err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "equipment", equipmentID.String())
		}
		return nil, domain.Internal(err, op, "failed to get equipment")
	}

	rows, err := s.queries.ListWorkOrdersByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list work orders")
	}

	orders := make([]domain.WorkOrder, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, *rowToWorkOrder(row))
	}
	return orders, nil
}

func (s *maintenanceService) load(ctx context.Context, op string, id uuid.UUID) (*domain.WorkOrder, error) {
	row, err := s.queries.GetWorkOrderByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "work order", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get work order")
	}
	return rowToWorkOrder(row), nil
}

func (s *maintenanceService) enqueueRecompute(ctx context.Context, equipmentID uuid.UUID) {
	if _, err := worker.EnqueueRecomputeCompliance(ctx, s.queries, equipmentID); err != nil {
		s.logger.Warn("failed to enqueue compliance recompute", "equipment_id", equipmentID, "error", err)
	}
}

// =============================================================================
// Conversion
// =============================================================================

func rowToWorkOrder(row repository.WorkOrder) *domain.WorkOrder {
	order := &domain.WorkOrder{
		ID:                row.ID,
		EquipmentID:       row.EquipmentID,
		Title:             row.Title,
		Description:       domain.NullStringValue(row.Description),
		Type:              domain.WorkOrderType(row.Type),
		Priority:          domain.WorkOrderPriority(row.Priority),
		Status:            domain.WorkOrderStatus(row.Status),
		ScheduledDate:     row.ScheduledDate,
		EstimatedDuration: time.Duration(row.EstimatedDurationMinutes) * time.Minute,
		StartedAt:         domain.NullTimePtr(row.StartedAt),
		CompletedDate:     domain.NullTimePtr(row.CompletedDate),
		CompletedBy:       domain.NullStringValue(row.CompletedBy),
		Version:           row.Version,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if row.ActualDurationMinutes.Valid {
		d := time.Duration(row.ActualDurationMinutes.Int32) * time.Minute
		order.ActualDuration = &d
	}
	return order
}
