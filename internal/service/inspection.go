// Package service contains the business logic layer.
//
// This file implements the inspection service: daily and periodic
// checklist sessions for equipment.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/DukeRupert/plantcheck/internal/checklist"
	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/metrics"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/DukeRupert/plantcheck/internal/worker"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// InspectionService defines the interface for inspection session operations.
type InspectionService interface {
	// Schedule creates a pending periodic session from the category template.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	// Returns domain.EINVALID for validation errors.
	Schedule(ctx context.Context, params domain.ScheduleInspectionParams) (*domain.InspectionSession, error)

	// StartDaily returns today's daily session for the equipment, creating it
	// from the category template if it does not exist yet.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	StartDaily(ctx context.Context, params domain.StartDailyInspectionParams) (*domain.InspectionSession, error)

	// RecordResponse records one checklist item response.
	// Returns domain.ENOTFOUND if the session does not exist.
	// Returns domain.EINVALID for an unknown item or status.
	// Returns domain.ECONFLICT if the session is completed or the version is stale.
	RecordResponse(ctx context.Context, params domain.RecordItemResponseParams) (*domain.InspectionSession, error)

	// Submit completes a session. Periodic sessions schedule their successor
	// on the entered next inspection date.
	// Returns domain.EINVALID if required items are unanswered or the next
	// inspection date is missing or not in the future.
	// Returns domain.ECONFLICT if the session is completed or the version is stale.
	Submit(ctx context.Context, params domain.SubmitInspectionParams) (*domain.SubmitInspectionResult, error)

	// GetByID retrieves a session by ID.
	// Returns domain.ENOTFOUND if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionSession, error)

	// ListByEquipment returns sessions for equipment, most recent due date first.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	ListByEquipment(ctx context.Context, equipmentID uuid.UUID, params domain.ListParams) ([]domain.InspectionSession, error)
}

// =============================================================================
// Implementation
// =============================================================================

// inspectionService implements the InspectionService interface.
type inspectionService struct {
	db      *sql.DB
	queries *repository.Queries
	catalog *checklist.Catalog
	now     Clock
	logger  *slog.Logger
}

// NewInspectionService creates a new InspectionService.
//
// Parameters:
// - db: Database handle used for submit transactions
// - queries: Repository queries for database access
// - catalog: Checklist templates per equipment category
// - clock: Source of the current time
// - logger: Structured logger for operation logging
func NewInspectionService(
	db *sql.DB,
	queries *repository.Queries,
	catalog *checklist.Catalog,
	clock Clock,
	logger *slog.Logger,
) InspectionService {
	return &inspectionService{
		db:      db,
		queries: queries,
		catalog: catalog,
		now:     clock,
		logger:  logger,
	}
}

// =============================================================================
// Schedule
// =============================================================================

// Schedule creates a pending periodic session.
func (s *inspectionService) Schedule(ctx context.Context, params domain.ScheduleInspectionParams) (*domain.InspectionSession, error) {
	const op = "inspection.schedule"

	if params.DueDate.IsZero() {
		return nil, domain.Invalid(op, "due date is required")
	}
	if params.Frequency != "" && (!params.Frequency.IsValid() || params.Frequency == domain.FrequencyDaily) {
		return nil, domain.Invalid(op, "invalid periodic frequency: "+string(params.Frequency))
	}

	eq, err := s.getEquipment(ctx, s.queries, op, params.EquipmentID)
	if err != nil {
		return nil, err
	}

	session, err := s.newPeriodic(eq, params.Frequency, params.DueDate)
	if err != nil {
		return nil, err
	}

	created, err := s.insert(ctx, s.queries, op, session)
	if err != nil {
		return nil, err
	}

	if _, err := worker.EnqueueRecomputeCompliance(ctx, s.queries, eq.ID); err != nil {
		s.logger.Warn("failed to enqueue compliance recompute", "equipment_id", eq.ID, "error", err)
	}

	s.logger.Info("periodic inspection scheduled",
		"session_id", created.ID,
		"equipment_id", created.EquipmentID,
		"frequency", created.Frequency,
		"due_date", created.DueDate.Format("2006-01-02"),
	)

	return created, nil
}

// =============================================================================
// StartDaily
// =============================================================================

// StartDaily returns today's daily session, creating it when absent.
func (s *inspectionService) StartDaily(ctx context.Context, params domain.StartDailyInspectionParams) (*domain.InspectionSession, error) {
	const op = "inspection.start_daily"

	eq, err := s.getEquipment(ctx, s.queries, op, params.EquipmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := domain.StartOfDay(now)

	existing, err := s.findDaily(ctx, op, eq.ID, today)
	if err != nil || existing != nil {
		return existing, err
	}

	items, err := s.catalog.Items(domain.EquipmentCategory(eq.Category), domain.SessionKindDaily)
	if err != nil {
		return nil, err
	}

	created, err := s.insert(ctx, s.queries, op, domain.NewDailySession(eq.ID, items, now))
	if err != nil {
		// Lost a race with a concurrent start for the same day
		if isUniqueViolation(err) {
			existing, findErr := s.findDaily(ctx, op, eq.ID, today)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.logger.Info("daily inspection started",
		"session_id", created.ID,
		"equipment_id", created.EquipmentID,
		"items", len(created.Items),
	)

	return created, nil
}

// findDaily returns the daily session for day, or nil if there is none.
func (s *inspectionService) findDaily(ctx context.Context, op string, equipmentID uuid.UUID, day time.Time) (*domain.InspectionSession, error) {
	row, err := s.queries.GetDailyInspectionSession(ctx, repository.GetDailyInspectionSessionParams{
		EquipmentID: equipmentID,
		DueDate:     day,
	})
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, domain.Internal(err, op, "failed to look up daily inspection")
	}
	return rowToSession(op, row)
}

// =============================================================================
// RecordResponse
// =============================================================================

// RecordResponse records one checklist item response.
func (s *inspectionService) RecordResponse(ctx context.Context, params domain.RecordItemResponseParams) (*domain.InspectionSession, error) {
	const op = "inspection.record_response"

	session, err := s.load(ctx, s.queries, op, params.SessionID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(op, "inspection", params.Version, session.Version); err != nil {
		return nil, err
	}

	if err := session.RecordItemResponse(params.ItemID, params.Status, params.Comment); err != nil {
		return nil, err
	}

	updated, err := s.update(ctx, s.queries, op, session)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("checklist item recorded",
		"session_id", updated.ID,
		"item_id", params.ItemID,
		"item_status", params.Status,
	)

	return updated, nil
}

// =============================================================================
// Submit
// =============================================================================

// Submit completes a session and, for periodic sessions, schedules the next.
func (s *inspectionService) Submit(ctx context.Context, params domain.SubmitInspectionParams) (*domain.SubmitInspectionResult, error) {
	const op = "inspection.submit"

	now := s.now()
	result := &domain.SubmitInspectionResult{}

	err := inTx(ctx, s.db, s.queries, func(q *repository.Queries) error {
		session, err := s.load(ctx, q, op, params.SessionID)
		if err != nil {
			return err
		}
		if err := checkVersion(op, "inspection", params.Version, session.Version); err != nil {
			return err
		}

		if session.IsPeriodic() && params.NextInspectionDate != nil {
			if err := session.SetNextInspectionDate(*params.NextInspectionDate); err != nil {
				return err
			}
		}

		if err := session.Submit(params.PerformedBy, now); err != nil {
			metrics.InspectionSubmitRejected.WithLabelValues(submitRejectReason(err)).Inc()
			return err
		}

		updated, err := s.update(ctx, q, op, session)
		if err != nil {
			return err
		}
		result.Session = updated

		if updated.IsPeriodic() {
			eq, err := s.getEquipment(ctx, q, op, updated.EquipmentID)
			if err != nil {
				return err
			}
			next, err := s.newPeriodic(eq, updated.Frequency, *updated.NextInspectionDate)
			if err != nil {
				return err
			}
			result.NextSession, err = s.insert(ctx, q, op, next)
			if err != nil {
				return err
			}
		}

		if _, err := worker.EnqueueRecomputeCompliance(ctx, q, updated.EquipmentID); err != nil {
			return domain.Internal(err, op, "failed to enqueue compliance recompute")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	failed := len(result.Session.FailedItems())
	metrics.InspectionsSubmitted.WithLabelValues(string(result.Session.Kind)).Inc()
	metrics.ChecklistItemsFailed.Add(float64(failed))

	attrs := []any{
		"session_id", result.Session.ID,
		"equipment_id", result.Session.EquipmentID,
		"kind", result.Session.Kind,
		"performed_by", result.Session.PerformedBy,
		"failed_items", failed,
	}
	if result.NextSession != nil {
		attrs = append(attrs, "next_session_id", result.NextSession.ID,
			"next_due_date", result.NextSession.DueDate.Format("2006-01-02"))
	}
	s.logger.Info("inspection submitted", attrs...)

	return result, nil
}

// submitRejectReason labels a rejected submission for metrics.
func submitRejectReason(err error) string {
	var incomplete *domain.IncompleteRequiredItemsError
	var missingDate *domain.MissingNextDueDateError
	var transition *domain.InvalidTransitionError
	switch {
	case errors.As(err, &incomplete):
		return "incomplete_required_items"
	case errors.As(err, &missingDate):
		return "missing_next_due_date"
	case errors.As(err, &transition):
		return "invalid_transition"
	}
	return "other"
}

// =============================================================================
// GetByID / ListByEquipment
// =============================================================================

// GetByID retrieves a session by ID.
func (s *inspectionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionSession, error) {
	return s.load(ctx, s.queries, "inspection.get", id)
}

// ListByEquipment returns sessions for equipment.
func (s *inspectionService) ListByEquipment(ctx context.Context, equipmentID uuid.UUID, params domain.ListParams) ([]domain.InspectionSession, error) {
	const op = "inspection.list"

	if _, err := s.getEquipment(ctx, s.queries, op, equipmentID); err != nil {
		return nil, err
	}

	rows, err := s.queries.ListInspectionSessionsByEquipmentID(ctx, repository.ListInspectionSessionsByEquipmentIDParams{
		EquipmentID: equipmentID,
		Limit:       params.Limit,
		Offset:      params.Offset,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list inspections")
	}

	sessions := make([]domain.InspectionSession, 0, len(rows))
	for _, row := range rows {
		session, err := rowToSession(op, row)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// =============================================================================
// Persistence helpers
// =============================================================================

func (s *inspectionService) getEquipment(ctx context.Context, q *repository.Queries, op string, id uuid.UUID) (repository.Equipment, error) {
	row, err := q.GetEquipmentByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return repository.Equipment{}, domain.NotFound(op, "equipment", id.String())
		}
		return repository.Equipment{}, domain.Internal(err, op, "failed to get equipment")
	}
	return row, nil
}

// newPeriodic builds a pending periodic session from the category template.
// An empty frequency falls back to the template's frequency.
func (s *inspectionService) newPeriodic(eq repository.Equipment, freq domain.Frequency, due time.Time) (domain.InspectionSession, error) {
	category := domain.EquipmentCategory(eq.Category)

	items, err := s.catalog.Items(category, domain.SessionKindPeriodic)
	if err != nil {
		return domain.InspectionSession{}, err
	}
	if freq == "" {
		if freq, err = s.catalog.Frequency(category); err != nil {
			return domain.InspectionSession{}, err
		}
	}
	return domain.NewPeriodicSession(eq.ID, freq, items, due), nil
}

func (s *inspectionService) load(ctx context.Context, q *repository.Queries, op string, id uuid.UUID) (*domain.InspectionSession, error) {
	row, err := q.GetInspectionSessionByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "inspection", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get inspection")
	}
	return rowToSession(op, row)
}

func (s *inspectionService) insert(ctx context.Context, q *repository.Queries, op string, session domain.InspectionSession) (*domain.InspectionSession, error) {
	items, err := json.Marshal(session.Items)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode checklist items")
	}

	row, err := q.CreateInspectionSession(ctx, repository.CreateInspectionSessionParams{
		EquipmentID: session.EquipmentID,
		Kind:        string(session.Kind),
		Frequency:   string(session.Frequency),
		Items:       items,
		Status:      string(session.Status),
		DueDate:     session.DueDate,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create inspection")
	}
	return rowToSession(op, row)
}

func (s *inspectionService) update(ctx context.Context, q *repository.Queries, op string, session *domain.InspectionSession) (*domain.InspectionSession, error) {
	items, err := json.Marshal(session.Items)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode checklist items")
	}

	var performedBy sql.NullString
	if session.PerformedBy != "" {
		performedBy = sql.NullString{String: session.PerformedBy, Valid: true}
	}

	row, err := q.UpdateInspectionSession(ctx, repository.UpdateInspectionSessionParams{
		ID:                 session.ID,
		Items:              items,
		Status:             string(session.Status),
		CompletedDate:      domain.ToNullTime(session.CompletedDate),
		PerformedBy:        performedBy,
		NextInspectionDate: domain.ToNullTime(session.NextInspectionDate),
		Version:            session.Version,
	})
	if err != nil {
		if isNoRows(err) {
			return nil, staleWrite(op, "inspection")
		}
		return nil, domain.Internal(err, op, "failed to update inspection")
	}
	return rowToSession(op, row)
}

// =============================================================================
// Conversion
// =============================================================================

func rowToSession(op string, row repository.InspectionSession) (*domain.InspectionSession, error) {
	var items []domain.ChecklistItem
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &items); err != nil {
			return nil, domain.Internal(err, op, "failed to decode checklist items")
		}
	}

	return &domain.InspectionSession{
		ID:                 row.ID,
		EquipmentID:        row.EquipmentID,
		Kind:               domain.SessionKind(row.Kind),
		Frequency:          domain.Frequency(row.Frequency),
		Items:              items,
		Status:             domain.SessionStatus(row.Status),
		DueDate:            row.DueDate,
		CompletedDate:      domain.NullTimePtr(row.CompletedDate),
		PerformedBy:        domain.NullStringValue(row.PerformedBy),
		NextInspectionDate: domain.NullTimePtr(row.NextInspectionDate),
		Version:            row.Version,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}
