// Package service contains the business logic layer.
//
// This file implements the equipment service for registering assets and
// the certificates that expire against them.
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

// =============================================================================
// Interface Definition
// =============================================================================

// EquipmentService defines the interface for equipment-related operations.
type EquipmentService interface {
	// Create registers a new piece of equipment.
	// Returns domain.EINVALID for validation errors.
	// Returns domain.ECONFLICT if the serial number is already registered.
	Create(ctx context.Context, params domain.CreateEquipmentParams) (*domain.Equipment, error)

	// GetByID retrieves equipment by ID.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)

	// List retrieves a paginated list of equipment ordered by name.
	List(ctx context.Context, params domain.ListParams) (*domain.ListEquipmentResult, error)

	// AddCertificate records a certificate against equipment and queues a
	// compliance recompute.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	// Returns domain.EINVALID for validation errors.
	AddCertificate(ctx context.Context, params domain.AddCertificateParams) (*domain.Certificate, error)

	// ListCertificates returns the certificates for equipment, soonest expiry first.
	// Returns domain.ENOTFOUND if the equipment does not exist.
	ListCertificates(ctx context.Context, equipmentID uuid.UUID) ([]domain.Certificate, error)
}

// =============================================================================
// Implementation
// =============================================================================

// equipmentService implements the EquipmentService interface.
type equipmentService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewEquipmentService creates a new EquipmentService.
func NewEquipmentService(
	queries *repository.Queries,
	logger *slog.Logger,
) EquipmentService {
	return &equipmentService{
		queries: queries,
		logger:  logger,
	}
}

// =============================================================================
// Create
// =============================================================================

// Create registers a new piece of equipment.
func (s *equipmentService) Create(ctx context.Context, params domain.CreateEquipmentParams) (*domain.Equipment, error) {
	const op = "equipment.create"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "name is required")
	}
	if len(name) > 255 {
		return nil, domain.Invalid(op, "name must be 255 characters or less")
	}
	if !params.Category.IsValid() {
		return nil, domain.Invalid(op, "invalid equipment category: "+string(params.Category))
	}

	row, err := s.queries.CreateEquipment(ctx, repository.CreateEquipmentParams{
		Name:         name,
		Category:     string(params.Category),
		SerialNumber: domain.ToNullString(strings.TrimSpace(params.SerialNumber)),
		Location:     domain.ToNullString(strings.TrimSpace(params.Location)),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict(op, "serial number is already registered")
		}
		return nil, domain.Internal(err, op, "failed to create equipment")
	}

	eq := rowToEquipment(row)
	metrics.EquipmentRegistered.WithLabelValues(string(eq.Category)).Inc()

	s.logger.Info("equipment created",
		"equipment_id", eq.ID,
		"category", eq.Category,
		"name", eq.Name,
	)

	return eq, nil
}

// =============================================================================
// GetByID / List
// =============================================================================

// GetByID retrieves equipment by ID.
func (s *equipmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	const op = "equipment.get"

	row, err := s.queries.GetEquipmentByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "equipment", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get equipment")
	}
	return rowToEquipment(row), nil
}

// List retrieves a paginated list of equipment.
func (s *equipmentService) List(ctx context.Context, params domain.ListParams) (*domain.ListEquipmentResult, error) {
	const op = "equipment.list"

	total, err := s.queries.CountEquipment(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count equipment")
	}

	rows, err := s.queries.ListEquipment(ctx, repository.ListEquipmentParams{
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list equipment")
	}

	equipment := make([]domain.Equipment, 0, len(rows))
	for _, row := range rows {
		equipment = append(equipment, *rowToEquipment(row))
	}

	return &domain.ListEquipmentResult{
		Equipment: equipment,
		Total:     total,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}, nil
}

// =============================================================================
// Certificates
// =============================================================================

// AddCertificate records a certificate against equipment.
func (s *equipmentService) AddCertificate(ctx context.Context, params domain.AddCertificateParams) (*domain.Certificate, error) {
	const op = "equipment.add_certificate"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "certificate name is required")
	}
	if params.IssuedDate.IsZero() || params.ExpiryDate.IsZero() {
		return nil, domain.Invalid(op, "issued and expiry dates are required")
	}
	if !params.ExpiryDate.After(params.IssuedDate) {
		return nil, domain.Invalid(op, "expiry date must be after issued date")
	}

	if _, err := s.GetByID(ctx, params.EquipmentID); err != nil {
		return nil, err
	}

	row, err := s.queries.CreateCertificate(ctx, repository.CreateCertificateParams{
		EquipmentID: params.EquipmentID,
		Name:        name,
		IssuedDate:  domain.StartOfDay(params.IssuedDate),
		ExpiryDate:  domain.StartOfDay(params.ExpiryDate),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create certificate")
	}

	if _, err := worker.EnqueueRecomputeCompliance(ctx, s.queries, params.EquipmentID); err != nil {
		s.logger.Warn("failed to enqueue compliance recompute", "equipment_id", params.EquipmentID, "error", err)
	}

	cert := rowToCertificate(row)
	s.logger.Info("certificate added",
		"certificate_id", cert.ID,
		"equipment_id", cert.EquipmentID,
		"expiry_date", cert.ExpiryDate.Format("2006-01-02"),
	)

	return &cert, nil
}

// ListCertificates returns the certificates for equipment.
func (s *equipmentService) ListCertificates(ctx context.Context, equipmentID uuid.UUID) ([]domain.Certificate, error) {
	const op = "equipment.list_certificates"

	if _, err := s.GetByID(ctx, equipmentID); err != nil {
		return nil, err
	}

	rows, err := s.queries.ListCertificatesByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list certificates")
	}

	certs := make([]domain.Certificate, 0, len(rows))
	for _, row := range rows {
		certs = append(certs, rowToCertificate(row))
	}
	return certs, nil
}

// =============================================================================
// Conversion
// =============================================================================

func rowToEquipment(row repository.Equipment) *domain.Equipment {
	return &domain.Equipment{
		ID:           row.ID,
		Name:         row.Name,
		Category:     domain.EquipmentCategory(row.Category),
		SerialNumber: domain.NullStringValue(row.SerialNumber),
		Location:     domain.NullStringValue(row.Location),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func rowToCertificate(row repository.Certificate) domain.Certificate {
	return domain.Certificate{
		ID:          row.ID,
		EquipmentID: row.EquipmentID,
		Name:        row.Name,
		IssuedDate:  row.IssuedDate,
		ExpiryDate:  row.ExpiryDate,
		CreatedAt:   row.CreatedAt,
	}
}
