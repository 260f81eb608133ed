// Package service contains the business logic layer.
//
// This file implements compliance exports, which are produced by a
// background job and tracked through the job row.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/DukeRupert/plantcheck/internal/worker"
	"github.com/google/uuid"
)

// ExportService defines the interface for compliance export operations.
type ExportService interface {
	// Request queues a CSV export of all compliance snapshots.
	Request(ctx context.Context, requestedBy string) (*domain.ComplianceExport, error)

	// Get returns the state of an export.
	// Returns domain.ENOTFOUND if no export with that ID exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.ComplianceExport, error)
}

type exportService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(queries *repository.Queries, logger *slog.Logger) ExportService {
	return &exportService{
		queries: queries,
		logger:  logger,
	}
}

// Request queues a CSV export of all compliance snapshots.
func (s *exportService) Request(ctx context.Context, requestedBy string) (*domain.ComplianceExport, error) {
	const op = "export.request"

	job, err := worker.EnqueueExportCompliance(ctx, s.queries, strings.TrimSpace(requestedBy))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to queue compliance export")
	}

	s.logger.Info("compliance export requested",
		"job_id", job.ID,
		"requested_by", requestedBy,
	)

	return jobToExport(op, job)
}

// Get returns the state of an export.
func (s *exportService) Get(ctx context.Context, id uuid.UUID) (*domain.ComplianceExport, error) {
	const op = "export.get"

	job, err := s.queries.GetJobByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "export", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get export")
	}
	if job.JobType != worker.JobTypeExportCompliance {
		return nil, domain.NotFound(op, "export", id.String())
	}
	return jobToExport(op, job)
}

func jobToExport(op string, job repository.Job) (*domain.ComplianceExport, error) {
	export := &domain.ComplianceExport{
		ID:          job.ID,
		Status:      domain.ExportStatus(job.Status),
		Error:       domain.NullStringValue(job.ErrorMessage),
		CreatedAt:   job.CreatedAt,
		CompletedAt: domain.NullTimePtr(job.CompletedAt),
	}

	var payload worker.ExportCompliancePayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, domain.Internal(err, op, "failed to decode export payload")
		}
	}
	export.RequestedBy = payload.RequestedBy

	if job.Result.Valid {
		var result worker.ExportComplianceResult
		if err := json.Unmarshal(job.Result.RawMessage, &result); err != nil {
			return nil, domain.Internal(err, op, "failed to decode export result")
		}
		export.Key = result.Key
		export.URL = result.URL
		export.Rows = result.Rows
	}
	return export, nil
}
