package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DukeRupert/plantcheck/internal/metrics"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/google/uuid"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypeRecomputeCompliance = "recompute_compliance"
	JobTypeExportCompliance    = "export_compliance"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// RecomputeCompliancePayload is the payload for compliance recompute jobs.
// A nil EquipmentID recomputes every piece of equipment.
type RecomputeCompliancePayload struct {
	EquipmentID *uuid.UUID `json:"equipment_id,omitempty"`
}

// ExportCompliancePayload is the payload for compliance export jobs.
type ExportCompliancePayload struct {
	RequestedBy string `json:"requested_by,omitempty"`
}

// ExportComplianceResult is stored on the completed export job.
type ExportComplianceResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob is a generic helper for enqueuing jobs with custom options.
// Pass queries bound to a transaction to enqueue atomically with other writes.
func EnqueueJob(
	ctx context.Context,
	queries *repository.Queries,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&params)
	}

	job, err := queries.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	metrics.JobEnqueued(jobType)
	return job, nil
}

// EnqueueRecomputeCompliance enqueues a compliance recompute for one piece
// of equipment. Called after any write that changes its obligations or
// sub-scores.
func EnqueueRecomputeCompliance(
	ctx context.Context,
	queries *repository.Queries,
	equipmentID uuid.UUID,
	opts ...EnqueueOption,
) (repository.Job, error) {
	id := equipmentID
	payload := RecomputeCompliancePayload{EquipmentID: &id}

	opts = append([]EnqueueOption{WithPriority(PriorityHigh)}, opts...)
	return EnqueueJob(ctx, queries, JobTypeRecomputeCompliance, payload, opts...)
}

// EnqueueRecomputeAll enqueues a recompute of every piece of equipment.
// The periodic sweep uses this so expiry statuses age with the calendar.
func EnqueueRecomputeAll(
	ctx context.Context,
	queries *repository.Queries,
	opts ...EnqueueOption,
) (repository.Job, error) {
	opts = append([]EnqueueOption{WithPriority(PriorityLow)}, opts...)
	return EnqueueJob(ctx, queries, JobTypeRecomputeCompliance, RecomputeCompliancePayload{}, opts...)
}

// EnqueueExportCompliance enqueues a CSV export of all compliance snapshots.
func EnqueueExportCompliance(
	ctx context.Context,
	queries *repository.Queries,
	requestedBy string,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := ExportCompliancePayload{RequestedBy: requestedBy}
	return EnqueueJob(ctx, queries, JobTypeExportCompliance, payload, opts...)
}
