// Package jobs contains the background job handlers run by the worker.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/service"
	"github.com/DukeRupert/plantcheck/internal/worker"
)

// RecomputeComplianceHandler rebuilds compliance snapshots for one piece of
// equipment, or for all equipment when the payload names none.
type RecomputeComplianceHandler struct {
	compliance service.ComplianceService
	logger     *slog.Logger
}

// NewRecomputeComplianceHandler creates a new handler for recompute jobs.
func NewRecomputeComplianceHandler(compliance service.ComplianceService, logger *slog.Logger) *RecomputeComplianceHandler {
	return &RecomputeComplianceHandler{
		compliance: compliance,
		logger:     logger,
	}
}

// Type returns the job type identifier.
func (h *RecomputeComplianceHandler) Type() string {
	return worker.JobTypeRecomputeCompliance
}

// Handle executes the recompute job.
func (h *RecomputeComplianceHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.RecomputeCompliancePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
		}
	}

	if p.EquipmentID == nil {
		done, err := h.compliance.RecomputeAll(ctx)
		if err != nil {
			return fmt.Errorf("recompute all (%d succeeded): %w", done, err)
		}
		return nil
	}

	metric, err := h.compliance.Recompute(ctx, *p.EquipmentID)
	if err != nil {
		// Equipment deleted since the job was queued
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return worker.NewPermanentError(err)
		}
		return fmt.Errorf("recompute %s: %w", p.EquipmentID, err)
	}

	h.logger.Debug("compliance recomputed",
		"equipment_id", metric.EquipmentID,
		"overall_score", metric.OverallScore,
		"expiry_status", metric.ExpiryStatus,
	)
	return nil
}
