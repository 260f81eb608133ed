package jobs

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/service"
	"github.com/DukeRupert/plantcheck/internal/storage"
	"github.com/DukeRupert/plantcheck/internal/worker"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// exportURLExpiry is how long presigned export links stay valid.
const exportURLExpiry = 24 * time.Hour

var exportHeader = []string{
	"equipment_id",
	"equipment_name",
	"category",
	"serial_number",
	"overall_score",
	"inspection_score",
	"maintenance_score",
	"document_score",
	"defect_score",
	"expiry_status",
	"next_due_date",
	"next_due_item",
	"last_updated",
}

// ExportComplianceHandler writes every compliance snapshot to a CSV file in
// object storage and records its location on the job.
type ExportComplianceHandler struct {
	compliance service.ComplianceService
	storage    storage.Storage
	now        service.Clock
	logger     *slog.Logger
}

// NewExportComplianceHandler creates a new handler for export jobs.
func NewExportComplianceHandler(
	compliance service.ComplianceService,
	store storage.Storage,
	now service.Clock,
	logger *slog.Logger,
) *ExportComplianceHandler {
	return &ExportComplianceHandler{
		compliance: compliance,
		storage:    store,
		now:        now,
		logger:     logger,
	}
}

// Type returns the job type identifier.
func (h *ExportComplianceHandler) Type() string {
	return worker.JobTypeExportCompliance
}

// Handle executes the export and discards the result.
func (h *ExportComplianceHandler) Handle(ctx context.Context, payload []byte) error {
	_, err := h.HandleResult(ctx, payload)
	return err
}

// HandleResult executes the export and returns an ExportComplianceResult.
func (h *ExportComplianceHandler) HandleResult(ctx context.Context, payload []byte) (json.RawMessage, error) {
	var p worker.ExportCompliancePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
		}
	}

	exportID, ok := worker.JobID(ctx)
	if !ok {
		exportID = uuid.New()
	}

	summaries, err := h.compliance.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list compliance summaries: %w", err)
	}

	data, err := renderComplianceCSV(summaries)
	if err != nil {
		return nil, worker.NewPermanentError(fmt.Errorf("render csv: %w", err))
	}

	key := storage.ComplianceExportKey(h.now(), exportID)
	err = h.storage.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		ContentType: "text/csv; charset=utf-8",
		Overwrite:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	url, err := h.storage.URL(ctx, key, exportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("export url: %w", err)
	}

	h.logger.Info("compliance export written",
		"export_id", exportID,
		"key", key,
		"rows", len(summaries),
		"requested_by", p.RequestedBy,
	)

	return json.Marshal(worker.ExportComplianceResult{
		Key:  key,
		URL:  url,
		Rows: len(summaries),
	})
}

// renderComplianceCSV writes one row per snapshot under exportHeader.
func renderComplianceCSV(summaries []domain.ComplianceSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	for _, s := range summaries {
		nextDue := ""
		if s.NextDueDate != nil {
			nextDue = s.NextDueDate.Format("2006-01-02")
		}
		record := []string{
			s.EquipmentID.String(),
			s.EquipmentName,
			label(string(s.Category)),
			s.SerialNumber,
			strconv.Itoa(s.OverallScore),
			strconv.Itoa(s.InspectionScore),
			strconv.Itoa(s.MaintenanceScore),
			strconv.Itoa(s.DocumentScore),
			strconv.Itoa(s.DefectScore),
			label(string(s.ExpiryStatus)),
			nextDue,
			s.NextDueItemLabel,
			s.LastUpdated.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// label turns an identifier like "heavy-machinery" into "Heavy Machinery".
func label(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return cases.Title(language.English).String(s)
}
