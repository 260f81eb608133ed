package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/plantcheck/internal/service"
)

// RequestExportRequest is the body of POST /compliance/exports.
type RequestExportRequest struct {
	RequestedBy string `json:"requested_by"`
}

// ComplianceHandler serves the fleet-wide compliance overview and CSV
// exports.
type ComplianceHandler struct {
	complianceService service.ComplianceService
	exportService     service.ExportService
	logger            *slog.Logger
}

// NewComplianceHandler creates a new ComplianceHandler.
func NewComplianceHandler(complianceService service.ComplianceService, exportService service.ExportService, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
		exportService:     exportService,
		logger:            logger,
	}
}

// RegisterRoutes registers compliance routes on the provided mux.
func (h *ComplianceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /compliance", h.List)
	mux.HandleFunc("POST /compliance/exports", h.RequestExport)
	mux.HandleFunc("GET /compliance/exports/{id}", h.ShowExport)
}

// List handles GET /compliance. Summaries are ordered worst score first.
func (h *ComplianceHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.complianceService.ListSummaries(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]ComplianceSummaryResponse, 0, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		resp = append(resp, ComplianceSummaryResponse{
			ComplianceResponse: toComplianceResponse(&s.ComplianceMetric),
			EquipmentName:      s.EquipmentName,
			Category:           s.Category.String(),
			SerialNumber:       s.SerialNumber,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// RequestExport handles POST /compliance/exports.
// The export runs in the background; poll the returned ID for its result.
func (h *ComplianceHandler) RequestExport(w http.ResponseWriter, r *http.Request) {
	var req RequestExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	export, err := h.exportService.Request(r.Context(), req.RequestedBy)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", "/compliance/exports/"+export.ID.String())
	writeJSON(w, http.StatusAccepted, toExportResponse(export))
}

// ShowExport handles GET /compliance/exports/{id}.
func (h *ComplianceHandler) ShowExport(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	export, err := h.exportService.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toExportResponse(export))
}
