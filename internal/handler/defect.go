package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/service"
	"github.com/google/uuid"
)

// ReportDefectRequest is the body of POST /equipment/{id}/defects.
type ReportDefectRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Severity    string     `json:"severity"`
	ReportedBy  string     `json:"reported_by"`
	SessionID   *uuid.UUID `json:"session_id"`
}

// StartDefectRequest is the body of POST /defects/{id}/start.
type StartDefectRequest struct {
	AssignedTo    string     `json:"assigned_to"`
	MaintenanceID *uuid.UUID `json:"maintenance_id"`
	Version       int32      `json:"version"`
}

// ResolveDefectRequest is the body of POST /defects/{id}/resolve.
type ResolveDefectRequest struct {
	ResolvedBy   string `json:"resolved_by"`
	ResolvedDate Date   `json:"resolved_date"`
	Version      int32  `json:"version"`
}

// DefectHandler handles defect report requests.
type DefectHandler struct {
	defectService service.DefectService
	logger        *slog.Logger
}

// NewDefectHandler creates a new DefectHandler.
func NewDefectHandler(defectService service.DefectService, logger *slog.Logger) *DefectHandler {
	return &DefectHandler{
		defectService: defectService,
		logger:        logger,
	}
}

// RegisterRoutes registers defect routes on the provided mux.
func (h *DefectHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /equipment/{id}/defects", h.Report)
	mux.HandleFunc("GET /equipment/{id}/defects", h.List)
	mux.HandleFunc("GET /defects/{id}", h.Show)
	mux.HandleFunc("POST /defects/{id}/start", h.Start)
	mux.HandleFunc("POST /defects/{id}/resolve", h.Resolve)
	mux.HandleFunc("POST /defects/{id}/close", h.Close)
}

// Report handles POST /equipment/{id}/defects.
func (h *DefectHandler) Report(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req ReportDefectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	defect, err := h.defectService.Report(r.Context(), domain.ReportDefectParams{
		EquipmentID: equipmentID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    domain.DefectSeverity(req.Severity),
		ReportedBy:  req.ReportedBy,
		SessionID:   req.SessionID,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDefectResponse(defect))
}

// List handles GET /equipment/{id}/defects.
// The optional status query parameter takes a comma separated list, e.g.
// ?status=open,in-progress. Results are in triage order.
func (h *DefectHandler) List(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var statuses []domain.DefectStatus
	if v := r.URL.Query().Get("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, domain.DefectStatus(s))
			}
		}
	}

	defects, err := h.defectService.ListByEquipment(r.Context(), equipmentID, statuses)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]DefectResponse, 0, len(defects))
	for i := range defects {
		resp = append(resp, toDefectResponse(&defects[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Show handles GET /defects/{id}.
func (h *DefectHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	defect, err := h.defectService.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toDefectResponse(defect))
}

// Start handles POST /defects/{id}/start.
func (h *DefectHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req StartDefectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	defect, err := h.defectService.StartWork(r.Context(), domain.StartDefectWorkParams{
		ID:            id,
		AssignedTo:    req.AssignedTo,
		MaintenanceID: req.MaintenanceID,
		Version:       req.Version,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toDefectResponse(defect))
}

// Resolve handles POST /defects/{id}/resolve.
func (h *DefectHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req ResolveDefectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	defect, err := h.defectService.Resolve(r.Context(), domain.ResolveDefectParams{
		ID:           id,
		ResolvedBy:   req.ResolvedBy,
		ResolvedDate: req.ResolvedDate.Time,
		Version:      req.Version,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toDefectResponse(defect))
}

// Close handles POST /defects/{id}/close.
func (h *DefectHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req VersionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	defect, err := h.defectService.Close(r.Context(), domain.DefectTransitionParams{ID: id, Version: req.Version})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toDefectResponse(defect))
}
