// Package handler contains HTTP handlers for the plantcheck API.
//
// This file implements inspection session handlers: scheduling, daily
// checklists, item responses and submission.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/service"
)

// =============================================================================
// Request Types
// =============================================================================

// ScheduleInspectionRequest is the body of POST /equipment/{id}/inspections.
type ScheduleInspectionRequest struct {
	DueDate   Date   `json:"due_date"`
	Frequency string `json:"frequency"`
}

// RecordItemRequest is the body of PUT /inspections/{id}/items/{itemId}.
type RecordItemRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Version int32  `json:"version"`
}

// SubmitInspectionRequest is the body of POST /inspections/{id}/submit.
type SubmitInspectionRequest struct {
	PerformedBy        string `json:"performed_by"`
	NextInspectionDate Date   `json:"next_inspection_date"`
	Version            int32  `json:"version"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// InspectionHandler handles inspection session requests.
type InspectionHandler struct {
	inspectionService service.InspectionService
	now               service.Clock
	logger            *slog.Logger
}

// NewInspectionHandler creates a new InspectionHandler.
func NewInspectionHandler(inspectionService service.InspectionService, now service.Clock, logger *slog.Logger) *InspectionHandler {
	return &InspectionHandler{
		inspectionService: inspectionService,
		now:               now,
		logger:            logger,
	}
}

// RegisterRoutes registers inspection routes on the provided mux.
func (h *InspectionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /equipment/{id}/inspections", h.Schedule)
	mux.HandleFunc("POST /equipment/{id}/inspections/daily", h.StartDaily)
	mux.HandleFunc("GET /equipment/{id}/inspections", h.List)
	mux.HandleFunc("GET /inspections/{id}", h.Show)
	mux.HandleFunc("PUT /inspections/{id}/items/{itemId}", h.RecordItem)
	mux.HandleFunc("POST /inspections/{id}/submit", h.Submit)
}

// =============================================================================
// Handlers
// =============================================================================

// Schedule handles POST /equipment/{id}/inspections.
func (h *InspectionHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req ScheduleInspectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	session, err := h.inspectionService.Schedule(r.Context(), domain.ScheduleInspectionParams{
		EquipmentID: equipmentID,
		DueDate:     req.DueDate.Time,
		Frequency:   domain.Frequency(req.Frequency),
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session, h.now()))
}

// StartDaily handles POST /equipment/{id}/inspections/daily.
// It returns today's daily session, creating it on first use.
func (h *InspectionHandler) StartDaily(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	session, err := h.inspectionService.StartDaily(r.Context(), domain.StartDailyInspectionParams{
		EquipmentID: equipmentID,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session, h.now()))
}

// List handles GET /equipment/{id}/inspections.
func (h *InspectionHandler) List(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params, err := listParams(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	sessions, err := h.inspectionService.ListByEquipment(r.Context(), equipmentID, params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	now := h.now()
	resp := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, toSessionResponse(&sessions[i], now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Show handles GET /inspections/{id}.
func (h *InspectionHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	session, err := h.inspectionService.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session, h.now()))
}

// RecordItem handles PUT /inspections/{id}/items/{itemId}.
func (h *InspectionHandler) RecordItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req RecordItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	session, err := h.inspectionService.RecordResponse(r.Context(), domain.RecordItemResponseParams{
		SessionID: id,
		ItemID:    r.PathValue("itemId"),
		Status:    domain.ItemStatus(req.Status),
		Comment:   req.Comment,
		Version:   req.Version,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session, h.now()))
}

// Submit handles POST /inspections/{id}/submit.
// Unanswered required items are reported in the error's item_ids.
func (h *InspectionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req SubmitInspectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.inspectionService.Submit(r.Context(), domain.SubmitInspectionParams{
		SessionID:          id,
		PerformedBy:        req.PerformedBy,
		NextInspectionDate: req.NextInspectionDate.Ptr(),
		Version:            req.Version,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	now := h.now()
	resp := SubmitResponse{Session: toSessionResponse(result.Session, now)}
	if result.NextSession != nil {
		next := toSessionResponse(result.NextSession, now)
		resp.NextSession = &next
	}
	writeJSON(w, http.StatusOK, resp)
}
