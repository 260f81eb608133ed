package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/service"
)

// ScheduleWorkOrderRequest is the body of POST /equipment/{id}/work-orders.
type ScheduleWorkOrderRequest struct {
	Title                    string `json:"title"`
	Description              string `json:"description"`
	Type                     string `json:"type"`
	Priority                 string `json:"priority"`
	ScheduledDate            Date   `json:"scheduled_date"`
	EstimatedDurationMinutes int    `json:"estimated_duration_minutes"`
}

// CompleteWorkOrderRequest is the body of POST /work-orders/{id}/complete.
type CompleteWorkOrderRequest struct {
	CompletedBy           string `json:"completed_by"`
	ActualDurationMinutes int    `json:"actual_duration_minutes"`
	Version               int32  `json:"version"`
}

// VersionRequest carries the expected version for plain transitions.
type VersionRequest struct {
	Version int32 `json:"version"`
}

// WorkOrderHandler handles maintenance work order requests.
type WorkOrderHandler struct {
	maintenanceService service.MaintenanceService
	now                service.Clock
	logger             *slog.Logger
}

// NewWorkOrderHandler creates a new WorkOrderHandler.
func NewWorkOrderHandler(maintenanceService service.MaintenanceService, now service.Clock, logger *slog.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{
		maintenanceService: maintenanceService,
		now:                now,
		logger:             logger,
	}
}

// RegisterRoutes registers work order routes on the provided mux.
func (h *WorkOrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /equipment/{id}/work-orders", h.Schedule)
	mux.HandleFunc("GET /equipment/{id}/work-orders", h.List)
	mux.HandleFunc("GET /work-orders/{id}", h.Show)
	mux.HandleFunc("POST /work-orders/{id}/start", h.Start)
	mux.HandleFunc("POST /work-orders/{id}/complete", h.Complete)
	mux.HandleFunc("POST /work-orders/{id}/cancel", h.Cancel)
}

// Schedule handles POST /equipment/{id}/work-orders.
func (h *WorkOrderHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req ScheduleWorkOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	order, err := h.maintenanceService.Schedule(r.Context(), domain.ScheduleWorkOrderParams{
		EquipmentID:       equipmentID,
		Title:             req.Title,
		Description:       req.Description,
		Type:              domain.WorkOrderType(req.Type),
		Priority:          domain.WorkOrderPriority(req.Priority),
		ScheduledDate:     req.ScheduledDate.Time,
		EstimatedDuration: time.Duration(req.EstimatedDurationMinutes) * time.Minute,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkOrderResponse(order, h.now()))
}

// List handles GET /equipment/{id}/work-orders.
func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	orders, err := h.maintenanceService.ListByEquipment(r.Context(), equipmentID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	now := h.now()
	resp := make([]WorkOrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toWorkOrderResponse(&orders[i], now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Show handles GET /work-orders/{id}.
func (h *WorkOrderHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	order, err := h.maintenanceService.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkOrderResponse(order, h.now()))
}

// Start handles POST /work-orders/{id}/start.
func (h *WorkOrderHandler) Start(w http.ResponseWriter, r *http.Request) {
	params, ok := h.transitionParams(w, r)
	if !ok {
		return
	}

	order, err := h.maintenanceService.Start(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkOrderResponse(order, h.now()))
}

// Complete handles POST /work-orders/{id}/complete.
func (h *WorkOrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req CompleteWorkOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	order, err := h.maintenanceService.Complete(r.Context(), domain.CompleteWorkOrderParams{
		ID:             id,
		CompletedBy:    req.CompletedBy,
		ActualDuration: time.Duration(req.ActualDurationMinutes) * time.Minute,
		Version:        req.Version,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkOrderResponse(order, h.now()))
}

// Cancel handles POST /work-orders/{id}/cancel.
func (h *WorkOrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	params, ok := h.transitionParams(w, r)
	if !ok {
		return
	}

	order, err := h.maintenanceService.Cancel(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkOrderResponse(order, h.now()))
}

func (h *WorkOrderHandler) transitionParams(w http.ResponseWriter, r *http.Request) (domain.WorkOrderTransitionParams, bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return domain.WorkOrderTransitionParams{}, false
	}

	var req VersionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return domain.WorkOrderTransitionParams{}, false
	}
	return domain.WorkOrderTransitionParams{ID: id, Version: req.Version}, true
}
