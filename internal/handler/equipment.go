// Package handler contains HTTP handlers for the plantcheck API.
//
// This file implements the equipment register, certificates and the
// per-equipment compliance snapshot.
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

// CreateEquipmentRequest is the body of POST /equipment.
type CreateEquipmentRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	SerialNumber string `json:"serial_number"`
	Location     string `json:"location"`
}

// AddCertificateRequest is the body of POST /equipment/{id}/certificates.
type AddCertificateRequest struct {
	Name       string `json:"name"`
	IssuedDate Date   `json:"issued_date"`
	ExpiryDate Date   `json:"expiry_date"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// EquipmentHandler handles equipment, certificate and compliance requests
// scoped to a single piece of equipment.
type EquipmentHandler struct {
	equipmentService  service.EquipmentService
	complianceService service.ComplianceService
	now               service.Clock
	logger            *slog.Logger
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(
	equipmentService service.EquipmentService,
	complianceService service.ComplianceService,
	now service.Clock,
	logger *slog.Logger,
) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentService:  equipmentService,
		complianceService: complianceService,
		now:               now,
		logger:            logger,
	}
}

// RegisterRoutes registers equipment routes on the provided mux.
func (h *EquipmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /equipment", h.Create)
	mux.HandleFunc("GET /equipment", h.List)
	mux.HandleFunc("GET /equipment/{id}", h.Show)
	mux.HandleFunc("POST /equipment/{id}/certificates", h.AddCertificate)
	mux.HandleFunc("GET /equipment/{id}/certificates", h.ListCertificates)
	mux.HandleFunc("GET /equipment/{id}/compliance", h.Compliance)
	mux.HandleFunc("POST /equipment/{id}/compliance/recompute", h.Recompute)
}

// =============================================================================
// Equipment
// =============================================================================

// Create handles POST /equipment.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEquipmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	eq, err := h.equipmentService.Create(r.Context(), domain.CreateEquipmentParams{
		Name:         req.Name,
		Category:     domain.EquipmentCategory(req.Category),
		SerialNumber: req.SerialNumber,
		Location:     req.Location,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEquipmentResponse(eq))
}

// List handles GET /equipment.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.equipmentService.List(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := EquipmentListResponse{
		Equipment: make([]EquipmentResponse, 0, len(result.Equipment)),
		Total:     result.Total,
		Limit:     result.Limit,
		Offset:    result.Offset,
	}
	for i := range result.Equipment {
		resp.Equipment = append(resp.Equipment, toEquipmentResponse(&result.Equipment[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Show handles GET /equipment/{id}.
func (h *EquipmentHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	eq, err := h.equipmentService.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toEquipmentResponse(eq))
}

// =============================================================================
// Certificates
// =============================================================================

// AddCertificate handles POST /equipment/{id}/certificates.
func (h *EquipmentHandler) AddCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req AddCertificateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	cert, err := h.equipmentService.AddCertificate(r.Context(), domain.AddCertificateParams{
		EquipmentID: id,
		Name:        req.Name,
		IssuedDate:  req.IssuedDate.Time,
		ExpiryDate:  req.ExpiryDate.Time,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCertificateResponse(cert, h.now()))
}

// ListCertificates handles GET /equipment/{id}/certificates.
func (h *EquipmentHandler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	certs, err := h.equipmentService.ListCertificates(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	now := h.now()
	resp := make([]CertificateResponse, 0, len(certs))
	for i := range certs {
		resp = append(resp, toCertificateResponse(&certs[i], now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Compliance
// =============================================================================

// Compliance handles GET /equipment/{id}/compliance.
func (h *EquipmentHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metric, err := h.complianceService.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toComplianceResponse(metric))
}

// Recompute handles POST /equipment/{id}/compliance/recompute.
func (h *EquipmentHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metric, err := h.complianceService.Recompute(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toComplianceResponse(metric))
}
