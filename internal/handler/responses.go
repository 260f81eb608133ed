package handler

import (
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/google/uuid"
)

// =============================================================================
// Response Types
// =============================================================================

// EquipmentResponse is the JSON form of domain.Equipment.
type EquipmentResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	SerialNumber string    `json:"serial_number,omitempty"`
	Location     string    `json:"location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EquipmentListResponse is a page of equipment.
type EquipmentListResponse struct {
	Equipment []EquipmentResponse `json:"equipment"`
	Total     int64               `json:"total"`
	Limit     int32               `json:"limit"`
	Offset    int32               `json:"offset"`
}

// CertificateResponse includes the urgency of the certificate relative to
// the request time.
type CertificateResponse struct {
	ID            uuid.UUID `json:"id"`
	EquipmentID   uuid.UUID `json:"equipment_id"`
	Name          string    `json:"name"`
	IssuedDate    string    `json:"issued_date"`
	ExpiryDate    string    `json:"expiry_date"`
	Status        string    `json:"status"`
	DaysRemaining int       `json:"days_remaining"`
}

// SessionResponse is the JSON form of an inspection session.
// Status is the stored status. DisplayStatus is "overdue" for open
// sessions past their due date.
type SessionResponse struct {
	ID                 uuid.UUID               `json:"id"`
	EquipmentID        uuid.UUID               `json:"equipment_id"`
	Kind               string                  `json:"kind"`
	Frequency          string                  `json:"frequency"`
	Status             string                  `json:"status"`
	DisplayStatus      string                  `json:"display_status"`
	DueDate            string                  `json:"due_date"`
	CompletedDate      *time.Time              `json:"completed_date,omitempty"`
	PerformedBy        string                  `json:"performed_by,omitempty"`
	NextInspectionDate *string                 `json:"next_inspection_date,omitempty"`
	Version            int32                   `json:"version"`
	Counts             CountsResponse          `json:"counts"`
	Items              []domain.ChecklistItem  `json:"items"`
}

// CountsResponse summarises checklist progress.
type CountsResponse struct {
	Total      int `json:"total"`
	Required   int `json:"required"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	NotChecked int `json:"not_checked"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	Session     SessionResponse  `json:"session"`
	NextSession *SessionResponse `json:"next_session,omitempty"`
}

// WorkOrderResponse is the JSON form of a work order. Durations are minutes.
type WorkOrderResponse struct {
	ID                       uuid.UUID  `json:"id"`
	EquipmentID              uuid.UUID  `json:"equipment_id"`
	Title                    string     `json:"title"`
	Description              string     `json:"description,omitempty"`
	Type                     string     `json:"type"`
	Priority                 string     `json:"priority"`
	Status                   string     `json:"status"`
	ScheduledDate            string     `json:"scheduled_date"`
	EstimatedDurationMinutes int        `json:"estimated_duration_minutes"`
	ActualDurationMinutes    *int       `json:"actual_duration_minutes,omitempty"`
	StartedAt                *time.Time `json:"started_at,omitempty"`
	CompletedDate            *time.Time `json:"completed_date,omitempty"`
	CompletedBy              string     `json:"completed_by,omitempty"`
	Overdue                  bool       `json:"overdue"`
	Version                  int32      `json:"version"`
}

// DefectResponse is the JSON form of a defect report.
type DefectResponse struct {
	ID            uuid.UUID  `json:"id"`
	EquipmentID   uuid.UUID  `json:"equipment_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Severity      string     `json:"severity"`
	Status        string     `json:"status"`
	ReportedDate  time.Time  `json:"reported_date"`
	ReportedBy    string     `json:"reported_by"`
	AssignedTo    string     `json:"assigned_to,omitempty"`
	ResolvedDate  *time.Time `json:"resolved_date,omitempty"`
	ResolvedBy    string     `json:"resolved_by,omitempty"`
	MaintenanceID *uuid.UUID `json:"maintenance_id,omitempty"`
	SessionID     *uuid.UUID `json:"session_id,omitempty"`
	Version       int32      `json:"version"`
}

// ComplianceResponse is the JSON form of a compliance snapshot.
type ComplianceResponse struct {
	EquipmentID      uuid.UUID `json:"equipment_id"`
	OverallScore     int       `json:"overall_score"`
	InspectionScore  int       `json:"inspection_score"`
	MaintenanceScore int       `json:"maintenance_score"`
	DocumentScore    int       `json:"document_score"`
	DefectScore      int       `json:"defect_score"`
	ExpiryStatus     string    `json:"expiry_status"`
	NextDueDate      *string   `json:"next_due_date"`
	NextDueItemLabel *string   `json:"next_due_item_label"`
	LastUpdated      time.Time `json:"last_updated"`
}

// ComplianceSummaryResponse adds equipment details to a snapshot.
type ComplianceSummaryResponse struct {
	ComplianceResponse
	EquipmentName string `json:"equipment_name"`
	Category      string `json:"category"`
	SerialNumber  string `json:"serial_number,omitempty"`
}

// ExportResponse reports the state of a compliance export.
type ExportResponse struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	RequestedBy string     `json:"requested_by,omitempty"`
	Key         string     `json:"key,omitempty"`
	URL         string     `json:"url,omitempty"`
	Rows        int        `json:"rows"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// =============================================================================
// Converters
// =============================================================================

func toEquipmentResponse(e *domain.Equipment) EquipmentResponse {
	return EquipmentResponse{
		ID:           e.ID,
		Name:         e.Name,
		Category:     e.Category.String(),
		SerialNumber: e.SerialNumber,
		Location:     e.Location,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toCertificateResponse(c *domain.Certificate, now time.Time) CertificateResponse {
	return CertificateResponse{
		ID:            c.ID,
		EquipmentID:   c.EquipmentID,
		Name:          c.Name,
		IssuedDate:    formatDate(c.IssuedDate),
		ExpiryDate:    formatDate(c.ExpiryDate),
		Status:        domain.ClassifyDate(c.ExpiryDate, now).String(),
		DaysRemaining: domain.DaysRemaining(c.ExpiryDate, now),
	}
}

func toSessionResponse(s *domain.InspectionSession, now time.Time) SessionResponse {
	counts := s.Counts()
	items := s.Items
	if items == nil {
		items = []domain.ChecklistItem{}
	}
	return SessionResponse{
		ID:                 s.ID,
		EquipmentID:        s.EquipmentID,
		Kind:               string(s.Kind),
		Frequency:          string(s.Frequency),
		Status:             s.Status.String(),
		DisplayStatus:      s.DisplayStatus(now).String(),
		DueDate:            formatDate(s.DueDate),
		CompletedDate:      s.CompletedDate,
		PerformedBy:        s.PerformedBy,
		NextInspectionDate: formatDatePtr(s.NextInspectionDate),
		Version:            s.Version,
		Counts: CountsResponse{
			Total:      counts.Total,
			Required:   counts.Required,
			Passed:     counts.Passed,
			Failed:     counts.Failed,
			NotChecked: counts.NotChecked,
		},
		Items: items,
	}
}

func toWorkOrderResponse(w *domain.WorkOrder, now time.Time) WorkOrderResponse {
	resp := WorkOrderResponse{
		ID:                       w.ID,
		EquipmentID:              w.EquipmentID,
		Title:                    w.Title,
		Description:              w.Description,
		Type:                     w.Type.String(),
		Priority:                 string(w.Priority),
		Status:                   w.Status.String(),
		ScheduledDate:            formatDate(w.ScheduledDate),
		EstimatedDurationMinutes: int(w.EstimatedDuration / time.Minute),
		StartedAt:                w.StartedAt,
		CompletedDate:            w.CompletedDate,
		CompletedBy:              w.CompletedBy,
		Overdue:                  w.IsOverdue(now),
		Version:                  w.Version,
	}
	if w.ActualDuration != nil {
		m := int(*w.ActualDuration / time.Minute)
		resp.ActualDurationMinutes = &m
	}
	return resp
}

func toDefectResponse(d *domain.DefectReport) DefectResponse {
	return DefectResponse{
		ID:            d.ID,
		EquipmentID:   d.EquipmentID,
		Title:         d.Title,
		Description:   d.Description,
		Severity:      d.Severity.String(),
		Status:        d.Status.String(),
		ReportedDate:  d.ReportedDate,
		ReportedBy:    d.ReportedBy,
		AssignedTo:    d.AssignedTo,
		ResolvedDate:  d.ResolvedDate,
		ResolvedBy:    d.ResolvedBy,
		MaintenanceID: d.MaintenanceID,
		SessionID:     d.SessionID,
		Version:       d.Version,
	}
}

func toComplianceResponse(m *domain.ComplianceMetric) ComplianceResponse {
	resp := ComplianceResponse{
		EquipmentID:      m.EquipmentID,
		OverallScore:     m.OverallScore,
		InspectionScore:  m.InspectionScore,
		MaintenanceScore: m.MaintenanceScore,
		DocumentScore:    m.DocumentScore,
		DefectScore:      m.DefectScore,
		ExpiryStatus:     m.ExpiryStatus.String(),
		NextDueDate:      formatDatePtr(m.NextDueDate),
		LastUpdated:      m.LastUpdated,
	}
	if m.NextDueItemLabel != "" {
		label := m.NextDueItemLabel
		resp.NextDueItemLabel = &label
	}
	return resp
}

func toExportResponse(e *domain.ComplianceExport) ExportResponse {
	return ExportResponse{
		ID:          e.ID,
		Status:      string(e.Status),
		RequestedBy: e.RequestedBy,
		Key:         e.Key,
		URL:         e.URL,
		Rows:        e.Rows,
		Error:       e.Error,
		CreatedAt:   e.CreatedAt,
		CompletedAt: e.CompletedAt,
	}
}
