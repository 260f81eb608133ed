package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type Certificate struct {
	ID          uuid.UUID `json:"id"`
	EquipmentID uuid.UUID `json:"equipment_id"`
	Name        string    `json:"name"`
	IssuedDate  time.Time `json:"issued_date"`
	ExpiryDate  time.Time `json:"expiry_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type ComplianceMetric struct {
	EquipmentID      uuid.UUID      `json:"equipment_id"`
	OverallScore     int32          `json:"overall_score"`
	InspectionScore  int32          `json:"inspection_score"`
	MaintenanceScore int32          `json:"maintenance_score"`
	DocumentScore    int32          `json:"document_score"`
	DefectScore      int32          `json:"defect_score"`
	ExpiryStatus     string         `json:"expiry_status"`
	NextDueDate      sql.NullTime   `json:"next_due_date"`
	NextDueItemLabel sql.NullString `json:"next_due_item_label"`
	LastUpdated      time.Time      `json:"last_updated"`
}

type DefectReport struct {
	ID            uuid.UUID      `json:"id"`
	EquipmentID   uuid.UUID      `json:"equipment_id"`
	Title         string         `json:"title"`
	Description   sql.NullString `json:"description"`
	Severity      string         `json:"severity"`
	Status        string         `json:"status"`
	ReportedDate  time.Time      `json:"reported_date"`
	ReportedBy    string         `json:"reported_by"`
	AssignedTo    sql.NullString `json:"assigned_to"`
	ResolvedDate  sql.NullTime   `json:"resolved_date"`
	ResolvedBy    sql.NullString `json:"resolved_by"`
	MaintenanceID uuid.NullUUID  `json:"maintenance_id"`
	SessionID     uuid.NullUUID  `json:"session_id"`
	Version       int32          `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type Equipment struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	SerialNumber sql.NullString `json:"serial_number"`
	Location     sql.NullString `json:"location"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type InspectionSession struct {
	ID                 uuid.UUID       `json:"id"`
	EquipmentID        uuid.UUID       `json:"equipment_id"`
	Kind               string          `json:"kind"`
	Frequency          string          `json:"frequency"`
	Items              json.RawMessage `json:"items"`
	Status             string          `json:"status"`
	DueDate            time.Time       `json:"due_date"`
	CompletedDate      sql.NullTime    `json:"completed_date"`
	PerformedBy        sql.NullString  `json:"performed_by"`
	NextInspectionDate sql.NullTime    `json:"next_inspection_date"`
	Version            int32           `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type Job struct {
	ID           uuid.UUID             `json:"id"`
	JobType      string                `json:"job_type"`
	Payload      json.RawMessage       `json:"payload"`
	Status       string                `json:"status"`
	Priority     int32                 `json:"priority"`
	Attempts     int32                 `json:"attempts"`
	MaxAttempts  int32                 `json:"max_attempts"`
	ScheduledAt  time.Time             `json:"scheduled_at"`
	StartedAt    sql.NullTime          `json:"started_at"`
	CompletedAt  sql.NullTime          `json:"completed_at"`
	ErrorMessage sql.NullString        `json:"error_message"`
	Result       pqtype.NullRawMessage `json:"result"`
	CreatedAt    time.Time             `json:"created_at"`
}

type WorkOrder struct {
	ID                       uuid.UUID      `json:"id"`
	EquipmentID              uuid.UUID      `json:"equipment_id"`
	Title                    string         `json:"title"`
	Description              sql.NullString `json:"description"`
	Type                     string         `json:"type"`
	Priority                 string         `json:"priority"`
	Status                   string         `json:"status"`
	ScheduledDate            time.Time      `json:"scheduled_date"`
	EstimatedDurationMinutes int32          `json:"estimated_duration_minutes"`
	ActualDurationMinutes    sql.NullInt32  `json:"actual_duration_minutes"`
	StartedAt                sql.NullTime   `json:"started_at"`
	CompletedDate            sql.NullTime   `json:"completed_date"`
	CompletedBy              sql.NullString `json:"completed_by"`
	Version                  int32          `json:"version"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
}
