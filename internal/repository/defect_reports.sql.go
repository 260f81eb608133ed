package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const defectReportColumns = `id, equipment_id, title, description, severity, status, reported_date, reported_by, assigned_to, resolved_date, resolved_by, maintenance_id, session_id, version, created_at, updated_at`

func scanDefectReport(row interface{ Scan(...interface{}) error }) (DefectReport, error) {
	var i DefectReport
	err := row.Scan(
		&i.ID,
		&i.EquipmentID,
		&i.Title,
		&i.Description,
		&i.Severity,
		&i.Status,
		&i.ReportedDate,
		&i.ReportedBy,
		&i.AssignedTo,
		&i.ResolvedDate,
		&i.ResolvedBy,
		&i.MaintenanceID,
		&i.SessionID,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createDefectReport = `-- name: CreateDefectReport :one
INSERT INTO defect_reports (equipment_id, title, description, severity, status, reported_by, session_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + defectReportColumns

type CreateDefectReportParams struct {
	EquipmentID uuid.UUID      `json:"equipment_id"`
	Title       string         `json:"title"`
	Description sql.NullString `json:"description"`
	Severity    string         `json:"severity"`
	Status      string         `json:"status"`
	ReportedBy  string         `json:"reported_by"`
	SessionID   uuid.NullUUID  `json:"session_id"`
}

func (q *Queries) CreateDefectReport(ctx context.Context, arg CreateDefectReportParams) (DefectReport, error) {
	row := q.db.QueryRowContext(ctx, createDefectReport,
		arg.EquipmentID,
		arg.Title,
		arg.Description,
		arg.Severity,
		arg.Status,
		arg.ReportedBy,
		arg.SessionID,
	)
	return scanDefectReport(row)
}

const getDefectReportByID = `-- name: GetDefectReportByID :one
SELECT ` + defectReportColumns + `
FROM defect_reports
WHERE id = $1
`

func (q *Queries) GetDefectReportByID(ctx context.Context, id uuid.UUID) (DefectReport, error) {
	row := q.db.QueryRowContext(ctx, getDefectReportByID, id)
	return scanDefectReport(row)
}

const listDefectReportsByEquipmentID = `-- name: ListDefectReportsByEquipmentID :many
SELECT ` + defectReportColumns + `
FROM defect_reports
WHERE equipment_id = $1 AND status = ANY($2::text[])
ORDER BY reported_date ASC
`

type ListDefectReportsByEquipmentIDParams struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	Statuses    []string  `json:"statuses"`
}

func (q *Queries) ListDefectReportsByEquipmentID(ctx context.Context, arg ListDefectReportsByEquipmentIDParams) ([]DefectReport, error) {
	rows, err := q.db.QueryContext(ctx, listDefectReportsByEquipmentID, arg.EquipmentID, pq.Array(arg.Statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DefectReport
	for rows.Next() {
		i, err := scanDefectReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateDefectReport = `-- name: UpdateDefectReport :one
UPDATE defect_reports
SET status = $2,
    assigned_to = $3,
    resolved_date = $4,
    resolved_by = $5,
    maintenance_id = $6,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $7
RETURNING ` + defectReportColumns

type UpdateDefectReportParams struct {
	ID            uuid.UUID      `json:"id"`
	Status        string         `json:"status"`
	AssignedTo    sql.NullString `json:"assigned_to"`
	ResolvedDate  sql.NullTime   `json:"resolved_date"`
	ResolvedBy    sql.NullString `json:"resolved_by"`
	MaintenanceID uuid.NullUUID  `json:"maintenance_id"`
	Version       int32          `json:"version"`
}

// UpdateDefectReport returns sql.ErrNoRows when the row's version no longer
// matches arg.Version.
func (q *Queries) UpdateDefectReport(ctx context.Context, arg UpdateDefectReportParams) (DefectReport, error) {
	row := q.db.QueryRowContext(ctx, updateDefectReport,
		arg.ID,
		arg.Status,
		arg.AssignedTo,
		arg.ResolvedDate,
		arg.ResolvedBy,
		arg.MaintenanceID,
		arg.Version,
	)
	return scanDefectReport(row)
}
