package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const complianceMetricColumns = `equipment_id, overall_score, inspection_score, maintenance_score, document_score, defect_score, expiry_status, next_due_date, next_due_item_label, last_updated`

const getComplianceMetric = `-- name: GetComplianceMetric :one
SELECT ` + complianceMetricColumns + `
FROM compliance_metrics
WHERE equipment_id = $1
`

func (q *Queries) GetComplianceMetric(ctx context.Context, equipmentID uuid.UUID) (ComplianceMetric, error) {
	row := q.db.QueryRowContext(ctx, getComplianceMetric, equipmentID)
	var i ComplianceMetric
	err := row.Scan(
		&i.EquipmentID,
		&i.OverallScore,
		&i.InspectionScore,
		&i.MaintenanceScore,
		&i.DocumentScore,
		&i.DefectScore,
		&i.ExpiryStatus,
		&i.NextDueDate,
		&i.NextDueItemLabel,
		&i.LastUpdated,
	)
	return i, err
}

const upsertComplianceMetric = `-- name: UpsertComplianceMetric :one
INSERT INTO compliance_metrics (
    equipment_id, overall_score, inspection_score, maintenance_score, document_score,
    defect_score, expiry_status, next_due_date, next_due_item_label, last_updated
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (equipment_id) DO UPDATE
SET overall_score = EXCLUDED.overall_score,
    inspection_score = EXCLUDED.inspection_score,
    maintenance_score = EXCLUDED.maintenance_score,
    document_score = EXCLUDED.document_score,
    defect_score = EXCLUDED.defect_score,
    expiry_status = EXCLUDED.expiry_status,
    next_due_date = EXCLUDED.next_due_date,
    next_due_item_label = EXCLUDED.next_due_item_label,
    last_updated = EXCLUDED.last_updated
RETURNING ` + complianceMetricColumns

type UpsertComplianceMetricParams struct {
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

func (q *Queries) UpsertComplianceMetric(ctx context.Context, arg UpsertComplianceMetricParams) (ComplianceMetric, error) {
	row := q.db.QueryRowContext(ctx, upsertComplianceMetric,
		arg.EquipmentID,
		arg.OverallScore,
		arg.InspectionScore,
		arg.MaintenanceScore,
		arg.DocumentScore,
		arg.DefectScore,
		arg.ExpiryStatus,
		arg.NextDueDate,
		arg.NextDueItemLabel,
		arg.LastUpdated,
	)
	var i ComplianceMetric
	err := row.Scan(
		&i.EquipmentID,
		&i.OverallScore,
		&i.InspectionScore,
		&i.MaintenanceScore,
		&i.DocumentScore,
		&i.DefectScore,
		&i.ExpiryStatus,
		&i.NextDueDate,
		&i.NextDueItemLabel,
		&i.LastUpdated,
	)
	return i, err
}

const listComplianceMetricsWithEquipment = `-- name: ListComplianceMetricsWithEquipment :many
SELECT e.id, e.name, e.category, e.serial_number,
       m.overall_score, m.inspection_score, m.maintenance_score, m.document_score,
       m.defect_score, m.expiry_status, m.next_due_date, m.next_due_item_label, m.last_updated
FROM compliance_metrics m
JOIN equipment e ON e.id = m.equipment_id
ORDER BY m.overall_score ASC, e.name ASC
`

type ListComplianceMetricsWithEquipmentRow struct {
	EquipmentID      uuid.UUID      `json:"equipment_id"`
	EquipmentName    string         `json:"equipment_name"`
	Category         string         `json:"category"`
	SerialNumber     sql.NullString `json:"serial_number"`
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

func (q *Queries) ListComplianceMetricsWithEquipment(ctx context.Context) ([]ListComplianceMetricsWithEquipmentRow, error) {
	rows, err := q.db.QueryContext(ctx, listComplianceMetricsWithEquipment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListComplianceMetricsWithEquipmentRow
	for rows.Next() {
		var i ListComplianceMetricsWithEquipmentRow
		if err := rows.Scan(
			&i.EquipmentID,
			&i.EquipmentName,
			&i.Category,
			&i.SerialNumber,
			&i.OverallScore,
			&i.InspectionScore,
			&i.MaintenanceScore,
			&i.DocumentScore,
			&i.DefectScore,
			&i.ExpiryStatus,
			&i.NextDueDate,
			&i.NextDueItemLabel,
			&i.LastUpdated,
		); err != nil {
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
