package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const workOrderColumns = `id, equipment_id, title, description, type, priority, status, scheduled_date, estimated_duration_minutes, actual_duration_minutes, started_at, completed_date, completed_by, version, created_at, updated_at`

func scanWorkOrder(row interface{ Scan(...interface{}) error }) (WorkOrder, error) {
	var i WorkOrder
	err := row.Scan(
		&i.ID,
		&i.EquipmentID,
		&i.Title,
		&i.Description,
		&i.Type,
		&i.Priority,
		&i.Status,
		&i.ScheduledDate,
		&i.EstimatedDurationMinutes,
		&i.ActualDurationMinutes,
		&i.StartedAt,
		&i.CompletedDate,
		&i.CompletedBy,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createWorkOrder = `-- name: CreateWorkOrder :one
INSERT INTO work_orders (equipment_id, title, description, type, priority, status, scheduled_date, estimated_duration_minutes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + workOrderColumns

type CreateWorkOrderParams struct {
	EquipmentID              uuid.UUID      `json:"equipment_id"`
	Title                    string         `json:"title"`
	Description              sql.NullString `json:"description"`
	Type                     string         `json:"type"`
	Priority                 string         `json:"priority"`
	Status                   string         `json:"status"`
	ScheduledDate            time.Time      `json:"scheduled_date"`
	EstimatedDurationMinutes int32          `json:"estimated_duration_minutes"`
}

func (q *Queries) CreateWorkOrder(ctx context.Context, arg CreateWorkOrderParams) (WorkOrder, error) {
	row := q.db.QueryRowContext(ctx, createWorkOrder,
		arg.EquipmentID,
		arg.Title,
		arg.Description,
		arg.Type,
		arg.Priority,
		arg.Status,
		arg.ScheduledDate,
		arg.EstimatedDurationMinutes,
	)
	return scanWorkOrder(row)
}

const getWorkOrderByID = `-- name: GetWorkOrderByID :one
SELECT ` + workOrderColumns + `
FROM work_orders
WHERE id = $1
`

func (q *Queries) GetWorkOrderByID(ctx context.Context, id uuid.UUID) (WorkOrder, error) {
	row := q.db.QueryRowContext(ctx, getWorkOrderByID, id)
	return scanWorkOrder(row)
}

const listWorkOrdersByEquipmentID = `-- name: ListWorkOrdersByEquipmentID :many
SELECT ` + workOrderColumns + `
FROM work_orders
WHERE equipment_id = $1
ORDER BY scheduled_date ASC, created_at ASC
`

func (q *Queries) ListWorkOrdersByEquipmentID(ctx context.Context, equipmentID uuid.UUID) ([]WorkOrder, error) {
	rows, err := q.db.QueryContext(ctx, listWorkOrdersByEquipmentID, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WorkOrder
	for rows.Next() {
		i, err := scanWorkOrder(rows)
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

const updateWorkOrder = `-- name: UpdateWorkOrder :one
UPDATE work_orders
SET status = $2,
    started_at = $3,
    completed_date = $4,
    completed_by = $5,
    actual_duration_minutes = $6,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $7
RETURNING ` + workOrderColumns

type UpdateWorkOrderParams struct {
	ID                    uuid.UUID      `json:"id"`
	Status                string         `json:"status"`
	StartedAt             sql.NullTime   `json:"started_at"`
	CompletedDate         sql.NullTime   `json:"completed_date"`
	CompletedBy           sql.NullString `json:"completed_by"`
	ActualDurationMinutes sql.NullInt32  `json:"actual_duration_minutes"`
	Version               int32          `json:"version"`
}

// UpdateWorkOrder returns sql.ErrNoRows when the row's version no longer
// matches arg.Version.
func (q *Queries) UpdateWorkOrder(ctx context.Context, arg UpdateWorkOrderParams) (WorkOrder, error) {
	row := q.db.QueryRowContext(ctx, updateWorkOrder,
		arg.ID,
		arg.Status,
		arg.StartedAt,
		arg.CompletedDate,
		arg.CompletedBy,
		arg.ActualDurationMinutes,
		arg.Version,
	)
	return scanWorkOrder(row)
}
