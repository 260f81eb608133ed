package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const inspectionSessionColumns = `id, equipment_id, kind, frequency, items, status, due_date, completed_date, performed_by, next_inspection_date, version, created_at, updated_at`

func scanInspectionSession(row interface{ Scan(...interface{}) error }) (InspectionSession, error) {
	var i InspectionSession
	err := row.Scan(
		&i.ID,
		&i.EquipmentID,
		&i.Kind,
		&i.Frequency,
		&i.Items,
		&i.Status,
		&i.DueDate,
		&i.CompletedDate,
		&i.PerformedBy,
		&i.NextInspectionDate,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanInspectionSessions(rows *sql.Rows) ([]InspectionSession, error) {
	defer rows.Close()
	var items []InspectionSession
	for rows.Next() {
		i, err := scanInspectionSession(rows)
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

const createInspectionSession = `-- name: CreateInspectionSession :one
INSERT INTO inspection_sessions (equipment_id, kind, frequency, items, status, due_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + inspectionSessionColumns

type CreateInspectionSessionParams struct {
	EquipmentID uuid.UUID       `json:"equipment_id"`
	Kind        string          `json:"kind"`
	Frequency   string          `json:"frequency"`
	Items       json.RawMessage `json:"items"`
	Status      string          `json:"status"`
	DueDate     time.Time       `json:"due_date"`
}

func (q *Queries) CreateInspectionSession(ctx context.Context, arg CreateInspectionSessionParams) (InspectionSession, error) {
	row := q.db.QueryRowContext(ctx, createInspectionSession,
		arg.EquipmentID,
		arg.Kind,
		arg.Frequency,
		arg.Items,
		arg.Status,
		arg.DueDate,
	)
	return scanInspectionSession(row)
}

const getInspectionSessionByID = `-- name: GetInspectionSessionByID :one
SELECT ` + inspectionSessionColumns + `
FROM inspection_sessions
WHERE id = $1
`

func (q *Queries) GetInspectionSessionByID(ctx context.Context, id uuid.UUID) (InspectionSession, error) {
	row := q.db.QueryRowContext(ctx, getInspectionSessionByID, id)
	return scanInspectionSession(row)
}

const getDailyInspectionSession = `-- name: GetDailyInspectionSession :one
SELECT ` + inspectionSessionColumns + `
FROM inspection_sessions
WHERE equipment_id = $1 AND kind = 'daily' AND due_date = $2
`

type GetDailyInspectionSessionParams struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	DueDate     time.Time `json:"due_date"`
}

func (q *Queries) GetDailyInspectionSession(ctx context.Context, arg GetDailyInspectionSessionParams) (InspectionSession, error) {
	row := q.db.QueryRowContext(ctx, getDailyInspectionSession, arg.EquipmentID, arg.DueDate)
	return scanInspectionSession(row)
}

const listInspectionSessionsByEquipmentID = `-- name: ListInspectionSessionsByEquipmentID :many
SELECT ` + inspectionSessionColumns + `
FROM inspection_sessions
WHERE equipment_id = $1
ORDER BY due_date DESC, created_at DESC
LIMIT $2 OFFSET $3
`

type ListInspectionSessionsByEquipmentIDParams struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	Limit       int32     `json:"limit"`
	Offset      int32     `json:"offset"`
}

func (q *Queries) ListInspectionSessionsByEquipmentID(ctx context.Context, arg ListInspectionSessionsByEquipmentIDParams) ([]InspectionSession, error) {
	rows, err := q.db.QueryContext(ctx, listInspectionSessionsByEquipmentID, arg.EquipmentID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanInspectionSessions(rows)
}

const listInspectionSessionsByStatus = `-- name: ListInspectionSessionsByStatus :many
SELECT ` + inspectionSessionColumns + `
FROM inspection_sessions
WHERE equipment_id = $1 AND status = ANY($2::text[])
ORDER BY due_date ASC
`

type ListInspectionSessionsByStatusParams struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	Statuses    []string  `json:"statuses"`
}

func (q *Queries) ListInspectionSessionsByStatus(ctx context.Context, arg ListInspectionSessionsByStatusParams) ([]InspectionSession, error) {
	rows, err := q.db.QueryContext(ctx, listInspectionSessionsByStatus, arg.EquipmentID, pq.Array(arg.Statuses))
	if err != nil {
		return nil, err
	}
	return scanInspectionSessions(rows)
}

const getLatestCompletedInspectionSession = `-- name: GetLatestCompletedInspectionSession :one
SELECT ` + inspectionSessionColumns + `
FROM inspection_sessions
WHERE equipment_id = $1 AND status = 'completed'
ORDER BY completed_date DESC
LIMIT 1
`

func (q *Queries) GetLatestCompletedInspectionSession(ctx context.Context, equipmentID uuid.UUID) (InspectionSession, error) {
	row := q.db.QueryRowContext(ctx, getLatestCompletedInspectionSession, equipmentID)
	return scanInspectionSession(row)
}

const updateInspectionSession = `-- name: UpdateInspectionSession :one
UPDATE inspection_sessions
SET items = $2,
    status = $3,
    completed_date = $4,
    performed_by = $5,
    next_inspection_date = $6,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $7
RETURNING ` + inspectionSessionColumns

type UpdateInspectionSessionParams struct {
	ID                 uuid.UUID       `json:"id"`
	Items              json.RawMessage `json:"items"`
	Status             string          `json:"status"`
	CompletedDate      sql.NullTime    `json:"completed_date"`
	PerformedBy        sql.NullString  `json:"performed_by"`
	NextInspectionDate sql.NullTime    `json:"next_inspection_date"`
	Version            int32           `json:"version"`
}

// UpdateInspectionSession returns sql.ErrNoRows when the row's version no
// longer matches arg.Version.
func (q *Queries) UpdateInspectionSession(ctx context.Context, arg UpdateInspectionSessionParams) (InspectionSession, error) {
	row := q.db.QueryRowContext(ctx, updateInspectionSession,
		arg.ID,
		arg.Items,
		arg.Status,
		arg.CompletedDate,
		arg.PerformedBy,
		arg.NextInspectionDate,
		arg.Version,
	)
	return scanInspectionSession(row)
}
