package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const countEquipment = `-- name: CountEquipment :one
SELECT COUNT(*) FROM equipment
`

func (q *Queries) CountEquipment(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEquipment)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createEquipment = `-- name: CreateEquipment :one
INSERT INTO equipment (name, category, serial_number, location)
VALUES ($1, $2, $3, $4)
RETURNING id, name, category, serial_number, location, created_at, updated_at
`

type CreateEquipmentParams struct {
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	SerialNumber sql.NullString `json:"serial_number"`
	Location     sql.NullString `json:"location"`
}

func (q *Queries) CreateEquipment(ctx context.Context, arg CreateEquipmentParams) (Equipment, error) {
	row := q.db.QueryRowContext(ctx, createEquipment,
		arg.Name,
		arg.Category,
		arg.SerialNumber,
		arg.Location,
	)
	var i Equipment
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Category,
		&i.SerialNumber,
		&i.Location,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getEquipmentByID = `-- name: GetEquipmentByID :one
SELECT id, name, category, serial_number, location, created_at, updated_at
FROM equipment
WHERE id = $1
`

func (q *Queries) GetEquipmentByID(ctx context.Context, id uuid.UUID) (Equipment, error) {
	row := q.db.QueryRowContext(ctx, getEquipmentByID, id)
	var i Equipment
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Category,
		&i.SerialNumber,
		&i.Location,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listEquipment = `-- name: ListEquipment :many
SELECT id, name, category, serial_number, location, created_at, updated_at
FROM equipment
ORDER BY name ASC, id ASC
LIMIT $1 OFFSET $2
`

type ListEquipmentParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListEquipment(ctx context.Context, arg ListEquipmentParams) ([]Equipment, error) {
	rows, err := q.db.QueryContext(ctx, listEquipment, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Equipment
	for rows.Next() {
		var i Equipment
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Category,
			&i.SerialNumber,
			&i.Location,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listEquipmentIDs = `-- name: ListEquipmentIDs :many
SELECT id FROM equipment ORDER BY id
`

func (q *Queries) ListEquipmentIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx, listEquipmentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
