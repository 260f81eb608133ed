package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createCertificate = `-- name: CreateCertificate :one
INSERT INTO certificates (equipment_id, name, issued_date, expiry_date)
VALUES ($1, $2, $3, $4)
RETURNING id, equipment_id, name, issued_date, expiry_date, created_at
`

type CreateCertificateParams struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	Name        string    `json:"name"`
	IssuedDate  time.Time `json:"issued_date"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

func (q *Queries) CreateCertificate(ctx context.Context, arg CreateCertificateParams) (Certificate, error) {
	row := q.db.QueryRowContext(ctx, createCertificate,
		arg.EquipmentID,
		arg.Name,
		arg.IssuedDate,
		arg.ExpiryDate,
	)
	var i Certificate
	err := row.Scan(
		&i.ID,
		&i.EquipmentID,
		&i.Name,
		&i.IssuedDate,
		&i.ExpiryDate,
		&i.CreatedAt,
	)
	return i, err
}

const listCertificatesByEquipmentID = `-- name: ListCertificatesByEquipmentID :many
SELECT id, equipment_id, name, issued_date, expiry_date, created_at
FROM certificates
WHERE equipment_id = $1
ORDER BY expiry_date ASC
`

func (q *Queries) ListCertificatesByEquipmentID(ctx context.Context, equipmentID uuid.UUID) ([]Certificate, error) {
	rows, err := q.db.QueryContext(ctx, listCertificatesByEquipmentID, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Certificate
	for rows.Next() {
		var i Certificate
		if err := rows.Scan(
			&i.ID,
			&i.EquipmentID,
			&i.Name,
			&i.IssuedDate,
			&i.ExpiryDate,
			&i.CreatedAt,
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
