package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const jobColumns = `id, job_type, payload, status, priority, attempts, max_attempts, scheduled_at, started_at, completed_at, error_message, result, created_at`

func scanJob(row interface{ Scan(...interface{}) error }) (Job, error) {
	var i Job
	err := row.Scan(
		&i.ID,
		&i.JobType,
		&i.Payload,
		&i.Status,
		&i.Priority,
		&i.Attempts,
		&i.MaxAttempts,
		&i.ScheduledAt,
		&i.StartedAt,
		&i.CompletedAt,
		&i.ErrorMessage,
		&i.Result,
		&i.CreatedAt,
	)
	return i, err
}

const dequeueJob = `-- name: DequeueJob :one
SELECT ` + jobColumns + `
FROM jobs
WHERE status = 'pending' AND scheduled_at <= NOW()
ORDER BY priority DESC, scheduled_at ASC
LIMIT 1
FOR UPDATE SKIP LOCKED
`

func (q *Queries) DequeueJob(ctx context.Context) (Job, error) {
	row := q.db.QueryRowContext(ctx, dequeueJob)
	return scanJob(row)
}

const enqueueJob = `-- name: EnqueueJob :one
INSERT INTO jobs (job_type, payload, priority, max_attempts, scheduled_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + jobColumns

type EnqueueJobParams struct {
	JobType     string          `json:"job_type"`
	Payload     json.RawMessage `json:"payload"`
	Priority    int32           `json:"priority"`
	MaxAttempts int32           `json:"max_attempts"`
	ScheduledAt time.Time       `json:"scheduled_at"`
}

func (q *Queries) EnqueueJob(ctx context.Context, arg EnqueueJobParams) (Job, error) {
	row := q.db.QueryRowContext(ctx, enqueueJob,
		arg.JobType,
		arg.Payload,
		arg.Priority,
		arg.MaxAttempts,
		arg.ScheduledAt,
	)
	return scanJob(row)
}

const getJobByID = `-- name: GetJobByID :one
SELECT ` + jobColumns + `
FROM jobs
WHERE id = $1
`

func (q *Queries) GetJobByID(ctx context.Context, id uuid.UUID) (Job, error) {
	row := q.db.QueryRowContext(ctx, getJobByID, id)
	return scanJob(row)
}

const recoverStaleJobs = `-- name: RecoverStaleJobs :execrows
UPDATE jobs
SET status = 'pending',
    started_at = NULL
WHERE status = 'running'
  AND started_at < NOW() - make_interval(secs => $1)
`

func (q *Queries) RecoverStaleJobs(ctx context.Context, thresholdSeconds float64) (int64, error) {
	result, err := q.db.ExecContext(ctx, recoverStaleJobs, thresholdSeconds)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateJobCompleted = `-- name: UpdateJobCompleted :exec
UPDATE jobs
SET status = 'completed',
    completed_at = NOW(),
    result = $2
WHERE id = $1
`

type UpdateJobCompletedParams struct {
	ID     uuid.UUID             `json:"id"`
	Result pqtype.NullRawMessage `json:"result"`
}

func (q *Queries) UpdateJobCompleted(ctx context.Context, arg UpdateJobCompletedParams) error {
	_, err := q.db.ExecContext(ctx, updateJobCompleted, arg.ID, arg.Result)
	return err
}

// Retries back off by 30s * 2^attempts. Permanent failures and exhausted
// attempts are marked failed.
const updateJobFailed = `-- name: UpdateJobFailed :exec
UPDATE jobs
SET status = CASE
        WHEN $3::boolean OR attempts >= max_attempts THEN 'failed'
        ELSE 'pending'
    END,
    error_message = $2,
    started_at = NULL,
    scheduled_at = CASE
        WHEN $3::boolean OR attempts >= max_attempts THEN scheduled_at
        ELSE NOW() + make_interval(secs => 30 * power(2, attempts))
    END
WHERE id = $1
`

type UpdateJobFailedParams struct {
	ID           uuid.UUID      `json:"id"`
	ErrorMessage sql.NullString `json:"error_message"`
	Permanent    bool           `json:"permanent"`
}

func (q *Queries) UpdateJobFailed(ctx context.Context, arg UpdateJobFailedParams) error {
	_, err := q.db.ExecContext(ctx, updateJobFailed, arg.ID, arg.ErrorMessage, arg.Permanent)
	return err
}

const updateJobStarted = `-- name: UpdateJobStarted :exec
UPDATE jobs
SET status = 'running',
    started_at = NOW(),
    attempts = attempts + 1
WHERE id = $1
`

func (q *Queries) UpdateJobStarted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, updateJobStarted, id)
	return err
}
