package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "concurrency too low",
			config: Config{
				Concurrency:       0,
				PollInterval:      5 * time.Second,
				JobTimeout:        5 * time.Minute,
				ShutdownTimeout:   30 * time.Second,
				StaleJobThreshold: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "concurrency too high",
			config: Config{
				Concurrency:       101,
				PollInterval:      5 * time.Second,
				JobTimeout:        5 * time.Minute,
				ShutdownTimeout:   30 * time.Second,
				StaleJobThreshold: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "poll interval too short",
			config: Config{
				Concurrency:       2,
				PollInterval:      500 * time.Millisecond,
				JobTimeout:        5 * time.Minute,
				ShutdownTimeout:   30 * time.Second,
				StaleJobThreshold: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "stale threshold derived from short job timeout",
			config: Config{
				Concurrency:     2,
				PollInterval:    5 * time.Second,
				JobTimeout:      10 * time.Second,
				ShutdownTimeout: 30 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "stale threshold shorter than job timeout",
			config: Config{
				Concurrency:       2,
				PollInterval:      5 * time.Second,
				JobTimeout:        10 * time.Minute,
				ShutdownTimeout:   30 * time.Second,
				StaleJobThreshold: 5 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "sweep disabled",
			config: Config{
				Concurrency:     2,
				PollInterval:    5 * time.Second,
				JobTimeout:      5 * time.Minute,
				ShutdownTimeout: 30 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "sweep interval too short",
			config: Config{
				Concurrency:             2,
				PollInterval:            5 * time.Second,
				JobTimeout:              5 * time.Minute,
				ShutdownTimeout:         30 * time.Second,
				ComplianceSweepInterval: 10 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "negative sweep interval",
			config: Config{
				Concurrency:             2,
				PollInterval:            5 * time.Second,
				JobTimeout:              5 * time.Minute,
				ShutdownTimeout:         30 * time.Second,
				ComplianceSweepInterval: -time.Hour,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStaleThresholdFor(t *testing.T) {
	assert.Equal(t, MinStaleJobThreshold, StaleThresholdFor(10*time.Second))
	assert.Equal(t, MinStaleJobThreshold, StaleThresholdFor(30*time.Second))
	assert.Equal(t, 10*time.Minute, StaleThresholdFor(5*time.Minute))
}

func TestNew_DerivesStaleThreshold(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := DefaultConfig()
	cfg.JobTimeout = 15 * time.Second
	cfg.StaleJobThreshold = 0

	w, err := New(db, repository.New(db), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, err)
	assert.Equal(t, time.Minute, w.config.StaleJobThreshold)
}

func TestSweepOnce_EnqueuesRecomputeAll(t *testing.T) {
	w, mock := newTestWorker(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO jobs")).
		WithArgs(JobTypeRecomputeCompliance, sqlmock.AnyArg(), int32(PriorityLow), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow(
			uuid.NewString(), JobTypeRecomputeCompliance, []byte(`{}`), "pending", PriorityLow, 0, 3,
			now, nil, nil, nil, nil, now,
		))

	w.sweepOnce(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "permanent error",
			err:  NewPermanentError(context.Canceled),
			want: true,
		},
		{
			name: "regular error",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

type stubHandler struct {
	jobType string
	err     error
	calls   int
	jobID   uuid.UUID
}

func (h *stubHandler) Type() string { return h.jobType }

func (h *stubHandler) Handle(ctx context.Context, payload []byte) error {
	h.calls++
	h.jobID, _ = JobID(ctx)
	return h.err
}

type stubResultHandler struct {
	stubHandler
	result json.RawMessage
}

func (h *stubResultHandler) HandleResult(ctx context.Context, payload []byte) (json.RawMessage, error) {
	h.calls++
	return h.result, h.err
}

var jobCols = []string{
	"id", "job_type", "payload", "status", "priority", "attempts", "max_attempts",
	"scheduled_at", "started_at", "completed_at", "error_message", "result", "created_at",
}

func newTestWorker(t *testing.T) (*Worker, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	w, err := New(db, repository.New(db), DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return w, mock
}

func expectDequeue(mock sqlmock.Sqlmock, jobType string, attempts, maxAttempts int32) {
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow(
			uuid.NewString(), jobType, []byte(`{}`), "pending", 10, attempts, maxAttempts,
			now, nil, nil, nil, nil, now,
		))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'running'")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestProcessNextJob_NoJobs(t *testing.T) {
	w, mock := newTestWorker(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WillReturnRows(sqlmock.NewRows(jobCols))
	mock.ExpectRollback()

	err := w.processNextJob(context.Background(), w.logger)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextJob_Success(t *testing.T) {
	w, mock := newTestWorker(t)
	h := &stubHandler{jobType: JobTypeRecomputeCompliance}
	w.Register(h)

	expectDequeue(mock, JobTypeRecomputeCompliance, 0, 3)
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'completed'")).
		WithArgs(sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := w.processNextJob(context.Background(), w.logger)

	require.NoError(t, err)
	assert.Equal(t, 1, h.calls)
	assert.NotEqual(t, uuid.Nil, h.jobID, "handler context should carry the job ID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextJob_StoresResult(t *testing.T) {
	w, mock := newTestWorker(t)
	h := &stubResultHandler{
		stubHandler: stubHandler{jobType: JobTypeExportCompliance},
		result:      json.RawMessage(`{"key":"exports/compliance/a.csv"}`),
	}
	w.Register(h)

	expectDequeue(mock, JobTypeExportCompliance, 0, 3)
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'completed'")).
		WithArgs(sqlmock.AnyArg(), []byte(`{"key":"exports/compliance/a.csv"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, w.processNextJob(context.Background(), w.logger))
	assert.Equal(t, 1, h.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextJob_RetryableFailure(t *testing.T) {
	w, mock := newTestWorker(t)
	w.Register(&stubHandler{jobType: JobTypeRecomputeCompliance, err: errors.New("database unavailable")})

	expectDequeue(mock, JobTypeRecomputeCompliance, 0, 3)
	mock.ExpectExec(regexp.QuoteMeta("error_message = $2")).
		WithArgs(sqlmock.AnyArg(), "database unavailable", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := w.processNextJob(context.Background(), w.logger)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextJob_UnknownTypeIsPermanent(t *testing.T) {
	w, mock := newTestWorker(t)

	expectDequeue(mock, "mystery", 0, 3)
	mock.ExpectExec(regexp.QuoteMeta("error_message = $2")).
		WithArgs(sqlmock.AnyArg(), "no handler registered for job type: mystery", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := w.processNextJob(context.Background(), w.logger)

	assert.True(t, IsPermanent(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
