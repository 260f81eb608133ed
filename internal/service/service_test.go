package service

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DukeRupert/plantcheck/internal/checklist"
	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fixedNow is the clock used across service tests.
var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockDB(t *testing.T) (*sql.DB, *repository.Queries, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, repository.New(db), mock
}

func testCatalog(t *testing.T) *checklist.Catalog {
	t.Helper()
	c, err := checklist.Default()
	require.NoError(t, err)
	return c
}

// =============================================================================
// Row builders
// =============================================================================

var (
	equipmentCols = []string{"id", "name", "category", "serial_number", "location", "created_at", "updated_at"}
	sessionCols   = []string{
		"id", "equipment_id", "kind", "frequency", "items", "status", "due_date",
		"completed_date", "performed_by", "next_inspection_date", "version", "created_at", "updated_at",
	}
	workOrderCols = []string{
		"id", "equipment_id", "title", "description", "type", "priority", "status", "scheduled_date",
		"estimated_duration_minutes", "actual_duration_minutes", "started_at", "completed_date",
		"completed_by", "version", "created_at", "updated_at",
	}
	defectCols = []string{
		"id", "equipment_id", "title", "description", "severity", "status", "reported_date",
		"reported_by", "assigned_to", "resolved_date", "resolved_by", "maintenance_id",
		"session_id", "version", "created_at", "updated_at",
	}
	certCols   = []string{"id", "equipment_id", "name", "issued_date", "expiry_date", "created_at"}
	metricCols = []string{
		"equipment_id", "overall_score", "inspection_score", "maintenance_score", "document_score",
		"defect_score", "expiry_status", "next_due_date", "next_due_item_label", "last_updated",
	}
	jobCols = []string{
		"id", "job_type", "payload", "status", "priority", "attempts", "max_attempts",
		"scheduled_at", "started_at", "completed_at", "error_message", "result", "created_at",
	}
)

func equipmentRow(id uuid.UUID, category domain.EquipmentCategory) *sqlmock.Rows {
	return sqlmock.NewRows(equipmentCols).
		AddRow(id.String(), "Excavator 12", string(category), "EX-0012", "Yard B", fixedNow, fixedNow)
}

type sessionFixture struct {
	ID          uuid.UUID
	EquipmentID uuid.UUID
	Kind        domain.SessionKind
	Frequency   domain.Frequency
	Items       []domain.ChecklistItem
	Status      domain.SessionStatus
	DueDate     time.Time
	Completed   *time.Time
	PerformedBy string
	NextDate    *time.Time
	Version     int32
}

func (f sessionFixture) rows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	items, err := json.Marshal(f.Items)
	require.NoError(t, err)

	var completed, next, performedBy interface{}
	if f.Completed != nil {
		completed = *f.Completed
	}
	if f.NextDate != nil {
		next = *f.NextDate
	}
	if f.PerformedBy != "" {
		performedBy = f.PerformedBy
	}
	return sqlmock.NewRows(sessionCols).AddRow(
		f.ID.String(), f.EquipmentID.String(), string(f.Kind), string(f.Frequency), items,
		string(f.Status), f.DueDate, completed, performedBy, next, f.Version, fixedNow, fixedNow,
	)
}

func workOrderRow(id, equipmentID uuid.UUID, status domain.WorkOrderStatus, version int32) *sqlmock.Rows {
	return sqlmock.NewRows(workOrderCols).AddRow(
		id.String(), equipmentID.String(), "Hydraulic service", nil, "preventive", "medium",
		string(status), fixedNow.AddDate(0, 0, 3), 120, nil, nil, nil, nil, version, fixedNow, fixedNow,
	)
}

func defectRow(id, equipmentID uuid.UUID, severity domain.DefectSeverity, status domain.DefectStatus, reported time.Time, version int32) []driver.Value {
	return []driver.Value{
		id.String(), equipmentID.String(), "Cracked boom weld", nil, string(severity), string(status),
		reported, "jo.inspector", nil, nil, nil, nil, nil, version, reported, reported,
	}
}

func jobRow() *sqlmock.Rows {
	return sqlmock.NewRows(jobCols).AddRow(
		uuid.NewString(), "recompute_compliance", []byte(`{}`), "pending", 20, 0, 3,
		fixedNow, nil, nil, nil, nil, fixedNow,
	)
}

func expectEnqueue(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO jobs")).WillReturnRows(jobRow())
}

func answered(items []domain.ChecklistItem, status domain.ItemStatus) []domain.ChecklistItem {
	out := make([]domain.ChecklistItem, len(items))
	for i, item := range items {
		item.Status = status
		out[i] = item
	}
	return out
}
