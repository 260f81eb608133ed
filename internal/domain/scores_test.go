package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectionScore(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.AddDate(0, 0, -7)

	older := InspectionSession{
		Status:        SessionStatusCompleted,
		CompletedDate: &earlier,
		Items: []ChecklistItem{
			{ID: "a", Status: ItemStatusFailed},
			{ID: "b", Status: ItemStatusFailed},
		},
	}
	latest := InspectionSession{
		Status:        SessionStatusCompleted,
		CompletedDate: &now,
		Items: []ChecklistItem{
			{ID: "a", Status: ItemStatusPassed},
			{ID: "b", Status: ItemStatusPassed},
			{ID: "c", Status: ItemStatusFailed},
			{ID: "d", Status: ItemStatusNotChecked},
		},
	}
	open := InspectionSession{Status: SessionStatusInProgress}

	assert.Equal(t, 100, InspectionScore(nil))
	assert.Equal(t, 100, InspectionScore([]InspectionSession{open}))
	assert.Equal(t, 67, InspectionScore([]InspectionSession{older, latest, open}))
	assert.Equal(t, 0, InspectionScore([]InspectionSession{older}))
}

func TestMaintenanceScore(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -3)
	future := now.AddDate(0, 0, 3)

	orders := []WorkOrder{
		{Status: WorkOrderStatusScheduled, ScheduledDate: past},
		{Status: WorkOrderStatusScheduled, ScheduledDate: future},
		{Status: WorkOrderStatusCompleted, ScheduledDate: past},
		{Status: WorkOrderStatusCancelled, ScheduledDate: past},
	}

	assert.Equal(t, 100, MaintenanceScore(nil, now))
	assert.Equal(t, 67, MaintenanceScore(orders, now))
}

func TestDocumentScore(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	certs := []Certificate{
		{Name: "Registration", ExpiryDate: now.AddDate(0, 6, 0)},
		{Name: "Calibration", ExpiryDate: now.AddDate(0, 0, -1)},
		{Name: "Insurance", ExpiryDate: now.AddDate(1, 0, 0)},
		{Name: "Thorough examination", ExpiryDate: now.AddDate(0, 0, 10)},
	}

	assert.Equal(t, 100, DocumentScore(nil, now))
	assert.Equal(t, 75, DocumentScore(certs, now))

	renewed := append(certs, Certificate{Name: "calibration ", ExpiryDate: now.AddDate(1, 0, 0)})
	assert.Equal(t, 100, DocumentScore(renewed, now))
}

func TestCurrentCertificates(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	expired := Certificate{ID: uuid.New(), Name: "LOLER thorough examination", IssuedDate: now.AddDate(-1, 0, -10), ExpiryDate: now.AddDate(0, 0, -10)}
	renewal := Certificate{ID: uuid.New(), Name: "LOLER thorough examination", IssuedDate: now.AddDate(0, 0, -12), ExpiryDate: now.AddDate(1, 0, 0)}
	registration := Certificate{ID: uuid.New(), Name: "Registration", IssuedDate: now.AddDate(0, -3, 0), ExpiryDate: now.AddDate(0, 9, 0)}

	t.Run("renewal replaces expired certificate", func(t *testing.T) {
		got := CurrentCertificates([]Certificate{expired, registration, renewal})
		require.Len(t, got, 2)
		assert.Equal(t, registration.ID, got[0].ID)
		assert.Equal(t, renewal.ID, got[1].ID)
	})

	t.Run("order of rows does not matter", func(t *testing.T) {
		got := CurrentCertificates([]Certificate{renewal, expired})
		require.Len(t, got, 1)
		assert.Equal(t, renewal.ID, got[0].ID)
	})

	t.Run("same expiry keeps later issue", func(t *testing.T) {
		reissued := renewal
		reissued.ID = uuid.New()
		reissued.IssuedDate = now
		got := CurrentCertificates([]Certificate{reissued, renewal})
		require.Len(t, got, 1)
		assert.Equal(t, reissued.ID, got[0].ID)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, CurrentCertificates(nil))
	})
}

func TestDefectScore(t *testing.T) {
	tests := []struct {
		name    string
		defects []DefectReport
		want    int
	}{
		{"none", nil, 100},
		{"one minor open", []DefectReport{{Severity: DefectSeverityMinor, Status: DefectStatusOpen}}, 95},
		{"resolved ignored", []DefectReport{{Severity: DefectSeverityCritical, Status: DefectStatusResolved}}, 100},
		{"closed ignored", []DefectReport{{Severity: DefectSeverityCritical, Status: DefectStatusClosed}}, 100},
		{"mixed", []DefectReport{
			{Severity: DefectSeverityCritical, Status: DefectStatusOpen},
			{Severity: DefectSeverityMajor, Status: DefectStatusInProgress},
		}, 40},
		{"floored", []DefectReport{
			{Severity: DefectSeverityCritical, Status: DefectStatusOpen},
			{Severity: DefectSeverityCritical, Status: DefectStatusOpen},
			{Severity: DefectSeverityCritical, Status: DefectStatusOpen},
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefectScore(tt.defects))
		})
	}
}
