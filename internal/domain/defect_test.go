package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefectReport_TransitionTo(t *testing.T) {
	statuses := []DefectStatus{DefectStatusOpen, DefectStatusInProgress, DefectStatusResolved, DefectStatusClosed}
	allowed := map[[2]DefectStatus]bool{
		{DefectStatusOpen, DefectStatusInProgress}:     true,
		{DefectStatusInProgress, DefectStatusResolved}: true,
		{DefectStatusResolved, DefectStatusClosed}:     true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			name := string(from) + " to " + string(to)
			t.Run(name, func(t *testing.T) {
				d := &DefectReport{Status: from}
				err := d.TransitionTo(to)

				if allowed[[2]DefectStatus{from, to}] {
					assert.NoError(t, err)
					assert.Equal(t, to, d.Status)
					return
				}
				var transErr *InvalidTransitionError
				require.True(t, errors.As(err, &transErr))
				assert.Equal(t, from, d.Status)
			})
		}
	}
}

func TestDefectReport_OpenCannotClose(t *testing.T) {
	d := &DefectReport{Status: DefectStatusOpen}

	err := d.Close()

	assert.Error(t, err)
	assert.Equal(t, DefectStatusOpen, d.Status)
}

func TestDefectReport_ClosedIsTerminal(t *testing.T) {
	d := &DefectReport{Status: DefectStatusClosed}

	assert.Error(t, d.StartWork("tech", nil))
	assert.Error(t, d.Resolve("tech", time.Now()))
	assert.Error(t, d.Close())
	assert.Equal(t, DefectStatusClosed, d.Status)
}

func TestDefectReport_StartWork(t *testing.T) {
	orderID := uuid.New()
	d := &DefectReport{Status: DefectStatusOpen, AssignedTo: "previous"}

	require.NoError(t, d.StartWork("", &orderID))

	assert.Equal(t, DefectStatusInProgress, d.Status)
	assert.Equal(t, "previous", d.AssignedTo)
	require.NotNil(t, d.MaintenanceID)
	assert.Equal(t, orderID, *d.MaintenanceID)
}

func TestDefectReport_Resolve(t *testing.T) {
	resolvedAt := time.Date(2026, 8, 3, 11, 0, 0, 0, time.UTC)

	t.Run("requires resolved by", func(t *testing.T) {
		d := &DefectReport{Status: DefectStatusInProgress}

		err := d.Resolve("", resolvedAt)

		assert.Equal(t, EINVALID, ErrorCode(err))
		assert.Equal(t, DefectStatusInProgress, d.Status)
	})

	t.Run("requires resolved date", func(t *testing.T) {
		d := &DefectReport{Status: DefectStatusInProgress}

		err := d.Resolve("tech", time.Time{})

		assert.Equal(t, EINVALID, ErrorCode(err))
		assert.Nil(t, d.ResolvedDate)
	})

	t.Run("open defect cannot resolve", func(t *testing.T) {
		d := &DefectReport{Status: DefectStatusOpen}

		err := d.Resolve("tech", resolvedAt)

		var transErr *InvalidTransitionError
		assert.True(t, errors.As(err, &transErr))
	})

	t.Run("records resolver", func(t *testing.T) {
		d := &DefectReport{Status: DefectStatusInProgress}

		require.NoError(t, d.Resolve("tech", resolvedAt))

		assert.Equal(t, DefectStatusResolved, d.Status)
		assert.Equal(t, "tech", d.ResolvedBy)
		assert.Equal(t, resolvedAt, *d.ResolvedDate)

		require.NoError(t, d.Close())
		assert.Equal(t, DefectStatusClosed, d.Status)
	})
}

func TestDefectReport_SeverityDoesNotGate(t *testing.T) {
	for _, sev := range []DefectSeverity{DefectSeverityMinor, DefectSeverityMajor, DefectSeverityCritical} {
		d := &DefectReport{Status: DefectStatusOpen, Severity: sev}
		require.NoError(t, d.StartWork("tech", nil))
		require.NoError(t, d.Resolve("tech", time.Now()))
		require.NoError(t, d.Close())
	}
}

func TestSortByTriage(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	defects := []DefectReport{
		{Title: "minor old", Severity: DefectSeverityMinor, ReportedDate: base},
		{Title: "critical new", Severity: DefectSeverityCritical, ReportedDate: base.AddDate(0, 0, 5)},
		{Title: "major", Severity: DefectSeverityMajor, ReportedDate: base.AddDate(0, 0, 1)},
		{Title: "critical old", Severity: DefectSeverityCritical, ReportedDate: base.AddDate(0, 0, 2)},
	}

	SortByTriage(defects)

	var titles []string
	for _, d := range defects {
		titles = append(titles, d.Title)
	}
	assert.Equal(t, []string{"critical old", "critical new", "major", "minor old"}, titles)
}
