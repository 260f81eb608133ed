package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentService_Create(t *testing.T) {
	t.Run("registers equipment", func(t *testing.T) {
		_, queries, mock := newMockDB(t)
		svc := NewEquipmentService(queries, discardLogger())
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("-- name: CreateEquipment")).
			WithArgs("Excavator 12", "heavy-machinery", "EX-0012", "Yard B").
			WillReturnRows(equipmentRow(id, domain.EquipmentCategoryHeavyMachinery))

		eq, err := svc.Create(t.Context(), domain.CreateEquipmentParams{
			Name:         "  Excavator 12 ",
			Category:     domain.EquipmentCategoryHeavyMachinery,
			SerialNumber: "EX-0012",
			Location:     "Yard B",
		})

		require.NoError(t, err)
		assert.Equal(t, id, eq.ID)
		assert.Equal(t, "EX-0012", eq.SerialNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate serial number", func(t *testing.T) {
		_, queries, mock := newMockDB(t)
		svc := NewEquipmentService(queries, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("-- name: CreateEquipment")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "equipment_serial_number_key"})

		_, err := svc.Create(t.Context(), domain.CreateEquipmentParams{
			Name:         "Excavator 12",
			Category:     domain.EquipmentCategoryHeavyMachinery,
			SerialNumber: "EX-0012",
		})

		assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	})

	t.Run("database failure is internal", func(t *testing.T) {
		_, queries, mock := newMockDB(t)
		svc := NewEquipmentService(queries, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("-- name: CreateEquipment")).
			WillReturnError(errors.New("connection reset"))

		_, err := svc.Create(t.Context(), domain.CreateEquipmentParams{
			Name:     "Excavator 12",
			Category: domain.EquipmentCategoryHeavyMachinery,
		})

		assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
		assert.NotContains(t, domain.ErrorMessage(err), "connection reset")
	})

	t.Run("validation", func(t *testing.T) {
		_, queries, mock := newMockDB(t)
		svc := NewEquipmentService(queries, discardLogger())

		_, err := svc.Create(t.Context(), domain.CreateEquipmentParams{Name: "", Category: domain.EquipmentCategoryVehicle})
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

		_, err = svc.Create(t.Context(), domain.CreateEquipmentParams{Name: "Forklift", Category: "forklift"})
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEquipmentService_List(t *testing.T) {
	_, queries, mock := newMockDB(t)
	svc := NewEquipmentService(queries, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("-- name: CountEquipment")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery(regexp.QuoteMeta("-- name: ListEquipment")).
		WithArgs(int32(20), int32(20)).
		WillReturnRows(equipmentRow(uuid.New(), domain.EquipmentCategoryVehicle))

	result, err := svc.List(t.Context(), domain.ListParams{Limit: 20, Offset: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(41), result.Total)
	assert.Len(t, result.Equipment, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentService_AddCertificate(t *testing.T) {
	t.Run("queues recompute", func(t *testing.T) {
		_, queries, mock := newMockDB(t)
		svc := NewEquipmentService(queries, discardLogger())
		equipmentID := uuid.New()
		issued := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		expiry := time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("-- name: GetEquipmentByID")).
			WillReturnRows(equipmentRow(equipmentID, domain.EquipmentCategoryLiftingAccessory))
		mock.ExpectQuery(regexp.QuoteMeta("-- name: CreateCertificate")).
			WithArgs(sqlmock.AnyArg(), "LOLER thorough examination", issued, expiry).
			WillReturnRows(sqlmock.NewRows(certCols).
				AddRow(uuid.NewString(), equipmentID.String(), "LOLER thorough examination", issued, expiry, fixedNow))
		expectEnqueue(mock)

		cert, err := svc.AddCertificate(t.Context(), domain.AddCertificateParams{
			EquipmentID: equipmentID,
			Name:        "LOLER thorough examination",
			IssuedDate:  issued,
			ExpiryDate:  expiry,
		})

		require.NoError(t, err)
		assert.True(t, cert.ExpiryDate.Equal(expiry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expiry before issue", func(t *testing.T) {
		_, queries, mock := newMockDB(t)
		svc := NewEquipmentService(queries, discardLogger())

		_, err := svc.AddCertificate(t.Context(), domain.AddCertificateParams{
			EquipmentID: uuid.New(),
			Name:        "Calibration",
			IssuedDate:  fixedNow,
			ExpiryDate:  fixedNow.AddDate(0, 0, -1),
		})

		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
