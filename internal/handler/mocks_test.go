package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/google/uuid"
)

// =============================================================================
// Test Helpers
// =============================================================================

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve routes a request through a mux with the given handler registered.
func serve(t *testing.T, h interface{ RegisterRoutes(*http.ServeMux) }, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// Mock EquipmentService
// =============================================================================

type mockEquipmentService struct {
	CreateFunc           func(ctx context.Context, params domain.CreateEquipmentParams) (*domain.Equipment, error)
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)
	ListFunc             func(ctx context.Context, params domain.ListParams) (*domain.ListEquipmentResult, error)
	AddCertificateFunc   func(ctx context.Context, params domain.AddCertificateParams) (*domain.Certificate, error)
	ListCertificatesFunc func(ctx context.Context, equipmentID uuid.UUID) ([]domain.Certificate, error)
}

func (m *mockEquipmentService) Create(ctx context.Context, params domain.CreateEquipmentParams) (*domain.Equipment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, errors.New("CreateFunc not implemented")
}

func (m *mockEquipmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented")
}

func (m *mockEquipmentService) List(ctx context.Context, params domain.ListParams) (*domain.ListEquipmentResult, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, params)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *mockEquipmentService) AddCertificate(ctx context.Context, params domain.AddCertificateParams) (*domain.Certificate, error) {
	if m.AddCertificateFunc != nil {
		return m.AddCertificateFunc(ctx, params)
	}
	return nil, errors.New("AddCertificateFunc not implemented")
}

func (m *mockEquipmentService) ListCertificates(ctx context.Context, equipmentID uuid.UUID) ([]domain.Certificate, error) {
	if m.ListCertificatesFunc != nil {
		return m.ListCertificatesFunc(ctx, equipmentID)
	}
	return nil, errors.New("ListCertificatesFunc not implemented")
}

// =============================================================================
// Mock ComplianceService
// =============================================================================

type mockComplianceService struct {
	RecomputeFunc     func(ctx context.Context, equipmentID uuid.UUID) (*domain.ComplianceMetric, error)
	GetFunc           func(ctx context.Context, equipmentID uuid.UUID) (*domain.ComplianceMetric, error)
	RecomputeAllFunc  func(ctx context.Context) (int, error)
	ListSummariesFunc func(ctx context.Context) ([]domain.ComplianceSummary, error)
}

func (m *mockComplianceService) Recompute(ctx context.Context, equipmentID uuid.UUID) (*domain.ComplianceMetric, error) {
	if m.RecomputeFunc != nil {
		return m.RecomputeFunc(ctx, equipmentID)
	}
	return nil, errors.New("RecomputeFunc not implemented")
}

func (m *mockComplianceService) Get(ctx context.Context, equipmentID uuid.UUID) (*domain.ComplianceMetric, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, equipmentID)
	}
	return nil, errors.New("GetFunc not implemented")
}

func (m *mockComplianceService) RecomputeAll(ctx context.Context) (int, error) {
	if m.RecomputeAllFunc != nil {
		return m.RecomputeAllFunc(ctx)
	}
	return 0, errors.New("RecomputeAllFunc not implemented")
}

func (m *mockComplianceService) ListSummaries(ctx context.Context) ([]domain.ComplianceSummary, error) {
	if m.ListSummariesFunc != nil {
		return m.ListSummariesFunc(ctx)
	}
	return nil, errors.New("ListSummariesFunc not implemented")
}

// =============================================================================
// Mock InspectionService
// =============================================================================

type mockInspectionService struct {
	ScheduleFunc        func(ctx context.Context, params domain.ScheduleInspectionParams) (*domain.InspectionSession, error)
	StartDailyFunc      func(ctx context.Context, params domain.StartDailyInspectionParams) (*domain.InspectionSession, error)
	RecordResponseFunc  func(ctx context.Context, params domain.RecordItemResponseParams) (*domain.InspectionSession, error)
	SubmitFunc          func(ctx context.Context, params domain.SubmitInspectionParams) (*domain.SubmitInspectionResult, error)
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*domain.InspectionSession, error)
	ListByEquipmentFunc func(ctx context.Context, equipmentID uuid.UUID, params domain.ListParams) ([]domain.InspectionSession, error)
}

func (m *mockInspectionService) Schedule(ctx context.Context, params domain.ScheduleInspectionParams) (*domain.InspectionSession, error) {
	if m.ScheduleFunc != nil {
		return m.ScheduleFunc(ctx, params)
	}
	return nil, errors.New("ScheduleFunc not implemented")
}

func (m *mockInspectionService) StartDaily(ctx context.Context, params domain.StartDailyInspectionParams) (*domain.InspectionSession, error) {
	if m.StartDailyFunc != nil {
		return m.StartDailyFunc(ctx, params)
	}
	return nil, errors.New("StartDailyFunc not implemented")
}

func (m *mockInspectionService) RecordResponse(ctx context.Context, params domain.RecordItemResponseParams) (*domain.InspectionSession, error) {
	if m.RecordResponseFunc != nil {
		return m.RecordResponseFunc(ctx, params)
	}
	return nil, errors.New("RecordResponseFunc not implemented")
}

func (m *mockInspectionService) Submit(ctx context.Context, params domain.SubmitInspectionParams) (*domain.SubmitInspectionResult, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, params)
	}
	return nil, errors.New("SubmitFunc not implemented")
}

func (m *mockInspectionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionSession, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented")
}

func (m *mockInspectionService) ListByEquipment(ctx context.Context, equipmentID uuid.UUID, params domain.ListParams) ([]domain.InspectionSession, error) {
	if m.ListByEquipmentFunc != nil {
		return m.ListByEquipmentFunc(ctx, equipmentID, params)
	}
	return nil, errors.New("ListByEquipmentFunc not implemented")
}

// =============================================================================
// Mock MaintenanceService
// =============================================================================

type mockMaintenanceService struct {
	ScheduleFunc        func(ctx context.Context, params domain.ScheduleWorkOrderParams) (*domain.WorkOrder, error)
	StartFunc           func(ctx context.Context, params domain.WorkOrderTransitionParams) (*domain.WorkOrder, error)
	CompleteFunc        func(ctx context.Context, params domain.CompleteWorkOrderParams) (*domain.WorkOrder, error)
	CancelFunc          func(ctx context.Context, params domain.WorkOrderTransitionParams) (*domain.WorkOrder, error)
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error)
	ListByEquipmentFunc func(ctx context.Context, equipmentID uuid.UUID) ([]domain.WorkOrder, error)
}

func (m *mockMaintenanceService) Schedule(ctx context.Context, params domain.ScheduleWorkOrderParams) (*domain.WorkOrder, error) {
	if m.ScheduleFunc != nil {
		return m.ScheduleFunc(ctx, params)
	}
	return nil, errors.New("ScheduleFunc not implemented")
}

func (m *mockMaintenanceService) Start(ctx context.Context, params domain.WorkOrderTransitionParams) (*domain.WorkOrder, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, params)
	}
	return nil, errors.New("StartFunc not implemented")
}

func (m *mockMaintenanceService) Complete(ctx context.Context, params domain.CompleteWorkOrderParams) (*domain.WorkOrder, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, params)
	}
	return nil, errors.New("CompleteFunc not implemented")
}

func (m *mockMaintenanceService) Cancel(ctx context.Context, params domain.WorkOrderTransitionParams) (*domain.WorkOrder, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, params)
	}
	return nil, errors.New("CancelFunc not implemented")
}

func (m *mockMaintenanceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented")
}

func (m *mockMaintenanceService) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.WorkOrder, error) {
	if m.ListByEquipmentFunc != nil {
		return m.ListByEquipmentFunc(ctx, equipmentID)
	}
	return nil, errors.New("ListByEquipmentFunc not implemented")
}

// =============================================================================
// Mock DefectService
// =============================================================================

type mockDefectService struct {
	ReportFunc          func(ctx context.Context, params domain.ReportDefectParams) (*domain.DefectReport, error)
	StartWorkFunc       func(ctx context.Context, params domain.StartDefectWorkParams) (*domain.DefectReport, error)
	ResolveFunc         func(ctx context.Context, params domain.ResolveDefectParams) (*domain.DefectReport, error)
	CloseFunc           func(ctx context.Context, params domain.DefectTransitionParams) (*domain.DefectReport, error)
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*domain.DefectReport, error)
	ListByEquipmentFunc func(ctx context.Context, equipmentID uuid.UUID, statuses []domain.DefectStatus) ([]domain.DefectReport, error)
}

func (m *mockDefectService) Report(ctx context.Context, params domain.ReportDefectParams) (*domain.DefectReport, error) {
	if m.ReportFunc != nil {
		return m.ReportFunc(ctx, params)
	}
	return nil, errors.New("ReportFunc not implemented")
}

func (m *mockDefectService) StartWork(ctx context.Context, params domain.StartDefectWorkParams) (*domain.DefectReport, error) {
	if m.StartWorkFunc != nil {
		return m.StartWorkFunc(ctx, params)
	}
	return nil, errors.New("StartWorkFunc not implemented")
}

func (m *mockDefectService) Resolve(ctx context.Context, params domain.ResolveDefectParams) (*domain.DefectReport, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, params)
	}
	return nil, errors.New("ResolveFunc not implemented")
}

func (m *mockDefectService) Close(ctx context.Context, params domain.DefectTransitionParams) (*domain.DefectReport, error) {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, params)
	}
	return nil, errors.New("CloseFunc not implemented")
}

func (m *mockDefectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DefectReport, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented")
}

func (m *mockDefectService) ListByEquipment(ctx context.Context, equipmentID uuid.UUID, statuses []domain.DefectStatus) ([]domain.DefectReport, error) {
	if m.ListByEquipmentFunc != nil {
		return m.ListByEquipmentFunc(ctx, equipmentID, statuses)
	}
	return nil, errors.New("ListByEquipmentFunc not implemented")
}

// =============================================================================
// Mock ExportService
// =============================================================================

type mockExportService struct {
	RequestFunc func(ctx context.Context, requestedBy string) (*domain.ComplianceExport, error)
	GetFunc     func(ctx context.Context, id uuid.UUID) (*domain.ComplianceExport, error)
}

func (m *mockExportService) Request(ctx context.Context, requestedBy string) (*domain.ComplianceExport, error) {
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, requestedBy)
	}
	return nil, errors.New("RequestFunc not implemented")
}

func (m *mockExportService) Get(ctx context.Context, id uuid.UUID) (*domain.ComplianceExport, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errors.New("GetFunc not implemented")
}
