package api_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/estatedesk/backoffice/internal/models"
)

type mockApprovalService struct {
	mu    sync.Mutex
	calls []string

	pendingFn  func(ctx context.Context, limit, offset int) ([]models.PendingApproval, bool, error)
	approveFn  func(ctx context.Context, actor models.Identity, id uuid.UUID, req models.ApproveRequest) (*models.TransitionResult, error)
	rejectFn   func(ctx context.Context, actor models.Identity, id uuid.UUID, req models.RejectRequest) (*models.TransitionResult, error)
	archiveFn  func(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error)
	markSoldFn func(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error)
	resubmitFn func(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error)
	historyFn  func(ctx context.Context, id uuid.UUID, limit, offset int) ([]models.ApprovalHistoryEntry, bool, error)
	stepsFn    func(ctx context.Context, id uuid.UUID) ([]models.ApprovalStep, error)
}

func (m *mockApprovalService) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockApprovalService) called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.calls {
		if c == name {
			return true
		}
	}

	return false
}

func (m *mockApprovalService) PendingApprovals(ctx context.Context, limit, offset int) ([]models.PendingApproval, bool, error) {
	m.record("PendingApprovals")
	if m.pendingFn != nil {
		return m.pendingFn(ctx, limit, offset)
	}

	return nil, false, nil
}

func (m *mockApprovalService) Approve(ctx context.Context, actor models.Identity, id uuid.UUID, req models.ApproveRequest) (*models.TransitionResult, error) {
	m.record("Approve")
	if m.approveFn != nil {
		return m.approveFn(ctx, actor, id, req)
	}

	return transitioned(id, models.StatusActive), nil
}

func (m *mockApprovalService) Reject(ctx context.Context, actor models.Identity, id uuid.UUID, req models.RejectRequest) (*models.TransitionResult, error) {
	m.record("Reject")
	if m.rejectFn != nil {
		return m.rejectFn(ctx, actor, id, req)
	}

	return transitioned(id, models.StatusRejected), nil
}

func (m *mockApprovalService) Archive(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error) {
	m.record("Archive")
	if m.archiveFn != nil {
		return m.archiveFn(ctx, actor, id, req)
	}

	return transitioned(id, models.StatusArchived), nil
}

func (m *mockApprovalService) MarkSold(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error) {
	m.record("MarkSold")
	if m.markSoldFn != nil {
		return m.markSoldFn(ctx, actor, id, req)
	}

	return transitioned(id, models.StatusSold), nil
}

func (m *mockApprovalService) Resubmit(ctx context.Context, actor models.Identity, id uuid.UUID, req models.LifecycleRequest) (*models.TransitionResult, error) {
	m.record("Resubmit")
	if m.resubmitFn != nil {
		return m.resubmitFn(ctx, actor, id, req)
	}

	return transitioned(id, models.StatusPending), nil
}

func (m *mockApprovalService) History(ctx context.Context, id uuid.UUID, limit, offset int) ([]models.ApprovalHistoryEntry, bool, error) {
	m.record("History")
	if m.historyFn != nil {
		return m.historyFn(ctx, id, limit, offset)
	}

	return nil, false, nil
}

func (m *mockApprovalService) Steps(ctx context.Context, id uuid.UUID) ([]models.ApprovalStep, error) {
	m.record("Steps")
	if m.stepsFn != nil {
		return m.stepsFn(ctx, id)
	}

	return nil, nil
}

func transitioned(id uuid.UUID, status models.PropertyStatus) *models.TransitionResult {
	return &models.TransitionResult{PropertyID: id, NewStatus: status, AuditLogID: 42}
}

type mockPropertyService struct {
	createFn func(ctx context.Context, actor models.Identity, req models.CreatePropertyRequest) (*models.Property, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.Property, error)
	listFn   func(ctx context.Context, opts models.PropertyListOpts) ([]models.Property, bool, error)
	updateFn func(ctx context.Context, actor models.Identity, id uuid.UUID, req models.UpdatePropertyRequest) (*models.Property, error)
}

func (m *mockPropertyService) CreateProperty(ctx context.Context, actor models.Identity, req models.CreatePropertyRequest) (*models.Property, error) {
	if m.createFn != nil {
		return m.createFn(ctx, actor, req)
	}

	return &models.Property{ID: uuid.New(), Title: req.Title, Status: models.StatusPending, CreatedByID: actor.UserID}, nil
}

func (m *mockPropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}

	return &models.Property{ID: id, Status: models.StatusPending}, nil
}

func (m *mockPropertyService) ListProperties(ctx context.Context, opts models.PropertyListOpts) ([]models.Property, bool, error) {
	if m.listFn != nil {
		return m.listFn(ctx, opts)
	}

	return []models.Property{}, false, nil
}

func (m *mockPropertyService) UpdateProperty(ctx context.Context, actor models.Identity, id uuid.UUID, req models.UpdatePropertyRequest) (*models.Property, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, actor, id, req)
	}

	return &models.Property{ID: id, Status: models.StatusPending}, nil
}

type mockBookingService struct {
	createFn  func(ctx context.Context, actor models.Identity, propertyID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	listFn    func(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]models.Booking, bool, error)
	cancelFn  func(ctx context.Context, actor models.Identity, id uuid.UUID) (*models.Booking, error)
	convertFn func(ctx context.Context, actor models.Identity, id uuid.UUID) (*models.Booking, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, actor models.Identity, propertyID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error) {
	if m.createFn != nil {
		return m.createFn(ctx, actor, propertyID, req)
	}

	return &models.Booking{ID: uuid.New(), PropertyID: propertyID, CustomerID: req.CustomerID, Status: models.BookingActive}, nil
}

func (m *mockBookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}

	return &models.Booking{ID: id, Status: models.BookingActive}, nil
}

func (m *mockBookingService) ListBookings(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]models.Booking, bool, error) {
	if m.listFn != nil {
		return m.listFn(ctx, propertyID, limit, offset)
	}

	return []models.Booking{}, false, nil
}

func (m *mockBookingService) CancelBooking(ctx context.Context, actor models.Identity, id uuid.UUID) (*models.Booking, error) {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, actor, id)
	}

	return &models.Booking{ID: id, Status: models.BookingCancelled}, nil
}

func (m *mockBookingService) ConvertBooking(ctx context.Context, actor models.Identity, id uuid.UUID) (*models.Booking, error) {
	if m.convertFn != nil {
		return m.convertFn(ctx, actor, id)
	}

	return &models.Booking{ID: id, Status: models.BookingConverted}, nil
}

type mockAuditService struct {
	queryFn func(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

func (m *mockAuditService) QueryAudit(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, opts)
	}

	return []models.AuditEntry{}, false, nil
}
