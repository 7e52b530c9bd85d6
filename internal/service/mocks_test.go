package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/estatedesk/backoffice/internal/models"
)

// mockPropertyStore records calls and returns configured responses.
type mockPropertyStore struct {
	mu    sync.Mutex
	calls []string

	createProperty func(ctx context.Context, actor models.Identity, req models.CreatePropertyRequest) (*models.Property, error)
	getProperty    func(ctx context.Context, id uuid.UUID) (*models.Property, error)
	listProperties func(ctx context.Context, opts models.PropertyListOpts) ([]models.Property, bool, error)
	listPending    func(ctx context.Context, limit, offset int) ([]models.PendingApproval, bool, error)
	updateProperty func(ctx context.Context, id uuid.UUID, actor models.Identity, req models.UpdatePropertyRequest) (*models.Property, error)
}

func (m *mockPropertyStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockPropertyStore) called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (m *mockPropertyStore) CreateProperty(ctx context.Context, actor models.Identity, req models.CreatePropertyRequest) (*models.Property, error) {
	m.record("CreateProperty")
	return m.createProperty(ctx, actor, req)
}

func (m *mockPropertyStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	m.record("GetProperty")
	return m.getProperty(ctx, id)
}

func (m *mockPropertyStore) ListProperties(ctx context.Context, opts models.PropertyListOpts) ([]models.Property, bool, error) {
	m.record("ListProperties")
	return m.listProperties(ctx, opts)
}

func (m *mockPropertyStore) ListPending(ctx context.Context, limit, offset int) ([]models.PendingApproval, bool, error) {
	m.record("ListPending")
	return m.listPending(ctx, limit, offset)
}

func (m *mockPropertyStore) UpdateProperty(ctx context.Context, id uuid.UUID, actor models.Identity, req models.UpdatePropertyRequest) (*models.Property, error) {
	m.record("UpdateProperty")
	return m.updateProperty(ctx, id, actor, req)
}

// mockStepStore returns a fixed approved count.
type mockStepStore struct {
	approved  int
	steps     []models.ApprovalStep
	lastRound int
}

func (m *mockStepStore) CountApproved(_ context.Context, _ uuid.UUID, round int) (int, error) {
	m.lastRound = round
	return m.approved, nil
}

func (m *mockStepStore) ListSteps(_ context.Context, _ uuid.UUID) ([]models.ApprovalStep, error) {
	return m.steps, nil
}

// mockTransitions captures applied transition requests.
type mockTransitions struct {
	mu       sync.Mutex
	requests []models.TransitionRequest

	apply func(ctx context.Context, req models.TransitionRequest) (*models.TransitionResult, error)
}

func (m *mockTransitions) Apply(ctx context.Context, req models.TransitionRequest) (*models.TransitionResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.apply != nil {
		return m.apply(ctx, req)
	}

	return &models.TransitionResult{
		PropertyID:     req.PropertyID,
		PreviousStatus: req.ExpectedStatus,
		NewStatus:      req.NextStatus,
		AuditLogID:     1,
		Property: &models.Property{
			ID:          req.PropertyID,
			Status:      req.NextStatus,
			CreatedByID: "agent-1",
			AgentID:     ptr("agent-2"),
		},
	}, nil
}

func (m *mockTransitions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockAuditReader returns configured audit entries.
type mockAuditReader struct {
	lastOpts models.AuditQueryOpts
	entries  []models.AuditEntry
}

func (m *mockAuditReader) QueryAudit(_ context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	m.lastOpts = opts
	return m.entries, false, nil
}

// mockNotifier collects notifications synchronously.
type mockNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (m *mockNotifier) Notify(n models.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
}

func (m *mockNotifier) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, n := range m.sent {
		out[i] = n.RecipientID
	}
	return out
}

// mockDispatcher is a notification sink that records deliveries.
type mockDispatcher struct {
	mu        sync.Mutex
	name      string
	delivered []models.Notification
	err       error
}

func (m *mockDispatcher) Name() string { return m.name }

func (m *mockDispatcher) Dispatch(_ context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.delivered = append(m.delivered, n)
	return nil
}

func (m *mockDispatcher) getDelivered() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, len(m.delivered))
	copy(out, m.delivered)
	return out
}

// mockBookingStore records calls and returns configured responses.
type mockBookingStore struct {
	mu    sync.Mutex
	calls []string

	createBooking func(ctx context.Context, propertyID uuid.UUID, actor models.Identity, req models.CreateBookingRequest) (*models.Booking, error)
	closeBooking  func(ctx context.Context, id uuid.UUID, target models.BookingStatus) (*models.Booking, error)
	expireDue     func(ctx context.Context, now time.Time) ([]models.Booking, error)
}

func (m *mockBookingStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockBookingStore) CreateBooking(ctx context.Context, propertyID uuid.UUID, actor models.Identity, req models.CreateBookingRequest) (*models.Booking, error) {
	m.record("CreateBooking")
	return m.createBooking(ctx, propertyID, actor, req)
}

func (m *mockBookingStore) GetBooking(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	m.record("GetBooking")
	return &models.Booking{ID: id, Status: models.BookingActive}, nil
}

func (m *mockBookingStore) ListBookings(_ context.Context, _ uuid.UUID, _, _ int) ([]models.Booking, bool, error) {
	m.record("ListBookings")
	return nil, false, nil
}

func (m *mockBookingStore) CloseBooking(ctx context.Context, id uuid.UUID, target models.BookingStatus) (*models.Booking, error) {
	m.record("CloseBooking")
	return m.closeBooking(ctx, id, target)
}

func (m *mockBookingStore) ExpireDue(ctx context.Context, now time.Time) ([]models.Booking, error) {
	m.record("ExpireDue")
	return m.expireDue(ctx, now)
}

func ptr[T any](v T) *T { return &v }
