package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/imagehost"
	"lms-api/internal/payment"
)

type mockOrderRepo struct {
	orders []domain.Order
}

func (m *mockOrderRepo) Create(_ context.Context, order domain.Order) error {
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	return m.orders, nil
}

func (m *mockOrderRepo) CountByMonth(_ context.Context, _ time.Time) ([]domain.MonthCount, error) {
	return nil, nil
}

type mockPaymentProvider struct {
	status string
}

func (m *mockPaymentProvider) CreateIntent(_ context.Context, _ int64, _ string) (payment.Intent, error) {
	return payment.Intent{ID: "pi_1", Status: m.status}, nil
}

func (m *mockPaymentProvider) RetrieveIntent(_ context.Context, id string) (payment.Intent, error) {
	return payment.Intent{ID: id, Status: m.status}, nil
}

type orderFixture struct {
	svc        *OrderService
	userRepo   *mockUserRepo
	courseRepo *mockCourseRepo
	orderRepo  *mockOrderRepo
	notifs     *mockNotificationRepo
	sender     *captureSender
	sessions   SessionStore
}

func newOrderFixture(t *testing.T, payStatus string) orderFixture {
	t.Helper()
	userRepo := newMockUserRepo()
	courseRepo := newMockCourseRepo()
	orderRepo := &mockOrderRepo{}
	notifs := &mockNotificationRepo{}
	sender := newCaptureSender()
	sessions := NewMemorySessionStore()
	logger := zap.NewNop()
	images := imagehost.NewDisabledUploader("test")

	userSvc := NewUserService(logger, userRepo, sessions, newTestTokenService(), sender, images, time.Hour)
	courseSvc := NewCourseService(logger, courseRepo, notifs, NewMemoryCourseCache(time.Hour), images, sender)
	orderSvc := NewOrderService(logger, orderRepo, notifs, userSvc, courseSvc, sender, &mockPaymentProvider{status: payStatus})

	return orderFixture{
		svc:        orderSvc,
		userRepo:   userRepo,
		courseRepo: courseRepo,
		orderRepo:  orderRepo,
		notifs:     notifs,
		sender:     sender,
		sessions:   sessions,
	}
}

func TestOrderService_CreateHappyPath(t *testing.T) {
	f := newOrderFixture(t, "succeeded")
	ctx := context.Background()

	user := domain.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Courses: []string{}}
	f.userRepo.Create(ctx, user)
	f.sessions.Put(ctx, "u1", user.Snapshot(), time.Hour)
	seedCourse(f.courseRepo, "c1")

	raw := json.RawMessage(`{"id":"pi_1","status":"succeeded"}`)
	order, err := f.svc.Create(ctx, user.Snapshot(), "c1", raw)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.UserID != "u1" || order.CourseID != "c1" {
		t.Fatalf("unexpected order: %+v", order)
	}

	if len(f.orderRepo.orders) != 1 {
		t.Fatalf("expected persisted order, got %d", len(f.orderRepo.orders))
	}
	if len(f.sender.orderEmails) != 1 || f.sender.orderEmails[0] != "ana@example.com" {
		t.Fatalf("expected confirmation email, got %v", f.sender.orderEmails)
	}

	updated, _ := f.userRepo.GetByID(ctx, "u1")
	if !updated.OwnsCourse("c1") {
		t.Fatalf("expected course appended to buyer")
	}
	snap, err := f.sessions.Get(ctx, "u1")
	if err != nil || !snap.OwnsCourse("c1") {
		t.Fatalf("expected session snapshot refreshed, err=%v snap=%+v", err, snap)
	}

	if f.courseRepo.courses["c1"].Purchased != 1 {
		t.Fatalf("expected purchased counter incremented")
	}
	if len(f.notifs.created) != 1 || f.notifs.created[0].Title != "New Order" {
		t.Fatalf("expected new order notification, got %+v", f.notifs.created)
	}
}

func TestOrderService_RejectsDuplicatePurchase(t *testing.T) {
	f := newOrderFixture(t, "succeeded")
	ctx := context.Background()

	user := domain.User{ID: "u1", Email: "ana@example.com", Courses: []string{"c1"}}
	f.userRepo.Create(ctx, user)
	seedCourse(f.courseRepo, "c1")

	if _, err := f.svc.Create(ctx, user.Snapshot(), "c1", nil); !errors.Is(err, ErrAlreadyPurchased) {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
	}
	if len(f.orderRepo.orders) != 0 {
		t.Fatalf("duplicate purchase must not persist an order")
	}
}

func TestOrderService_RejectsFailedPayment(t *testing.T) {
	f := newOrderFixture(t, "requires_payment_method")
	ctx := context.Background()

	user := domain.User{ID: "u1", Email: "ana@example.com", Courses: []string{}}
	f.userRepo.Create(ctx, user)
	seedCourse(f.courseRepo, "c1")

	raw := json.RawMessage(`{"id":"pi_1"}`)
	if _, err := f.svc.Create(ctx, user.Snapshot(), "c1", raw); !errors.Is(err, ErrPaymentUnverified) {
		t.Fatalf("expected ErrPaymentUnverified, got %v", err)
	}
	if len(f.sender.orderEmails) != 0 || len(f.orderRepo.orders) != 0 {
		t.Fatalf("failed payment must have no side effects")
	}
}

func TestOrderService_UnknownCourse(t *testing.T) {
	f := newOrderFixture(t, "succeeded")
	ctx := context.Background()

	user := domain.User{ID: "u1", Email: "ana@example.com", Courses: []string{}}
	f.userRepo.Create(ctx, user)

	if _, err := f.svc.Create(ctx, user.Snapshot(), "missing", nil); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}
