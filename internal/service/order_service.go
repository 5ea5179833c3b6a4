package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/email"
	"lms-api/internal/payment"
	"lms-api/internal/repository"
)

var (
	ErrAlreadyPurchased  = errors.New("course already purchased")
	ErrPaymentUnverified = errors.New("payment not verified")
)

// OrderService coordina la compra de un curso. La secuencia (correo,
// alta del curso en el usuario, aviso, contador, orden) no es
// transaccional: un corte en el medio deja efectos parciales. Limitacion
// aceptada del diseno, no un bug a parchear en silencio.
type OrderService struct {
	logger        *zap.Logger
	orders        repository.OrderRepository
	notifications repository.NotificationRepository
	users         *UserService
	courses       *CourseService
	emailSender   email.Sender
	payments      payment.Provider
}

func NewOrderService(
	logger *zap.Logger,
	orders repository.OrderRepository,
	notifications repository.NotificationRepository,
	users *UserService,
	courses *CourseService,
	emailSender email.Sender,
	payments payment.Provider,
) *OrderService {
	return &OrderService{
		logger:        logger,
		orders:        orders,
		notifications: notifications,
		users:         users,
		courses:       courses,
		emailSender:   emailSender,
		payments:      payments,
	}
}

type paymentInfo struct {
	ID string `json:"id"`
}

// Create procesa la compra del curso por el usuario autenticado.
func (s *OrderService) Create(ctx context.Context, snap domain.SessionSnapshot, courseID string, rawPayment json.RawMessage) (domain.Order, error) {
	user, err := s.users.GetByID(ctx, snap.ID)
	if err != nil {
		return domain.Order{}, err
	}
	if user.OwnsCourse(courseID) {
		return domain.Order{}, ErrAlreadyPurchased
	}

	course, err := s.courses.GetForPurchase(ctx, courseID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.verifyPayment(ctx, rawPayment); err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		CourseID:    course.ID,
		PaymentInfo: rawPayment,
		CreatedAt:   now,
	}

	summary := email.OrderSummary{
		OrderRef:   shortRef(order.ID),
		CourseName: course.Name,
		Price:      course.Price,
		Date:       now.Format("January 2, 2006"),
	}
	if err := s.emailSender.SendOrderConfirmation(ctx, user.Email, summary); err != nil {
		if s.logger != nil {
			s.logger.Warn("send order confirmation failed", zap.Error(err), zap.String("email", user.Email))
		}
		return domain.Order{}, ErrEmailSendFailure
	}

	if _, err := s.users.AppendCourse(ctx, user.ID, course.ID); err != nil {
		return domain.Order{}, err
	}

	notifyErr := s.notifications.Create(ctx, domain.Notification{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Title:     "New Order",
		Message:   "You have a new order for " + course.Name + " from " + user.Name,
		Status:    domain.NotificationUnread,
		CreatedAt: now,
	})
	if notifyErr != nil && s.logger != nil {
		s.logger.Warn("create order notification failed", zap.Error(notifyErr))
	}

	if err := s.courses.IncrementPurchased(ctx, course.ID); err != nil {
		return domain.Order{}, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// List devuelve todas las ordenes (solo admin).
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) verifyPayment(ctx context.Context, rawPayment json.RawMessage) error {
	if len(rawPayment) == 0 || s.payments == nil {
		return nil
	}
	var info paymentInfo
	if err := json.Unmarshal(rawPayment, &info); err != nil || info.ID == "" {
		return nil
	}
	intent, err := s.payments.RetrieveIntent(ctx, info.ID)
	if err != nil {
		return err
	}
	if !intent.Succeeded() {
		return ErrPaymentUnverified
	}
	return nil
}

func shortRef(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[:6]
}
