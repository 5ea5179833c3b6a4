package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

const (
	notificationSweepInterval = 24 * time.Hour
	notificationRetention     = 30 * 24 * time.Hour
)

// NotificationService lista y marca avisos, y purga diariamente los ya
// leidos mas viejos que la retencion. El barrido corre en su propia
// goroutine y no comparte locks con el camino de requests.
type NotificationService struct {
	logger        *zap.Logger
	notifications repository.NotificationRepository
}

func NewNotificationService(logger *zap.Logger, notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		logger:        logger,
		notifications: notifications,
	}
}

// List devuelve los avisos mas recientes primero.
func (s *NotificationService) List(ctx context.Context) ([]domain.Notification, error) {
	return s.notifications.List(ctx)
}

// MarkRead marca un aviso como leido.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	n, err := s.notifications.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, ErrNotificationNotFound
		}
		return domain.Notification{}, err
	}
	return n, nil
}

// StartSweep lanza el barrido periodico hasta que el contexto se cancele.
func (s *NotificationService) StartSweep(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(notificationSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepOnce(ctx)
			}
		}
	}()
}

func (s *NotificationService) sweepOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-notificationRetention)
	deleted, err := s.notifications.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("notification sweep failed", zap.Error(err))
		}
		return
	}
	if deleted > 0 && s.logger != nil {
		s.logger.Info("notification sweep", zap.Int64("deleted", deleted))
	}
}
