package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lms-api/internal/domain"
)

// NotificationRepository define el contrato de persistencia para avisos.
type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) error
	List(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) (domain.Notification, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PgNotificationRepository implementa NotificationRepository usando pgxpool.
type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n domain.Notification) error {
	const query = `
		INSERT INTO notifications (id, user_id, title, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, n.ID, n.UserID, n.Title, n.Message, n.Status, n.CreatedAt)
	return err
}

// List devuelve los avisos con los mas recientes primero.
func (r *PgNotificationRepository) List(ctx context.Context) ([]domain.Notification, error) {
	const query = `
		SELECT id, user_id, title, message, status, created_at
		FROM notifications
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Status, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PgNotificationRepository) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	const query = `
		UPDATE notifications
		SET status = $2
		WHERE id = $1
		RETURNING id, user_id, title, message, status, created_at
	`
	var n domain.Notification
	err := r.pool.QueryRow(ctx, query, id, domain.NotificationRead).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Status, &n.CreatedAt)
	if err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

// DeleteReadBefore purga avisos ya leidos anteriores al corte.
func (r *PgNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM notifications WHERE status = $1 AND created_at < $2`
	cmd, err := r.pool.Exec(ctx, query, domain.NotificationRead, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
