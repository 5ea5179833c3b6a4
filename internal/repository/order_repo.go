package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lms-api/internal/domain"
)

// OrderRepository define el contrato de persistencia para ordenes.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	List(ctx context.Context) ([]domain.Order, error)
	CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthCount, error)
}

// PgOrderRepository implementa OrderRepository usando pgxpool.
type PgOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPgOrderRepository(pool *pgxpool.Pool) *PgOrderRepository {
	return &PgOrderRepository{pool: pool}
}

func (r *PgOrderRepository) Create(ctx context.Context, order domain.Order) error {
	const query = `
		INSERT INTO orders (id, user_id, course_id, payment_info, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.CourseID,
		[]byte(order.PaymentInfo),
		order.CreatedAt,
	)
	return err
}

func (r *PgOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	const query = `
		SELECT id, user_id, course_id, payment_info, created_at
		FROM orders
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var paymentInfo []byte
	err := row.Scan(&o.ID, &o.UserID, &o.CourseID, &paymentInfo, &o.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.PaymentInfo = paymentInfo
	return o, nil
}

func (r *PgOrderRepository) CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthCount, error) {
	const query = `
		SELECT date_trunc('month', created_at) AS month, count(*)
		FROM orders
		WHERE created_at >= $1
		GROUP BY month
		ORDER BY month
	`
	return queryMonthCounts(ctx, r.pool, query, since)
}
