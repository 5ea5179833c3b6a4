package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lms-api/internal/domain"
)

// queryMonthCounts ejecuta una consulta agrupada por mes y etiqueta cada
// punto como "Jan 2026".
func queryMonthCounts(ctx context.Context, pool *pgxpool.Pool, query string, since time.Time) ([]domain.MonthCount, error) {
	rows, err := pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.MonthCount
	for rows.Next() {
		var month time.Time
		var count int64
		if err := rows.Scan(&month, &count); err != nil {
			return nil, err
		}
		counts = append(counts, domain.MonthCount{
			Month: month.Format("Jan 2006"),
			Count: count,
		})
	}
	return counts, rows.Err()
}
