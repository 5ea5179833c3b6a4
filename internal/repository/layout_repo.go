package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lms-api/internal/domain"
)

// LayoutRepository define el contrato de persistencia para bloques de layout.
type LayoutRepository interface {
	Upsert(ctx context.Context, layout domain.Layout) (domain.Layout, error)
	GetByType(ctx context.Context, layoutType string) (domain.Layout, error)
}

// PgLayoutRepository implementa LayoutRepository usando pgxpool.
// Hay a lo sumo un bloque por tipo; el payload vive en jsonb.
type PgLayoutRepository struct {
	pool *pgxpool.Pool
}

func NewPgLayoutRepository(pool *pgxpool.Pool) *PgLayoutRepository {
	return &PgLayoutRepository{pool: pool}
}

type layoutPayload struct {
	Banner     *domain.Banner   `json:"banner,omitempty"`
	FAQ        []domain.FAQItem `json:"faq,omitempty"`
	Categories []domain.Titled  `json:"categories,omitempty"`
}

// Upsert inserta o reemplaza el bloque del tipo dado. En conflicto la fila
// existente conserva su id y created_at.
func (r *PgLayoutRepository) Upsert(ctx context.Context, layout domain.Layout) (domain.Layout, error) {
	payload, err := json.Marshal(layoutPayload{
		Banner:     layout.Banner,
		FAQ:        layout.FAQ,
		Categories: layout.Categories,
	})
	if err != nil {
		return domain.Layout{}, err
	}
	const query = `
		INSERT INTO layouts (id, type, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (type)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`
	now := time.Now().UTC()
	saved := layout
	err = r.pool.QueryRow(ctx, query, layout.ID, layout.Type, payload, now, now).
		Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return domain.Layout{}, err
	}
	return saved, nil
}

func (r *PgLayoutRepository) GetByType(ctx context.Context, layoutType string) (domain.Layout, error) {
	const query = `
		SELECT id, type, payload, created_at, updated_at
		FROM layouts
		WHERE type = $1
	`
	var l domain.Layout
	var payload []byte
	err := r.pool.QueryRow(ctx, query, layoutType).
		Scan(&l.ID, &l.Type, &payload, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.Layout{}, err
	}
	var p layoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return domain.Layout{}, err
	}
	l.Banner = p.Banner
	l.FAQ = p.FAQ
	l.Categories = p.Categories
	return l, nil
}
