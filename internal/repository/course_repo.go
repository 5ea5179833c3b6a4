package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lms-api/internal/domain"
)

// CourseRepository define el contrato de persistencia para cursos.
// Las lecturas aceptan un FieldSet de exclusion para recortar el
// contenido pago antes de devolverlo.
type CourseRepository interface {
	Create(ctx context.Context, course domain.Course) error
	GetByID(ctx context.Context, id string, exclude FieldSet) (domain.Course, error)
	List(ctx context.Context, exclude FieldSet) ([]domain.Course, error)
	Update(ctx context.Context, course domain.Course) error
	Delete(ctx context.Context, id string) error
	IncrementPurchased(ctx context.Context, id string) error
	CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthCount, error)
}

// PgCourseRepository implementa CourseRepository usando pgxpool. Las
// estructuras anidadas (beneficios, resenas, secciones) viven en columnas
// jsonb y se guardan completas en cada escritura, como un documento.
type PgCourseRepository struct {
	pool *pgxpool.Pool
}

func NewPgCourseRepository(pool *pgxpool.Pool) *PgCourseRepository {
	return &PgCourseRepository{pool: pool}
}

const courseColumns = `
	id, name, description, categories, price, estimated_price,
	thumbnail_public_id, thumbnail_url, tags, level, demo_url,
	benefits, prerequisites, reviews, sections,
	ratings, purchased, created_at, updated_at
`

func (r *PgCourseRepository) Create(ctx context.Context, course domain.Course) error {
	benefits, prerequisites, reviews, sections, err := marshalCourseDocs(course)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO courses (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = r.pool.Exec(ctx, query,
		course.ID,
		course.Name,
		course.Description,
		course.Categories,
		course.Price,
		course.EstimatedPrice,
		course.Thumbnail.PublicID,
		course.Thumbnail.URL,
		course.Tags,
		course.Level,
		course.DemoURL,
		benefits,
		prerequisites,
		reviews,
		sections,
		course.Ratings,
		course.Purchased,
		course.CreatedAt,
		course.UpdatedAt,
	)
	return err
}

func (r *PgCourseRepository) GetByID(ctx context.Context, id string, exclude FieldSet) (domain.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	course, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Course{}, err
	}
	applyCourseProjection(&course, exclude)
	return course, nil
}

func (r *PgCourseRepository) List(ctx context.Context, exclude FieldSet) ([]domain.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		applyCourseProjection(&course, exclude)
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (r *PgCourseRepository) Update(ctx context.Context, course domain.Course) error {
	benefits, prerequisites, reviews, sections, err := marshalCourseDocs(course)
	if err != nil {
		return err
	}
	const query = `
		UPDATE courses
		SET name = $2, description = $3, categories = $4, price = $5,
		    estimated_price = $6, thumbnail_public_id = $7, thumbnail_url = $8,
		    tags = $9, level = $10, demo_url = $11, benefits = $12,
		    prerequisites = $13, reviews = $14, sections = $15,
		    ratings = $16, updated_at = $17
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		course.ID,
		course.Name,
		course.Description,
		course.Categories,
		course.Price,
		course.EstimatedPrice,
		course.Thumbnail.PublicID,
		course.Thumbnail.URL,
		course.Tags,
		course.Level,
		course.DemoURL,
		benefits,
		prerequisites,
		reviews,
		sections,
		course.Ratings,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgCourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IncrementPurchased incrementa el contador de compras de forma atomica.
func (r *PgCourseRepository) IncrementPurchased(ctx context.Context, id string) error {
	const query = `UPDATE courses SET purchased = purchased + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgCourseRepository) CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthCount, error) {
	const query = `
		SELECT date_trunc('month', created_at) AS month, count(*)
		FROM courses
		WHERE created_at >= $1
		GROUP BY month
		ORDER BY month
	`
	return queryMonthCounts(ctx, r.pool, query, since)
}

func marshalCourseDocs(course domain.Course) (benefits, prerequisites, reviews, sections []byte, err error) {
	if benefits, err = json.Marshal(course.Benefits); err != nil {
		return
	}
	if prerequisites, err = json.Marshal(course.Prerequisites); err != nil {
		return
	}
	if reviews, err = json.Marshal(course.Reviews); err != nil {
		return
	}
	sections, err = json.Marshal(course.Sections)
	return
}

func scanCourse(row pgx.Row) (domain.Course, error) {
	var c domain.Course
	var benefits, prerequisites, reviews, sections []byte
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Categories,
		&c.Price,
		&c.EstimatedPrice,
		&c.Thumbnail.PublicID,
		&c.Thumbnail.URL,
		&c.Tags,
		&c.Level,
		&c.DemoURL,
		&benefits,
		&prerequisites,
		&reviews,
		&sections,
		&c.Ratings,
		&c.Purchased,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Course{}, err
	}
	if err := json.Unmarshal(benefits, &c.Benefits); err != nil {
		return domain.Course{}, err
	}
	if err := json.Unmarshal(prerequisites, &c.Prerequisites); err != nil {
		return domain.Course{}, err
	}
	if err := json.Unmarshal(reviews, &c.Reviews); err != nil {
		return domain.Course{}, err
	}
	if err := json.Unmarshal(sections, &c.Sections); err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

// applyCourseProjection recorta los campos excluidos antes de entregar
// el curso al caller.
func applyCourseProjection(course *domain.Course, exclude FieldSet) {
	if len(exclude) == 0 {
		return
	}
	for i := range course.Sections {
		sec := &course.Sections[i]
		if exclude.Excludes("sections.video_url") {
			sec.VideoURL = ""
		}
		if exclude.Excludes("sections.links") {
			sec.Links = nil
		}
		if exclude.Excludes("sections.suggestion") {
			sec.Suggestion = ""
		}
		if exclude.Excludes("sections.questions") {
			sec.Questions = nil
		}
	}
}
