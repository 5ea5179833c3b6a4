package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lms-api/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	AppendCourse(ctx context.Context, userID, courseID string) error
	Delete(ctx context.Context, id string) error
	CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthCount, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `
	id, name, email, password_hash, avatar_public_id, avatar_url,
	role, is_verified, courses, created_at, updated_at
`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Avatar.PublicID,
		user.Avatar.URL,
		user.Role,
		user.IsVerified,
		user.Courses,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Avatar.PublicID,
		&u.Avatar.URL,
		&u.Role,
		&u.IsVerified,
		&u.Courses,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) Update(ctx context.Context, user domain.User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, avatar_public_id = $4, avatar_url = $5,
		    is_verified = $6, updated_at = $7
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Avatar.PublicID,
		user.Avatar.URL,
		user.IsVerified,
		time.Now().UTC(),
	)
	return err
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, passwordHash, time.Now().UTC())
	return err
}

func (r *PgUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, role, time.Now().UTC())
	return err
}

// AppendCourse agrega el curso a la lista del usuario una sola vez.
func (r *PgUserRepository) AppendCourse(ctx context.Context, userID, courseID string) error {
	const query = `
		UPDATE users
		SET courses = array_append(courses, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY (courses))
	`
	_, err := r.pool.Exec(ctx, query, userID, courseID, time.Now().UTC())
	return err
}

func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthCount, error) {
	const query = `
		SELECT date_trunc('month', created_at) AS month, count(*)
		FROM users
		WHERE created_at >= $1
		GROUP BY month
		ORDER BY month
	`
	return queryMonthCounts(ctx, r.pool, query, since)
}
