package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/code-arena/internal/domain"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, country, institute, course, role,
               points, problems_solved, tier, solved_problems, version, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, password_hash, country, institute, course, role,
                           points, problems_solved, tier, solved_problems)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, version, created_at, updated_at`

	if user.SolvedProblems == nil {
		user.SolvedProblems = []string{}
	}
	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Country,
		user.Institute,
		user.Course,
		user.Role,
		user.Points,
		user.ProblemsSolved,
		user.Tier,
		user.SolvedProblems,
	).Scan(&user.ID, &user.Version, &user.CreatedAt, &user.UpdatedAt)
	return mapPgError(err)
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET points=$1, problems_solved=$2, tier=$3, solved_problems=$4,
               version=version+1, updated_at=NOW()
        WHERE id=$5 AND version=$6
        RETURNING version, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Points,
		user.ProblemsSolved,
		user.Tier,
		user.SolvedProblems,
		user.ID,
		user.Version,
	).Scan(&user.Version, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// either the row vanished or somebody else bumped the version first
		if _, getErr := r.GetByID(ctx, user.ID); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) ListByPoints(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + userColumns + `
        FROM users ORDER BY points DESC, created_at ASC, id ASC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Country,
		&user.Institute,
		&user.Course,
		&user.Role,
		&user.Points,
		&user.ProblemsSolved,
		&user.Tier,
		&user.SolvedProblems,
		&user.Version,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if user.SolvedProblems == nil {
		user.SolvedProblems = []string{}
	}
	return &user, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
