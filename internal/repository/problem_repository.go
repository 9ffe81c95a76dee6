package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/code-arena/internal/domain"
)

const problemColumns = `id, title, difficulty, category, sort_order, description, examples, constraints, points, created_at`

type problemRepository struct {
	pool *pgxpool.Pool
}

// NewProblemRepository returns a Postgres-backed implementation.
func NewProblemRepository(pool *pgxpool.Pool) ProblemRepository {
	return &problemRepository{pool: pool}
}

func (r *problemRepository) Create(ctx context.Context, problem *domain.Problem) error {
	const query = `
        INSERT INTO problems (id, title, difficulty, category, sort_order, description, examples, constraints, points)
        VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at`

	if problem.Examples == nil {
		problem.Examples = []string{}
	}
	if problem.Constraints == nil {
		problem.Constraints = []string{}
	}
	err := r.pool.QueryRow(ctx, query,
		problem.ID,
		problem.Title,
		problem.Difficulty,
		problem.Category,
		problem.Order,
		problem.Description,
		problem.Examples,
		problem.Constraints,
		problem.Points,
	).Scan(&problem.ID, &problem.CreatedAt)
	return mapPgError(err)
}

func (r *problemRepository) GetByID(ctx context.Context, id string) (*domain.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id=$1`
	problem, err := scanProblem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return problem, nil
}

func (r *problemRepository) List(ctx context.Context) ([]domain.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems ORDER BY sort_order ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Problem
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *problem)
	}
	return result, rows.Err()
}

func scanProblem(row pgx.Row) (*domain.Problem, error) {
	var problem domain.Problem
	if err := row.Scan(
		&problem.ID,
		&problem.Title,
		&problem.Difficulty,
		&problem.Category,
		&problem.Order,
		&problem.Description,
		&problem.Examples,
		&problem.Constraints,
		&problem.Points,
		&problem.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &problem, nil
}
