package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/code-arena/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrVersionConflict is returned by Save when the stored record moved on since it was read.
	ErrVersionConflict = errors.New("record modified concurrently")
)

// UserRepository defines persistence access for accounts and their progression.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Save writes the progression fields of user in a single atomic step, provided the stored
	// version still equals user.Version. On success user.Version is advanced.
	Save(ctx context.Context, user *domain.User) error
	ListByPoints(ctx context.Context, limit int) ([]domain.User, error)
}

// ProblemRepository defines persistence access for the problem catalog.
type ProblemRepository interface {
	Create(ctx context.Context, problem *domain.Problem) error
	GetByID(ctx context.Context, id string) (*domain.Problem, error)
	List(ctx context.Context) ([]domain.Problem, error)
}
