package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/repository"
	apperrors "github.com/spec-kit/code-arena/pkg/util/errorutil"
)

// UserStats is the progression summary of a user.
type UserStats struct {
	Points         int64
	Tier           domain.Tier
	ProblemsSolved int
}

// UserService exposes profile reads.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Profile loads a user by id.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(userID)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("load user: %w", err))
	}
	return user, nil
}

// Stats returns points, solved count and the tier derived from the current points.
func (s *UserService) Stats(ctx context.Context, userID string) (*UserStats, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserStats{
		Points:         user.Points,
		Tier:           domain.TierOf(user.Points),
		ProblemsSolved: user.ProblemsSolved,
	}, nil
}
