package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/repository"
	apperrors "github.com/spec-kit/code-arena/pkg/util/errorutil"
)

// ProblemView is a problem as seen by one user.
type ProblemView struct {
	domain.Problem
	Solved bool
}

// ProblemCreateInput describes a new catalog entry. ID is optional.
type ProblemCreateInput struct {
	ID          string
	Title       string
	Difficulty  string
	Category    string
	Order       int
	Description string
	Examples    []string
	Constraints []string
}

// ProblemService serves the problem catalog.
type ProblemService struct {
	problems   repository.ProblemRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewProblemService constructs the service.
func NewProblemService(problems repository.ProblemRepository, users repository.UserRepository, dispatcher events.Dispatcher) *ProblemService {
	return &ProblemService{problems: problems, users: users, dispatcher: dispatcher}
}

// ListForUser returns every problem with the caller's solved flag.
func (s *ProblemService) ListForUser(ctx context.Context, userID string) ([]ProblemView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	problems, err := s.problems.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list problems: %w", err))
	}
	solved := user.SolvedSet()
	views := make([]ProblemView, 0, len(problems))
	for _, p := range problems {
		_, ok := solved[p.ID]
		views = append(views, ProblemView{Problem: p, Solved: ok})
	}
	return views, nil
}

// GetForUser returns one problem with the caller's solved flag.
func (s *ProblemService) GetForUser(ctx context.Context, userID, problemID string) (*ProblemView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, problemNotFound(problemID)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("load problem: %w", err))
	}
	return &ProblemView{Problem: *problem, Solved: user.HasSolved(problem.ID)}, nil
}

// Create adds a problem; its point value is fixed here from the difficulty.
func (s *ProblemService) Create(ctx context.Context, input ProblemCreateInput) (*domain.Problem, error) {
	difficulty, ok := domain.ParseDifficulty(input.Difficulty)
	if !ok {
		return nil, apperrors.NewValidationError("difficulty must be Easy, Medium or Hard",
			map[string]any{"difficulty": input.Difficulty})
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Category) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title, category, description required", nil)
	}

	problem := domain.NewProblem(input.Title, difficulty, input.Category, input.Order, input.Description)
	problem.ID = strings.TrimSpace(input.ID)
	if input.Examples != nil {
		problem.Examples = input.Examples
	}
	if input.Constraints != nil {
		problem.Constraints = input.Constraints
	}

	if err := s.problems.Create(ctx, problem); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflictCode("PROBLEM_EXISTS", "problem already exists", err,
				map[string]any{"problem_id": problem.ID})
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("create problem: %w", err))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventProblemCreated,
			Timestamp: time.Now().UTC(),
			Payload: events.ProblemCreatedPayload{
				ProblemID:  problem.ID,
				Title:      problem.Title,
				Difficulty: problem.Difficulty,
				Points:     problem.Points,
			},
		})
	}
	return problem, nil
}

// Seed creates every input that does not exist yet and reports how many were added.
func (s *ProblemService) Seed(ctx context.Context, inputs []ProblemCreateInput) (int, error) {
	created := 0
	for _, input := range inputs {
		if _, err := s.Create(ctx, input); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return created, fmt.Errorf("seed %q: %w", input.Title, err)
		}
		created++
	}
	return created, nil
}

func (s *ProblemService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound(userID)
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("load user: %w", err))
	}
	return user, nil
}
