// Package memory keeps users and problems in process memory. It backs local development and
// tests; all data is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/repository"
)

// Store implements both UserRepository and ProblemRepository.
type Store struct {
	mtx      sync.RWMutex
	users    map[string]*domain.User
	problems map[string]*domain.Problem
	logger   *zap.Logger
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		users:    make(map[string]*domain.User),
		problems: make(map[string]*domain.Problem),
		logger:   logger,
	}
}

// Users exposes the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userStore{s} }

// Problems exposes the store as a ProblemRepository.
func (s *Store) Problems() repository.ProblemRepository { return problemStore{s} }

type userStore struct{ s *Store }

func (u userStore) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := u.s
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) || existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.SolvedProblems == nil {
		user.SolvedProblems = []string{}
	}
	now := time.Now().UTC()
	user.Version = 1
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user.Clone()
	s.logger.Debug("user added to storage", zap.String("user_id", user.ID))
	return nil
}

func (u userStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u.s.mtx.RLock()
	defer u.s.mtx.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user.Clone(), nil
}

func (u userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u.s.mtx.RLock()
	defer u.s.mtx.RUnlock()
	for _, user := range u.s.users {
		if strings.EqualFold(user.Email, email) {
			return user.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u userStore) Save(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := u.s
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != user.Version {
		return repository.ErrVersionConflict
	}
	next := stored.Clone()
	next.Points = user.Points
	next.ProblemsSolved = user.ProblemsSolved
	next.Tier = user.Tier
	next.SolvedProblems = append([]string(nil), user.SolvedProblems...)
	next.Version = stored.Version + 1
	next.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = next

	user.Version = next.Version
	user.UpdatedAt = next.UpdatedAt
	s.logger.Debug("user progression saved", zap.String("user_id", user.ID), zap.Int64("version", next.Version))
	return nil
}

func (u userStore) ListByPoints(ctx context.Context, limit int) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	u.s.mtx.RLock()
	result := make([]domain.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		result = append(result, *user.Clone())
	}
	u.s.mtx.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Points != result[j].Points {
			return result[i].Points > result[j].Points
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type problemStore struct{ s *Store }

func (p problemStore) Create(ctx context.Context, problem *domain.Problem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := p.s
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if problem.ID == "" {
		problem.ID = uuid.NewString()
	}
	if _, exists := s.problems[problem.ID]; exists {
		return repository.ErrDuplicate
	}
	problem.CreatedAt = time.Now().UTC()
	cp := *problem
	cp.Examples = append([]string{}, problem.Examples...)
	cp.Constraints = append([]string{}, problem.Constraints...)
	s.problems[problem.ID] = &cp
	s.logger.Debug("problem added to storage", zap.String("problem_id", problem.ID))
	return nil
}

func (p problemStore) GetByID(ctx context.Context, id string) (*domain.Problem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.s.mtx.RLock()
	defer p.s.mtx.RUnlock()
	problem, ok := p.s.problems[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *problem
	return &cp, nil
}

func (p problemStore) List(ctx context.Context) ([]domain.Problem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.s.mtx.RLock()
	result := make([]domain.Problem, 0, len(p.s.problems))
	for _, problem := range p.s.problems {
		result = append(result, *problem)
	}
	p.s.mtx.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
