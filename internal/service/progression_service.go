package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/repository"
	apperrors "github.com/spec-kit/code-arena/pkg/util/errorutil"
)

// maxSolveAttempts bounds the read-modify-write retries after a stale write.
const maxSolveAttempts = 5

// SolveResult is returned by a successful solve.
type SolveResult struct {
	AwardedPoints  int64
	OldTier        domain.Tier
	NewTier        domain.Tier
	NewTotalPoints int64
	ProblemsSolved int
}

// ProgressionService awards points and tiers for solved problems.
type ProgressionService struct {
	users      repository.UserRepository
	problems   repository.ProblemRepository
	dispatcher events.Dispatcher
	locks      *userLocks
	logger     *zap.Logger
	now        func() time.Time
}

// ProgressionDependencies bundles what the progression service needs.
type ProgressionDependencies struct {
	UserRepo    repository.UserRepository
	ProblemRepo repository.ProblemRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewProgressionService constructs the service.
func NewProgressionService(deps ProgressionDependencies) *ProgressionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressionService{
		users:      deps.UserRepo,
		problems:   deps.ProblemRepo,
		dispatcher: deps.Dispatcher,
		locks:      newUserLocks(),
		logger:     logger,
		now:        time.Now,
	}
}

// SolveProblem records problemID as solved by userID and awards the problem's stored points.
// Solves of the same user are serialized in process; the store's version check catches
// writers in other processes, in which case the whole transition is re-read and retried.
func (s *ProgressionService) SolveProblem(ctx context.Context, userID, problemID string) (*SolveResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	var problem *domain.Problem
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewInternalError(err)
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, userNotFound(userID)
			}
			return nil, apperrors.NewInternalError(fmt.Errorf("load user: %w", err))
		}

		if problem == nil {
			problem, err = s.problems.GetByID(ctx, problemID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, problemNotFound(problemID)
				}
				return nil, apperrors.NewInternalError(fmt.Errorf("load problem: %w", err))
			}
		}

		if user.HasSolved(problemID) {
			return nil, apperrors.NewConflictCode("ALREADY_SOLVED", ErrAlreadySolved.Error(), ErrAlreadySolved,
				map[string]any{"problem_id": problemID})
		}

		next := user.Clone()
		outcome := domain.ApplySolve(next, problem)

		err = s.users.Save(ctx, next)
		switch {
		case err == nil:
			s.publishSolved(ctx, next, problem, outcome)
			return &SolveResult{
				AwardedPoints:  outcome.AwardedPoints,
				OldTier:        outcome.OldTier,
				NewTier:        outcome.NewTier,
				NewTotalPoints: outcome.NewTotalPoints,
				ProblemsSolved: outcome.ProblemsSolved,
			}, nil
		case errors.Is(err, repository.ErrVersionConflict):
			if attempt >= maxSolveAttempts {
				return nil, apperrors.NewConflictCode("CONCURRENT_UPDATE", "user was updated concurrently, retry",
					repository.ErrVersionConflict, nil)
			}
			s.logger.Debug("stale user write, retrying solve",
				zap.String("user_id", userID),
				zap.String("problem_id", problemID),
				zap.Int("attempt", attempt))
		case errors.Is(err, repository.ErrNotFound):
			return nil, userNotFound(userID)
		default:
			return nil, apperrors.NewInternalError(fmt.Errorf("save user: %w", err))
		}
	}
}

func (s *ProgressionService) publishSolved(ctx context.Context, user *domain.User, problem *domain.Problem, outcome domain.SolveOutcome) {
	if s.dispatcher == nil {
		return
	}
	now := s.now().UTC()
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventProblemSolved,
		UserID:    user.ID,
		Timestamp: now,
		Payload: events.ProblemSolvedPayload{
			Username:       user.Username,
			ProblemID:      problem.ID,
			ProblemTitle:   problem.Title,
			AwardedPoints:  outcome.AwardedPoints,
			NewTotalPoints: outcome.NewTotalPoints,
			ProblemsSolved: outcome.ProblemsSolved,
			Entry:          domain.RankingEntryOf(user),
		},
	})
	if outcome.OldTier != outcome.NewTier {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTierChanged,
			UserID:    user.ID,
			Timestamp: now,
			Payload: events.TierChangedPayload{
				OldTier: outcome.OldTier,
				NewTier: outcome.NewTier,
				Points:  outcome.NewTotalPoints,
			},
		})
	}
}
