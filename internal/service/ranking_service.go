package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/repository"
	apperrors "github.com/spec-kit/code-arena/pkg/util/errorutil"
)

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)

// RankingCache is the leaderboard cache consulted before the record store.
type RankingCache interface {
	Upsert(ctx context.Context, entry domain.RankingEntry) error
	Replace(ctx context.Context, entries []domain.RankingEntry) error
	Top(ctx context.Context, limit int) ([]domain.RankingEntry, bool, error)
}

// RankingService serves the points leaderboard.
type RankingService struct {
	users  repository.UserRepository
	cache  RankingCache
	logger *zap.Logger
}

// NewRankingService builds the service. cache may be nil.
func NewRankingService(users repository.UserRepository, cache RankingCache, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{users: users, cache: cache, logger: logger}
}

// Top returns users ordered by points, best first.
func (s *RankingService) Top(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}

	if s.cache != nil {
		entries, warm, err := s.cache.Top(ctx, limit)
		if err != nil {
			s.logger.Warn("ranking cache read failed", zap.Error(err))
		} else if warm {
			return entries, nil
		}
	}

	// the cache only has to hold the top MaxRankingLimit: cached scores never decrease, so
	// anybody outside the snapshot stays behind it until a solve upserts them
	users, err := s.users.ListByPoints(ctx, MaxRankingLimit)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list rankings: %w", err))
	}
	entries := make([]domain.RankingEntry, 0, len(users))
	for i := range users {
		entries = append(entries, domain.RankingEntryOf(&users[i]))
	}

	if s.cache != nil {
		if err := s.cache.Replace(ctx, entries); err != nil {
			s.logger.Warn("ranking cache rebuild failed", zap.Error(err))
		}
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// RegisterHandlers keeps the cache in step with progression events.
func (s *RankingService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil || s.cache == nil {
		return
	}
	dispatcher.Subscribe(events.EventProblemSolved, s.handleEntryChanged)
	dispatcher.Subscribe(events.EventUserRegistered, s.handleEntryChanged)
}

func (s *RankingService) handleEntryChanged(ctx context.Context, event events.Event) error {
	var entry domain.RankingEntry
	switch payload := event.Payload.(type) {
	case events.ProblemSolvedPayload:
		entry = payload.Entry
	case events.UserRegisteredPayload:
		entry = payload.Entry
	default:
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return s.cache.Upsert(ctx, entry)
}
