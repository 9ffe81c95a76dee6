package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/observability"
)

// AuditService writes progression events to the structured log and counts them.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service. metrics may be nil.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit"), metrics: metrics}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventProblemSolved, a.handleProblemSolved)
	a.dispatcher.Subscribe(events.EventTierChanged, a.handleTierChanged)
	a.dispatcher.Subscribe(events.EventProblemCreated, a.handleProblemCreated)
}

func (a *AuditService) handleUserRegistered(_ context.Context, event events.Event) error {
	a.logger.Info("UserRegistered", zap.String("user_id", event.UserID), zap.String("event_id", event.ID))
	return nil
}

func (a *AuditService) handleProblemSolved(_ context.Context, event events.Event) error {
	a.metrics.RecordSolve()
	payload, ok := event.Payload.(events.ProblemSolvedPayload)
	if !ok {
		a.logger.Info("ProblemSolved", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
		return nil
	}
	a.logger.Info("ProblemSolved",
		zap.String("user_id", event.UserID),
		zap.String("username", payload.Username),
		zap.String("problem_id", payload.ProblemID),
		zap.Int64("awarded_points", payload.AwardedPoints),
		zap.Int64("total_points", payload.NewTotalPoints),
		zap.Int("problems_solved", payload.ProblemsSolved))
	return nil
}

func (a *AuditService) handleTierChanged(_ context.Context, event events.Event) error {
	a.metrics.RecordTierChange()
	payload, ok := event.Payload.(events.TierChangedPayload)
	if !ok {
		a.logger.Info("TierChanged", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
		return nil
	}
	a.logger.Info("TierChanged",
		zap.String("user_id", event.UserID),
		zap.String("old_tier", string(payload.OldTier)),
		zap.String("new_tier", string(payload.NewTier)),
		zap.Int64("points", payload.Points))
	return nil
}

func (a *AuditService) handleProblemCreated(_ context.Context, event events.Event) error {
	a.logger.Info("ProblemCreated", zap.Any("payload", event.Payload))
	return nil
}
