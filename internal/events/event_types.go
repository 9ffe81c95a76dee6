package events

import (
	"time"

	"github.com/spec-kit/code-arena/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventProblemSolved  EventType = "problem_solved"
	EventTierChanged    EventType = "tier_changed"
	EventProblemCreated EventType = "problem_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Entry domain.RankingEntry `json:"entry"`
}

// ProblemSolvedPayload payload.
type ProblemSolvedPayload struct {
	Username       string              `json:"username"`
	ProblemID      string              `json:"problem_id"`
	ProblemTitle   string              `json:"problem_title"`
	AwardedPoints  int64               `json:"awarded_points"`
	NewTotalPoints int64               `json:"new_total_points"`
	ProblemsSolved int                 `json:"problems_solved"`
	Entry          domain.RankingEntry `json:"entry"`
}

// TierChangedPayload payload.
type TierChangedPayload struct {
	OldTier domain.Tier `json:"old_tier"`
	NewTier domain.Tier `json:"new_tier"`
	Points  int64       `json:"points"`
}

// ProblemCreatedPayload payload.
type ProblemCreatedPayload struct {
	ProblemID  string            `json:"problem_id"`
	Title      string            `json:"title"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Points     int64             `json:"points"`
}
