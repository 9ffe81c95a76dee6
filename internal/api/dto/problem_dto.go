package dto

import "time"

// CreateProblemRequest payload for catalog additions.
type CreateProblemRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Difficulty  string   `json:"difficulty"`
	Category    string   `json:"category"`
	Order       int      `json:"order"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Constraints []string `json:"constraints"`
}

// ProblemSummary is one row of the problem list.
type ProblemSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	Order      int    `json:"order"`
	Points     int64  `json:"points"`
	Solved     string `json:"solved"`
}

// ProblemDetail is the full problem statement.
type ProblemDetail struct {
	ProblemSummary
	Description string    `json:"description"`
	Examples    []string  `json:"examples"`
	Constraints []string  `json:"constraints"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SolveResponse reports the effect of an accepted solve.
type SolveResponse struct {
	AwardedPoints  int64  `json:"awardedPoints"`
	OldTier        string `json:"oldTier"`
	NewTier        string `json:"newTier"`
	NewTotalPoints int64  `json:"newTotalPoints"`
	ProblemsSolved int    `json:"problemsSolved"`
}
