package domain

import (
	"strings"
	"time"
)

// Difficulty enumerates problem difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty normalizes user supplied difficulty labels.
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	default:
		return "", false
	}
}

// PointsFor is the canonical difficulty to reward mapping. It is only consulted when a
// problem is created; solves read the value stored on the problem.
func PointsFor(d Difficulty) int64 {
	switch d {
	case DifficultyEasy:
		return 100
	case DifficultyMedium:
		return 300
	case DifficultyHard:
		return 500
	default:
		return 0
	}
}

// Problem is a practice problem in the catalog.
type Problem struct {
	ID          string
	Title       string
	Difficulty  Difficulty
	Category    string
	Order       int
	Description string
	Examples    []string
	Constraints []string
	Points      int64
	CreatedAt   time.Time
}

// NewProblem builds a problem with its point value fixed from difficulty.
func NewProblem(title string, difficulty Difficulty, category string, order int, description string) *Problem {
	return &Problem{
		Title:       strings.TrimSpace(title),
		Difficulty:  difficulty,
		Category:    strings.TrimSpace(category),
		Order:       order,
		Description: description,
		Examples:    []string{},
		Constraints: []string{},
		Points:      PointsFor(difficulty),
	}
}
