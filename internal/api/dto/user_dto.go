package dto

import "time"

// UserSignupRequest payload for new accounts.
type UserSignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Country   string `json:"country"`
	Institute string `json:"institute"`
	Course    string `json:"course"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserProfile is the public view of an account.
type UserProfile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Country        string    `json:"country"`
	Institute      string    `json:"institute"`
	Course         string    `json:"course"`
	Role           string    `json:"role"`
	Points         int64     `json:"points"`
	Tier           string    `json:"tier"`
	ProblemsSolved int       `json:"problemsSolved"`
	SolvedProblems []string  `json:"solvedProblems"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserStats summarizes progression.
type UserStats struct {
	Points         int64  `json:"points"`
	Tier           string `json:"tier"`
	ProblemsSolved int    `json:"problemsSolved"`
}
