package domain

import "time"

// UserRole distinguishes regular members from catalog administrators.
type UserRole string

const (
	UserRoleMember UserRole = "MEMBER"
	UserRoleAdmin  UserRole = "ADMIN"
)

// User is a platform account together with its progression state.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Country        string
	Institute      string
	Course         string
	Role           UserRole
	Points         int64
	ProblemsSolved int
	Tier           Tier
	SolvedProblems []string
	// Version increments on every successful save and guards against stale writes.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser returns an account in its signup state.
func NewUser(username, email, passwordHash, country, institute, course string) *User {
	return &User{
		Username:       username,
		Email:          email,
		PasswordHash:   passwordHash,
		Country:        country,
		Institute:      institute,
		Course:         course,
		Role:           UserRoleMember,
		Tier:           LowestTier,
		SolvedProblems: []string{},
	}
}

// HasSolved reports whether problemID is in the user's solved set.
func (u *User) HasSolved(problemID string) bool {
	for _, id := range u.SolvedProblems {
		if id == problemID {
			return true
		}
	}
	return false
}

// SolvedSet returns the solved problem ids as a lookup set.
func (u *User) SolvedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(u.SolvedProblems))
	for _, id := range u.SolvedProblems {
		set[id] = struct{}{}
	}
	return set
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.SolvedProblems = append([]string(nil), u.SolvedProblems...)
	return &cp
}
