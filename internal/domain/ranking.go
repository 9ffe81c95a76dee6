package domain

// RankingEntry is the public projection of a user on the rankings board.
type RankingEntry struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	Country        string `json:"country"`
	Points         int64  `json:"points"`
	ProblemsSolved int    `json:"problems_solved"`
	Tier           Tier   `json:"tier"`
}

// RankingEntryOf projects u onto the rankings board, deriving the tier from points.
func RankingEntryOf(u *User) RankingEntry {
	return RankingEntry{
		UserID:         u.ID,
		Username:       u.Username,
		Country:        u.Country,
		Points:         u.Points,
		ProblemsSolved: u.ProblemsSolved,
		Tier:           TierOf(u.Points),
	}
}
