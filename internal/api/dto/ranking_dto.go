package dto

// RankingRow is one leaderboard line.
type RankingRow struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Country        string `json:"country"`
	Points         int64  `json:"points"`
	ProblemsSolved int    `json:"problemsSolved"`
	Tier           string `json:"tier"`
}
