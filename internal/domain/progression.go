package domain

// SolveOutcome describes the state transition produced by one accepted solve.
type SolveOutcome struct {
	AwardedPoints  int64
	OldTier        Tier
	NewTier        Tier
	NewTotalPoints int64
	ProblemsSolved int
}

// ApplySolve records problem as solved on u and recomputes the tier. Callers must have
// checked HasSolved beforehand.
func ApplySolve(u *User, p *Problem) SolveOutcome {
	oldTier := u.Tier
	if !oldTier.Valid() {
		oldTier = TierOf(u.Points)
	}

	u.SolvedProblems = append(u.SolvedProblems, p.ID)
	u.ProblemsSolved = len(u.SolvedProblems)
	u.Points += p.Points
	u.Tier = TierOf(u.Points)

	return SolveOutcome{
		AwardedPoints:  p.Points,
		OldTier:        oldTier,
		NewTier:        u.Tier,
		NewTotalPoints: u.Points,
		ProblemsSolved: u.ProblemsSolved,
	}
}
