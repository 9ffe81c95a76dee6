package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySolveStopsShortOfBronzeI(t *testing.T) {
	u := NewUser("ada", "ada@example.com", "", "UK", "KCL", "CS")
	u.Points = 290
	u.Tier = TierOf(u.Points)
	p := NewProblem("Two Sum", DifficultyMedium, "Array", 1, "")
	p.ID = "p1"

	out := ApplySolve(u, p)

	assert.Equal(t, int64(300), out.AwardedPoints)
	assert.Equal(t, int64(590), u.Points)
	assert.Equal(t, TierBronzeIII, out.OldTier)
	// 590 sits in the 300..599 band; one award must not reach Bronze I at 600
	assert.Equal(t, TierBronzeII, out.NewTier)
	assert.NotEqual(t, TierBronzeI, out.NewTier)
	assert.Equal(t, 1, u.ProblemsSolved)
}

func TestApplySolveCrossesIntoBronzeII(t *testing.T) {
	u := NewUser("ada", "ada@example.com", "", "UK", "KCL", "CS")
	u.Points = 295
	p := NewProblem("Valid Parentheses", DifficultyEasy, "Stack", 2, "")
	p.ID = "p2"

	out := ApplySolve(u, p)

	assert.Equal(t, int64(395), out.NewTotalPoints)
	assert.Equal(t, TierBronzeII, out.NewTier)
	assert.Equal(t, TierBronzeII, u.Tier)
}

func TestApplySolveUsesStoredPoints(t *testing.T) {
	u := NewUser("bob", "bob@example.com", "", "US", "MIT", "EE")
	p := NewProblem("Legacy", DifficultyHard, "Graph", 3, "")
	p.ID = "legacy"
	p.Points = 80

	out := ApplySolve(u, p)

	assert.Equal(t, int64(80), out.AwardedPoints)
	assert.Equal(t, int64(80), u.Points)
}

func TestCloneIsIndependent(t *testing.T) {
	u := NewUser("eve", "eve@example.com", "", "FR", "ENS", "Math")
	u.SolvedProblems = append(u.SolvedProblems, "a")
	cp := u.Clone()
	cp.SolvedProblems = append(cp.SolvedProblems, "b")
	cp.Points = 42

	require.Len(t, u.SolvedProblems, 1)
	assert.Equal(t, int64(0), u.Points)
	assert.True(t, cp.HasSolved("b"))
	assert.False(t, u.HasSolved("b"))
}

func TestPointsForAndParseDifficulty(t *testing.T) {
	d, ok := ParseDifficulty(" medium ")
	require.True(t, ok)
	assert.Equal(t, DifficultyMedium, d)
	_, ok = ParseDifficulty("insane")
	assert.False(t, ok)

	assert.Equal(t, int64(100), PointsFor(DifficultyEasy))
	assert.Equal(t, int64(300), PointsFor(DifficultyMedium))
	assert.Equal(t, int64(500), PointsFor(DifficultyHard))
	assert.Equal(t, int64(0), PointsFor(Difficulty("?")))
}
