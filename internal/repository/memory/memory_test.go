package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/repository"
)

func TestUserCreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	users := NewStore(nil).Users()

	u := domain.NewUser("ada", "ada@example.com", "hash", "UK", "KCL", "CS")
	require.NoError(t, users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, int64(1), u.Version)

	dup := domain.NewUser("other", "ADA@example.com", "hash", "UK", "KCL", "CS")
	assert.ErrorIs(t, users.Create(ctx, dup), repository.ErrDuplicate)

	got, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserSaveRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	users := NewStore(nil).Users()
	u := domain.NewUser("ada", "ada@example.com", "hash", "UK", "KCL", "CS")
	require.NoError(t, users.Create(ctx, u))

	first, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	second, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)

	first.Points = 100
	require.NoError(t, users.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Points = 300
	assert.ErrorIs(t, users.Save(ctx, second), repository.ErrVersionConflict)

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stored.Points)
}

func TestReturnedUsersAreCopies(t *testing.T) {
	ctx := context.Background()
	users := NewStore(nil).Users()
	u := domain.NewUser("ada", "ada@example.com", "hash", "UK", "KCL", "CS")
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.SolvedProblems = append(got.SolvedProblems, "p1")
	got.Points = 999

	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.SolvedProblems)
	assert.Zero(t, again.Points)
}

func TestListByPointsOrdersDescending(t *testing.T) {
	ctx := context.Background()
	users := NewStore(nil).Users()
	for i, name := range []string{"a", "b", "c"} {
		u := domain.NewUser(name, name+"@example.com", "hash", "", "", "")
		require.NoError(t, users.Create(ctx, u))
		u.Points = int64(i * 100)
		require.NoError(t, users.Save(ctx, u))
	}

	ranked, err := users.ListByPoints(ctx, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "c", ranked[0].Username)
	assert.Equal(t, "b", ranked[1].Username)
}

func TestProblemsListedByOrder(t *testing.T) {
	ctx := context.Background()
	problems := NewStore(nil).Problems()

	second := domain.NewProblem("B", domain.DifficultyHard, "Graph", 2, "")
	first := domain.NewProblem("A", domain.DifficultyEasy, "Array", 1, "")
	first.ID = "two-sum"
	require.NoError(t, problems.Create(ctx, second))
	require.NoError(t, problems.Create(ctx, first))
	assert.ErrorIs(t, problems.Create(ctx, &domain.Problem{ID: "two-sum"}), repository.ErrDuplicate)

	list, err := problems.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two-sum", list[0].ID)
	assert.Equal(t, int64(500), list[1].Points)
}
