package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/repository"
	"github.com/spec-kit/code-arena/internal/repository/memory"
)

type fixture struct {
	store      *memory.Store
	users      repository.UserRepository
	problems   repository.ProblemRepository
	dispatcher events.Dispatcher
	recorder   *eventRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(nil)
	dispatcher := events.NewInMemoryDispatcher(nil)
	recorder := &eventRecorder{}
	for _, et := range []events.EventType{
		events.EventUserRegistered, events.EventProblemSolved, events.EventTierChanged, events.EventProblemCreated,
	} {
		dispatcher.Subscribe(et, recorder.handle)
	}
	return &fixture{
		store:      store,
		users:      store.Users(),
		problems:   store.Problems(),
		dispatcher: dispatcher,
		recorder:   recorder,
	}
}

func (f *fixture) addUser(t *testing.T, username string, points int64) *domain.User {
	t.Helper()
	user := domain.NewUser(username, username+"@example.com", "hash", "NP", "TU", "CS")
	user.Points = points
	user.Tier = domain.TierOf(points)
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) addProblem(t *testing.T, id string, difficulty domain.Difficulty) *domain.Problem {
	t.Helper()
	problem := domain.NewProblem("Problem "+id, difficulty, "Arrays", len(id), "desc")
	problem.ID = id
	require.NoError(t, f.problems.Create(context.Background(), problem))
	return problem
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(et events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

// failingSaves rejects every write.
type failingSaves struct {
	repository.UserRepository
}

func (failingSaves) Save(context.Context, *domain.User) error {
	return errors.New("disk on fire")
}

// racingWriter lets another writer bump the stored record right before the first n saves.
type racingWriter struct {
	repository.UserRepository
	mu    sync.Mutex
	races int
	saves int
}

func (r *racingWriter) Save(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	r.saves++
	race := r.races > 0
	if race {
		r.races--
	}
	r.mu.Unlock()

	if race {
		other, err := r.UserRepository.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if err := r.UserRepository.Save(ctx, other); err != nil {
			return err
		}
	}
	return r.UserRepository.Save(ctx, user)
}
