package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsAllHandlersDespiteErrors(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventProblemSolved, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventProblemSolved, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.UserID)
		return nil
	})
	d.Subscribe(EventTierChanged, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventProblemSolved, UserID: "u1"}))
	assert.Equal(t, []string{"first", "second:u1"}, calls)
}
