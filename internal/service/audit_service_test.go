package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/code-arena/internal/domain"
	"github.com/spec-kit/code-arena/internal/observability"
)

func TestAuditServiceLogsAndCountsProgression(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zap.InfoLevel)
	metrics := observability.NewMetrics()
	NewAuditService(f.dispatcher, zap.New(core), metrics).RegisterHandlers()

	user := f.addUser(t, "lee", 250)
	f.addProblem(t, "p1", domain.DifficultyEasy)
	_, err := newProgression(f, nil).SolveProblem(context.Background(), user.ID, "p1")
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("ProblemSolved").Len())
	tier := logs.FilterMessage("TierChanged").All()
	require.Len(t, tier, 1)
	assert.Equal(t, string(domain.TierBronzeII), tier[0].ContextMap()["new_tier"])

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.ProblemSolves)
	assert.Equal(t, int64(1), snap.TierChanges)
}
