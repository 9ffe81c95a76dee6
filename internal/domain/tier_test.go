package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierOfBoundaries(t *testing.T) {
	cases := []struct {
		points int64
		want   Tier
	}{
		{0, TierBronzeIII},
		{299, TierBronzeIII},
		{300, TierBronzeII},
		{599, TierBronzeII},
		{600, TierBronzeI},
		{799, TierBronzeI},
		{800, TierSilverIII},
		{999, TierSilverIII},
		{1000, TierSilverII},
		{1399, TierSilverII},
		{1400, TierSilverI},
		{1999, TierSilverI},
		{2000, TierGoldIII},
		{2499, TierGoldIII},
		{2500, TierGoldII},
		{2999, TierGoldII},
		{3000, TierGoldI},
		{4999, TierGoldI},
		{5000, TierPlatinum},
		{1_000_000, TierPlatinum},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierOf(tc.points), "points=%d", tc.points)
	}
}

func TestTierOfNegativeFallsToLowest(t *testing.T) {
	assert.Equal(t, LowestTier, TierOf(-10))
}

func TestTierValid(t *testing.T) {
	assert.True(t, TierGoldII.Valid())
	assert.False(t, Tier("Diamond").Valid())
	assert.False(t, Tier("").Valid())
}
