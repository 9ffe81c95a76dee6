package domain

// Tier is the ranking band derived from a user's point total.
type Tier string

const (
	TierPlatinum  Tier = "Platinum"
	TierGoldI     Tier = "Gold I"
	TierGoldII    Tier = "Gold II"
	TierGoldIII   Tier = "Gold III"
	TierSilverI   Tier = "Silver I"
	TierSilverII  Tier = "Silver II"
	TierSilverIII Tier = "Silver III"
	TierBronzeI   Tier = "Bronze I"
	TierBronzeII  Tier = "Bronze II"
	TierBronzeIII Tier = "Bronze III"
)

// LowestTier is assigned to freshly created accounts.
const LowestTier = TierBronzeIII

type tierThreshold struct {
	minPoints int64
	tier      Tier
}

// ordered highest first; first match wins.
var tierThresholds = []tierThreshold{
	{5000, TierPlatinum},
	{3000, TierGoldI},
	{2500, TierGoldII},
	{2000, TierGoldIII},
	{1400, TierSilverI},
	{1000, TierSilverII},
	{800, TierSilverIII},
	{600, TierBronzeI},
	{300, TierBronzeII},
	{0, TierBronzeIII},
}

// TierOf maps a point total to its tier.
func TierOf(points int64) Tier {
	for _, t := range tierThresholds {
		if points >= t.minPoints {
			return t.tier
		}
	}
	return LowestTier
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	for _, th := range tierThresholds {
		if th.tier == t {
			return true
		}
	}
	return false
}
