package quota

import (
	"fmt"
	"time"

	"github.com/fitai/fitai-server/pkg/types"
)

const FreeTierGenerationsPerMonth = 25

type EffectiveTier string

const (
	TierFree EffectiveTier = "free"
	TierPro  EffectiveTier = "pro"
)

// GetEffectiveTier determines the user's effective tier based on admin status
// and stored tier.
func GetEffectiveTier(profile *types.UserProfile) EffectiveTier {
	if profile == nil {
		return TierFree
	}

	// Admin override always grants Pro
	if profile.IsAdmin {
		return TierPro
	}

	if profile.Tier == string(TierPro) {
		return TierPro
	}
	return TierFree
}

// CanGenerate checks if the user can request another AI generation within
// their tier limits. Counts from a previous month do not count.
func CanGenerate(profile *types.UserProfile, now time.Time) (allowed bool, reason string) {
	if GetEffectiveTier(profile) == TierPro {
		return true, ""
	}

	if ShouldResetCount(profile, now) {
		return true, ""
	}

	if profile.GenerationCount >= FreeTierGenerationsPerMonth {
		return false, fmt.Sprintf("Free tier limit reached (%d/month). Upgrade to Pro for unlimited generations.", FreeTierGenerationsPerMonth)
	}

	return true, ""
}

// Remaining returns the generations left this month, or -1 for unlimited.
func Remaining(profile *types.UserProfile, now time.Time) int {
	if GetEffectiveTier(profile) == TierPro {
		return -1
	}
	if ShouldResetCount(profile, now) {
		return FreeTierGenerationsPerMonth
	}
	if left := FreeTierGenerationsPerMonth - profile.GenerationCount; left > 0 {
		return left
	}
	return 0
}

// ShouldResetCount checks if the generation counter should be reset (monthly)
func ShouldResetCount(profile *types.UserProfile, now time.Time) bool {
	if profile == nil || profile.GenerationsResetAt == nil {
		return true
	}

	resetTime := profile.GenerationsResetAt.UTC()
	now = now.UTC()

	// Reset if the reset date is in a different month
	return resetTime.Year() != now.Year() || resetTime.Month() != now.Month()
}
