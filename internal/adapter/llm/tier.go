package llm

import (
	"suggest/internal/domain"
	"suggest/internal/port"
)

// StaticTierResolver maps logical model tiers to concrete provider
// settings from configuration; unknown tiers resolve to medium.
type StaticTierResolver struct {
	tiers map[domain.ModelTier]port.ModelOptions
}

func NewStaticTierResolver(tiers map[domain.ModelTier]port.ModelOptions) *StaticTierResolver {
	if tiers == nil {
		tiers = DefaultTiers()
	}
	return &StaticTierResolver{tiers: tiers}
}

func (r *StaticTierResolver) Resolve(tier domain.ModelTier) port.ModelOptions {
	if opts, ok := r.tiers[tier]; ok {
		return opts
	}
	return r.tiers[domain.TierMedium]
}

var _ port.TierResolver = (*StaticTierResolver)(nil)

// DefaultTiers are reasonable hosted defaults; overridable in config.
func DefaultTiers() map[domain.ModelTier]port.ModelOptions {
	return map[domain.ModelTier]port.ModelOptions{
		domain.TierMedium: {
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   2048,
		},
		domain.TierHigh: {
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0.1,
			MaxTokens:   4096,
		},
	}
}
